// Package main is the entry point for the mcstatus CLI.
//
// Usage:
//
//	mcstatus serve                 # Start the status page
//	mcstatus check                 # Look the server up once and print the result
//	mcstatus validate              # Validate settings and the site config
//	mcstatus copy                  # Copy the server address to the clipboard
//	mcstatus version               # Show version info
//
// Settings come from mcstatus.yaml (or -c path), MCSTATUS_* environment
// variables and flags, in increasing order of precedence.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpalmerr/mcstatus"
	"github.com/jpalmerr/mcstatus/config"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// newRootCmd builds the command tree. Settings flags are persistent so every
// subcommand shares them.
func newRootCmd() *cobra.Command {
	v := config.NewViper("")

	root := &cobra.Command{
		Use:   "mcstatus",
		Short: "A status page for a Minecraft server",
		Long: `mcstatus serves a single-page status site for one Minecraft server.

It reads the site config (server address, port, GitHub link, downloads)
once, checks the server through a public status API every minute and
shows whether it is online, its version and the players connected.

Quick start:
  1. Create public/config.json
  2. Run: mcstatus serve
  3. Open http://localhost:8080 in your browser

Example site config:
  {
    "serverAddress": "mc.example.com",
    "serverPort": 25565,
    "github": "https://github.com/example/server",
    "downloads": [{"name": "Modpack", "file": "/downloads/modpack.zip"}]
  }`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("settings", "c", "", "path to settings file (default: mcstatus.yaml in . or ./config)")
	cobra.CheckErr(config.BindFlags(v, root.PersistentFlags()))

	root.AddCommand(
		newServeCmd(v),
		newCheckCmd(v),
		newValidateCmd(v),
		newCopyCmd(v),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

// newVersionCmd prints version information.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this mcstatus binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mcstatus %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

// loadSettings reads settings for cmd, honoring --settings.
func loadSettings(cmd *cobra.Command, v *viper.Viper) (config.Settings, error) {
	if file, _ := cmd.Flags().GetString("settings"); file != "" {
		v.SetConfigFile(file)
	}
	s, err := config.LoadSettings(v)
	if err != nil {
		return config.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// newLogger creates the CLI logger described by s.
func newLogger(w io.Writer, s config.Settings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	if s.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// monitorOptions maps settings onto monitor options.
func monitorOptions(s config.Settings, logger *slog.Logger) []mcstatus.Option {
	return []mcstatus.Option{
		mcstatus.WithSiteSource(s.SiteSource),
		mcstatus.WithPort(s.Port),
		mcstatus.WithPollingInterval(s.PollInterval),
		mcstatus.WithStatusAPI(s.StatusAPI),
		mcstatus.WithRequestTimeout(s.RequestTimeout),
		mcstatus.WithPublicDir(s.PublicDir),
		mcstatus.WithLogger(logger),
	}
}
