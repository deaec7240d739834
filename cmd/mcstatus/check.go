package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpalmerr/mcstatus"
	"github.com/jpalmerr/mcstatus/config"
	"github.com/jpalmerr/mcstatus/internal/store"
	"github.com/jpalmerr/mcstatus/internal/view"
)

// newCheckCmd looks the server up once and prints what the page would show.
func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the server status once",
		Long: `Load the site config, look the server up once through the status API
and print the title, badge, version and players the page would show.

A failed lookup prints the offline state; the reason is logged to stderr.

Example:
  mcstatus check
  mcstatus check --site https://example.com/config.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, v)
		},
	}
}

func runCheck(cmd *cobra.Command, v *viper.Viper) error {
	s, err := loadSettings(cmd, v)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), s)

	m, err := mcstatus.New(monitorOptions(s, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	site, result, err := m.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load site config: %w", err)
	}
	if result.Error != nil {
		logger.Warn("status check failed",
			"target", result.Target,
			"error", result.Error.Error(),
		)
	}

	printStatus(cmd.OutOrStdout(), site, result)
	return nil
}

// printStatus writes the page's text for site and result.
func printStatus(w io.Writer, site *config.Site, result mcstatus.StatusResult) {
	st := store.Status{
		Online:      result.Status.Online,
		ServerName:  result.Status.ServerName,
		Version:     result.Status.Version,
		PlayerNames: result.Status.PlayerNames,
	}
	if p := result.Status.Players; p != nil {
		st.Players = &store.Players{Online: p.Online, Max: p.Max}
	}

	page := view.NewPage(site, &st, false)
	if page == nil {
		return
	}

	fmt.Fprintln(w, page.Title)
	fmt.Fprintln(w, page.Badge)
	if page.Version != "" {
		fmt.Fprintf(w, "Minecraft %s\n", page.Version)
	}
	if len(page.PlayerNames) > 0 {
		fmt.Fprintf(w, "%s: %s\n", view.LabelPlayers, strings.Join(page.PlayerNames, ", "))
	}
	fmt.Fprintf(w, "%s: %s\n", view.LabelAddress, page.Address)
}
