package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpalmerr/mcstatus/config"
	"github.com/jpalmerr/mcstatus/internal/clipboard"
	"github.com/jpalmerr/mcstatus/internal/view"
)

// systemClipboard is replaced in tests.
var systemClipboard = clipboard.System

// newCopyCmd copies the server address to the clipboard.
func newCopyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the server address to the clipboard",
		Long: `Copy the server address from the site config to the clipboard.

The system clipboard is tried first. When it is unavailable (headless host,
SSH session) an OSC 52 sequence is written to the terminal instead.

With --wait the confirmation stays on screen for two seconds, then clears.

Example:
  mcstatus copy
  mcstatus copy --wait`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd, v)
		},
	}
	cmd.Flags().Bool("wait", false, "hold the confirmation until it clears")
	return cmd
}

func runCopy(cmd *cobra.Command, v *viper.Viper) error {
	s, err := loadSettings(cmd, v)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), s)

	site, err := config.LoadSite(cmd.Context(), s.SiteSource, nil)
	if err != nil {
		return fmt.Errorf("failed to load site config: %w", err)
	}
	if err := site.Validate(); err != nil {
		return fmt.Errorf("invalid site config: %w", err)
	}

	out := cmd.OutOrStdout()
	copier := clipboard.NewCopier(systemClipboard, clipboard.OSC52(out), nil)
	method, err := copier.Copy(site.ServerAddress)
	if err != nil {
		return err
	}
	logger.Debug("address copied", "address", site.ServerAddress, "method", string(method))

	if wait, _ := cmd.Flags().GetBool("wait"); !wait {
		fmt.Fprintln(out, view.CopiedMessage)
		return nil
	}

	fmt.Fprint(out, view.CopiedMessage)
	select {
	case <-copier.Notice().Done():
	case <-cmd.Context().Done():
	}
	// erase the confirmation line
	fmt.Fprint(out, "\r\x1b[K")
	return nil
}
