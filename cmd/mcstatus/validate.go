package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpalmerr/mcstatus/config"
)

// newValidateCmd validates settings and the site config without serving.
func newValidateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate settings and the site config",
		Long: `Validate mcstatus settings and the site config without starting the server.

This command reads the settings (file, environment, flags), loads the site
config, expands environment variables and validates all fields. It's useful
for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Settings and site config are valid
  1 - Something is invalid (error details printed to stderr)

Example:
  mcstatus validate
  mcstatus validate -c /etc/mcstatus/mcstatus.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, v)
		},
	}
}

func runValidate(cmd *cobra.Command, v *viper.Viper) error {
	s, err := loadSettings(cmd, v)
	if err != nil {
		return err
	}

	site, err := config.LoadSite(cmd.Context(), s.SiteSource, nil)
	if err != nil {
		return fmt.Errorf("invalid site config: %w", err)
	}
	if err := site.Validate(); err != nil {
		return fmt.Errorf("invalid site config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:          %d\n", s.Port)
	fmt.Fprintf(out, "  Poll interval: %s\n", s.PollInterval)
	fmt.Fprintf(out, "  Status API:    %s\n", s.StatusAPI)
	fmt.Fprintf(out, "  Site:          %s\n", s.SiteSource)
	fmt.Fprintf(out, "  Target:        %s\n", site.Target())
	fmt.Fprintf(out, "  Downloads:     %d\n", len(site.Downloads))

	return nil
}
