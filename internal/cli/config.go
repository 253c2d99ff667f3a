package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"idlerig/internal/config"
)

func NewConfigCommand(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to --config",
		Long: `Write the effective configuration (defaults, environment and flags) to the
file given by --config. The access token is never written; store it with
"idlerig token set".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return errors.Errorf("%s already exists, use --force to overwrite", a.configPath)
			}

			cfg := *a.cfg
			cfg.RPC.Token = ""
			if err := config.Save(a.configPath, &cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.String())
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}
