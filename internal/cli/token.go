package cli

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"idlerig/internal/config"
	"idlerig/internal/credentials"
)

func NewTokenCommand(a *app) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the miner access token in the system keyring",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store the access token for --url",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateRPC(); err != nil {
				return err
			}

			token, err := credentials.PromptToken(a.cfg.RPC.URL)
			if err != nil {
				return err
			}

			store, err := credentials.Open()
			if err != nil {
				return err
			}
			if err := store.SetToken(a.cfg.RPC.URL, token); err != nil {
				return err
			}

			slog.Info("Token stored", "miner", a.cfg.RPC.URL)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"del", "rm"},
		Short:   "Remove the stored access token for --url",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.RPC.URL == "" {
				return &config.Error{Field: "rpc.url", Reason: "is required"}
			}

			store, err := credentials.Open()
			if err != nil {
				return err
			}
			if err := store.DeleteToken(a.cfg.RPC.URL); err != nil {
				return errors.Wrap(err, "failed to delete token")
			}

			slog.Info("Token deleted", "miner", a.cfg.RPC.URL)
			return nil
		},
	}

	tokenCmd.AddCommand(setCmd, deleteCmd)
	return tokenCmd
}
