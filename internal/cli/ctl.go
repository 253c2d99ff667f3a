package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"idlerig/pkg/rpc"
)

func NewCtlCommand(a *app) *cobra.Command {
	ctlCmd := &cobra.Command{
		Use:   "ctl",
		Short: "Send a single command to the miner",
	}

	for _, method := range []string{rpc.MethodPause, rpc.MethodResume, rpc.MethodStop} {
		method := method
		ctlCmd.AddCommand(&cobra.Command{
			Use:   method,
			Short: "Send " + method + " to the miner",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a.resolveToken()
				if err := a.cfg.ValidateRPC(); err != nil {
					return err
				}

				client := rpc.NewClient(a.cfg.RPC.URL, a.cfg.RPC.Token, rpc.WithTimeout(a.cfg.RPCTimeout()))
				if err := sendCommand(cmd.Context(), client, method); err != nil {
					return err
				}

				slog.Info("Command accepted", "method", method, "miner", client.Endpoint())
				return nil
			},
		})
	}

	return ctlCmd
}

func sendCommand(ctx context.Context, client *rpc.Client, method string) error {
	switch method {
	case rpc.MethodPause:
		return client.Pause(ctx)
	case rpc.MethodResume:
		return client.Resume(ctx)
	default:
		return client.Stop(ctx)
	}
}
