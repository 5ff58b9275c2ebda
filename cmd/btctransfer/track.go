package main

import (
	"fmt"

	"github.com/renproject/btctransfer"
	"github.com/renproject/btctransfer/config"
	"github.com/spf13/cobra"
)

func configFrom(cmd *cobra.Command) *config.Config {
	return config.FromContext(cmd.Context())
}

func trackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "track HASH",
		Short: "Wait for the first confirmation of a broadcast transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, client, err := setup(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tracker := btctransfer.NewConfirmationTracker(client, cfg.TrackerOptions(), logger)
			state, err := tracker.Track(cmd.Context(), args[0], func(state btctransfer.ConfirmationState) {
				fmt.Fprintf(out, "Waiting for confirmation (attempt %d)\n", state.Attempts)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, client.FormatTransactionView(
				fmt.Sprintf("transaction has %d confirmations", state.Confirmations), state.TxHash))
			return nil
		},
	}
}
