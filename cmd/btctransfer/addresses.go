package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/renproject/btctransfer"
	"github.com/spf13/cobra"
)

func addressesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Manage the backend address book",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved addresses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, client, err := setup(cmd)
				if err != nil {
					return err
				}
				records, err := client.Addresses(cmd.Context())
				if err != nil {
					return err
				}
				for _, record := range records {
					fmt.Fprintln(cmd.OutOrStdout(), record.Address)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add ADDRESS",
			Short: "Save an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, client, err := setup(cmd)
				if err != nil {
					return err
				}
				if err := btctransfer.ValidateAddress(args[0], client.NetworkParams()); err != nil {
					return err
				}
				if err := client.CreateAddress(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "show ADDRESS",
			Short: "Show balances and history counts of an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, _, client, err := setup(cmd)
				if err != nil {
					return err
				}
				details, err := client.AddressDetails(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "address\t%s\n", args[0])
				fmt.Fprintf(w, "balance\t%d\n", details.Balance)
				fmt.Fprintf(w, "unconfirmed balance\t%d\n", details.UnconfirmedBalance)
				fmt.Fprintf(w, "final balance\t%d\n", details.FinalBalance)
				fmt.Fprintf(w, "total received\t%d\n", details.TotalReceived)
				fmt.Fprintf(w, "total sent\t%d\n", details.TotalSent)
				fmt.Fprintf(w, "transactions\t%d\n", details.NTx)
				if details.TxURL != "" {
					fmt.Fprintf(w, "transactions url\t%s\n", details.TxURL)
				}
				return w.Flush()
			},
		},
	)
	return cmd
}
