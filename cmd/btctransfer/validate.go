package main

import (
	"fmt"

	"github.com/renproject/btctransfer"
	"github.com/spf13/cobra"
)

func validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check user input without contacting the backend",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "address ADDRESS",
			Short: "Check that an address belongs to the configured network",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := configFrom(cmd)
				params, err := btctransfer.NetworkParams(cfg.Network)
				if err != nil {
					return err
				}
				if err := btctransfer.ValidateAddress(args[0], params); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			},
		},
		&cobra.Command{
			Use:   "key",
			Short: "Check a WIF private key read from the terminal",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := configFrom(cmd)
				params, err := btctransfer.NetworkParams(cfg.Network)
				if err != nil {
					return err
				}
				key, err := readSecret("Enter private key (WIF): ")
				if err != nil {
					return err
				}
				defer clear(key)
				if err := btctransfer.ValidatePrivateKey(string(key), params); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			},
		},
		&cobra.Command{
			Use:   "amount AMOUNT",
			Short: "Check an amount in BTC and print it in satoshis",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := btctransfer.AmountToSatoshis(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "valid: %d satoshis\n", int64(amount))
				return nil
			},
		},
	)
	return cmd
}
