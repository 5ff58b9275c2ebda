package main

import (
	"fmt"

	"github.com/renproject/btctransfer"
	"github.com/spf13/cobra"
)

var sendFlags = struct {
	to         string
	from       string
	amount     string
	mnemonic   bool
	path       string
	passphrase bool
}{}

func sendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send bitcoin from one address to another and wait for the first confirmation",
		Args:  cobra.NoArgs,
		RunE:  sendRun,
	}
	cmd.Flags().StringVar(&sendFlags.to, "to", "", "destination address")
	cmd.Flags().StringVar(&sendFlags.from, "from", "", "source address")
	cmd.Flags().StringVar(&sendFlags.amount, "amount", "", "amount in BTC")
	cmd.Flags().BoolVar(&sendFlags.mnemonic, "mnemonic", false, "derive the signing key from a mnemonic instead of a WIF key")
	cmd.Flags().StringVar(&sendFlags.path, "path", defaultDerivationPath, "derivation path used with --mnemonic")
	cmd.Flags().BoolVar(&sendFlags.passphrase, "passphrase", false, "prompt for a mnemonic passphrase")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func sendRun(cmd *cobra.Command, args []string) error {
	cfg, logger, client, err := setup(cmd)
	if err != nil {
		return err
	}

	var key []byte
	if sendFlags.mnemonic {
		key, err = deriveKey(client.NetworkParams(), sendFlags.path, sendFlags.passphrase, logger)
	} else {
		key, err = readSecret("Enter private key (WIF): ")
	}
	if err != nil {
		return err
	}
	defer clear(key)

	tracker := btctransfer.NewConfirmationTracker(client, cfg.TrackerOptions(), logger)
	transferer := btctransfer.NewTransferer(client, tracker, logger)

	out := cmd.OutOrStdout()
	outcome, err := transferer.Transfer(cmd.Context(), &btctransfer.TransferRequest{
		To:         sendFlags.to,
		From:       sendFlags.from,
		Amount:     sendFlags.amount,
		PrivateKey: key,
	}, func(event btctransfer.Event) {
		switch event.Stage {
		case btctransfer.StageWaiting:
			fmt.Fprintf(out, "Waiting for confirmation (attempt %d, %d confirmations)\n",
				event.State.Attempts, event.State.Confirmations)
		case btctransfer.StageConfirmed:
			fmt.Fprintln(out, event.Message)
		case btctransfer.StageFailed:
			fmt.Fprintf(out, "Transfer failed: %s\n", event.Message)
		default:
			fmt.Fprintf(out, "%s...\n", event.Message)
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Transaction %s\n", outcome.TxHash)
	return nil
}
