package main

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/renproject/btctransfer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// BIP-44 account 0, first receive key, coin type 1 (testnet).
const defaultDerivationPath = "m/44'/1'/0'/0/0"

var deriveFlags = struct {
	path       string
	passphrase bool
}{}

func deriveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print the address controlled by a mnemonic at a derivation path",
		Args:  cobra.NoArgs,
		RunE:  deriveRun,
	}
	cmd.Flags().StringVar(&deriveFlags.path, "path", defaultDerivationPath, "derivation path")
	cmd.Flags().BoolVar(&deriveFlags.passphrase, "passphrase", false, "prompt for a mnemonic passphrase")
	return cmd
}

func deriveRun(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	if cfg == nil {
		return fmt.Errorf("no config found in context")
	}
	params, err := btctransfer.NetworkParams(cfg.Network)
	if err != nil {
		return err
	}
	logger := newLogger(cfg).WithField("component", programName)

	key, err := deriveKey(params, deriveFlags.path, deriveFlags.passphrase, logger)
	if err != nil {
		return err
	}
	defer clear(key)

	wif, err := btctransfer.DecodeWIF(string(key), params)
	if err != nil {
		return err
	}
	defer wif.PrivKey.Zero()
	address, err := btctransfer.AddressFromWIF(wif, params)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), address.EncodeAddress())
	return nil
}

// deriveKey prompts for a mnemonic and returns the WIF encoding of the key at
// path. The caller must clear the result.
func deriveKey(params *chaincfg.Params, path string, withPassphrase bool, logger logrus.FieldLogger) ([]byte, error) {
	indices, err := btctransfer.ParseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	mnemonic, err := readSecret("Enter mnemonic: ")
	if err != nil {
		return nil, err
	}
	defer clear(mnemonic)

	var passphrase []byte
	if withPassphrase {
		if passphrase, err = readSecret("Enter passphrase: "); err != nil {
			return nil, err
		}
		defer clear(passphrase)
	}

	wallet, err := btctransfer.NewWallet(string(mnemonic), params, logger)
	if err != nil {
		return nil, err
	}
	wif, err := wallet.DeriveWIF(indices, string(passphrase))
	if err != nil {
		return nil, err
	}
	defer wif.PrivKey.Zero()
	return []byte(wif.String()), nil
}
