package btctransfer

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/renproject/btctransfer/clients"
	"github.com/renproject/btctransfer/errors"
	"github.com/sirupsen/logrus"
)

// Client is a backend client bound to the network its addresses, keys and
// transactions belong to.
type Client interface {
	clients.ClientCore

	// NetworkParams returns the parameters of the network the backend serves.
	NetworkParams() *chaincfg.Params

	// FormatTransactionView formats the message and txhash into a user friendly
	// message.
	FormatTransactionView(msg, txhash string) string
}

type client struct {
	clients.ClientCore
	params *chaincfg.Params
}

// NewClient binds an existing ClientCore to a network.
func NewClient(core clients.ClientCore, params *chaincfg.Params) Client {
	return &client{core, params}
}

// NewBackendClient returns a Client for the HTTP backend described by opts.
func NewBackendClient(network string, opts clients.Options, logger logrus.FieldLogger) (Client, error) {
	params, err := NetworkParams(network)
	if err != nil {
		return nil, err
	}
	core, err := clients.NewBackendClientCore(opts, logger)
	if err != nil {
		return nil, err
	}
	return &client{core, params}, nil
}

func (client *client) NetworkParams() *chaincfg.Params {
	return client.params
}

func (client *client) FormatTransactionView(msg, txhash string) string {
	return FormatTransactionView(msg, txhash, client.params)
}

// NetworkParams resolves a network name. Mainnet is deliberately unsupported.
func NetworkParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "testnet", "testnet3", "":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	default:
		return nil, errors.NewErrUnsupportedNetwork(network)
	}
}

func FormatTransactionView(msg, txhash string, params *chaincfg.Params) string {
	switch params.Name {
	case chaincfg.TestNet3Params.Name:
		return fmt.Sprintf("%s, transaction can be viewed at https://live.blockcypher.com/btc-testnet/tx/%s", msg, txhash)
	default:
		return fmt.Sprintf("%s, transaction hash %s", msg, txhash)
	}
}
