package clients

import (
	"context"
)

// SendRequest asks the backend for the inputs needed to pay Amount from From to
// To. Amount is the decimal BTC value exactly as the user typed it.
type SendRequest struct {
	To     string `json:"to_address"`
	From   string `json:"from_address"`
	Amount string `json:"amount"`
}

// Instructions are the signing inputs returned by the backend: the outpoint to
// spend, the raw transaction that created it, the destination and the amount to
// pay in satoshis.
type Instructions struct {
	TxHash    string
	Vout      uint32
	PrevTxHex string
	To        string
	Amount    int64
}

// AddressRecord is an entry of the backend address book.
type AddressRecord struct {
	Address string `json:"address"`
}

// AddressDetails is the chain summary the backend keeps for an address.
type AddressDetails struct {
	Address            string `json:"address"`
	TotalReceived      int64  `json:"total_received"`
	TotalSent          int64  `json:"total_sent"`
	Balance            int64  `json:"balance"`
	UnconfirmedBalance int64  `json:"unconfirmed_balance"`
	FinalBalance       int64  `json:"final_balance"`
	NTx                int64  `json:"n_tx"`
	UnconfirmedNTx     int64  `json:"unconfirmed_n_tx"`
	FinalNTx           int64  `json:"final_n_tx"`
	TxURL              string `json:"tx_url"`
}

type ClientCore interface {
	// Instructions requests the UTXO and previous transaction needed to build
	// the transfer described by req.
	Instructions(ctx context.Context, req SendRequest) (Instructions, error)

	// Broadcast relays a finalized, hex encoded transaction and returns the
	// handle used to query its confirmations.
	Broadcast(ctx context.Context, signedTxHex string) (string, error)

	// Confirmations returns the number of confirmations of the given
	// transaction handle.
	Confirmations(ctx context.Context, txHash string) (int64, error)

	Addresses(ctx context.Context) ([]AddressRecord, error)
	CreateAddress(ctx context.Context, address string) error
	AddressDetails(ctx context.Context, address string) (AddressDetails, error)
}
