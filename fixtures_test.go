package btctransfer_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/renproject/btctransfer/clients"
)

var testNet = &chaincfg.TestNet3Params

type testKey struct {
	wif    *btcutil.WIF
	p2pkh  btcutil.Address
	p2wpkh btcutil.Address
}

// newTestKey returns a compressed testnet key whose scalar is seed repeated.
func newTestKey(seed byte) testKey {
	priv, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	wif, err := btcutil.NewWIF(priv, testNet, true)
	if err != nil {
		panic(err)
	}
	pkHash := btcutil.Hash160(wif.SerializePubKey())
	p2pkh, err := btcutil.NewAddressPubKeyHash(pkHash, testNet)
	if err != nil {
		panic(err)
	}
	p2wpkh, err := btcutil.NewAddressWitnessPubKeyHash(pkHash, testNet)
	if err != nil {
		panic(err)
	}
	return testKey{wif, p2pkh, p2wpkh}
}

// wifBytes returns a fresh copy of the key in WIF, for APIs that clear it.
func (key testKey) wifBytes() []byte {
	return []byte(key.wif.String())
}

// fundingTx returns a serialized transaction with one output of value paying
// to address.
func fundingTx(address btcutil.Address, value int64) (chainhash.Hash, []byte) {
	script, err := txscript.PayToAddrScript(address)
	if err != nil {
		panic(err)
	}
	tx := wire.NewMsgTx(2)
	prev := chainhash.DoubleHashH([]byte("coinbase"))
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prev, 0), []byte{txscript.OP_TRUE}, nil))
	tx.AddTxOut(wire.NewTxOut(value, script))

	buf := new(bytes.Buffer)
	if err := tx.Serialize(buf); err != nil {
		panic(err)
	}
	return tx.TxHash(), buf.Bytes()
}

func instructionsFor(from btcutil.Address, value int64, to string, amount int64) clients.Instructions {
	hash, raw := fundingTx(from, value)
	return clients.Instructions{
		TxHash:    hash.String(),
		Vout:      0,
		PrevTxHex: hex.EncodeToString(raw),
		To:        to,
		Amount:    amount,
	}
}

// fakeCore is a scripted clients.ClientCore. Unset functions fail the call.
type fakeCore struct {
	mu sync.Mutex

	instructions  func(clients.SendRequest) (clients.Instructions, error)
	broadcast     func(string) (string, error)
	confirmations func(string) (int64, error)

	instructionCalls  int
	broadcastCalls    int
	confirmationCalls int
}

func (core *fakeCore) Instructions(ctx context.Context, req clients.SendRequest) (clients.Instructions, error) {
	core.mu.Lock()
	core.instructionCalls++
	core.mu.Unlock()
	return core.instructions(req)
}

func (core *fakeCore) Broadcast(ctx context.Context, signedTxHex string) (string, error) {
	core.mu.Lock()
	core.broadcastCalls++
	core.mu.Unlock()
	return core.broadcast(signedTxHex)
}

func (core *fakeCore) Confirmations(ctx context.Context, txHash string) (int64, error) {
	core.mu.Lock()
	core.confirmationCalls++
	core.mu.Unlock()
	return core.confirmations(txHash)
}

func (core *fakeCore) Addresses(ctx context.Context) ([]clients.AddressRecord, error) {
	return nil, nil
}

func (core *fakeCore) CreateAddress(ctx context.Context, address string) error {
	return nil
}

func (core *fakeCore) AddressDetails(ctx context.Context, address string) (clients.AddressDetails, error) {
	return clients.AddressDetails{Address: address}, nil
}

// confirmationsSequence answers queries with counts in order and repeats the
// last one.
func confirmationsSequence(counts ...int64) func(string) (int64, error) {
	var mu sync.Mutex
	i := 0
	return func(string) (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		count := counts[i]
		if i < len(counts)-1 {
			i++
		}
		return count, nil
	}
}

func clientOptions(baseURL string) clients.Options {
	return clients.Options{BaseURL: baseURL}
}
