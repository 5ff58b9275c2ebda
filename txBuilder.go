package btctransfer

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/renproject/btctransfer/clients"
	"github.com/renproject/btctransfer/errors"
	"github.com/sirupsen/logrus"
)

// UTXO references the output a transfer spends. PrevTx is the serialized
// transaction that created it and must hash to TxHash. Amount is the value of
// the output; when zero it is read from PrevTx.
type UTXO struct {
	TxHash chainhash.Hash
	Vout   uint32
	PrevTx []byte
	Amount int64
}

// Intent is an unsigned single-input, single-output transfer.
type Intent struct {
	To     string
	Source UTXO
	Amount int64
}

// NewIntent decodes the signing inputs returned by the backend.
func NewIntent(ins clients.Instructions) (Intent, error) {
	hash, err := chainhash.NewHashFromStr(ins.TxHash)
	if err != nil {
		return Intent{}, fmt.Errorf("invalid txid %q: %w", ins.TxHash, err)
	}
	prevTx, err := hex.DecodeString(ins.PrevTxHex)
	if err != nil {
		return Intent{}, fmt.Errorf("invalid previous transaction hex: %w", err)
	}
	return Intent{
		To: ins.To,
		Source: UTXO{
			TxHash: *hash,
			Vout:   ins.Vout,
			PrevTx: prevTx,
		},
		Amount: ins.Amount,
	}, nil
}

// The TxBuilder builds PSBTs that spend exactly one output and pay exactly one
// destination. The difference between the spent value and the amount is the
// fee.
type TxBuilder interface {
	Build(intent Intent) (Tx, error)
}

type txBuilder struct {
	version  int32
	lockTime uint32
	params   *chaincfg.Params
	logger   logrus.FieldLogger
}

// NewTxBuilder creates a new tx builder for the given network.
func NewTxBuilder(params *chaincfg.Params, logger logrus.FieldLogger) TxBuilder {
	return &txBuilder{2, 0, params, defaultLogger(logger)}
}

func (builder *txBuilder) Build(intent Intent) (Tx, error) {
	prevTx := wire.NewMsgTx(wire.TxVersion)
	if err := prevTx.Deserialize(bytes.NewReader(intent.Source.PrevTx)); err != nil {
		return nil, fmt.Errorf("cannot decode previous transaction: %w", err)
	}
	if prevHash := prevTx.TxHash(); !prevHash.IsEqual(&intent.Source.TxHash) {
		return nil, fmt.Errorf("%w: got %s, expected %s", errors.ErrTxHashMismatch, prevHash, intent.Source.TxHash)
	}
	if int(intent.Source.Vout) >= len(prevTx.TxOut) {
		return nil, fmt.Errorf("output index %d out of range, previous transaction has %d outputs",
			intent.Source.Vout, len(prevTx.TxOut))
	}

	prevOut := prevTx.TxOut[intent.Source.Vout]
	if intent.Source.Amount != 0 && intent.Source.Amount != prevOut.Value {
		return nil, fmt.Errorf("utxo amount %d does not match output value %d", intent.Source.Amount, prevOut.Value)
	}
	if intent.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", intent.Amount)
	}
	if intent.Amount > prevOut.Value {
		return nil, fmt.Errorf("amount %d exceeds the spent output value %d", intent.Amount, prevOut.Value)
	}

	class := txscript.GetScriptClass(prevOut.PkScript)
	switch class {
	case txscript.PubKeyHashTy, txscript.WitnessV0PubKeyHashTy:
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedScript, class)
	}

	to, err := DecodeAddress(intent.To, builder.params)
	if err != nil {
		return nil, err
	}
	script, err := PayToAddrScript(to)
	if err != nil {
		return nil, err
	}

	packet, err := psbt.New(
		[]*wire.OutPoint{wire.NewOutPoint(&intent.Source.TxHash, intent.Source.Vout)},
		[]*wire.TxOut{wire.NewTxOut(intent.Amount, script)},
		builder.version,
		builder.lockTime,
		[]uint32{wire.MaxTxInSequenceNum},
	)
	if err != nil {
		return nil, err
	}
	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return nil, err
	}
	if err := updater.AddInNonWitnessUtxo(prevTx, 0); err != nil {
		return nil, err
	}
	if class == txscript.WitnessV0PubKeyHashTy {
		if err := updater.AddInWitnessUtxo(prevOut, 0); err != nil {
			return nil, err
		}
	}
	if err := updater.AddInSighashType(txscript.SigHashAll, 0); err != nil {
		return nil, err
	}

	builder.logger.WithFields(logrus.Fields{
		"outpoint": fmt.Sprintf("%s:%d", intent.Source.TxHash, intent.Source.Vout),
		"to":       intent.To,
		"amount":   intent.Amount,
		"fee":      prevOut.Value - intent.Amount,
	}).Info("built unsigned transaction")

	return &transaction{
		packet:  packet,
		updater: updater,
		prevOut: prevOut,
		class:   class,
		params:  builder.params,
		logger:  builder.logger,
	}, nil
}
