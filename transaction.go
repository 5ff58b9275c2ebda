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
	"github.com/renproject/btctransfer/errors"
	"github.com/sirupsen/logrus"
)

// Tx is a PSBT under construction. It is signed with a WIF key and then
// finalized into a network serializable transaction.
type Tx interface {
	Packet() *psbt.Packet
	Base64() (string, error)
	Sign(wif []byte) error
	Finalize() (FinalizedTx, error)
}

// FinalizedTx is a fully signed transaction in its canonical wire encoding.
type FinalizedTx struct {
	Raw  []byte
	Hash chainhash.Hash
}

func (tx FinalizedTx) Hex() string {
	return hex.EncodeToString(tx.Raw)
}

// MsgTx decodes the raw bytes back into a wire transaction.
func (tx FinalizedTx) MsgTx() (*wire.MsgTx, error) {
	msgTx := wire.NewMsgTx(wire.TxVersion)
	if err := msgTx.Deserialize(bytes.NewReader(tx.Raw)); err != nil {
		return nil, err
	}
	return msgTx, nil
}

type transaction struct {
	packet  *psbt.Packet
	updater *psbt.Updater
	prevOut *wire.TxOut
	class   txscript.ScriptClass
	params  *chaincfg.Params
	logger  logrus.FieldLogger
}

func (tx *transaction) Packet() *psbt.Packet {
	return tx.packet
}

func (tx *transaction) Base64() (string, error) {
	return tx.packet.B64Encode()
}

// Sign signs input 0 with the given WIF key. The decoded key is zeroed before
// Sign returns; wif itself belongs to the caller.
func (tx *transaction) Sign(wif []byte) error {
	key, err := DecodeWIF(string(wif), tx.params)
	if err != nil {
		return err
	}
	defer key.PrivKey.Zero()

	fetcher := txscript.NewCannedPrevOutputFetcher(tx.prevOut.PkScript, tx.prevOut.Value)
	unsignedTx := tx.packet.UnsignedTx

	var sig []byte
	switch tx.class {
	case txscript.PubKeyHashTy:
		sig, err = txscript.RawTxInSignature(unsignedTx, 0, tx.prevOut.PkScript, txscript.SigHashAll, key.PrivKey)
	case txscript.WitnessV0PubKeyHashTy:
		sigHashes := txscript.NewTxSigHashes(unsignedTx, fetcher)
		sig, err = txscript.RawTxInWitnessSignature(unsignedTx, sigHashes, 0, tx.prevOut.Value, tx.prevOut.PkScript, txscript.SigHashAll, key.PrivKey)
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnsupportedScript, tx.class)
	}
	if err != nil {
		return err
	}

	outcome, err := tx.updater.Sign(0, sig, key.SerializePubKey(), nil, nil)
	if err != nil {
		return err
	}
	if outcome != psbt.SignSuccesful {
		return fmt.Errorf("cannot add signature to input 0: outcome %d", outcome)
	}
	return nil
}

// Finalize assembles the unlocking data of every input, checks the result
// against the spent output with the script engine and serializes it. Finalizing
// an already finalized packet returns identical bytes.
func (tx *transaction) Finalize() (FinalizedTx, error) {
	if err := psbt.MaybeFinalizeAll(tx.packet); err != nil {
		return FinalizedTx{}, err
	}
	msgTx, err := psbt.Extract(tx.packet)
	if err != nil {
		return FinalizedTx{}, err
	}
	if err := tx.verify(msgTx); err != nil {
		return FinalizedTx{}, err
	}

	buf := new(bytes.Buffer)
	if err := msgTx.Serialize(buf); err != nil {
		return FinalizedTx{}, err
	}
	return FinalizedTx{
		Raw:  buf.Bytes(),
		Hash: msgTx.TxHash(),
	}, nil
}

func (tx *transaction) verify(msgTx *wire.MsgTx) error {
	fetcher := txscript.NewCannedPrevOutputFetcher(tx.prevOut.PkScript, tx.prevOut.Value)
	vm, err := txscript.NewEngine(
		tx.prevOut.PkScript,
		msgTx,
		0,
		txscript.StandardVerifyFlags,
		nil,
		txscript.NewTxSigHashes(msgTx, fetcher),
		tx.prevOut.Value,
		fetcher,
	)
	if err != nil {
		return err
	}
	if err := vm.Execute(); err != nil {
		return fmt.Errorf("key does not unlock the spent output: %w", err)
	}
	return nil
}

// SignIntent builds, signs and finalizes intent. Every failure is reported as
// ErrSigningFailed.
func SignIntent(builder TxBuilder, intent Intent, wif []byte) (FinalizedTx, error) {
	tx, err := builder.Build(intent)
	if err != nil {
		return FinalizedTx{}, errors.NewErrSigningFailed(err)
	}
	if err := tx.Sign(wif); err != nil {
		return FinalizedTx{}, errors.NewErrSigningFailed(err)
	}
	final, err := tx.Finalize()
	if err != nil {
		return FinalizedTx{}, errors.NewErrSigningFailed(err)
	}
	return final, nil
}
