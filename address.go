package btctransfer

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/renproject/btctransfer/errors"
)

// DecodeAddress decodes an address and checks that it belongs to params.
// Bare public keys decode in btcutil but are not addresses a user can pay to, so
// they are rejected.
func DecodeAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, err
	}
	if _, ok := addr.(*btcutil.AddressPubKey); ok {
		return nil, fmt.Errorf("%s is a public key, not an address", address)
	}
	if !addr.IsForNet(params) {
		return nil, fmt.Errorf("%s is not a %s address", address, params.Name)
	}
	return addr, nil
}

func PayToAddrScript(address btcutil.Address) ([]byte, error) {
	return txscript.PayToAddrScript(address)
}

// ValidateAddress returns nil iff address decodes to an output script on
// params.
func ValidateAddress(address string, params *chaincfg.Params) error {
	addr, err := DecodeAddress(address, params)
	if err != nil {
		return errors.NewErrValidationFailed("address", err)
	}
	if _, err := PayToAddrScript(addr); err != nil {
		return errors.NewErrValidationFailed("address", err)
	}
	return nil
}

func IsValidAddress(address string, params *chaincfg.Params) bool {
	return ValidateAddress(address, params) == nil
}

// DecodeWIF decodes a WIF private key and checks that it belongs to params.
// Returned errors never contain the key.
func DecodeWIF(key string, params *chaincfg.Params) (*btcutil.WIF, error) {
	wif, err := btcutil.DecodeWIF(key)
	if err != nil {
		return nil, err
	}
	if !wif.IsForNet(params) {
		wif.PrivKey.Zero()
		return nil, fmt.Errorf("key is not a %s key", params.Name)
	}
	return wif, nil
}

func ValidatePrivateKey(key string, params *chaincfg.Params) error {
	wif, err := DecodeWIF(key, params)
	if err != nil {
		return errors.NewErrValidationFailed("private key", err)
	}
	wif.PrivKey.Zero()
	return nil
}

func IsValidPrivateKey(key string, params *chaincfg.Params) bool {
	return ValidatePrivateKey(key, params) == nil
}

// AddressFromWIF returns the pay-to-pubkey-hash address controlled by wif.
func AddressFromWIF(wif *btcutil.WIF, params *chaincfg.Params) (btcutil.Address, error) {
	return btcutil.NewAddressPubKeyHash(btcutil.Hash160(wif.SerializePubKey()), params)
}
