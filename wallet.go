package btctransfer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/sirupsen/logrus"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

type wallet struct {
	mnemonic string
	params   *chaincfg.Params
	logger   logrus.FieldLogger
}

// A Wallet derives signing keys from a BIP-39 mnemonic.
type Wallet interface {
	DeriveWIF(derivationPath []uint32, password string) (*btcutil.WIF, error)
}

func NewWallet(mnemonic string, params *chaincfg.Params, logger logrus.FieldLogger) (Wallet, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	return &wallet{mnemonic, params, defaultLogger(logger)}, nil
}

// DeriveWIF derives the compressed key at derivationPath. Hardened components
// must already include bip32.FirstHardenedChild.
func (wallet *wallet) DeriveWIF(derivationPath []uint32, password string) (*btcutil.WIF, error) {
	seed := bip39.NewSeed(wallet.mnemonic, password)
	defer clear(seed)
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, val := range derivationPath {
		key, err = key.NewChildKey(val)
		if err != nil {
			return nil, err
		}
	}
	privKey, _ := btcec.PrivKeyFromBytes(key.Key)
	clear(key.Key)
	wallet.logger.WithField("depth", len(derivationPath)).Debug("derived key")
	return btcutil.NewWIF(privKey, wallet.params, true)
}

// ParseDerivationPath parses paths such as "m/44'/1'/0'/0/0". Hardened
// components are marked with ' or h.
func ParseDerivationPath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("derivation path %q must start with m", path)
	}
	indices := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		part = strings.TrimRight(part, "'h")
		index, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("invalid derivation path component %q: %w", part, err)
		}
		if hardened {
			index += uint64(bip32.FirstHardenedChild)
		}
		indices = append(indices, uint32(index))
	}
	return indices, nil
}
