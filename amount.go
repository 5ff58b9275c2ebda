package btctransfer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/renproject/btctransfer/errors"
)

// decimalAmount accepts plain decimal numbers with an optional exponent. Hex
// floats, digit separators, trailing text and the words inf/nan are rejected.
var decimalAmount = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseAmount parses a BTC amount typed by the user.
func ParseAmount(amount string) (float64, error) {
	text := strings.TrimSpace(amount)
	if text == "" {
		return 0, errors.NewErrValidationFailed("amount", fmt.Errorf("empty amount"))
	}
	if !decimalAmount.MatchString(text) {
		return 0, errors.NewErrValidationFailed("amount", fmt.Errorf("%q is not a number", text))
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.NewErrValidationFailed("amount", err)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, errors.NewErrValidationFailed("amount", fmt.Errorf("%q is not finite", text))
	}
	if value <= 0 {
		return 0, errors.NewErrValidationFailed("amount", fmt.Errorf("%q is not greater than zero", text))
	}
	return value, nil
}

// ValidateAmount returns nil iff amount converts to between one satoshi and
// the total supply.
func ValidateAmount(amount string) error {
	_, err := AmountToSatoshis(amount)
	return err
}

func IsValidAmount(amount string) bool {
	return ValidateAmount(amount) == nil
}

// AmountToSatoshis converts a user typed BTC amount to satoshis, rounding to
// the nearest satoshi. The result is at least one satoshi and at most
// btcutil.MaxSatoshi.
func AmountToSatoshis(amount string) (btcutil.Amount, error) {
	value, err := ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	// Checked on the float so the int64 conversion in NewAmount cannot overflow.
	if value > float64(btcutil.MaxSatoshi)/btcutil.SatoshiPerBitcoin {
		return 0, errors.NewErrValidationFailed("amount", fmt.Errorf("%g BTC exceeds the total supply", value))
	}
	sats, err := btcutil.NewAmount(value)
	if err != nil {
		return 0, errors.NewErrValidationFailed("amount", err)
	}
	if sats < 1 {
		return 0, errors.NewErrValidationFailed("amount", fmt.Errorf("%g BTC is less than one satoshi", value))
	}
	return sats, nil
}
