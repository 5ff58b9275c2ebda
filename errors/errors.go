package errors

import (
	"errors"
	"fmt"
)

// ErrValidationFailed indicates that an address, private key or amount supplied
// by the user is malformed. It is raised before any network call is made.
var ErrValidationFailed = errors.New("validation failed")

// ErrFundingFailed indicates that the backend could not supply the inputs
// required to build the transaction.
var ErrFundingFailed = errors.New("failed to fetch signing inputs")

// ErrSigningFailed indicates that the transaction could not be built, signed or
// finalized.
var ErrSigningFailed = errors.New("signing failed")

// ErrBroadcastFailed indicates that the relay rejected the transaction or could
// not be reached.
var ErrBroadcastFailed = errors.New("broadcast failed")

// ErrConfirmationFailed indicates that confirmation tracking stopped before the
// transaction was confirmed.
var ErrConfirmationFailed = errors.New("confirmation tracking failed")

var ErrTimedOut = errors.New("timed out")

var ErrRequestFailed = errors.New("request failed")

var ErrTxHashMismatch = errors.New("previous transaction does not hash to the given txid")

var ErrUnsupportedScript = errors.New("unsupported previous output script")

var ErrDestinationMismatch = errors.New("backend destination does not match the requested address")

var ErrAmountMismatch = errors.New("backend amount does not match the requested amount")

var ErrAddressRejected = errors.New("address rejected by the address book")

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func NewErrUnsupportedNetwork(network string) error {
	return fmt.Errorf("unsupported network %s", network)
}

func NewErrValidationFailed(field string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: invalid %s", ErrValidationFailed, field)
	}
	return fmt.Errorf("%w: invalid %s: %v", ErrValidationFailed, field, cause)
}

func NewErrFundingFailed(msg string) error {
	return fmt.Errorf("%w: %s", ErrFundingFailed, msg)
}

// NewErrSigningFailed wraps cause so that both ErrSigningFailed and cause match
// with errors.Is.
func NewErrSigningFailed(cause error) error {
	return fmt.Errorf("%w: %w", ErrSigningFailed, cause)
}

func NewErrBroadcastFailed(msg string) error {
	return fmt.Errorf("%w: %s", ErrBroadcastFailed, msg)
}

func NewErrConfirmationFailed(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfirmationFailed, msg)
}

func NewErrRequestFailed(status int, msg string) error {
	return fmt.Errorf("%w with (%d): %s", ErrRequestFailed, status, msg)
}
