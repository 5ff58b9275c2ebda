package btctransfer

import (
	"context"
	"fmt"
	"time"

	"github.com/renproject/btctransfer/errors"
	"github.com/sirupsen/logrus"
)

// ConfirmationStatus is the state of a tracked transaction.
type ConfirmationStatus uint8

// ConfirmationStatus values.
const (
	Pending = ConfirmationStatus(iota)
	Confirmed
	Failed
)

func (status ConfirmationStatus) String() string {
	switch status {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(status))
	}
}

type ConfirmationState struct {
	TxHash        string
	Confirmations int64
	Status        ConfirmationStatus
	Attempts      int
}

// ConfirmationQuerier returns the confirmation count of a transaction handle.
// clients.ClientCore satisfies it.
type ConfirmationQuerier interface {
	Confirmations(ctx context.Context, txHash string) (int64, error)
}

// TrackerOptions bound the polling. A zero Interval re-queries immediately, a
// zero MaxAttempts or Timeout means no limit of that kind.
type TrackerOptions struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

// DefaultTrackerOptions polls every 30 seconds for at most two hours.
func DefaultTrackerOptions() TrackerOptions {
	return TrackerOptions{
		Interval:    30 * time.Second,
		MaxAttempts: 240,
		Timeout:     0,
	}
}

// The ConfirmationTracker polls a transaction until it has at least one
// confirmation or tracking fails.
type ConfirmationTracker interface {
	// Track blocks until the transaction is confirmed, a query fails, the
	// attempts or timeout are exhausted, or ctx is done. onUpdate, when not
	// nil, is called with every pending state.
	Track(ctx context.Context, txHash string, onUpdate func(ConfirmationState)) (ConfirmationState, error)
}

type confirmationTracker struct {
	querier ConfirmationQuerier
	opts    TrackerOptions
	logger  logrus.FieldLogger
}

func NewConfirmationTracker(querier ConfirmationQuerier, opts TrackerOptions, logger logrus.FieldLogger) ConfirmationTracker {
	return &confirmationTracker{querier, opts, defaultLogger(logger)}
}

func (tracker *confirmationTracker) Track(ctx context.Context, txHash string, onUpdate func(ConfirmationState)) (ConfirmationState, error) {
	if tracker.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tracker.opts.Timeout)
		defer cancel()
	}

	logger := tracker.logger.WithField("tx", txHash)
	state := ConfirmationState{TxHash: txHash, Status: Pending}
	for {
		if err := ctx.Err(); err != nil {
			state.Status = Failed
			return state, fmt.Errorf("%w: %w", errors.ErrConfirmationFailed, err)
		}

		state.Attempts++
		confirmations, err := tracker.querier.Confirmations(ctx, txHash)
		if err != nil {
			logger.WithError(err).Warn("confirmation query failed")
			state.Status = Failed
			if ctx.Err() != nil {
				return state, fmt.Errorf("%w: %w", errors.ErrConfirmationFailed, ctx.Err())
			}
			if !errors.Is(err, errors.ErrConfirmationFailed) {
				err = fmt.Errorf("%w: %w", errors.ErrConfirmationFailed, err)
			}
			return state, err
		}
		state.Confirmations = confirmations
		if confirmations >= 1 {
			state.Status = Confirmed
			logger.WithField("confirmations", confirmations).Info("transaction confirmed")
			return state, nil
		}

		logger.WithField("attempt", state.Attempts).Debug("transaction still pending")
		if onUpdate != nil {
			onUpdate(state)
		}
		if tracker.opts.MaxAttempts > 0 && state.Attempts >= tracker.opts.MaxAttempts {
			state.Status = Failed
			return state, fmt.Errorf("%w: no confirmation after %d attempts: %w",
				errors.ErrConfirmationFailed, state.Attempts, errors.ErrTimedOut)
		}
		if err := wait(ctx, tracker.opts.Interval); err != nil {
			state.Status = Failed
			return state, fmt.Errorf("%w: %w", errors.ErrConfirmationFailed, err)
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
