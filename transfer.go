package btctransfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/renproject/btctransfer/clients"
	"github.com/renproject/btctransfer/errors"
	"github.com/sirupsen/logrus"
)

// Stage is a step of a transfer, reported to the Observer as it happens.
type Stage uint8

// Stage values.
const (
	StageValidating = Stage(iota)
	StageFunding
	StageSigning
	StageBroadcasting
	StageWaiting
	StageConfirmed
	StageFailed
)

func (stage Stage) String() string {
	switch stage {
	case StageValidating:
		return "validating"
	case StageFunding:
		return "funding"
	case StageSigning:
		return "signing"
	case StageBroadcasting:
		return "broadcasting"
	case StageWaiting:
		return "waiting"
	case StageConfirmed:
		return "confirmed"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(stage))
	}
}

// Event is a user facing notification. State is set for StageWaiting and
// StageConfirmed, Err for StageFailed.
type Event struct {
	Stage   Stage
	Message string
	State   ConfirmationState
	Err     error
}

type Observer func(Event)

// TransferRequest is the user input of a transfer. PrivateKey is a WIF key; it
// is cleared by Transfer on every return path.
type TransferRequest struct {
	To         string
	From       string
	Amount     string
	PrivateKey []byte
}

type Outcome struct {
	// TxHash is the hash of the signed transaction.
	TxHash string
	// Handle is what the relay returned for confirmation tracking.
	Handle   string
	SignedTx string
	State    ConfirmationState
}

// The Transferer validates, funds, signs, broadcasts and tracks a transfer.
type Transferer interface {
	Transfer(ctx context.Context, req *TransferRequest, observer Observer) (Outcome, error)
}

type transferer struct {
	client  Client
	builder TxBuilder
	tracker ConfirmationTracker
	logger  logrus.FieldLogger
}

// NewTransferer returns a Transferer using client for every backend call. A nil
// tracker polls client with DefaultTrackerOptions.
func NewTransferer(client Client, tracker ConfirmationTracker, logger logrus.FieldLogger) Transferer {
	logger = defaultLogger(logger)
	if tracker == nil {
		tracker = NewConfirmationTracker(client, DefaultTrackerOptions(), logger)
	}
	return &transferer{
		client:  client,
		builder: NewTxBuilder(client.NetworkParams(), logger),
		tracker: tracker,
		logger:  logger,
	}
}

func (transferer *transferer) Transfer(ctx context.Context, req *TransferRequest, observer Observer) (outcome Outcome, err error) {
	defer clear(req.PrivateKey)

	notify := func(event Event) {
		if observer != nil {
			observer(event)
		}
	}
	defer func() {
		if err != nil {
			transferer.logger.WithError(err).Warn("transfer failed")
			notify(Event{Stage: StageFailed, Message: err.Error(), State: outcome.State, Err: err})
		}
	}()

	params := transferer.client.NetworkParams()
	logger := transferer.logger.WithFields(logrus.Fields{
		"from": req.From,
		"to":   req.To,
	})

	notify(Event{Stage: StageValidating, Message: "validating input"})
	for _, addr := range []string{req.To, req.From} {
		if err := ValidateAddress(addr, params); err != nil {
			logger.WithError(err).Debug("address rejected")
			return outcome, err
		}
	}
	if err := ValidatePrivateKey(string(req.PrivateKey), params); err != nil {
		logger.WithError(err).Debug("private key rejected")
		return outcome, err
	}
	requested, err := AmountToSatoshis(req.Amount)
	if err != nil {
		logger.WithError(err).Debug("amount rejected")
		return outcome, err
	}

	notify(Event{Stage: StageFunding, Message: "requesting signing inputs"})
	logger.Infof("requesting inputs for %s", requested)
	ins, err := transferer.client.Instructions(ctx, clients.SendRequest{
		To:     req.To,
		From:   req.From,
		Amount: strings.TrimSpace(req.Amount),
	})
	if err != nil {
		if !errors.Is(err, errors.ErrFundingFailed) {
			err = fmt.Errorf("%w: %w", errors.ErrFundingFailed, err)
		}
		return outcome, err
	}

	notify(Event{Stage: StageSigning, Message: "signing the transaction"})
	logger.Info("signing the tx")
	final, err := transferer.sign(ins, req, int64(requested))
	clear(req.PrivateKey)
	if err != nil {
		return outcome, err
	}
	outcome.TxHash = final.Hash.String()
	outcome.SignedTx = final.Hex()
	logger.WithField("tx", outcome.TxHash).Info("successfully signed the tx")

	notify(Event{Stage: StageBroadcasting, Message: "broadcasting the transaction"})
	handle, err := transferer.client.Broadcast(ctx, outcome.SignedTx)
	if err != nil {
		if !errors.Is(err, errors.ErrBroadcastFailed) {
			err = fmt.Errorf("%w: %w", errors.ErrBroadcastFailed, err)
		}
		return outcome, err
	}
	if handle == "" {
		handle = outcome.TxHash
	}
	if handle != outcome.TxHash {
		logger.WithFields(logrus.Fields{
			"tx":     outcome.TxHash,
			"handle": handle,
		}).Warn("relay returned a handle that differs from the transaction hash")
	}
	outcome.Handle = handle
	logger.WithField("handle", handle).Info("successfully broadcast the tx")

	outcome.State, err = transferer.tracker.Track(ctx, handle, func(state ConfirmationState) {
		notify(Event{Stage: StageWaiting, Message: "waiting for the first confirmation", State: state})
	})
	if err != nil {
		return outcome, err
	}
	notify(Event{
		Stage:   StageConfirmed,
		Message: transferer.client.FormatTransactionView("transaction confirmed", outcome.TxHash),
		State:   outcome.State,
	})
	return outcome, nil
}

func (transferer *transferer) sign(ins clients.Instructions, req *TransferRequest, requested int64) (FinalizedTx, error) {
	intent, err := NewIntent(ins)
	if err != nil {
		return FinalizedTx{}, errors.NewErrSigningFailed(err)
	}
	if intent.To != req.To {
		return FinalizedTx{}, errors.NewErrSigningFailed(
			fmt.Errorf("%w: requested %s, got %s", errors.ErrDestinationMismatch, req.To, intent.To))
	}
	// The backend converts with truncation, the client rounds.
	if diff := requested - intent.Amount; diff > 1 || diff < -1 {
		return FinalizedTx{}, errors.NewErrSigningFailed(
			fmt.Errorf("%w: requested %d, got %d", errors.ErrAmountMismatch, requested, intent.Amount))
	}
	return SignIntent(transferer.builder, intent, req.PrivateKey)
}
