package btctransfer_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/renproject/btctransfer"
	"github.com/renproject/btctransfer/errors"
)

var _ = Describe("Confirmation tracker", func() {
	const txHash = "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"

	var core *fakeCore

	BeforeEach(func() {
		core = &fakeCore{}
	})

	It("should return as soon as the transaction has a confirmation", func() {
		core.confirmations = confirmationsSequence(3)
		tracker := NewConfirmationTracker(core, TrackerOptions{}, nil)

		state, err := tracker.Track(context.Background(), txHash, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.Status).To(Equal(Confirmed))
		Expect(state.Confirmations).To(Equal(int64(3)))
		Expect(state.Attempts).To(Equal(1))
		Expect(state.TxHash).To(Equal(txHash))
	})

	It("should report every pending state and query until confirmed", func() {
		core.confirmations = confirmationsSequence(0, 0, 1)
		tracker := NewConfirmationTracker(core, TrackerOptions{Interval: time.Millisecond}, nil)

		updates := []ConfirmationState{}
		state, err := tracker.Track(context.Background(), txHash, func(state ConfirmationState) {
			updates = append(updates, state)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(state.Status).To(Equal(Confirmed))
		Expect(core.confirmationCalls).To(Equal(3))
		Expect(updates).To(HaveLen(2))
		for i, update := range updates {
			Expect(update.Status).To(Equal(Pending))
			Expect(update.Attempts).To(Equal(i + 1))
		}
	})

	It("should fail once the attempts are exhausted", func() {
		core.confirmations = confirmationsSequence(0)
		tracker := NewConfirmationTracker(core, TrackerOptions{MaxAttempts: 3}, nil)

		state, err := tracker.Track(context.Background(), txHash, nil)
		Expect(errors.Is(err, errors.ErrConfirmationFailed)).To(BeTrue())
		Expect(errors.Is(err, errors.ErrTimedOut)).To(BeTrue())
		Expect(state.Status).To(Equal(Failed))
		Expect(state.Attempts).To(Equal(3))
		Expect(core.confirmationCalls).To(Equal(3))
	})

	It("should fail when the timeout elapses", func() {
		core.confirmations = confirmationsSequence(0)
		tracker := NewConfirmationTracker(core, TrackerOptions{
			Interval: 5 * time.Millisecond,
			Timeout:  50 * time.Millisecond,
		}, nil)

		state, err := tracker.Track(context.Background(), txHash, nil)
		Expect(errors.Is(err, errors.ErrConfirmationFailed)).To(BeTrue())
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		Expect(state.Status).To(Equal(Failed))
	})

	It("should stop when the context is cancelled", func() {
		core.confirmations = confirmationsSequence(0)
		tracker := NewConfirmationTracker(core, TrackerOptions{Interval: time.Hour}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			_, err := tracker.Track(ctx, txHash, nil)
			done <- err
		}()
		Eventually(func() int {
			core.mu.Lock()
			defer core.mu.Unlock()
			return core.confirmationCalls
		}).Should(Equal(1))
		cancel()

		var err error
		Eventually(done).Should(Receive(&err))
		Expect(errors.Is(err, errors.ErrConfirmationFailed)).To(BeTrue())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("should not query with a context that is already done", func() {
		core.confirmations = confirmationsSequence(1)
		tracker := NewConfirmationTracker(core, TrackerOptions{}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := tracker.Track(ctx, txHash, nil)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(core.confirmationCalls).To(BeZero())
	})

	It("should fail on the first query error", func() {
		core.confirmations = func(string) (int64, error) {
			return 0, fmt.Errorf("API rate limit exceeded")
		}
		tracker := NewConfirmationTracker(core, TrackerOptions{}, nil)

		state, err := tracker.Track(context.Background(), txHash, nil)
		Expect(errors.Is(err, errors.ErrConfirmationFailed)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("API rate limit exceeded"))
		Expect(state.Status).To(Equal(Failed))
		Expect(core.confirmationCalls).To(Equal(1))
	})

	It("should name its statuses", func() {
		Expect(Pending.String()).To(Equal("pending"))
		Expect(Confirmed.String()).To(Equal("confirmed"))
		Expect(Failed.String()).To(Equal("failed"))
	})
})
