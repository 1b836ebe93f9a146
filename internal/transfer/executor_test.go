package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/banklink/internal/domain"
)

type stubMover struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{}
}

func (s *stubMover) SubmitTransfer(_ context.Context, _, _ string, _ decimal.Decimal, _ string) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.block != nil {
		<-s.block
	}
	return s.err
}

func (s *stubMover) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestExecute_Success(t *testing.T) {
	mover := &stubMover{}
	e := NewExecutor(mover)
	fixed := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }
	e.newID = func() string { return "txn-fixed" }

	amount := decimal.RequireFromString("100.00")
	req := domain.TransferRequest{FromAccountID: "acc-1", ToAccountID: "acc-2", Amount: "100.00", Note: "rent"}

	out, err := e.Execute(context.Background(), req, amount, "USD")
	require.NoError(t, err)
	require.True(t, out.Submitted)

	rec := out.Record
	assert.Equal(t, "txn-fixed", rec.ID)
	assert.Equal(t, "acc-1", rec.SourceAccountID)
	assert.Equal(t, "acc-2", rec.DestinationAccountID)
	assert.True(t, rec.Amount.Equal(amount))
	assert.Equal(t, "USD", rec.Currency)
	assert.Equal(t, fixed, rec.Date)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.Equal(t, domain.CategoryTransfer, rec.Category)
	assert.Equal(t, "rent", rec.Note)
	assert.Equal(t, 1, mover.callCount())
}

func TestExecute_FailureNoRetry(t *testing.T) {
	upstreamErr := errors.New("upstream rejected")
	mover := &stubMover{err: upstreamErr}
	e := NewExecutor(mover)

	req := domain.TransferRequest{FromAccountID: "acc-1", ToAccountID: "acc-2"}
	out, err := e.Execute(context.Background(), req, decimal.NewFromInt(10), "USD")

	require.NoError(t, err)
	assert.False(t, out.Submitted)
	assert.ErrorIs(t, out.Reason, upstreamErr)
	// Exactly one attempt; a failed transfer must be re-initiated by the user.
	assert.Equal(t, 1, mover.callCount())
}

func TestExecute_RejectsConcurrentSubmit(t *testing.T) {
	mover := &stubMover{block: make(chan struct{})}
	e := NewExecutor(mover)
	req := domain.TransferRequest{FromAccountID: "acc-1", ToAccountID: "acc-2"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := e.Execute(context.Background(), req, decimal.NewFromInt(10), "USD")
		assert.NoError(t, err)
	}()

	// Wait for the first call to be in flight.
	require.Eventually(t, func() bool { return mover.callCount() == 1 }, time.Second, time.Millisecond)

	_, err := e.Execute(context.Background(), req, decimal.NewFromInt(10), "USD")
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, 1, mover.callCount())

	close(mover.block)
	<-done

	// After the in-flight submission resolves a new one is accepted.
	mover.block = nil
	_, err = e.Execute(context.Background(), req, decimal.NewFromInt(10), "USD")
	assert.NoError(t, err)
	assert.Equal(t, 2, mover.callCount())
}
