package transfer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakline/banklink/internal/domain"
)

// MoveFunds is the upstream operation that actually moves the money.
type MoveFunds interface {
	SubmitTransfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal, note string) error
}

// ErrInFlight means a submission is already awaiting a result. The caller
// must let it resolve before re-submitting; there is no queue.
var ErrInFlight = errors.New("a transfer is already in flight")

// Outcome reports what happened to a submission. Exactly one of Record and
// Reason is meaningful.
type Outcome struct {
	Submitted bool
	Record    domain.TransactionRecord
	Reason    error
}

// Executor performs exactly one upstream call per Execute and never
// retries: the backend may have partially applied a failed transfer, so a
// failure must be re-initiated by the user from scratch.
type Executor struct {
	client MoveFunds
	busy   atomic.Bool

	// Overridable for tests.
	now   func() time.Time
	newID func() string
}

func NewExecutor(client MoveFunds) *Executor {
	return &Executor{
		client: client,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Execute submits a validated transfer. The amount must come from a
// successful Validate pass; currency is the source account's currency.
// On success the returned record is the optimistic local copy for the
// feed, superseded by the next refetch.
func (e *Executor) Execute(ctx context.Context, req domain.TransferRequest, amount decimal.Decimal, currency string) (Outcome, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return Outcome{}, ErrInFlight
	}
	defer e.busy.Store(false)

	if err := e.client.SubmitTransfer(ctx, req.FromAccountID, req.ToAccountID, amount, req.Note); err != nil {
		return Outcome{Reason: err}, nil
	}

	return Outcome{
		Submitted: true,
		Record: domain.TransactionRecord{
			ID:                   e.newID(),
			SourceAccountID:      req.FromAccountID,
			DestinationAccountID: req.ToAccountID,
			Amount:               amount,
			Currency:             currency,
			Date:                 e.now().UTC(),
			Status:               domain.StatusCompleted,
			Category:             domain.CategoryTransfer,
			Note:                 req.Note,
		},
	}, nil
}
