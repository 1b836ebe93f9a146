package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrBadRecord marks an upstream transaction payload that failed
// normalization. Callers skip such records rather than failing the feed.
var ErrBadRecord = errors.New("malformed transaction record")

// WireTransaction mirrors one element of the upstream transactions JSON
// array. Fields are validated exactly once here, at the ingestion boundary,
// so the rest of the code can rely on TransactionRecord invariants.
type WireTransaction struct {
	ID                   string          `json:"id"`
	SourceAccountID      string          `json:"sourceAccountId"`
	DestinationAccountID string          `json:"destinationAccountId"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Date                 string          `json:"date"`
	Status               string          `json:"status"`
	Category             string          `json:"category"`
	Note                 string          `json:"note"`
}

// dateLayouts accepted from upstream, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing date", ErrBadRecord)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrBadRecord, s)
}

// Normalize converts the wire payload into a TransactionRecord, rejecting
// records that violate the core invariants.
func (w WireTransaction) Normalize() (TransactionRecord, error) {
	src := strings.TrimSpace(w.SourceAccountID)
	dst := strings.TrimSpace(w.DestinationAccountID)
	if src == "" || dst == "" {
		return TransactionRecord{}, fmt.Errorf("%w: missing account reference", ErrBadRecord)
	}
	if src == dst {
		return TransactionRecord{}, fmt.Errorf("%w: source equals destination", ErrBadRecord)
	}
	if !w.Amount.IsPositive() {
		return TransactionRecord{}, fmt.Errorf("%w: non-positive amount %s", ErrBadRecord, w.Amount)
	}

	date, err := parseDate(w.Date)
	if err != nil {
		return TransactionRecord{}, err
	}

	status := StatusCompleted
	if strings.EqualFold(strings.TrimSpace(w.Status), string(StatusPending)) {
		status = StatusPending
	}

	category := Category(strings.TrimSpace(w.Category))
	if category == "" {
		category = CategoryTransfer
	}

	return TransactionRecord{
		ID:                   strings.TrimSpace(w.ID),
		SourceAccountID:      src,
		DestinationAccountID: dst,
		Amount:               w.Amount,
		Currency:             strings.TrimSpace(w.Currency),
		Date:                 date,
		Status:               status,
		Category:             category,
		Note:                 w.Note,
	}, nil
}
