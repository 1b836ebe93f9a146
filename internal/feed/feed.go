package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/oakline/banklink/internal/domain"
)

// Fetcher retrieves the raw transaction list for one account from the
// upstream source.
type Fetcher interface {
	FetchTransactions(ctx context.Context, accountID string) ([]domain.TransactionRecord, error)
}

type Filter string

const (
	FilterAll      Filter = "all"
	FilterSent     Filter = "sent"
	FilterReceived Filter = "received"
)

var ErrUnknownFilter = errors.New("unknown feed filter")

func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterAll, FilterSent, FilterReceived:
		return Filter(s), nil
	case "":
		return FilterAll, nil
	default:
		return "", ErrUnknownFilter
	}
}

// Feed holds the transaction list for a single account and turns it into
// grouped buckets for display. Each account gets its own Feed, so
// concurrent refreshes for different accounts never share state.
type Feed struct {
	accountID string
	fetcher   Fetcher
	log       zerolog.Logger

	mu       sync.Mutex
	owned    map[string]struct{}
	records  []domain.TransactionRecord
	filter   Filter
	loaded   bool
	fetchErr error
	closed   bool
}

func New(fetcher Fetcher, accountID string, owned map[string]struct{}, log zerolog.Logger) *Feed {
	return &Feed{
		accountID: accountID,
		fetcher:   fetcher,
		owned:     owned,
		filter:    FilterAll,
		log:       log.With().Str("account_id", accountID).Logger(),
	}
}

// Refresh refetches the account's transactions. A failed fetch clears the
// stored list and records a retryable error so the display never pairs
// stale rows with an error banner; the next successful refresh clears the
// error. Results arriving after Close are dropped.
func (f *Feed) Refresh(ctx context.Context) error {
	records, err := f.fetcher.FetchTransactions(ctx, f.accountID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	if err != nil {
		f.records = nil
		f.loaded = false
		f.fetchErr = err
		return err
	}
	f.records = records
	f.loaded = true
	f.fetchErr = nil
	return nil
}

// SetFilter changes the active filter and is reflected by the next Buckets
// call; it never refetches.
func (f *Feed) SetFilter(filter Filter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
}

func (f *Feed) Filter() Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

// Loaded reports whether the feed holds a successfully fetched list.
func (f *Feed) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// Err returns the error from the last failed refresh, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchErr
}

// Append adds an optimistic local record (e.g. right after a successful
// transfer submit). It is superseded by the next refresh.
func (f *Feed) Append(rec domain.TransactionRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.records = append(f.records, rec)
}

// UpdateOwned swaps the owned-account set after a catalog refresh.
func (f *Feed) UpdateOwned(owned map[string]struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owned = owned
}

// Close marks the feed as abandoned; late refresh results and appends are
// discarded instead of mutating state nobody is watching.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.records = nil
	f.loaded = false
}

// Buckets applies the active filter, classifies every record relative to
// the feed's account and groups the result for display. Records this
// account is not a party to come from a misbehaving upstream; they are
// skipped with a diagnostic rather than failing the feed.
func (f *Feed) Buckets() []Bucket {
	f.mu.Lock()
	records := make([]domain.TransactionRecord, len(f.records))
	copy(records, f.records)
	filter := f.filter
	owned := f.owned
	f.mu.Unlock()

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		switch filter {
		case FilterSent:
			if !SentFromOwned(rec, owned) {
				continue
			}
		case FilterReceived:
			if !ReceivedByOwned(rec, owned) {
				continue
			}
		}

		cls, err := Classify(rec, f.accountID)
		if err != nil {
			f.log.Warn().Err(err).Str("transaction_id", rec.ID).Msg("skipping unrelated transaction")
			continue
		}
		entries = append(entries, Entry{TransactionRecord: rec, Classification: cls})
	}

	return Group(entries)
}
