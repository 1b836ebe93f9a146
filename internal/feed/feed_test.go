package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/banklink/internal/domain"
)

type stubFetcher struct {
	records map[string][]domain.TransactionRecord
	err     error
	calls   int
}

func (s *stubFetcher) FetchTransactions(_ context.Context, accountID string) ([]domain.TransactionRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records[accountID], nil
}

func record(id, src, dst string, date time.Time) domain.TransactionRecord {
	return domain.TransactionRecord{
		ID:                   id,
		SourceAccountID:      src,
		DestinationAccountID: dst,
		Amount:               decimal.NewFromInt(10),
		Currency:             "USD",
		Date:                 date,
		Status:               domain.StatusCompleted,
		Category:             domain.CategoryTransfer,
	}
}

func ownedAB() map[string]struct{} {
	return map[string]struct{}{"A": {}, "B": {}}
}

func TestFeed_EmptyFetch(t *testing.T) {
	fetcher := &stubFetcher{records: map[string][]domain.TransactionRecord{}}
	f := New(fetcher, "A", ownedAB(), zerolog.Nop())

	require.NoError(t, f.Refresh(context.Background()))
	assert.True(t, f.Loaded())
	assert.NoError(t, f.Err())
	assert.Empty(t, f.Buckets())
}

func TestFeed_FailureClearsAndFlags(t *testing.T) {
	now := time.Now()
	fetcher := &stubFetcher{records: map[string][]domain.TransactionRecord{
		"A": {record("t1", "A", "X", now)},
	}}
	f := New(fetcher, "A", ownedAB(), zerolog.Nop())

	require.NoError(t, f.Refresh(context.Background()))
	require.NotEmpty(t, f.Buckets())

	fetcher.err = errors.New("upstream down")
	err := f.Refresh(context.Background())
	require.Error(t, err)

	// Stale rows must not survive alongside the error state.
	assert.Empty(t, f.Buckets())
	assert.False(t, f.Loaded())
	assert.Error(t, f.Err())

	// A later successful refresh clears the error.
	fetcher.err = nil
	require.NoError(t, f.Refresh(context.Background()))
	assert.NoError(t, f.Err())
	assert.NotEmpty(t, f.Buckets())
}

func TestFeed_FilterAppliedBeforeGrouping(t *testing.T) {
	now := time.Now()
	fetcher := &stubFetcher{records: map[string][]domain.TransactionRecord{
		"A": {
			record("sent", "A", "X", now),
			record("recv", "X", "A", now),
		},
	}}
	f := New(fetcher, "A", ownedAB(), zerolog.Nop())
	require.NoError(t, f.Refresh(context.Background()))

	buckets := f.Buckets()
	require.Len(t, buckets, 1)
	assert.Len(t, buckets[0].Items, 2)

	f.SetFilter(FilterSent)
	buckets = f.Buckets()
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Items, 1)
	assert.Equal(t, "sent", buckets[0].Items[0].ID)
	assert.Equal(t, DirectionSent, buckets[0].Items[0].Direction)
	assert.Equal(t, "X", buckets[0].Items[0].CounterAccountID)

	f.SetFilter(FilterReceived)
	buckets = f.Buckets()
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Items, 1)
	assert.Equal(t, "recv", buckets[0].Items[0].ID)
	assert.Equal(t, DirectionReceived, buckets[0].Items[0].Direction)

	// Filtering never refetches.
	assert.Equal(t, 1, fetcher.calls)
}

func TestFeed_SkipsUnrelatedRecords(t *testing.T) {
	now := time.Now()
	fetcher := &stubFetcher{records: map[string][]domain.TransactionRecord{
		"A": {
			record("mine", "A", "X", now),
			record("foreign", "X", "Y", now),
		},
	}}
	f := New(fetcher, "A", ownedAB(), zerolog.Nop())
	require.NoError(t, f.Refresh(context.Background()))

	buckets := f.Buckets()
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Items, 1)
	assert.Equal(t, "mine", buckets[0].Items[0].ID)
}

func TestFeed_IndependentAccounts(t *testing.T) {
	now := time.Now()
	fetcher := &stubFetcher{records: map[string][]domain.TransactionRecord{
		"A": {record("ta", "A", "X", now)},
		"B": {record("tb", "X", "B", now)},
	}}

	fa := New(fetcher, "A", ownedAB(), zerolog.Nop())
	fb := New(fetcher, "B", ownedAB(), zerolog.Nop())
	require.NoError(t, fa.Refresh(context.Background()))
	require.NoError(t, fb.Refresh(context.Background()))

	assert.Equal(t, "ta", fa.Buckets()[0].Items[0].ID)
	assert.Equal(t, "tb", fb.Buckets()[0].Items[0].ID)
}

func TestFeed_OptimisticAppend(t *testing.T) {
	fetcher := &stubFetcher{records: map[string][]domain.TransactionRecord{}}
	f := New(fetcher, "A", ownedAB(), zerolog.Nop())
	require.NoError(t, f.Refresh(context.Background()))

	f.Append(record("local", "A", "B", time.Now()))

	buckets := f.Buckets()
	require.Len(t, buckets, 1)
	assert.Equal(t, "local", buckets[0].Items[0].ID)
}

func TestFeed_ClosedDropsLateResults(t *testing.T) {
	now := time.Now()
	fetcher := &stubFetcher{records: map[string][]domain.TransactionRecord{
		"A": {record("t1", "A", "X", now)},
	}}
	f := New(fetcher, "A", ownedAB(), zerolog.Nop())
	f.Close()

	require.NoError(t, f.Refresh(context.Background()))
	assert.False(t, f.Loaded())
	assert.Empty(t, f.Buckets())

	f.Append(record("late", "A", "B", now))
	assert.Empty(t, f.Buckets())
}

func TestParseFilter(t *testing.T) {
	for input, want := range map[string]Filter{
		"":         FilterAll,
		"all":      FilterAll,
		"sent":     FilterSent,
		"received": FilterReceived,
	} {
		got, err := ParseFilter(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFilter("outgoing")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}
