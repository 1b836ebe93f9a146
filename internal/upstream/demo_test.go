package upstream

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo_LoginIsIdempotentPerEmail(t *testing.T) {
	d := NewDemo(1)
	ctx := context.Background()

	first, err := d.Login(ctx, "jane@example.com", "anything")
	require.NoError(t, err)
	require.NotEmpty(t, first.UserID)
	require.NotEmpty(t, first.FullName)

	again, err := d.Login(ctx, "jane@example.com", "different-password")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := d.Login(ctx, "bob@example.com", "anything")
	require.NoError(t, err)
	assert.NotEqual(t, first.UserID, other.UserID)
}

func TestDemo_SeededAccountsAndHistory(t *testing.T) {
	d := NewDemo(1)
	ctx := context.Background()

	u, err := d.Login(ctx, "jane@example.com", "pw")
	require.NoError(t, err)

	catalog, err := d.FetchAccounts(ctx, u.UserID)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	for _, a := range catalog {
		assert.True(t, a.Balance.IsPositive())
		assert.Equal(t, "USD", a.Currency)
	}

	total := 0
	for _, a := range catalog {
		records, err := d.FetchTransactions(ctx, a.ID)
		require.NoError(t, err)
		total += len(records)
	}
	assert.Equal(t, 6, total)
}

func TestDemo_FetchAccountsUnknownUser(t *testing.T) {
	d := NewDemo(1)
	_, err := d.FetchAccounts(context.Background(), "nobody")
	assert.Error(t, err)
}

func TestDemo_TransferMovesBalances(t *testing.T) {
	d := NewDemo(1)
	ctx := context.Background()

	u, err := d.Login(ctx, "jane@example.com", "pw")
	require.NoError(t, err)
	catalog, err := d.FetchAccounts(ctx, u.UserID)
	require.NoError(t, err)

	from, to := catalog[0], catalog[1]
	amount := decimal.RequireFromString("100.00")

	require.NoError(t, d.SubmitTransfer(ctx, from.ID, to.ID, amount, "rent"))

	after, err := d.FetchAccounts(ctx, u.UserID)
	require.NoError(t, err)
	assert.True(t, after[0].Balance.Equal(from.Balance.Sub(amount)))
	assert.True(t, after[1].Balance.Equal(to.Balance.Add(amount)))

	// Both parties see the new record.
	fromTx, err := d.FetchTransactions(ctx, from.ID)
	require.NoError(t, err)
	toTx, err := d.FetchTransactions(ctx, to.ID)
	require.NoError(t, err)
	assert.Equal(t, "rent", fromTx[len(fromTx)-1].Note)
	assert.Equal(t, "rent", toTx[len(toTx)-1].Note)
}

func TestDemo_TransferInsufficientFunds(t *testing.T) {
	d := NewDemo(1)
	ctx := context.Background()

	u, err := d.Login(ctx, "jane@example.com", "pw")
	require.NoError(t, err)
	catalog, err := d.FetchAccounts(ctx, u.UserID)
	require.NoError(t, err)

	over := catalog[0].Balance.Add(decimal.NewFromInt(1))
	err = d.SubmitTransfer(ctx, catalog[0].ID, catalog[1].ID, over, "")
	assert.Error(t, err)
}
