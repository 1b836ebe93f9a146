package transfer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/banklink/internal/domain"
)

func testCatalog() domain.Catalog {
	return domain.Catalog{
		{ID: "acc-1", AccountType: "Checking", Balance: decimal.RequireFromString("500.00"), Currency: "USD"},
		{ID: "acc-2", AccountType: "Savings", Balance: decimal.RequireFromString("25.50"), Currency: "USD"},
	}
}

func request(from, to, amount string) domain.TransferRequest {
	return domain.TransferRequest{FromAccountID: from, ToAccountID: to, Amount: amount}
}

func TestValidate_OK(t *testing.T) {
	res := Validate(request("acc-1", "acc-2", "100.00"), testCatalog())

	require.True(t, res.OK())
	assert.True(t, res.Amount.Equal(decimal.RequireFromString("100.00")))
	assert.Empty(t, res.Message())
}

func TestValidate_ExactBalanceAllowed(t *testing.T) {
	res := Validate(request("acc-1", "acc-2", "500.00"), testCatalog())
	assert.True(t, res.OK())
}

func TestValidate_OneCentOver(t *testing.T) {
	res := Validate(request("acc-1", "acc-2", "500.01"), testCatalog())

	require.Equal(t, CodeInsufficientFunds, res.Code)
	assert.Equal(t, "acc-1", res.AccountID)
	assert.True(t, res.Available.Equal(decimal.RequireFromString("500.00")))
	assert.Contains(t, res.Message(), "Checking (…cc-1)")
	assert.Contains(t, res.Message(), "USD 500.00")
}

func TestValidate_UnknownAccounts(t *testing.T) {
	res := Validate(request("missing", "acc-2", "10"), testCatalog())
	require.Equal(t, CodeAccountNotFound, res.Code)
	assert.Equal(t, "missing", res.AccountID)

	res = Validate(request("acc-1", "missing", "10"), testCatalog())
	require.Equal(t, CodeAccountNotFound, res.Code)
	assert.Equal(t, "missing", res.AccountID)
}

func TestValidate_SameAccount(t *testing.T) {
	// Same-account wins even when the balance would cover the amount.
	res := Validate(request("acc-1", "acc-1", "10.00"), testCatalog())
	assert.Equal(t, CodeSameAccount, res.Code)

	// And even when the amount is invalid: checks run in order.
	res = Validate(request("acc-1", "acc-1", "garbage"), testCatalog())
	assert.Equal(t, CodeSameAccount, res.Code)
}

func TestValidate_InvalidAmounts(t *testing.T) {
	for _, amount := range []string{"", "abc", "-5", "0", "0.00", "12.345"} {
		res := Validate(request("acc-1", "acc-2", amount), testCatalog())
		assert.Equalf(t, CodeInvalidAmount, res.Code, "amount %q", amount)
	}
}

func TestValidate_NotFoundBeforeAmount(t *testing.T) {
	res := Validate(request("missing", "acc-2", "garbage"), testCatalog())
	assert.Equal(t, CodeAccountNotFound, res.Code)
}

func TestValidate_Pure(t *testing.T) {
	catalog := testCatalog()
	req := request("acc-1", "acc-2", "500.01")

	first := Validate(req, catalog)
	second := Validate(req, catalog)
	assert.Equal(t, first, second)
}
