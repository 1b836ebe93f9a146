package transfer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oakline/banklink/internal/domain"
	"github.com/oakline/banklink/internal/money"
)

type Code string

const (
	CodeOK                Code = "ok"
	CodeAccountNotFound   Code = "account_not_found"
	CodeSameAccount       Code = "same_account"
	CodeInvalidAmount     Code = "invalid_amount"
	CodeInsufficientFunds Code = "insufficient_funds"
)

// Result is the outcome of validating a transfer request. On success Amount
// carries the parsed value; on failure the remaining fields carry enough
// context to build a specific user-facing message.
type Result struct {
	Code      Code            `json:"code"`
	Amount    decimal.Decimal `json:"amount,omitempty"`
	AccountID string          `json:"account_id,omitempty"`
	Account   domain.Account  `json:"-"`
	Available decimal.Decimal `json:"available,omitempty"`
}

func (r Result) OK() bool { return r.Code == CodeOK }

// Message renders the failure for the user. Insufficient funds names the
// account and its available balance; transport details never leak here.
func (r Result) Message() string {
	switch r.Code {
	case CodeOK:
		return ""
	case CodeAccountNotFound:
		return fmt.Sprintf("account %s not found", r.AccountID)
	case CodeSameAccount:
		return "source and destination accounts must be different"
	case CodeInvalidAmount:
		return "enter a valid positive amount"
	case CodeInsufficientFunds:
		return fmt.Sprintf("insufficient funds in %s: available %s",
			r.Account.Label(), money.Format(r.Available, r.Account.Currency))
	default:
		return string(r.Code)
	}
}

// Validate checks a proposed transfer against the account catalog. Checks
// run in a fixed order and short-circuit on the first failure. Pure: no
// side effects, same inputs always give the same result.
func Validate(req domain.TransferRequest, accounts domain.Catalog) Result {
	from, ok := accounts.Lookup(req.FromAccountID)
	if !ok {
		return Result{Code: CodeAccountNotFound, AccountID: req.FromAccountID}
	}
	if _, ok := accounts.Lookup(req.ToAccountID); !ok {
		return Result{Code: CodeAccountNotFound, AccountID: req.ToAccountID}
	}
	if req.FromAccountID == req.ToAccountID {
		return Result{Code: CodeSameAccount, AccountID: req.FromAccountID}
	}

	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		return Result{Code: CodeInvalidAmount}
	}

	if amount.GreaterThan(from.Balance) {
		return Result{
			Code:      CodeInsufficientFunds,
			AccountID: from.ID,
			Account:   from,
			Available: from.Balance,
		}
	}

	return Result{Code: CodeOK, Amount: amount}
}
