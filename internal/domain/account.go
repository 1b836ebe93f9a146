package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Account is one account owned by the current user, as reported by the
// upstream bank API. The catalog is replaced wholesale on login or refresh;
// balances are never adjusted locally, a transfer is reflected by the next
// refetch.
type Account struct {
	ID          string          `json:"id"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
}

// Label returns a short human-readable name for confirmation summaries,
// e.g. "Checking (…3456)".
func (a Account) Label() string {
	suffix := a.ID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return fmt.Sprintf("%s (…%s)", a.AccountType, suffix)
}

// Catalog is the set of accounts owned by the current user.
type Catalog []Account

func (c Catalog) Lookup(id string) (Account, bool) {
	for _, a := range c {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

func (c Catalog) Owns(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// OwnedSet returns the account ids as a set, for membership checks against
// transaction endpoints.
func (c Catalog) OwnedSet() map[string]struct{} {
	out := make(map[string]struct{}, len(c))
	for _, a := range c {
		out[a.ID] = struct{}{}
	}
	return out
}
