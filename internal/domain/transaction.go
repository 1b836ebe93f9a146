package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Category labels a transaction for display. The upstream API tolerates free
// text here; the well-known values get icons on the client.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryBills         Category = "bills"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategorySubscription  Category = "subscription"
	CategoryIncome        Category = "income"
	CategoryTransfer      Category = "transfer"
	CategoryOther         Category = "other"
)

// TransactionRecord is a normalized movement between two accounts. Either
// side may reference an account the current user does not own (a
// counter-party). Invariants, enforced at the ingestion boundary:
// amount > 0 and source != destination.
type TransactionRecord struct {
	ID                   string          `json:"id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Date                 time.Time       `json:"date"`
	Status               Status          `json:"status"`
	Category             Category        `json:"category"`
	Note                 string          `json:"note,omitempty"`
}

// TransferRequest is the ephemeral user input for a funds move. Amount stays
// a raw string until the validator parses it.
type TransferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Note          string `json:"note,omitempty"`
}
