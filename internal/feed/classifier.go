package feed

import (
	"errors"
	"fmt"

	"github.com/oakline/banklink/internal/domain"
)

type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// ErrNotParty means the perspective account is on neither side of the
// transaction. Classification is undefined in that case; callers must not
// paper over it with a default.
var ErrNotParty = errors.New("perspective account is not a party to the transaction")

type Classification struct {
	Direction        Direction `json:"direction"`
	CounterAccountID string    `json:"counter_account_id"`
}

// Classify determines the direction of rec as seen from
// perspectiveAccountID, and the account on the opposite side.
func Classify(rec domain.TransactionRecord, perspectiveAccountID string) (Classification, error) {
	switch perspectiveAccountID {
	case rec.SourceAccountID:
		return Classification{Direction: DirectionSent, CounterAccountID: rec.DestinationAccountID}, nil
	case rec.DestinationAccountID:
		return Classification{Direction: DirectionReceived, CounterAccountID: rec.SourceAccountID}, nil
	default:
		return Classification{}, fmt.Errorf("%w: account %s, transaction %s", ErrNotParty, perspectiveAccountID, rec.ID)
	}
}

// SentFromOwned reports whether rec was sent from any of the owned
// accounts. This is the set variant of Classify used for feed filtering.
func SentFromOwned(rec domain.TransactionRecord, owned map[string]struct{}) bool {
	_, ok := owned[rec.SourceAccountID]
	return ok
}

// ReceivedByOwned reports whether rec was received into any of the owned
// accounts.
func ReceivedByOwned(rec domain.TransactionRecord, owned map[string]struct{}) bool {
	_, ok := owned[rec.DestinationAccountID]
	return ok
}
