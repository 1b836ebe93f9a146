package upstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakline/banklink/internal/domain"
)

// Demo is an in-memory fake bank used in demo mode. Any email/password
// pair logs in; accounts and history are generated once per user and
// transfers move real (fake) balances, so the gateway can be exercised
// end to end without an upstream.
type Demo struct {
	mu           sync.Mutex
	faker        *gofakeit.Faker
	users        map[string]LoginResult              // email -> identity
	accounts     map[string]domain.Catalog           // userID -> catalog
	transactions map[string][]domain.WireTransaction // accountID -> history
}

func NewDemo(seed uint64) *Demo {
	return &Demo{
		faker:        gofakeit.New(int64(seed)),
		users:        make(map[string]LoginResult),
		accounts:     make(map[string]domain.Catalog),
		transactions: make(map[string][]domain.WireTransaction),
	}
}

func (d *Demo) Login(_ context.Context, email, _ string) (LoginResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if u, ok := d.users[email]; ok {
		return u, nil
	}
	u := LoginResult{
		UserID:   uuid.NewString(),
		FullName: d.faker.Name(),
	}
	d.users[email] = u
	d.seedAccounts(u.UserID)
	return u, nil
}

func (d *Demo) FetchAccounts(_ context.Context, userID string) (domain.Catalog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	catalog, ok := d.accounts[userID]
	if !ok {
		return nil, fmt.Errorf("unknown user %s", userID)
	}
	out := make(domain.Catalog, len(catalog))
	copy(out, catalog)
	return out, nil
}

func (d *Demo) FetchTransactions(_ context.Context, accountID string) ([]domain.TransactionRecord, error) {
	d.mu.Lock()
	wire := make([]domain.WireTransaction, len(d.transactions[accountID]))
	copy(wire, d.transactions[accountID])
	d.mu.Unlock()

	out := make([]domain.TransactionRecord, 0, len(wire))
	for _, w := range wire {
		rec, err := w.Normalize()
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (d *Demo) SubmitTransfer(_ context.Context, fromAccountID, toAccountID string, amount decimal.Decimal, note string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	from, fromCatalog, fi := d.findAccount(fromAccountID)
	to, toCatalog, ti := d.findAccount(toAccountID)
	if from == nil || to == nil {
		return fmt.Errorf("unknown account")
	}
	if amount.GreaterThan(from.Balance) {
		return fmt.Errorf("insufficient funds")
	}

	fromCatalog[fi].Balance = from.Balance.Sub(amount)
	toCatalog[ti].Balance = to.Balance.Add(amount)

	rec := domain.WireTransaction{
		ID:                   uuid.NewString(),
		SourceAccountID:      fromAccountID,
		DestinationAccountID: toAccountID,
		Amount:               amount,
		Currency:             from.Currency,
		Date:                 time.Now().UTC().Format(time.RFC3339),
		Status:               string(domain.StatusCompleted),
		Category:             string(domain.CategoryTransfer),
		Note:                 note,
	}
	d.transactions[fromAccountID] = append(d.transactions[fromAccountID], rec)
	d.transactions[toAccountID] = append(d.transactions[toAccountID], rec)
	return nil
}

func (d *Demo) findAccount(id string) (*domain.Account, domain.Catalog, int) {
	for _, catalog := range d.accounts {
		for i := range catalog {
			if catalog[i].ID == id {
				return &catalog[i], catalog, i
			}
		}
	}
	return nil, nil, 0
}

var demoAccountTypes = []string{"Checking", "Savings"}

var demoCategories = []domain.Category{
	domain.CategoryFood,
	domain.CategoryBills,
	domain.CategoryShopping,
	domain.CategoryEntertainment,
	domain.CategorySubscription,
	domain.CategoryTransfer,
}

// seedAccounts generates a catalog plus a history spread across the
// grouping buckets (today, yesterday, earlier this month, prior months).
func (d *Demo) seedAccounts(userID string) {
	catalog := make(domain.Catalog, 0, len(demoAccountTypes))
	for _, typ := range demoAccountTypes {
		catalog = append(catalog, domain.Account{
			ID:          uuid.NewString(),
			AccountType: typ,
			Balance:     decimal.NewFromFloat(d.faker.Price(500, 20000)).Round(2),
			Currency:    "USD",
		})
	}
	d.accounts[userID] = catalog

	now := time.Now().UTC()
	ages := []time.Duration{
		2 * time.Hour,            // today
		26 * time.Hour,           // yesterday
		8 * 24 * time.Hour,       // earlier this month, usually
		45 * 24 * time.Hour,      // prior month
		3 * 30 * 24 * time.Hour,  // a few months back
		14 * 30 * 24 * time.Hour, // over a year ago
	}
	for _, age := range ages {
		acct := catalog[d.faker.IntRange(0, len(catalog)-1)]
		counter := uuid.NewString()
		src, dst := acct.ID, counter
		if d.faker.Bool() {
			src, dst = counter, acct.ID
		}
		rec := domain.WireTransaction{
			ID:                   uuid.NewString(),
			SourceAccountID:      src,
			DestinationAccountID: dst,
			Amount:               decimal.NewFromFloat(d.faker.Price(5, 400)).Round(2),
			Currency:             "USD",
			Date:                 now.Add(-age).Format(time.RFC3339),
			Status:               string(domain.StatusCompleted),
			Category:             string(demoCategories[d.faker.IntRange(0, len(demoCategories)-1)]),
			Note:                 d.faker.ProductName(),
		}
		d.transactions[acct.ID] = append(d.transactions[acct.ID], rec)
	}
}
