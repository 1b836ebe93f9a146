package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/oakline/banklink/internal/domain"
)

// LoginResult is what the upstream bank returns on a successful login.
type LoginResult struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
}

// Service is the upstream bank API as the gateway consumes it. The backend
// is the sole arbiter of balances; the gateway never computes them.
type Service interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	FetchAccounts(ctx context.Context, userID string) (domain.Catalog, error)
	FetchTransactions(ctx context.Context, accountID string) ([]domain.TransactionRecord, error)
	SubmitTransfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal, note string) error
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d", e.Status)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// Client is the HTTP JSON implementation of Service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Log:     log.With().Str("component", "upstream").Logger(),
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.postJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) FetchAccounts(ctx context.Context, userID string) (domain.Catalog, error) {
	var wire []struct {
		ID          string          `json:"id"`
		AccountType string          `json:"accountType"`
		Balance     decimal.Decimal `json:"balance"`
		Currency    string          `json:"currency"`
	}
	if err := c.getJSON(ctx, "/accounts/user/"+url.PathEscape(userID), &wire); err != nil {
		return nil, err
	}

	catalog := make(domain.Catalog, 0, len(wire))
	for _, a := range wire {
		catalog = append(catalog, domain.Account{
			ID:          a.ID,
			AccountType: a.AccountType,
			Balance:     a.Balance,
			Currency:    a.Currency,
		})
	}
	return catalog, nil
}

// FetchTransactions retrieves and normalizes the account's transaction
// list. Individual malformed records are skipped with a diagnostic; a
// response that is not a JSON array is a transport-class error.
func (c *Client) FetchTransactions(ctx context.Context, accountID string) ([]domain.TransactionRecord, error) {
	var wire []domain.WireTransaction
	if err := c.getJSON(ctx, "/accounts/"+url.PathEscape(accountID)+"/transactions", &wire); err != nil {
		return nil, err
	}

	out := make([]domain.TransactionRecord, 0, len(wire))
	for _, w := range wire {
		rec, err := w.Normalize()
		if err != nil {
			c.Log.Warn().Err(err).Str("transaction_id", w.ID).Msg("skipping malformed transaction")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) SubmitTransfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal, note string) error {
	var out struct {
		Success bool `json:"success"`
	}
	err := c.postJSON(ctx, "/transfers", map[string]any{
		"fromAccountId": fromAccountID,
		"toAccountId":   toAccountID,
		"amount":        amount,
		"note":          note,
	}, &out)
	if err != nil {
		return err
	}
	if !out.Success {
		return &StatusError{Status: http.StatusUnprocessableEntity, Body: "transfer not accepted"}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 300 {
		return &StatusError{Status: res.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &StatusError{Status: res.StatusCode, Body: "malformed response: " + err.Error()}
	}
	return nil
}
