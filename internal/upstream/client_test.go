package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, zerolog.Nop())
	return c
}

func TestLogin(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jane@example.com", body["email"])
		assert.Equal(t, "hunter2", body["password"])

		json.NewEncoder(w).Encode(map[string]string{
			"userId":   "user-1",
			"fullName": "Jane Doe",
		})
	})

	res, err := c.Login(context.Background(), "jane@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "user-1", res.UserID)
	assert.Equal(t, "Jane Doe", res.FullName)
}

func TestLogin_Unauthorized(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	_, err := c.Login(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, IsStatus(err, http.StatusForbidden))
}

func TestFetchAccounts(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/user/user-1", r.URL.Path)
		w.Write([]byte(`[
			{"id":"acc-1","accountType":"Checking","balance":500.25,"currency":"USD"},
			{"id":"acc-2","accountType":"Savings","balance":"25.50","currency":"USD"}
		]`))
	})

	catalog, err := c.FetchAccounts(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "Checking", catalog[0].AccountType)
	assert.True(t, catalog[0].Balance.Equal(decimal.RequireFromString("500.25")))
	assert.True(t, catalog[1].Balance.Equal(decimal.RequireFromString("25.50")))
}

func TestFetchTransactions_SkipsMalformed(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/acc-1/transactions", r.URL.Path)
		w.Write([]byte(`[
			{"id":"good","sourceAccountId":"acc-1","destinationAccountId":"acc-2","amount":"10.00","currency":"USD","date":"2023-06-15T12:00:00Z"},
			{"id":"self","sourceAccountId":"acc-1","destinationAccountId":"acc-1","amount":"10.00","currency":"USD","date":"2023-06-15T12:00:00Z"},
			{"id":"nodate","sourceAccountId":"acc-1","destinationAccountId":"acc-2","amount":"10.00","currency":"USD","date":"not-a-date"}
		]`))
	})

	records, err := c.FetchTransactions(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].ID)
}

func TestFetchTransactions_NonArrayResponse(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"oops"}`))
	})

	_, err := c.FetchTransactions(context.Background(), "acc-1")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusOK))
}

func TestFetchTransactions_ServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.FetchTransactions(context.Background(), "acc-1")
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
}

func TestSubmitTransfer(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transfers", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "acc-1", body["fromAccountId"])
		assert.Equal(t, "acc-2", body["toAccountId"])

		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})

	err := c.SubmitTransfer(context.Background(), "acc-1", "acc-2", decimal.RequireFromString("10.00"), "rent")
	assert.NoError(t, err)
}

func TestSubmitTransfer_Rejected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"success": false})
	})

	err := c.SubmitTransfer(context.Background(), "acc-1", "acc-2", decimal.NewFromInt(10), "")
	assert.True(t, IsStatus(err, http.StatusUnprocessableEntity))
}
