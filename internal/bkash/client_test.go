package bkash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetexpert/meetexpert/internal/config"
)

func newTestServer(t *testing.T, grantCalls *int64, createStatus, executeStatus, trxStatus string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token/grant", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(grantCalls, 1)
		assert.Equal(t, "sandbox-user", r.Header.Get("username"))
		assert.Equal(t, "sandbox-pass", r.Header.Get("password"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id_token":   "test-token",
			"token_type": "Bearer",
			"expires_in": 3600,
		})
	})
	mux.HandleFunc("/create", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "app-key", r.Header.Get("X-APP-Key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "0011", req["mode"])
		assert.Equal(t, "500.00", req["amount"])
		assert.Equal(t, "BDT", req["currency"])
		assert.Equal(t, "sale", req["intent"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"paymentID":  "TR001",
			"bkashURL":   "https://bkash.example/pay/TR001",
			"statusCode": createStatus,
		})
	})
	mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"paymentID":         "TR001",
			"trxID":             "8X7ABC",
			"transactionStatus": trxStatus,
			"amount":            "500.00",
			"statusCode":        executeStatus,
		})
	})
	return httptest.NewServer(mux)
}

func newTestClient(srv *httptest.Server) *Client {
	return New(config.Bkash{
		GrantTokenURL:  srv.URL + "/token/grant",
		CreateURL:      srv.URL + "/create",
		ExecuteURL:     srv.URL + "/execute",
		Username:       "sandbox-user",
		Password:       "sandbox-pass",
		AppKey:         "app-key",
		AppSecret:      "app-secret",
		CallbackURL:    "http://localhost:5000/api/v1/wallet/bkash/callback",
		RequestTimeout: 5 * time.Second,
		RetryDelay:     10 * time.Millisecond,
	})
}

func TestClient_CreatePayment(t *testing.T) {
	var grantCalls int64
	srv := newTestServer(t, &grantCalls, "0000", "0000", "Completed")
	defer srv.Close()

	client := newTestClient(srv)
	created, err := client.CreatePayment(context.Background(), decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, "TR001", created.PaymentID)
	assert.Equal(t, "https://bkash.example/pay/TR001", created.BkashURL)
}

func TestClient_TokenIsCached(t *testing.T) {
	var grantCalls int64
	srv := newTestServer(t, &grantCalls, "0000", "0000", "Completed")
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.CreatePayment(context.Background(), decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = client.ExecutePayment(context.Background(), "TR001")
	require.NoError(t, err)

	// Токен живет час, второй grant не нужен.
	assert.Equal(t, int64(1), atomic.LoadInt64(&grantCalls))
}

func TestClient_CreatePayment_GatewayStatus(t *testing.T) {
	var grantCalls int64
	srv := newTestServer(t, &grantCalls, "2001", "0000", "Completed")
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.CreatePayment(context.Background(), decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrGateway)
}

func TestClient_ExecutePayment(t *testing.T) {
	var grantCalls int64
	srv := newTestServer(t, &grantCalls, "0000", "0000", "Completed")
	defer srv.Close()

	client := newTestClient(srv)
	executed, err := client.ExecutePayment(context.Background(), "TR001")
	require.NoError(t, err)
	assert.Equal(t, "TR001", executed.PaymentID)
	assert.Equal(t, "8X7ABC", executed.TrxID)
	assert.Equal(t, "500.00", executed.Amount)
}

func TestClient_ExecutePayment_NotCompleted(t *testing.T) {
	tests := []struct {
		name          string
		executeStatus string
		trxStatus     string
	}{
		{"statusCode не 0000", "2062", "Completed"},
		{"transactionStatus не Completed", "0000", "Initiated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var grantCalls int64
			srv := newTestServer(t, &grantCalls, "0000", tt.executeStatus, tt.trxStatus)
			defer srv.Close()

			client := newTestClient(srv)
			_, err := client.ExecutePayment(context.Background(), "TR001")
			assert.ErrorIs(t, err, ErrPaymentFailed)
		})
	}
}

func TestClient_GrantToken_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"msg": "invalid credentials"})
	}))
	defer srv.Close()

	client := New(config.Bkash{
		GrantTokenURL:  srv.URL,
		CreateURL:      srv.URL,
		ExecuteURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
		RetryDelay:     10 * time.Millisecond,
	})
	_, err := client.CreatePayment(context.Background(), decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrGateway)
}
