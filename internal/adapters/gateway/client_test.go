package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"staybook/internal/adapters/gateway"
	"staybook/internal/domain"
)

func TestClient_VerifyTransaction_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":       "tx-1",
				"amount":   "450.00",
				"currency": "EUR",
				"status":   "captured",
			})
		}
	}))
	defer ts.Close()

	cl, err := gateway.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.VerifyTransaction(ctx, "tx-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ID != "tx-1" || !got.Captured {
		t.Fatalf("unexpected transaction: %+v", got)
	}
	if want := decimal.RequireFromString("450.00"); !got.Amount.Equal(want) {
		t.Fatalf("amount = %s, want %s", got.Amount, want)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_VerifyTransaction_NotCaptured(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "tx-2", "amount": "10.00", "currency": "EUR", "status": "pending",
		})
	}))
	defer ts.Close()

	cl, _ := gateway.New(ts.URL, "test-key", 100)
	got, err := cl.VerifyTransaction(context.Background(), "tx-2")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Captured {
		t.Fatalf("pending transaction reported as captured")
	}
}

func TestClient_VerifyTransaction_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := gateway.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.VerifyTransaction(ctx, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want domain.ErrNotFound", err)
	}
}

func TestClient_Refund(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	cl, _ := gateway.New(ts.URL, "test-key", 100)
	if err := cl.Refund(context.Background(), "tx-1"); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if gotPath != "POST /transactions/tx-1/refund" {
		t.Fatalf("unexpected request: %s", gotPath)
	}
}

func TestClient_RequiresKey(t *testing.T) {
	if _, err := gateway.New("http://localhost", "", 5); err == nil {
		t.Fatalf("expected error for missing API key")
	}
}
