package receipt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitpixi2/lemonomics/internal/sim"
)

func TestHTTPVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/receipts/verify" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in struct {
			ReceiptID string `json:"receipt_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if in.ReceiptID != "r-1" {
			json.NewEncoder(w).Encode(sim.ReceiptVerification{Valid: false, Reason: "unknown receipt"})
			return
		}
		json.NewEncoder(w).Encode(sim.ReceiptVerification{
			Valid: true,
			Receipt: sim.PaymentReceipt{
				ReceiptID: "r-1",
				SKU:       "super_sugar",
				Amount:    0.99,
				Currency:  "USD",
				IssuedAt:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			},
		})
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL, "test-key")
	got, err := v.Verify(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !got.Valid || got.Receipt.SKU != "super_sugar" {
		t.Fatalf("unexpected verification: %+v", got)
	}

	miss, err := v.Verify(context.Background(), "r-2")
	if err != nil {
		t.Fatalf("verify miss: %v", err)
	}
	if miss.Valid || miss.Reason != "unknown receipt" {
		t.Fatalf("unexpected miss verification: %+v", miss)
	}
}

func TestHTTPVerifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "payments exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTPVerifier(srv.URL, "k").Verify(context.Background(), "r-1"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestStaticVerifier(t *testing.T) {
	s := NewStatic()
	s.Add(sim.PaymentReceipt{ReceiptID: "r-9", SKU: "mega_lemons"})

	got, err := s.Verify(context.Background(), "r-9")
	if err != nil || !got.Valid || got.Receipt.SKU != "mega_lemons" {
		t.Fatalf("static hit failed: %+v %v", got, err)
	}
	miss, err := s.Verify(context.Background(), "nope")
	if err != nil || miss.Valid {
		t.Fatalf("static miss failed: %+v %v", miss, err)
	}
}
