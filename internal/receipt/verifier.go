// Package receipt verifies purchased power-up receipts against the payments
// service. Signatures are issued and checked there; this side only asks.
package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bitpixi2/lemonomics/internal/sim"
)

// HTTPVerifier asks the payments service whether a receipt is genuine.
type HTTPVerifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPVerifier(baseURL, apiKey string) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPVerifier) Verify(ctx context.Context, receiptID string) (sim.ReceiptVerification, error) {
	body, err := json.Marshal(map[string]string{"receipt_id": receiptID})
	if err != nil {
		return sim.ReceiptVerification{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/receipts/verify", bytes.NewReader(body))
	if err != nil {
		return sim.ReceiptVerification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sim.ReceiptVerification{}, fmt.Errorf("payments request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return sim.ReceiptVerification{}, fmt.Errorf("payments status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out sim.ReceiptVerification
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return sim.ReceiptVerification{}, fmt.Errorf("decode verification: %w", err)
	}
	return out, nil
}

// Static is a map-backed verifier for tests and local development.
type Static struct {
	mu       sync.Mutex
	receipts map[string]sim.PaymentReceipt
}

func NewStatic() *Static {
	return &Static{receipts: make(map[string]sim.PaymentReceipt)}
}

// Add registers a receipt as valid.
func (s *Static) Add(r sim.PaymentReceipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[r.ReceiptID] = r
}

func (s *Static) Verify(_ context.Context, receiptID string) (sim.ReceiptVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.receipts[receiptID]; ok {
		return sim.ReceiptVerification{Valid: true, Receipt: r}, nil
	}
	return sim.ReceiptVerification{Valid: false, Reason: "unknown receipt"}, nil
}
