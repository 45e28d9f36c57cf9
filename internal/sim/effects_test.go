package sim

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubVerifier struct {
	receipts map[string]ReceiptVerification
	err      error
}

func (s *stubVerifier) Verify(_ context.Context, receiptID string) (ReceiptVerification, error) {
	if s.err != nil {
		return ReceiptVerification{}, s.err
	}
	if v, ok := s.receipts[receiptID]; ok {
		return v, nil
	}
	return ReceiptVerification{Valid: false, Reason: "unknown receipt"}, nil
}

func verifiedReceipt(id, sku string) ReceiptVerification {
	return ReceiptVerification{
		Valid: true,
		Receipt: PaymentReceipt{
			ReceiptID: id,
			UserID:    "user-1",
			SKU:       sku,
			Amount:    0.99,
			Currency:  "USD",
			IssuedAt:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestPerfectDayBonus(t *testing.T) {
	h := NewBonusHandler(DefaultConfig())
	result := h.Apply(GameResult{Profit: 100, CupsSold: 50, Weather: WeatherSunny}, BonusPerfectDay, 3.00)
	if result.Profit != 115.00 {
		t.Fatalf("perfect day profit %.2f, want 115.00", result.Profit)
	}
	if result.CupsSold != 50 {
		t.Fatalf("perfect day changed cups: %d", result.CupsSold)
	}
	if len(result.Effects) != 1 {
		t.Fatalf("expected one recorded effect, got %v", result.Effects)
	}
}

func TestPerfectDayBonusCappedAtRevenue(t *testing.T) {
	// A raw profit already near revenue leaves no headroom for the full
	// multiplier: the boost truncates at cupsSold*price.
	h := NewBonusHandler(DefaultConfig())
	result := h.Apply(GameResult{Profit: 98, CupsSold: 20, Weather: WeatherHot}, BonusPerfectDay, 5.00)
	if want := 100.00; result.Profit != want {
		t.Fatalf("capped perfect day profit %.2f, want %.2f", result.Profit, want)
	}
	if ceiling := float64(result.CupsSold) * 5.00; result.Profit > ceiling {
		t.Fatalf("profit %.2f exceeds revenue ceiling %.2f", result.Profit, ceiling)
	}
}

func TestFreeAdvertisingBonus(t *testing.T) {
	h := NewBonusHandler(DefaultConfig())
	result := h.Apply(GameResult{Profit: 40, CupsSold: 100, Weather: WeatherSunny}, BonusFreeAdvertising, 1.00)
	if result.CupsSold != 110 {
		t.Fatalf("free ad cups %d, want 110", result.CupsSold)
	}
	if result.Profit != 44.00 {
		t.Fatalf("free ad profit %.2f, want 44.00 (proportional margin)", result.Profit)
	}
}

func TestCoolerBonus(t *testing.T) {
	cfg := DefaultConfig()
	h := NewBonusHandler(cfg)

	cold := h.Apply(GameResult{Profit: 8, CupsSold: 20, Weather: WeatherCold}, BonusCooler, 1.00)
	if cold.CupsSold <= 20 {
		t.Fatalf("cooler did not restore cold-penalized cups: %d", cold.CupsSold)
	}
	want := 50 // 20 / 0.4
	if cold.CupsSold != want {
		t.Fatalf("cooler cups %d, want %d", cold.CupsSold, want)
	}

	sunny := h.Apply(GameResult{Profit: 8, CupsSold: 20, Weather: WeatherSunny}, BonusCooler, 1.00)
	if sunny.CupsSold != 20 || sunny.Profit != 8 || len(sunny.Effects) != 0 {
		t.Fatalf("cooler touched a sunny result: %+v", sunny)
	}
}

func TestBonusNoneUnchanged(t *testing.T) {
	h := NewBonusHandler(DefaultConfig())
	in := GameResult{Profit: 12.34, CupsSold: 7, Weather: WeatherCloudy}
	if out := h.Apply(in, BonusNone, 2.00); out.Profit != in.Profit || out.CupsSold != in.CupsSold {
		t.Fatalf("NONE bonus changed the result: %+v", out)
	}
}

func TestPowerupApply(t *testing.T) {
	cfg := DefaultConfig()
	verifier := &stubVerifier{receipts: map[string]ReceiptVerification{
		"r-1": verifiedReceipt("r-1", "super_sugar"),
	}}
	a, err := NewPowerupApplier(cfg, verifier)
	if err != nil {
		t.Fatalf("new applier: %v", err)
	}

	result, err := a.Apply(context.Background(), GameResult{Profit: 50, CupsSold: 100, Weather: WeatherSunny}, []string{"r-1"}, 0)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.CupsSold != 125 {
		t.Fatalf("super sugar cups %d, want 125", result.CupsSold)
	}
	if result.Profit != 62.50 {
		t.Fatalf("super sugar profit %.2f, want 62.50", result.Profit)
	}
	if len(result.PowerupsApplied) != 1 || result.PowerupsApplied[0] != "super_sugar" {
		t.Fatalf("powerups applied %v", result.PowerupsApplied)
	}
}

func TestPowerupInvalidReceiptSkipped(t *testing.T) {
	a, err := NewPowerupApplier(DefaultConfig(), &stubVerifier{})
	if err != nil {
		t.Fatalf("new applier: %v", err)
	}
	result, err := a.Apply(context.Background(), GameResult{Profit: 50, CupsSold: 100}, []string{"bogus"}, 0)
	if err != nil {
		t.Fatalf("invalid receipt must not fail the run: %v", err)
	}
	if result.CupsSold != 100 || len(result.PowerupsApplied) != 0 {
		t.Fatalf("invalid receipt changed the result: %+v", result)
	}
	if len(result.Effects) != 1 || !strings.Contains(result.Effects[0], "skipped") {
		t.Fatalf("skip not recorded: %v", result.Effects)
	}
}

func TestPowerupVerifierOutageSkipped(t *testing.T) {
	a, _ := NewPowerupApplier(DefaultConfig(), &stubVerifier{err: errors.New("payments down")})
	result, err := a.Apply(context.Background(), GameResult{Profit: 50, CupsSold: 100}, []string{"r-1"}, 0)
	if err != nil {
		t.Fatalf("verifier outage must not fail the run: %v", err)
	}
	if len(result.Effects) != 1 || !strings.Contains(result.Effects[0], "verification unavailable") {
		t.Fatalf("outage not recorded: %v", result.Effects)
	}
}

func TestPowerupDailyLimit(t *testing.T) {
	cfg := DefaultConfig()
	verifier := &stubVerifier{receipts: map[string]ReceiptVerification{
		"r-1": verifiedReceipt("r-1", "super_sugar"),
	}}
	a, _ := NewPowerupApplier(cfg, verifier)

	limit := cfg.Powerups["super_sugar"].DailyLimit
	result, err := a.Apply(context.Background(), GameResult{Profit: 50, CupsSold: 100}, []string{"r-1"}, limit)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(result.PowerupsApplied) != 0 {
		t.Fatalf("limit-exceeded powerup was applied")
	}
	if len(result.Effects) != 1 || !strings.Contains(result.Effects[0], "daily limit") {
		t.Fatalf("limit skip not recorded: %v", result.Effects)
	}
}

func TestPowerupUnknownSKUIsError(t *testing.T) {
	verifier := &stubVerifier{receipts: map[string]ReceiptVerification{
		"r-x": verifiedReceipt("r-x", "jetpack"),
	}}
	a, _ := NewPowerupApplier(DefaultConfig(), verifier)
	if _, err := a.Apply(context.Background(), GameResult{Profit: 1, CupsSold: 1}, []string{"r-x"}, 0); !errors.Is(err, ErrUnknownPowerupSKU) {
		t.Fatalf("expected ErrUnknownPowerupSKU, got %v", err)
	}
}

func TestScaleCupsZeroCups(t *testing.T) {
	in := GameResult{Profit: -10, CupsSold: 0}
	if out := scaleCups(in, 1.25); out.Profit != in.Profit || out.CupsSold != in.CupsSold {
		t.Fatalf("scaling zero cups changed the result: %+v", out)
	}
}
