package sim

import (
	"context"
	"fmt"
	"math"
)

// ReceiptVerification is the payments service's answer for one receipt.
type ReceiptVerification struct {
	Valid   bool           `json:"valid"`
	Receipt PaymentReceipt `json:"receipt,omitempty"`
	Reason  string         `json:"reason,omitempty"`
}

// ReceiptVerifier checks a purchased power-up receipt before its effect is
// applied. Implemented by the payments collaborator.
type ReceiptVerifier interface {
	Verify(ctx context.Context, receiptID string) (ReceiptVerification, error)
}

// PowerupApplier layers paid, receipt-verified boosts onto a computed base
// result. Failed verification skips the effect and records why; it never
// fails the run.
type PowerupApplier struct {
	cfg      GameConfig
	verifier ReceiptVerifier
}

func NewPowerupApplier(cfg GameConfig, verifier ReceiptVerifier) (*PowerupApplier, error) {
	if verifier == nil {
		return nil, fmt.Errorf("powerup applier requires a receipt verifier")
	}
	return &PowerupApplier{cfg: cfg, verifier: verifier}, nil
}

// Apply processes each receipt in submission order against the daily usage
// limit. A receipt that verifies but names a SKU outside the catalog is an
// input error, not a skip.
func (a *PowerupApplier) Apply(ctx context.Context, result GameResult, receipts []string, usedToday int) (GameResult, error) {
	for _, receiptID := range receipts {
		check, err := a.verifier.Verify(ctx, receiptID)
		if err != nil {
			result.Effects = append(result.Effects, fmt.Sprintf("powerup %s skipped: verification unavailable", receiptID))
			continue
		}
		if !check.Valid {
			reason := check.Reason
			if reason == "" {
				reason = "receipt rejected"
			}
			result.Effects = append(result.Effects, fmt.Sprintf("powerup %s skipped: %s", receiptID, reason))
			continue
		}
		spec, ok := a.cfg.Powerups[check.Receipt.SKU]
		if !ok {
			return result, fmt.Errorf("%w: %q", ErrUnknownPowerupSKU, check.Receipt.SKU)
		}
		if usedToday >= spec.DailyLimit {
			result.Effects = append(result.Effects, fmt.Sprintf("powerup %s skipped: daily limit of %d reached", spec.SKU, spec.DailyLimit))
			continue
		}
		usedToday++

		before := result.CupsSold
		result = scaleCups(result, 1+spec.DemandBonus)
		result.PowerupsApplied = append(result.PowerupsApplied, spec.SKU)
		result.Effects = append(result.Effects, fmt.Sprintf("%s: +%d cups (%.0f%% demand boost)", spec.Name, result.CupsSold-before, spec.DemandBonus*100))
	}
	return result, nil
}

// BonusHandler layers the day's claimed login bonus onto a result. Applied
// after power-ups; the two layers are not commutative when both touch cups.
type BonusHandler struct {
	cfg GameConfig
}

func NewBonusHandler(cfg GameConfig) *BonusHandler {
	return &BonusHandler{cfg: cfg}
}

// Apply adjusts the result for one login bonus and records what happened.
// price bounds the payout: profit never exceeds cupsSold*price, so a raw
// profit close to revenue gets a truncated boost. The cooler bonus is a
// silent no-op outside COLD weather.
func (h *BonusHandler) Apply(result GameResult, bonus LoginBonus, price float64) GameResult {
	switch bonus {
	case BonusPerfectDay:
		boosted := roundCents(result.Profit * h.cfg.PerfectDayMultiplier)
		if ceiling := float64(result.CupsSold) * price; boosted > ceiling {
			boosted = math.Floor(ceiling*100) / 100
		}
		result.Profit = boosted
		result.Effects = append(result.Effects, fmt.Sprintf("Perfect Day: profit x%.2f", h.cfg.PerfectDayMultiplier))
	case BonusFreeAdvertising:
		before := result.CupsSold
		result = scaleCups(result, h.cfg.FreeAdCupRatio)
		result.Effects = append(result.Effects, fmt.Sprintf("Free Advertising: +%d cups", result.CupsSold-before))
	case BonusCooler:
		if result.Weather != WeatherCold {
			return result
		}
		coldMult := h.cfg.WeatherMultipliers[WeatherCold]
		if coldMult <= 0 || coldMult >= 1 {
			return result
		}
		before := result.CupsSold
		result = scaleCups(result, 1/coldMult)
		result.Effects = append(result.Effects, fmt.Sprintf("Cooler: cold penalty reversed, +%d cups", result.CupsSold-before))
	}
	return result
}

// scaleCups grows cups by factor and adds proportional profit using the
// existing per-cup margin. Keeps the revenue ceiling intact: the margin per
// cup never exceeds the sale price.
func scaleCups(result GameResult, factor float64) GameResult {
	if result.CupsSold <= 0 || factor == 1 {
		return result
	}
	newCups := int(math.Round(float64(result.CupsSold) * factor))
	if newCups < 0 {
		newCups = 0
	}
	perCup := result.Profit / float64(result.CupsSold)
	added := newCups - result.CupsSold
	result.Profit = roundCents(result.Profit + perCup*float64(added))
	result.CupsSold = newCups
	return result
}
