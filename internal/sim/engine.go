package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Engine orchestrates one run of the simulation pipeline. It holds no
// mutable state: every call reads its inputs and returns a fresh result, so
// concurrent runs need no locking.
type Engine struct {
	cfg      GameConfig
	demand   *DemandCalculator
	profit   *ProfitCalculator
	powerups *PowerupApplier
	bonuses  *BonusHandler
	log      *slog.Logger
}

// NewEngine wires the calculators. Collaborators are required: a nil
// verifier or an invalid config fails construction rather than surfacing
// mid-run.
func NewEngine(cfg GameConfig, verifier ReceiptVerifier, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("game config: %w", err)
	}
	powerups, err := NewPowerupApplier(cfg, verifier)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:      cfg,
		demand:   NewDemandCalculator(cfg),
		profit:   NewProfitCalculator(cfg),
		powerups: powerups,
		bonuses:  NewBonusHandler(cfg),
		log:      logger,
	}, nil
}

// Config returns the engine's immutable economy configuration.
func (e *Engine) Config() GameConfig {
	return e.cfg
}

// RunGame computes the authoritative result for one run. The seed derives
// from (userID, totalRuns+1); for fixed inputs the whole call is a pure
// function. Effect layers compose in a fixed order: power-ups first, then
// the login bonus.
func (e *Engine) RunGame(ctx context.Context, run GameRun, profile UserProfile, daily DailyCycle, weekly WeeklyCycle) (GameResult, error) {
	if err := e.validateRun(run); err != nil {
		return GameResult{}, err
	}

	seed := GenerateSeed(run.UserID, profile.Progress.TotalRuns+1)
	cups := e.demand.Calculate(DemandInput{
		Price:       run.Price,
		AdSpend:     run.AdSpend,
		Stats:       profile.GameStats,
		Weather:     daily.Weather,
		Event:       daily.Event,
		Multipliers: daily.Multipliers,
		Festival:    weekly.Modifiers,
		Seed:        seed,
	})
	profit := e.profit.Calculate(ProfitInput{
		CupsSold:            cups,
		Price:               run.Price,
		AdSpend:             run.AdSpend,
		LemonPrice:          daily.LemonPrice,
		SugarPrice:          daily.SugarPrice,
		EventCostMultiplier: multiplierFor(daily.Multipliers.EventCost, daily.Event),
		CostVolatility:      weekly.Modifiers.CostVolatility,
	})

	result := GameResult{
		Profit:   profit,
		CupsSold: cups,
		Weather:  daily.Weather,
		Event:    daily.Event,
		Festival: weekly.Festival,
		Streak:   streakAfter(profile.Progress, daily.Date),
		Seed:     seed,
	}

	if len(run.PowerupReceipts) > 0 {
		adjusted, err := e.powerups.Apply(ctx, result, run.PowerupReceipts, profile.Powerups.UsedToday)
		if err != nil {
			return GameResult{}, err
		}
		result = adjusted
	}
	result = e.bonuses.Apply(result, daily.LoginBonus, run.Price)

	e.log.Debug("run computed",
		"user_id", run.UserID,
		"seed", result.Seed,
		"cups", result.CupsSold,
		"profit", result.Profit,
		"weather", result.Weather,
		"event", result.Event,
	)
	return result, nil
}

func (e *Engine) validateRun(run GameRun) error {
	if run.Price < e.cfg.PriceMin || run.Price > e.cfg.PriceMax {
		return fmt.Errorf("%w: price must be between $%.2f and $%.2f", ErrPriceOutOfRange, e.cfg.PriceMin, e.cfg.PriceMax)
	}
	if run.AdSpend < e.cfg.AdSpendMin || run.AdSpend > e.cfg.AdSpendMax {
		return fmt.Errorf("%w: ad spend must be between $%.2f and $%.2f", ErrAdSpendOutOfRange, e.cfg.AdSpendMin, e.cfg.AdSpendMax)
	}
	return nil
}

// streakAfter is the streak the run will record: extended when the player
// last played yesterday, unchanged for a repeat play today, reset otherwise.
func streakAfter(progress Progress, date string) int {
	switch progress.LastPlayDate {
	case date:
		if progress.CurrentStreak > 0 {
			return progress.CurrentStreak
		}
		return 1
	case previousDate(date):
		return progress.CurrentStreak + 1
	default:
		return 1
	}
}

func previousDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}
