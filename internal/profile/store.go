// Package profile owns player state. The simulation engine only ever reads a
// UserProfile snapshot; every mutation happens here, after a run completes.
package profile

import (
	"context"
	"errors"

	"github.com/bitpixi2/lemonomics/internal/sim"
)

var (
	ErrNotFound = errors.New("profile not found")

	// ErrRunConflict means another run for the same user persisted first:
	// the seed this result was computed against is already consumed.
	ErrRunConflict = errors.New("run count conflict")
)

// LeaderboardRow is one entry of the profit leaderboard.
type LeaderboardRow struct {
	UserID      string  `json:"user_id"`
	BestProfit  float64 `json:"best_profit"`
	TotalProfit float64 `json:"total_profit"`
	TotalRuns   int     `json:"total_runs"`
}

// Store is the persistence contract the engine's callers depend on.
//
// ApplyResult must be atomic with respect to the run-count increment:
// expectedRun is profile.Progress.TotalRuns+1 as read before the run, and a
// store rejects the write with ErrRunConflict when the stored count moved,
// so two concurrent runs can never both persist against the same seed.
type Store interface {
	Ensure(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (sim.UserProfile, error)
	ApplyResult(ctx context.Context, userID string, result sim.GameResult, date string, expectedRun int) (sim.UserProfile, error)
	ResetDailyPowerups(ctx context.Context, date string) (int64, error)
	Leaderboard(ctx context.Context, limit int, pureOnly bool) ([]LeaderboardRow, error)
}

// applyProgress folds one run result into progress. Shared by both store
// implementations so their semantics cannot drift.
func applyProgress(p *sim.UserProfile, result sim.GameResult, date string) {
	p.Progress.TotalRuns++
	p.Progress.CurrentStreak = result.Streak
	if result.Streak > p.Progress.LongestStreak {
		p.Progress.LongestStreak = result.Streak
	}
	if result.Profit > p.Progress.BestProfit || p.Progress.TotalRuns == 1 {
		p.Progress.BestProfit = result.Profit
	}
	p.Progress.TotalProfit += result.Profit
	p.Progress.LastPlayDate = date

	if p.Powerups.LastResetDate != date {
		p.Powerups.UsedToday = 0
		p.Powerups.LastResetDate = date
	}
	p.Powerups.UsedToday += len(result.PowerupsApplied)
}
