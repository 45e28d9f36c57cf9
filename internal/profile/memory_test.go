package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/bitpixi2/lemonomics/internal/sim"
)

func TestApplyResultProgress(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	if err := s.Ensure(ctx, "user-1"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	result := sim.GameResult{Profit: 42.50, CupsSold: 80, Streak: 1}
	p, err := s.ApplyResult(ctx, "user-1", result, "2026-09-01", 1)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.Progress.TotalRuns != 1 || p.Progress.BestProfit != 42.50 || p.Progress.LastPlayDate != "2026-09-01" {
		t.Fatalf("progress not applied: %+v", p.Progress)
	}

	// A worse second run keeps the best but adds to the total.
	worse := sim.GameResult{Profit: -3.00, CupsSold: 5, Streak: 1}
	p, err = s.ApplyResult(ctx, "user-1", worse, "2026-09-01", 2)
	if err != nil {
		t.Fatalf("apply second: %v", err)
	}
	if p.Progress.BestProfit != 42.50 {
		t.Fatalf("best profit regressed: %v", p.Progress.BestProfit)
	}
	if p.Progress.TotalProfit != 39.50 {
		t.Fatalf("total profit %v, want 39.50", p.Progress.TotalProfit)
	}
}

func TestApplyResultRunConflict(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	s.Ensure(ctx, "user-1")

	result := sim.GameResult{Profit: 10, CupsSold: 10, Streak: 1}
	if _, err := s.ApplyResult(ctx, "user-1", result, "2026-09-01", 1); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	// A second writer computed against the same snapshot must be rejected.
	if _, err := s.ApplyResult(ctx, "user-1", result, "2026-09-01", 1); !errors.Is(err, ErrRunConflict) {
		t.Fatalf("expected ErrRunConflict, got %v", err)
	}
}

func TestApplyResultPowerupUsage(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	s.Ensure(ctx, "user-1")

	boosted := sim.GameResult{Profit: 10, CupsSold: 10, Streak: 1, PowerupsApplied: []string{"super_sugar"}}
	p, err := s.ApplyResult(ctx, "user-1", boosted, "2026-09-01", 1)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.Powerups.UsedToday != 1 || p.Powerups.LastResetDate != "2026-09-01" {
		t.Fatalf("powerup usage not tracked: %+v", p.Powerups)
	}

	// Next day's run resets the counter before counting its own usage.
	p, err = s.ApplyResult(ctx, "user-1", boosted, "2026-09-02", 2)
	if err != nil {
		t.Fatalf("apply next day: %v", err)
	}
	if p.Powerups.UsedToday != 1 {
		t.Fatalf("usage not reset across days: %d", p.Powerups.UsedToday)
	}
}

func TestResetDailyPowerups(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	s.Ensure(ctx, "user-1")
	s.Put(sim.UserProfile{
		UserID:   "user-2",
		Powerups: sim.PowerupState{UsedToday: 3, LastResetDate: "2026-08-31"},
	})

	n, err := s.ResetDailyPowerups(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n != 1 {
		t.Fatalf("reset %d profiles, want 1", n)
	}
	p, _ := s.Get(ctx, "user-2")
	if p.Powerups.UsedToday != 0 {
		t.Fatalf("usage not zeroed: %d", p.Powerups.UsedToday)
	}
}

func TestLeaderboardPureLeague(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	s.Ensure(ctx, "pure")
	s.Ensure(ctx, "boosted")

	s.ApplyResult(ctx, "pure", sim.GameResult{Profit: 30, CupsSold: 40, Streak: 1}, "2026-09-01", 1)
	s.ApplyResult(ctx, "boosted", sim.GameResult{Profit: 90, CupsSold: 100, Streak: 1, PowerupsApplied: []string{"super_sugar"}}, "2026-09-01", 1)

	global, err := s.Leaderboard(ctx, 10, false)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if global[0].UserID != "boosted" {
		t.Fatalf("global board top = %q, want boosted", global[0].UserID)
	}

	pure, err := s.Leaderboard(ctx, 10, true)
	if err != nil {
		t.Fatalf("pure leaderboard: %v", err)
	}
	if pure[0].UserID != "pure" {
		t.Fatalf("pure board top = %q, want pure (boosted run must not count)", pure[0].UserID)
	}
}
