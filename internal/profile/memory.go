package profile

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bitpixi2/lemonomics/internal/sim"
)

// Memory is an in-process Store for tests and local development. Semantics
// mirror the Postgres store, including the run-count conflict check.
type Memory struct {
	mu       sync.Mutex
	profiles map[string]sim.UserProfile
	pureBest map[string]float64
}

func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]sim.UserProfile),
		pureBest: make(map[string]float64),
	}
}

func (s *Memory) Ensure(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		s.profiles[userID] = sim.UserProfile{UserID: userID}
	}
	return nil
}

func (s *Memory) Get(_ context.Context, userID string) (sim.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return sim.UserProfile{}, ErrNotFound
	}
	return p, nil
}

// Put seeds a profile directly. Test helper.
func (s *Memory) Put(p sim.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

func (s *Memory) ApplyResult(_ context.Context, userID string, result sim.GameResult, date string, expectedRun int) (sim.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return sim.UserProfile{}, ErrNotFound
	}
	if p.Progress.TotalRuns+1 != expectedRun {
		return sim.UserProfile{}, fmt.Errorf("%w: expected run %d, store at %d", ErrRunConflict, expectedRun, p.Progress.TotalRuns)
	}

	applyProgress(&p, result, date)
	if len(result.PowerupsApplied) == 0 && result.Profit > s.pureBest[userID] {
		s.pureBest[userID] = result.Profit
	}
	s.profiles[userID] = p
	return p, nil
}

func (s *Memory) ResetDailyPowerups(_ context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, p := range s.profiles {
		if p.Powerups.LastResetDate != date && p.Powerups.UsedToday > 0 {
			p.Powerups.UsedToday = 0
			p.Powerups.LastResetDate = date
			s.profiles[id] = p
			n++
		}
	}
	return n, nil
}

func (s *Memory) Leaderboard(_ context.Context, limit int, pureOnly bool) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []LeaderboardRow
	for id, p := range s.profiles {
		if p.Progress.TotalRuns == 0 {
			continue
		}
		best := p.Progress.BestProfit
		if pureOnly {
			best = s.pureBest[id]
		}
		out = append(out, LeaderboardRow{
			UserID:      id,
			BestProfit:  best,
			TotalProfit: p.Progress.TotalProfit,
			TotalRuns:   p.Progress.TotalRuns,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BestProfit != out[j].BestProfit {
			return out[i].BestProfit > out[j].BestProfit
		}
		return out[i].TotalProfit > out[j].TotalProfit
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
