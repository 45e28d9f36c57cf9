// Package cycle caches the deterministically generated daily and weekly
// environment bundles. The generators themselves stay pure; this is the one
// layer allowed to memoize them, bounded to the current UTC day and ISO week.
package cycle

import (
	"fmt"
	"sync"
	"time"

	"github.com/bitpixi2/lemonomics/internal/sim"
)

const dateLayout = "2006-01-02"

// Service hands out the current cycles, regenerating when the day or week
// rolls over. The clock is injected so tests can cross midnight at will.
type Service struct {
	daily  *sim.DailyCycleManager
	weekly *sim.WeeklyCycleManager
	now    func() time.Time

	mu        sync.Mutex
	dailyKey  string
	dailyVal  sim.DailyCycle
	weeklyKey string
	weeklyVal sim.WeeklyCycle
}

// NewService builds a provider over cfg. A nil clock falls back to the
// system clock in UTC.
func NewService(cfg sim.GameConfig, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		daily:  sim.NewDailyCycleManager(cfg),
		weekly: sim.NewWeeklyCycleManager(cfg),
		now:    now,
	}
}

// Today returns the cycle for the current UTC date.
func (s *Service) Today() sim.DailyCycle {
	date := s.now().UTC().Format(dateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dailyKey != date {
		s.dailyVal = s.daily.GenerateDailyCycle(date)
		s.dailyKey = date
	}
	return s.dailyVal
}

// ThisWeek returns the cycle for the current ISO week.
func (s *Service) ThisWeek() sim.WeeklyCycle {
	year, week := sim.ISOWeekOf(s.now())
	key := weekKey(year, week)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.weeklyKey != key {
		s.weeklyVal = s.weekly.GenerateWeeklyCycle(year, week)
		s.weeklyKey = key
	}
	return s.weeklyVal
}

// ForDate regenerates the cycle for an arbitrary date, bypassing the cache.
// Used by the validator path when a submitted result references a past day.
func (s *Service) ForDate(date string) sim.DailyCycle {
	return s.daily.GenerateDailyCycle(date)
}

// ForWeek regenerates the cycle for an arbitrary ISO week.
func (s *Service) ForWeek(year, week int) sim.WeeklyCycle {
	return s.weekly.GenerateWeeklyCycle(year, week)
}

// TodayDate returns the current UTC date string.
func (s *Service) TodayDate() string {
	return s.now().UTC().Format(dateLayout)
}

func weekKey(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}
