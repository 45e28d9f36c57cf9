package sim

import (
	"fmt"
	"time"
)

// WeeklyCycleManager derives the festival bundle for one ISO week.
type WeeklyCycleManager struct {
	cfg GameConfig
}

func NewWeeklyCycleManager(cfg GameConfig) *WeeklyCycleManager {
	return &WeeklyCycleManager{cfg: cfg}
}

// GenerateWeeklyCycle picks a festival theme for (year, week) and perturbs
// its modifiers within fixed bounds. Deterministic per week key.
func (m *WeeklyCycleManager) GenerateWeeklyCycle(year, week int) WeeklyCycle {
	if week < 1 {
		week = 1
	}
	if week > 53 {
		week = 53
	}
	seed := fmt.Sprintf("weekly-%d-W%d", year, week)
	root := NewStream(seed)

	idx := int(root.Fork("festival").Next() * float64(len(m.cfg.Festivals)))
	if idx >= len(m.cfg.Festivals) {
		idx = len(m.cfg.Festivals) - 1
	}
	theme := m.cfg.Festivals[idx]

	mods := FestivalModifiers{
		DemandMultiplier:   clampFloat(theme.Modifiers.DemandMultiplier+spread(root.Fork("demand"), 0.05), 0.5, 3.0),
		PriceVariance:      clampFloat(theme.Modifiers.PriceVariance+spread(root.Fork("price"), 0.02), 0, 0.5),
		CriticalSaleChance: clampFloat(theme.Modifiers.CriticalSaleChance+spread(root.Fork("critical"), 0.02), 0, 0.5),
		CostVolatility:     clampFloat(theme.Modifiers.CostVolatility+spread(root.Fork("cost"), 0.05), 0, 1.0),
		SpecialEffects:     append([]string(nil), theme.Modifiers.SpecialEffects...),
	}

	return WeeklyCycle{
		Week:      week,
		Year:      year,
		Festival:  theme.Name,
		Modifiers: mods,
	}
}

// spread returns a symmetric draw in [-amplitude, +amplitude).
func spread(st *Stream, amplitude float64) float64 {
	return (st.Next()*2 - 1) * amplitude
}

// ISOWeekOf returns the ISO year and week of t in UTC, week clamped to
// [1, 53].
func ISOWeekOf(t time.Time) (year, week int) {
	year, week = t.UTC().ISOWeek()
	if week < 1 {
		week = 1
	}
	if week > 53 {
		week = 53
	}
	return year, week
}
