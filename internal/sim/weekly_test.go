package sim

import (
	"testing"
	"time"
)

func TestGenerateWeeklyCycleDeterministic(t *testing.T) {
	m := NewWeeklyCycleManager(DefaultConfig())
	a := m.GenerateWeeklyCycle(2026, 14)
	b := m.GenerateWeeklyCycle(2026, 14)
	if a.Festival != b.Festival {
		t.Fatalf("same week picked different festivals: %q vs %q", a.Festival, b.Festival)
	}
	if a.Modifiers.DemandMultiplier != b.Modifiers.DemandMultiplier {
		t.Fatalf("same week perturbed modifiers differently")
	}
}

func TestWeeklyCycleModifierBounds(t *testing.T) {
	cfg := DefaultConfig()
	m := NewWeeklyCycleManager(cfg)
	for week := 1; week <= 53; week++ {
		c := m.GenerateWeeklyCycle(2026, week)
		mods := c.Modifiers
		if mods.DemandMultiplier < 0.5 {
			t.Fatalf("week %d demand multiplier %v below floor", week, mods.DemandMultiplier)
		}
		if mods.PriceVariance < 0 || mods.CriticalSaleChance < 0 || mods.CostVolatility < 0 {
			t.Fatalf("week %d produced a negative modifier: %+v", week, mods)
		}
		found := false
		for _, theme := range cfg.Festivals {
			if theme.Name == c.Festival {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("week %d festival %q not in catalog", week, c.Festival)
		}
	}
}

func TestWeeklyCycleWeekClamp(t *testing.T) {
	m := NewWeeklyCycleManager(DefaultConfig())
	if c := m.GenerateWeeklyCycle(2026, 0); c.Week != 1 {
		t.Fatalf("week 0 not clamped up: %d", c.Week)
	}
	if c := m.GenerateWeeklyCycle(2026, 99); c.Week != 53 {
		t.Fatalf("week 99 not clamped down: %d", c.Week)
	}
}

func TestISOWeekOf(t *testing.T) {
	// 2026-01-01 is a Thursday, ISO week 1 of 2026.
	y, w := ISOWeekOf(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	if y != 2026 || w != 1 {
		t.Fatalf("got %d-W%d, want 2026-W1", y, w)
	}
	// 2023-01-01 is a Sunday belonging to ISO week 52 of 2022.
	y, w = ISOWeekOf(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	if y != 2022 || w != 52 {
		t.Fatalf("got %d-W%d, want 2022-W52", y, w)
	}
}
