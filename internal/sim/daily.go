package sim

import "math"

// Categorical tables are ordered: the cumulative-probability walk depends on
// it, and the first entry doubles as the neutral fallback.
var weatherTable = []struct {
	value  Weather
	weight float64
}{
	{WeatherSunny, 0.30},
	{WeatherHot, 0.15},
	{WeatherCloudy, 0.25},
	{WeatherRainy, 0.20},
	{WeatherCold, 0.10},
}

var eventTable = []struct {
	value  MarketEvent
	weight float64
}{
	{EventNone, 0.70},
	{EventViral, 0.10},
	{EventSugarShortage, 0.10},
	{EventInflation, 0.10},
}

var loginBonusTable = []struct {
	value  LoginBonus
	weight float64
}{
	{BonusNone, 0.60},
	{BonusPerfectDay, 0.15},
	{BonusFreeAdvertising, 0.15},
	{BonusCooler, 0.10},
}

// DailyCycleManager derives each UTC day's environment from the date alone.
type DailyCycleManager struct {
	cfg GameConfig
}

func NewDailyCycleManager(cfg GameConfig) *DailyCycleManager {
	return &DailyCycleManager{cfg: cfg}
}

// GenerateDailyCycle builds the cycle for a "YYYY-MM-DD" date. Calling it
// twice for the same date yields an identical cycle.
func (m *DailyCycleManager) GenerateDailyCycle(date string) DailyCycle {
	seed := "daily-" + date
	root := NewStream(seed)

	return DailyCycle{
		Date:       date,
		Seed:       seed,
		Weather:    pickWeather(root.Fork("weather").Next()),
		Event:      pickEvent(root.Fork("event").Next()),
		LemonPrice: normalPrice(root.Fork("lemon"), m.cfg.BaseLemonPrice, m.cfg.LemonPriceVariance, m.cfg.LemonPriceMin, m.cfg.LemonPriceMax),
		SugarPrice: normalPrice(root.Fork("sugar"), m.cfg.BaseSugarPrice, m.cfg.SugarPriceVariance, m.cfg.SugarPriceMin, m.cfg.SugarPriceMax),
		Multipliers: CycleMultipliers{
			Weather:     m.cfg.WeatherMultipliers,
			EventDemand: m.cfg.EventMultipliers,
			EventCost:   m.cfg.EventCostMultipliers,
		},
		LoginBonus: pickLoginBonus(root.Fork("bonus").Next()),
	}
}

func pickWeather(draw float64) Weather {
	var cum float64
	for _, entry := range weatherTable {
		cum += entry.weight
		if draw < cum {
			return entry.value
		}
	}
	// Floating rounding can leave the draw above every cumulative bucket.
	return weatherTable[0].value
}

func pickEvent(draw float64) MarketEvent {
	var cum float64
	for _, entry := range eventTable {
		cum += entry.weight
		if draw < cum {
			return entry.value
		}
	}
	return eventTable[0].value
}

func pickLoginBonus(draw float64) LoginBonus {
	var cum float64
	for _, entry := range loginBonusTable {
		cum += entry.weight
		if draw < cum {
			return entry.value
		}
	}
	return loginBonusTable[0].value
}

// normalPrice perturbs base by a Box-Muller normal draw scaled by variance,
// then clamps and rounds to cents.
func normalPrice(st *Stream, base, variance, min, max float64) float64 {
	u1 := st.Next()
	u2 := st.Next()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return roundCents(clampFloat(base+z*variance, min, max))
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
