package sim

import (
	"errors"
	"fmt"
)

var (
	ErrPriceOutOfRange   = errors.New("price out of range")
	ErrAdSpendOutOfRange = errors.New("ad spend out of range")
	ErrUnknownPowerupSKU = errors.New("invalid powerup sku")
)

// PowerupSpec describes one purchasable single-run boost.
type PowerupSpec struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	DemandBonus float64 `json:"demand_bonus"`
	DailyLimit  int     `json:"daily_limit"`
}

// FestivalTheme is one entry of the fixed weekly festival catalog.
type FestivalTheme struct {
	Name      string
	Modifiers FestivalModifiers
}

// GameConfig is the immutable economy configuration handed to every
// calculator at construction. Nothing in this package mutates it.
type GameConfig struct {
	PriceMin   float64
	PriceMax   float64
	AdSpendMin float64
	AdSpendMax float64

	BaseCustomers    int
	PriceElasticity  float64
	AdEffect         float64
	ReputationEffect float64

	BaseCostPerCup float64
	FixedDailyCost float64

	BaseLemonPrice     float64
	LemonPriceVariance float64
	LemonPriceMin      float64
	LemonPriceMax      float64
	BaseSugarPrice     float64
	SugarPriceVariance float64
	SugarPriceMin      float64
	SugarPriceMax      float64

	WeatherMultipliers   map[Weather]float64
	EventMultipliers     map[MarketEvent]float64
	EventCostMultipliers map[MarketEvent]float64

	CriticalSaleMultiplier float64
	PerfectDayMultiplier   float64
	FreeAdCupRatio         float64

	Festivals []FestivalTheme
	Powerups  map[string]PowerupSpec

	ProfitTolerance float64
}

// DefaultConfig returns the production economy constants.
func DefaultConfig() GameConfig {
	return GameConfig{
		PriceMin:   0.25,
		PriceMax:   5.00,
		AdSpendMin: 0,
		AdSpendMax: 100,

		BaseCustomers:    120,
		PriceElasticity:  0.30,
		AdEffect:         0.08,
		ReputationEffect: 0.015,

		BaseCostPerCup: 0.18,
		FixedDailyCost: 12.50,

		BaseLemonPrice:     0.45,
		LemonPriceVariance: 0.12,
		LemonPriceMin:      0.10,
		LemonPriceMax:      1.50,
		BaseSugarPrice:     0.25,
		SugarPriceVariance: 0.08,
		SugarPriceMin:      0.05,
		SugarPriceMax:      1.00,

		WeatherMultipliers: map[Weather]float64{
			WeatherSunny:  1.2,
			WeatherHot:    1.5,
			WeatherCloudy: 0.9,
			WeatherRainy:  0.6,
			WeatherCold:   0.4,
		},
		EventMultipliers: map[MarketEvent]float64{
			EventNone:          1.0,
			EventViral:         2.0,
			EventSugarShortage: 0.85,
			EventInflation:     0.9,
		},
		EventCostMultipliers: map[MarketEvent]float64{
			EventNone:          1.0,
			EventViral:         1.0,
			EventSugarShortage: 1.35,
			EventInflation:     1.25,
		},

		CriticalSaleMultiplier: 1.5,
		PerfectDayMultiplier:   1.15,
		FreeAdCupRatio:         1.10,

		Festivals: []FestivalTheme{
			{Name: "Citrus Carnival", Modifiers: FestivalModifiers{DemandMultiplier: 1.20, PriceVariance: 0.10, CriticalSaleChance: 0.08, CostVolatility: 0.05, SpecialEffects: []string{"confetti", "double_streak_glow"}}},
			{Name: "Harvest Fair", Modifiers: FestivalModifiers{DemandMultiplier: 1.05, PriceVariance: 0.06, CriticalSaleChance: 0.05, CostVolatility: 0.15, SpecialEffects: []string{"hay_bales"}}},
			{Name: "Neon Nights", Modifiers: FestivalModifiers{DemandMultiplier: 1.10, PriceVariance: 0.15, CriticalSaleChance: 0.12, CostVolatility: 0.10, SpecialEffects: []string{"neon_cups", "night_market"}}},
			{Name: "Frost Festival", Modifiers: FestivalModifiers{DemandMultiplier: 0.85, PriceVariance: 0.05, CriticalSaleChance: 0.04, CostVolatility: 0.20, SpecialEffects: []string{"snowfall"}}},
			{Name: "Founders Week", Modifiers: FestivalModifiers{DemandMultiplier: 1.00, PriceVariance: 0.08, CriticalSaleChance: 0.06, CostVolatility: 0.08, SpecialEffects: []string{"retro_stand"}}},
			{Name: "Regatta Days", Modifiers: FestivalModifiers{DemandMultiplier: 1.15, PriceVariance: 0.12, CriticalSaleChance: 0.10, CostVolatility: 0.12, SpecialEffects: []string{"sailboats", "dock_stand"}}},
		},
		Powerups: map[string]PowerupSpec{
			"super_sugar": {SKU: "super_sugar", Name: "Super Sugar", DemandBonus: 0.25, DailyLimit: 3},
			"mega_lemons": {SKU: "mega_lemons", Name: "Mega Lemons", DemandBonus: 0.15, DailyLimit: 5},
		},

		ProfitTolerance: 0.01,
	}
}

// Validate rejects configs the pipeline cannot run on.
func (c GameConfig) Validate() error {
	if c.PriceMin <= 0 || c.PriceMax <= c.PriceMin {
		return fmt.Errorf("invalid price bounds [%v, %v]", c.PriceMin, c.PriceMax)
	}
	if c.AdSpendMin < 0 || c.AdSpendMax <= c.AdSpendMin {
		return fmt.Errorf("invalid ad spend bounds [%v, %v]", c.AdSpendMin, c.AdSpendMax)
	}
	if c.PriceElasticity <= 0 || c.PriceElasticity >= 1 {
		return fmt.Errorf("price elasticity %v must be in (0, 1)", c.PriceElasticity)
	}
	if c.BaseCustomers <= 0 {
		return fmt.Errorf("base customers %d must be positive", c.BaseCustomers)
	}
	if len(c.Festivals) == 0 {
		return errors.New("festival catalog is empty")
	}
	for _, w := range []Weather{WeatherSunny, WeatherHot, WeatherCloudy, WeatherRainy, WeatherCold} {
		if _, ok := c.WeatherMultipliers[w]; !ok {
			return fmt.Errorf("weather multiplier table missing %s", w)
		}
	}
	for _, e := range []MarketEvent{EventNone, EventViral, EventSugarShortage, EventInflation} {
		if _, ok := c.EventMultipliers[e]; !ok {
			return fmt.Errorf("event multiplier table missing %s", e)
		}
		if _, ok := c.EventCostMultipliers[e]; !ok {
			return fmt.Errorf("event cost multiplier table missing %s", e)
		}
	}
	return nil
}
