package sim

import "math"

// DemandInput bundles everything one units-sold computation depends on.
type DemandInput struct {
	Price   float64
	AdSpend float64
	Stats   GameStats

	Weather     Weather
	Event       MarketEvent
	Multipliers CycleMultipliers
	Festival    FestivalModifiers

	// PowerupDemandBonus is zero in the base pipeline; paid boosts are
	// layered after the base result so the validator can replay both
	// stages (see Engine.RunGame).
	PowerupDemandBonus float64

	Seed string
}

// DemandCalculator turns price, advertising, player skill, environment, and
// seeded randomness into a units-sold figure. All factors compose
// multiplicatively; rounding happens once at the end.
type DemandCalculator struct {
	cfg GameConfig
}

func NewDemandCalculator(cfg GameConfig) *DemandCalculator {
	return &DemandCalculator{cfg: cfg}
}

// Calculate returns cups sold, never negative. Deterministic for a fixed
// input: the variance and critical-sale draws come from labeled forks of the
// run seed.
func (c *DemandCalculator) Calculate(in DemandInput) int {
	price := math.Max(in.Price, 0)
	adSpend := math.Max(in.AdSpend, 0)

	demand := float64(c.cfg.BaseCustomers)
	demand *= math.Pow(1-c.cfg.PriceElasticity, price-1)
	demand *= 1 + c.cfg.AdEffect*math.Sqrt(adSpend)*(1+float64(in.Stats.Marketing)*0.1)
	demand *= 1 + float64(in.Stats.Reputation)*c.cfg.ReputationEffect
	demand *= 1 + float64(in.Stats.Service)*0.02
	demand *= multiplierFor(in.Multipliers.Weather, in.Weather)
	demand *= multiplierFor(in.Multipliers.EventDemand, in.Event)
	demand *= in.Festival.DemandMultiplier
	demand *= 1 + in.PowerupDemandBonus

	st := NewStream(in.Seed)
	demand *= 1 + spread(st.Fork("variance"), in.Festival.PriceVariance)
	if st.Fork("critical").Next() < in.Festival.CriticalSaleChance {
		demand *= c.cfg.CriticalSaleMultiplier
	}

	cups := int(math.Round(demand))
	if cups < 0 {
		cups = 0
	}
	return cups
}

// multiplierFor reads a closed enum-keyed table; a missing key means the
// cycle was built against a different config and neutral 1.0 keeps the
// pipeline finite rather than silently zeroing demand.
func multiplierFor[K comparable](table map[K]float64, key K) float64 {
	if m, ok := table[key]; ok {
		return m
	}
	return 1.0
}
