package sim

// ProfitInput bundles everything one profit computation depends on.
type ProfitInput struct {
	CupsSold            int
	Price               float64
	AdSpend             float64
	LemonPrice          float64
	SugarPrice          float64
	EventCostMultiplier float64
	CostVolatility      float64
}

// CostBreakdown is the derived display/debug view of one run's economics.
type CostBreakdown struct {
	Revenue         float64 `json:"revenue"`
	InventoryCost   float64 `json:"inventory_cost"`
	FixedCost       float64 `json:"fixed_cost"`
	AdvertisingCost float64 `json:"advertising_cost"`
	TotalCosts      float64 `json:"total_costs"`
	Profit          float64 `json:"profit"`
}

// ProfitCalculator turns units sold and the day's prices into a
// cents-rounded profit.
type ProfitCalculator struct {
	cfg GameConfig
}

func NewProfitCalculator(cfg GameConfig) *ProfitCalculator {
	return &ProfitCalculator{cfg: cfg}
}

// Calculate returns profit rounded to cents. Profit may be negative.
func (c *ProfitCalculator) Calculate(in ProfitInput) float64 {
	return c.Breakdown(in).Profit
}

// Breakdown exposes the full cost view. Profit is derived here and nowhere
// else; Calculate is a projection of this.
func (c *ProfitCalculator) Breakdown(in ProfitInput) CostBreakdown {
	cups := float64(in.CupsSold)
	revenue := cups * in.Price
	inventory := cups * (c.cfg.BaseCostPerCup + 0.1*(in.LemonPrice+in.SugarPrice)) *
		in.EventCostMultiplier * (1 + 0.5*in.CostVolatility)
	total := inventory + c.cfg.FixedDailyCost + in.AdSpend

	return CostBreakdown{
		Revenue:         roundCents(revenue),
		InventoryCost:   roundCents(inventory),
		FixedCost:       roundCents(c.cfg.FixedDailyCost),
		AdvertisingCost: roundCents(in.AdSpend),
		TotalCosts:      roundCents(total),
		Profit:          roundCents(revenue - total),
	}
}
