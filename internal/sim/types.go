package sim

import "time"

// Weather is the day's sky condition. Values match what the browser client
// renders and what validators compare byte-for-byte.
type Weather string

const (
	WeatherSunny  Weather = "SUNNY"
	WeatherHot    Weather = "HOT"
	WeatherCloudy Weather = "CLOUDY"
	WeatherRainy  Weather = "RAINY"
	WeatherCold   Weather = "COLD"
)

// MarketEvent is the day's economy-wide event.
type MarketEvent string

const (
	EventNone          MarketEvent = "NONE"
	EventViral         MarketEvent = "VIRAL"
	EventSugarShortage MarketEvent = "SUGAR_SHORTAGE"
	EventInflation     MarketEvent = "INFLATION"
)

// LoginBonus is the free once-daily boost selected deterministically per day.
type LoginBonus string

const (
	BonusNone            LoginBonus = "NONE"
	BonusPerfectDay      LoginBonus = "PERFECT_DAY"
	BonusFreeAdvertising LoginBonus = "FREE_ADVERTISING"
	BonusCooler          LoginBonus = "COOLER"
)

// GameRun is the player's input for a single run. Ephemeral, never persisted.
type GameRun struct {
	UserID          string   `json:"user_id"`
	Price           float64  `json:"price"`
	AdSpend         float64  `json:"ad_spend"`
	PowerupReceipts []string `json:"powerup_receipts,omitempty"`
}

// GameStats are the player's derived skill stats.
type GameStats struct {
	Service    int `json:"service"`
	Marketing  int `json:"marketing"`
	Reputation int `json:"reputation"`
}

// Progress is the player's lifetime record.
type Progress struct {
	TotalRuns     int     `json:"total_runs"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	BestProfit    float64 `json:"best_profit"`
	TotalProfit   float64 `json:"total_profit"`
	LastPlayDate  string  `json:"last_play_date"`
}

// PowerupState tracks per-day paid boost usage.
type PowerupState struct {
	UsedToday     int    `json:"used_today"`
	LastResetDate string `json:"last_reset_date"`
}

// UserProfile is read by the engine and mutated only by the caller after a
// run completes.
type UserProfile struct {
	UserID    string       `json:"user_id"`
	GameStats GameStats    `json:"game_stats"`
	Progress  Progress     `json:"progress"`
	Powerups  PowerupState `json:"powerups"`
}

// CycleMultipliers are the static per-day lookup tables attached to a
// DailyCycle so downstream consumers never re-derive them.
type CycleMultipliers struct {
	Weather     map[Weather]float64     `json:"weather"`
	EventDemand map[MarketEvent]float64 `json:"event_demand"`
	EventCost   map[MarketEvent]float64 `json:"event_cost"`
}

// DailyCycle is the deterministic environment bundle shared by all players on
// one UTC day. Regenerated from the date, only ever cached.
type DailyCycle struct {
	Date        string           `json:"date"`
	Seed        string           `json:"seed"`
	Weather     Weather          `json:"weather"`
	Event       MarketEvent      `json:"event"`
	LemonPrice  float64          `json:"lemon_price"`
	SugarPrice  float64          `json:"sugar_price"`
	Multipliers CycleMultipliers `json:"multipliers"`
	LoginBonus  LoginBonus       `json:"login_bonus"`
}

// FestivalModifiers is the weekly festival's economic modifier set.
type FestivalModifiers struct {
	DemandMultiplier   float64  `json:"demand_multiplier"`
	PriceVariance      float64  `json:"price_variance"`
	CriticalSaleChance float64  `json:"critical_sale_chance"`
	CostVolatility     float64  `json:"cost_volatility"`
	SpecialEffects     []string `json:"special_effects,omitempty"`
}

// WeeklyCycle is the deterministic festival bundle for one ISO week.
type WeeklyCycle struct {
	Week      int               `json:"week"`
	Year      int               `json:"year"`
	Festival  string            `json:"festival"`
	Modifiers FestivalModifiers `json:"modifiers"`
}

// GameResult is the authoritative per-run output. Immutable once produced.
type GameResult struct {
	Profit          float64     `json:"profit"`
	CupsSold        int         `json:"cups_sold"`
	Weather         Weather     `json:"weather"`
	Event           MarketEvent `json:"event"`
	Festival        string      `json:"festival"`
	Streak          int         `json:"streak"`
	Seed            string      `json:"seed"`
	PowerupsApplied []string    `json:"powerups_applied,omitempty"`
	Effects         []string    `json:"effects,omitempty"`
}

// PaymentReceipt is issued and signed by the payments service; the engine
// only ever consumes verified copies.
type PaymentReceipt struct {
	ReceiptID string    `json:"receipt_id"`
	UserID    string    `json:"user_id"`
	SKU       string    `json:"sku"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Signature string    `json:"signature"`
	IssuedAt  time.Time `json:"issued_at"`
}
