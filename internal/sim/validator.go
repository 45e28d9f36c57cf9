package sim

import (
	"context"
	"fmt"
	"math"
)

// Risk weights for the additive score. Result mismatches dominate: a wrong
// number is stronger evidence than an odd-looking input.
const (
	riskPerInputIssue        = 0.20
	riskPerResultMismatch    = 0.30
	riskPerSuspiciousPattern = 0.15
)

// CheckResult is one validation dimension of a report.
type CheckResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// ValidationReport is the validator's structured answer. Mismatches are
// data for the caller's policy, never errors.
type ValidationReport struct {
	InputValidation    CheckResult `json:"input_validation"`
	ResultValidation   CheckResult `json:"result_validation"`
	SuspiciousPatterns []string    `json:"suspicious_patterns,omitempty"`
	RiskScore          float64     `json:"risk_score"`
	OverallValid       bool        `json:"overall_valid"`
}

// Validator re-runs the engine server-side against a client-submitted result
// to detect tampering.
type Validator struct {
	engine *Engine
}

func NewValidator(engine *Engine) (*Validator, error) {
	if engine == nil {
		return nil, fmt.Errorf("validator requires an engine")
	}
	return &Validator{engine: engine}, nil
}

// ValidateRun recomputes the run with the same inputs and diffs every field
// of clientResult against the fresh server result. Profit compares within
// the configured tolerance; cups, weather, event, festival, and seed compare
// exactly.
func (v *Validator) ValidateRun(ctx context.Context, run GameRun, profile UserProfile, daily DailyCycle, weekly WeeklyCycle, clientResult GameResult) (ValidationReport, error) {
	report := ValidationReport{
		InputValidation:  CheckResult{Valid: true},
		ResultValidation: CheckResult{Valid: true},
	}
	cfg := v.engine.Config()

	if run.Price < cfg.PriceMin || run.Price > cfg.PriceMax {
		report.InputValidation.Issues = append(report.InputValidation.Issues,
			fmt.Sprintf("price %.4f outside [%.2f, %.2f]", run.Price, cfg.PriceMin, cfg.PriceMax))
	}
	if run.AdSpend < cfg.AdSpendMin || run.AdSpend > cfg.AdSpendMax {
		report.InputValidation.Issues = append(report.InputValidation.Issues,
			fmt.Sprintf("ad spend %.4f outside [%.2f, %.2f]", run.AdSpend, cfg.AdSpendMin, cfg.AdSpendMax))
	}
	report.InputValidation.Valid = len(report.InputValidation.Issues) == 0

	if report.InputValidation.Valid {
		server, err := v.engine.RunGame(ctx, run, profile, daily, weekly)
		if err != nil {
			return ValidationReport{}, err
		}
		v.diffResults(cfg, server, clientResult, &report.ResultValidation)
	} else {
		report.ResultValidation.Valid = false
		report.ResultValidation.Issues = append(report.ResultValidation.Issues, "result not recomputed: inputs invalid")
	}

	report.SuspiciousPatterns = suspiciousPatterns(run, profile, clientResult)
	report.RiskScore = clampFloat(
		float64(len(report.InputValidation.Issues))*riskPerInputIssue+
			float64(len(report.ResultValidation.Issues))*riskPerResultMismatch+
			float64(len(report.SuspiciousPatterns))*riskPerSuspiciousPattern,
		0, 1)
	report.OverallValid = report.InputValidation.Valid &&
		report.ResultValidation.Valid &&
		len(report.SuspiciousPatterns) == 0
	return report, nil
}

func (v *Validator) diffResults(cfg GameConfig, server, client GameResult, out *CheckResult) {
	if math.Abs(server.Profit-client.Profit) > cfg.ProfitTolerance {
		out.Issues = append(out.Issues,
			fmt.Sprintf("profit mismatch: client %.2f, server %.2f", client.Profit, server.Profit))
	}
	if server.CupsSold != client.CupsSold {
		out.Issues = append(out.Issues,
			fmt.Sprintf("cups sold mismatch: client %d, server %d", client.CupsSold, server.CupsSold))
	}
	if server.Weather != client.Weather {
		out.Issues = append(out.Issues,
			fmt.Sprintf("weather mismatch: client %s, server %s", client.Weather, server.Weather))
	}
	if server.Event != client.Event {
		out.Issues = append(out.Issues,
			fmt.Sprintf("event mismatch: client %s, server %s", client.Event, server.Event))
	}
	if server.Festival != client.Festival {
		out.Issues = append(out.Issues,
			fmt.Sprintf("festival mismatch: client %q, server %q", client.Festival, server.Festival))
	}
	if server.Seed != client.Seed {
		out.Issues = append(out.Issues,
			fmt.Sprintf("seed mismatch: client %q, server %q", client.Seed, server.Seed))
	}
	out.Valid = len(out.Issues) == 0
}

func suspiciousPatterns(run GameRun, profile UserProfile, client GameResult) []string {
	var patterns []string

	if client.CupsSold < 0 {
		patterns = append(patterns, fmt.Sprintf("impossible result: negative cups sold (%d)", client.CupsSold))
	}
	ceiling := float64(client.CupsSold) * run.Price
	if client.Profit > ceiling+0.01 {
		patterns = append(patterns,
			fmt.Sprintf("impossible result: profit %.2f exceeds revenue ceiling %.2f", client.Profit, ceiling))
	}
	if client.Profit >= 100 && math.Mod(client.Profit, 10) == 0 {
		patterns = append(patterns,
			fmt.Sprintf("improbable round profit %.2f at high value", client.Profit))
	}
	if profile.Progress.TotalRuns >= 5 && profile.Progress.BestProfit > 0 &&
		client.Profit > profile.Progress.BestProfit*5 {
		patterns = append(patterns,
			fmt.Sprintf("profit %.2f is over 5x personal best %.2f", client.Profit, profile.Progress.BestProfit))
	}
	if excessPrecision(run.Price) || excessPrecision(run.AdSpend) {
		patterns = append(patterns, "bot-like input precision beyond cents")
	}
	return patterns
}

// excessPrecision reports values carrying more than two decimal places,
// which the browser UI cannot produce.
func excessPrecision(v float64) bool {
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) > 1e-9
}
