package scheduler

import "github.com/kilianp07/plantsched/core/model"

// RiskAwareWeights are the terms of the additive machine score.
type RiskAwareWeights struct {
	SetupMatchBonus    float64 `json:"setup_match_bonus" yaml:"setup_match_bonus"`
	SetupChangePenalty float64 `json:"setup_change_penalty" yaml:"setup_change_penalty"`
	// RiskPenalty multiplies the machine risk in [0,1].
	RiskPenalty         float64 `json:"risk_penalty" yaml:"risk_penalty"`
	WindowPenalty       float64 `json:"window_penalty" yaml:"window_penalty"`
	WindowRiskThreshold float64 `json:"window_risk_threshold" yaml:"window_risk_threshold"`
	LatePenaltyPerMin   float64 `json:"late_penalty_per_min" yaml:"late_penalty_per_min"`
	SlackBonusPerMin    float64 `json:"slack_bonus_per_min" yaml:"slack_bonus_per_min"`
	SlackCapMinutes     float64 `json:"slack_cap_minutes" yaml:"slack_cap_minutes"`
	UrgentBonus         float64 `json:"urgent_bonus" yaml:"urgent_bonus"`
	PriorityWeight      float64 `json:"priority_weight" yaml:"priority_weight"`
}

// DefaultRiskAwareWeights returns the production weights.
func DefaultRiskAwareWeights() RiskAwareWeights {
	return RiskAwareWeights{
		SetupMatchBonus:     50,
		SetupChangePenalty:  20,
		RiskPenalty:         100,
		WindowPenalty:       80,
		WindowRiskThreshold: 0.6,
		LatePenaltyPerMin:   2,
		SlackBonusPerMin:    0.1,
		SlackCapMinutes:     480,
		UrgentBonus:         100,
		PriorityWeight:      10,
	}
}

// UrgencyWeights order jobs before the risk-aware pass.
type UrgencyWeights struct {
	Due24hBonus    float64 `json:"due_24h_bonus" yaml:"due_24h_bonus"`
	Due48hBonus    float64 `json:"due_48h_bonus" yaml:"due_48h_bonus"`
	PriorityWeight float64 `json:"priority_weight" yaml:"priority_weight"`
	UrgentBonus    float64 `json:"urgent_bonus" yaml:"urgent_bonus"`
}

// DefaultUrgencyWeights returns the production urgency weights.
func DefaultUrgencyWeights() UrgencyWeights {
	return UrgencyWeights{Due24hBonus: 100, Due48hBonus: 50, PriorityWeight: 20, UrgentBonus: 150}
}

// StabilityConstants are the per-mode stability KPI values. They are fixed
// figures, not measured from successive runs; see AssignmentStability for a
// measured alternative.
type StabilityConstants struct {
	Baseline  float64 `json:"baseline" yaml:"baseline"`
	RiskAware float64 `json:"risk_aware" yaml:"risk_aware"`
}

// DefaultStability returns 0.65 for baseline and 0.88 for risk-aware.
func DefaultStability() StabilityConstants {
	return StabilityConstants{Baseline: 0.65, RiskAware: 0.88}
}

// For returns the constant for mode.
func (s StabilityConstants) For(mode model.Mode) float64 {
	if mode == model.ModeRiskAware {
		return s.RiskAware
	}
	return s.Baseline
}
