package scheduler

import "github.com/kilianp07/plantsched/core/model"

// KPIDelta is risk-aware minus baseline for every KPI.
type KPIDelta struct {
	Makespan      float64 `json:"makespan"`
	TotalLateness float64 `json:"total_lateness"`
	OnTimeRate    float64 `json:"on_time_rate"`
	Changeovers   int     `json:"changeovers"`
	Utilization   float64 `json:"utilization"`
	RiskCost      float64 `json:"risk_cost"`
	Stability     float64 `json:"stability"`
}

// Comparison holds both strategies' results for the same inputs.
type Comparison struct {
	Baseline  model.ScheduleResult `json:"baseline"`
	RiskAware model.ScheduleResult `json:"risk_aware"`
	Delta     KPIDelta             `json:"delta"`
}

// Compare runs both strategies on the same inputs.
func (s *Scheduler) Compare(jobs []model.Job, machines []model.Machine, machineRisks map[string]float64, riskWindows model.RiskWindows) Comparison {
	base := s.GenerateBaseline(jobs, machines, machineRisks)
	aware := s.GenerateRiskAware(jobs, machines, machineRisks, riskWindows)
	return Comparison{Baseline: base, RiskAware: aware, Delta: Diff(base.KPIs, aware.KPIs)}
}

// Diff returns after minus before.
func Diff(before, after model.ScheduleKPIs) KPIDelta {
	return KPIDelta{
		Makespan:      after.Makespan - before.Makespan,
		TotalLateness: after.TotalLateness - before.TotalLateness,
		OnTimeRate:    after.OnTimeRate - before.OnTimeRate,
		Changeovers:   after.Changeovers - before.Changeovers,
		Utilization:   after.Utilization - before.Utilization,
		RiskCost:      after.RiskCost - before.RiskCost,
		Stability:     after.Stability - before.Stability,
	}
}
