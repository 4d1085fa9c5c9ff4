package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode identifies the assignment strategy used to build a schedule.
type Mode string

const (
	ModeBaseline  Mode = "baseline"
	ModeRiskAware Mode = "risk_aware"
)

// ParseMode converts user input to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "baseline":
		return ModeBaseline, nil
	case "risk_aware", "risk-aware", "riskaware":
		return ModeRiskAware, nil
	default:
		return "", fmt.Errorf("unknown schedule mode %q", s)
	}
}

// String returns the mode name.
func (m Mode) String() string { return string(m) }

// ScheduleItem places one job on one machine for a time interval.
type ScheduleItem struct {
	ID        string    `json:"id"`
	MachineID string    `json:"machine_id"`
	JobID     string    `json:"job_id"`
	StartTs   time.Time `json:"start_ts"`
	EndTs     time.Time `json:"end_ts"`
	Frozen    bool      `json:"frozen"`
	RiskScore float64   `json:"risk_score"`
}

// Duration returns the length of the item interval.
func (i ScheduleItem) Duration() time.Duration { return i.EndTs.Sub(i.StartTs) }

// ScheduleKPIs summarises a schedule. Durations are expressed in minutes.
type ScheduleKPIs struct {
	Makespan      float64 `json:"makespan"`
	TotalLateness float64 `json:"total_lateness"`
	OnTimeRate    float64 `json:"on_time_rate"`
	Changeovers   int     `json:"changeovers"`
	Utilization   float64 `json:"utilization"`
	RiskCost      float64 `json:"risk_cost"`
	Stability     float64 `json:"stability"`
}

// EmptyKPIs is the value reported for a schedule without items.
func EmptyKPIs() ScheduleKPIs {
	return ScheduleKPIs{OnTimeRate: 1, Stability: 1}
}

// ScheduleResult bundles the output of one scheduling run.
type ScheduleResult struct {
	Mode        Mode           `json:"mode"`
	Items       []ScheduleItem `json:"items"`
	KPIs        ScheduleKPIs   `json:"kpis"`
	Unscheduled []string       `json:"unscheduled,omitempty"`
}

// JobsPerMachine counts scheduled items per machine ID.
func (r ScheduleResult) JobsPerMachine() map[string]int {
	counts := make(map[string]int)
	for _, it := range r.Items {
		counts[it.MachineID]++
	}
	return counts
}
