package scheduler

import (
	"math"
	"slices"
	"time"

	"github.com/kilianp07/plantsched/core/model"
)

// urgency ranks a job before the risk-aware pass. Overdue jobs count as due
// within 24h.
func (s *Scheduler) urgency(job model.Job, now time.Time) float64 {
	w := s.Config.Urgency
	var score float64
	until := job.DueDate.Sub(now)
	switch {
	case until < 24*time.Hour:
		score += w.Due24hBonus
	case until < 48*time.Hour:
		score += w.Due48hBonus
	}
	score += float64(job.Priority) * w.PriorityWeight
	if job.IsUrgent {
		score += w.UrgentBonus
	}
	return score
}

// candidateScore is the additive machine score for placing job on st over
// [start, end).
func (s *Scheduler) candidateScore(job model.Job, st *machineState, start, end time.Time, risk float64, windows []model.RiskWindow) float64 {
	w := s.Config.RiskAware
	var score float64
	if job.SetupGroup != "" {
		if st.lastGroup == job.SetupGroup {
			score += w.SetupMatchBonus
		} else {
			score -= w.SetupChangePenalty
		}
	}
	score -= risk * w.RiskPenalty
	for _, win := range windows {
		if win.Risk >= w.WindowRiskThreshold && win.Overlaps(start, end) {
			score -= w.WindowPenalty
			break
		}
	}
	slack := job.DueDate.Sub(end).Minutes()
	if slack < 0 {
		score -= -slack * w.LatePenaltyPerMin
	} else {
		score += math.Min(slack, w.SlackCapMinutes) * w.SlackBonusPerMin
	}
	if job.IsUrgent {
		score += w.UrgentBonus
	}
	score += float64(job.Priority) * w.PriorityWeight
	return score
}

// GenerateRiskAware orders jobs by urgency and places each on the compatible
// operational machine with the highest additive score; the first machine
// wins ties. Decisions are never revisited.
func (s *Scheduler) GenerateRiskAware(jobs []model.Job, machines []model.Machine, machineRisks map[string]float64, riskWindows model.RiskWindows) model.ScheduleResult {
	started := time.Now()
	const mode = model.ModeRiskAware
	now := s.now()
	states := newMachineStates(machines, now)

	type ranked struct {
		job   model.Job
		score float64
	}
	ordered := make([]ranked, len(jobs))
	for i, j := range jobs {
		ordered[i] = ranked{job: j, score: s.urgency(j, now)}
	}
	slices.SortStableFunc(ordered, func(a, b ranked) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	items := make([]model.ScheduleItem, 0, len(ordered))
	var unscheduled []string
	for _, r := range ordered {
		job := r.job
		if err := job.Validate(); err != nil {
			s.dropJob(mode, job, err.Error())
			unscheduled = append(unscheduled, job.ID)
			continue
		}
		var (
			best               *machineState
			bestScore          float64
			bestStart, bestEnd time.Time
			bestRisk           float64
		)
		for _, st := range states {
			if !job.Accepts(st.machine.Type) {
				continue
			}
			start, end := s.Calendar.Place(st.freeAt, job.ProcessingTime())
			risk := s.machineRisk(machineRisks, st.machine.ID)
			score := s.candidateScore(job, st, start, end, risk, riskWindows[st.machine.ID])
			if best == nil || score > bestScore {
				best, bestScore, bestStart, bestEnd, bestRisk = st, score, start, end, risk
			}
		}
		if best == nil {
			s.dropJob(mode, job, "no compatible operational machine")
			unscheduled = append(unscheduled, job.ID)
			continue
		}
		s.log().Debugw("job placed", map[string]any{
			"job_id":     job.ID,
			"machine_id": best.machine.ID,
			"urgency":    r.score,
			"score":      bestScore,
		})
		items = append(items, newItem(mode, len(items), job, best.machine.ID, bestStart, bestEnd, bestRisk))
		best.assign(job, bestEnd)
	}
	return s.finish(mode, items, unscheduled, jobs, machines, started)
}
