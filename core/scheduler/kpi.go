package scheduler

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/plantsched/core/logger"
	"github.com/kilianp07/plantsched/core/model"
)

// CalculateKPIs scores a schedule with the default stability constants.
func CalculateKPIs(items []model.ScheduleItem, jobs []model.Job, machines []model.Machine, mode model.Mode) model.ScheduleKPIs {
	return calculateKPIs(items, jobs, machines, mode, DefaultStability(), logger.Nop{})
}

// CalculateKPIs scores a schedule with the scheduler's stability constants.
func (s *Scheduler) CalculateKPIs(items []model.ScheduleItem, jobs []model.Job, machines []model.Machine, mode model.Mode) model.ScheduleKPIs {
	return calculateKPIs(items, jobs, machines, mode, s.Config.Stability, s.log())
}

func calculateKPIs(items []model.ScheduleItem, jobs []model.Job, machines []model.Machine, mode model.Mode, stability StabilityConstants, log logger.Logger) model.ScheduleKPIs {
	if len(items) == 0 {
		return model.EmptyKPIs()
	}

	byID := make(map[string]model.Job, len(jobs))
	for _, j := range jobs {
		if _, dup := byID[j.ID]; !dup {
			byID[j.ID] = j
		}
	}

	minStart, maxEnd := items[0].StartTs, items[0].EndTs
	var lateness, processing float64
	onTime := 0
	risks := make([]float64, len(items))
	for i, it := range items {
		if it.StartTs.Before(minStart) {
			minStart = it.StartTs
		}
		if it.EndTs.After(maxEnd) {
			maxEnd = it.EndTs
		}
		risks[i] = it.RiskScore

		job, ok := byID[it.JobID]
		if !ok {
			onTime++
			continue
		}
		processing += float64(job.ProcessingTimeMin)
		if late := it.EndTs.Sub(job.DueDate); late > 0 {
			lateness += late.Minutes()
		} else {
			onTime++
		}
	}

	makespan := maxEnd.Sub(minStart).Minutes()
	operational := len(model.OperationalMachines(machines))
	var utilization float64
	if makespan > 0 && operational > 0 {
		utilization = processing / (makespan * float64(operational))
	}
	if utilization > 1 {
		log.Warnf("%s utilization %.3f exceeds 1: items and machine list are inconsistent", mode, utilization)
	}

	return model.ScheduleKPIs{
		Makespan:      makespan,
		TotalLateness: lateness,
		OnTimeRate:    float64(onTime) / float64(len(items)),
		Changeovers:   countChangeovers(items, byID),
		Utilization:   utilization,
		RiskCost:      stat.Mean(risks, nil),
		Stability:     stability.For(mode),
	}
}

// countChangeovers walks each machine's items in insertion order, not time
// order, and counts adjacent pairs whose setup groups are both set and differ.
func countChangeovers(items []model.ScheduleItem, jobs map[string]model.Job) int {
	last := make(map[string]string)
	changes := 0
	for _, it := range items {
		group := jobs[it.JobID].SetupGroup
		prev, seen := last[it.MachineID]
		if seen && prev != "" && group != "" && prev != group {
			changes++
		}
		last[it.MachineID] = group
	}
	return changes
}
