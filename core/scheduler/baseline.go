package scheduler

import (
	"cmp"
	"slices"
	"time"

	"github.com/kilianp07/plantsched/core/model"
)

// GenerateBaseline assigns jobs by priority (descending) then due date
// (ascending), each to the compatible operational machine that frees up
// first. Machine risk is only copied onto the item. Jobs without a
// compatible machine are left out and listed in Unscheduled.
func (s *Scheduler) GenerateBaseline(jobs []model.Job, machines []model.Machine, machineRisks map[string]float64) model.ScheduleResult {
	started := time.Now()
	const mode = model.ModeBaseline
	states := newMachineStates(machines, s.now())

	ordered := slices.Clone(jobs)
	slices.SortStableFunc(ordered, func(a, b model.Job) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return a.DueDate.Compare(b.DueDate)
	})

	items := make([]model.ScheduleItem, 0, len(ordered))
	var unscheduled []string
	for _, job := range ordered {
		if err := job.Validate(); err != nil {
			s.dropJob(mode, job, err.Error())
			unscheduled = append(unscheduled, job.ID)
			continue
		}
		var best *machineState
		for _, st := range states {
			if !job.Accepts(st.machine.Type) {
				continue
			}
			if best == nil || st.freeAt.Before(best.freeAt) {
				best = st
			}
		}
		if best == nil {
			s.dropJob(mode, job, "no compatible operational machine")
			unscheduled = append(unscheduled, job.ID)
			continue
		}
		start, end := s.Calendar.Place(best.freeAt, job.ProcessingTime())
		risk := s.machineRisk(machineRisks, best.machine.ID)
		items = append(items, newItem(mode, len(items), job, best.machine.ID, start, end, risk))
		best.assign(job, end)
	}
	return s.finish(mode, items, unscheduled, jobs, machines, started)
}
