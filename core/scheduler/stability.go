package scheduler

import "github.com/kilianp07/plantsched/core/model"

// AssignmentStability is the Jaccard similarity of the (job, machine) pairs
// of two schedules: 1 when every job kept its machine, 0 when none did. Two
// empty schedules are identical.
func AssignmentStability(prev, curr []model.ScheduleItem) float64 {
	type pair struct{ job, machine string }
	a := make(map[pair]struct{}, len(prev))
	for _, it := range prev {
		a[pair{it.JobID, it.MachineID}] = struct{}{}
	}
	b := make(map[pair]struct{}, len(curr))
	for _, it := range curr {
		b[pair{it.JobID, it.MachineID}] = struct{}{}
	}
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for p := range a {
		if _, ok := b[p]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
