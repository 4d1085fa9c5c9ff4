package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/plantsched/core/model"
)

// t0 is a Monday at shift start.
var t0 = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	s.Now = func() time.Time { return t0 }
	return s
}

func machine(id, typ string) model.Machine {
	return model.Machine{ID: id, Name: id, Type: typ, Status: model.StatusOperational}
}

func job(id string, priority, minutes int, due time.Time) model.Job {
	return model.Job{
		ID:                  id,
		Priority:            priority,
		ProcessingTimeMin:   minutes,
		DueDate:             due,
		RequiredMachineType: "blow_mold",
		CreatedAt:           t0.Add(-time.Hour),
	}
}

func machineOf(t *testing.T, res model.ScheduleResult, jobID string) string {
	t.Helper()
	for _, it := range res.Items {
		if it.JobID == jobID {
			return it.MachineID
		}
	}
	t.Fatalf("job %s not scheduled", jobID)
	return ""
}

// syntheticPlant builds a fixed mid-sized plant: mixed machine types and
// statuses, setup groups, urgent jobs and risk windows.
func syntheticPlant() ([]model.Job, []model.Machine, map[string]float64, model.RiskWindows) {
	machines := []model.Machine{
		machine("BM1", "blow_mold"),
		machine("BM2", "blow_mold"),
		{ID: "BM3", Type: "blow_mold", Status: model.StatusMaintenance},
		machine("IM1", "injection"),
		{ID: "IM2", Type: "injection", Status: model.StatusOperational, SetupGroup: "caps"},
		{ID: "EX1", Type: "extruder", Status: model.StatusOffline},
	}
	types := []string{"blow_mold", "injection", model.AnyMachineType, "extruder"}
	groups := []string{"", "caps", "bottles", "caps", "preforms"}
	var jobs []model.Job
	for i := 0; i < 24; i++ {
		j := model.Job{
			ID:                  "J" + string(rune('A'+i)),
			Priority:            1 + i%3,
			ProcessingTimeMin:   30 + (i*37)%150,
			DueDate:             at(90 + (i*131)%(3*24*60)),
			RequiredMachineType: types[i%len(types)],
			SetupGroup:          groups[i%len(groups)],
			IsUrgent:            i%7 == 0,
		}
		jobs = append(jobs, j)
	}
	risks := map[string]float64{"BM1": 0.15, "BM2": 0.55, "IM1": 0.72}
	windows := model.RiskWindows{
		"BM1": {{Start: at(120), End: at(300), Risk: 0.85}},
		"IM1": {{Start: at(0), End: at(600), Risk: 0.61}, {Start: at(900), End: at(1000), Risk: 0.2}},
	}
	return jobs, machines, risks, windows
}
