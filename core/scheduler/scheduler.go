package scheduler

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/plantsched/core/logger"
	"github.com/kilianp07/plantsched/core/model"
)

// itemNamespace seeds the name-based UUIDs of schedule items so identical
// runs produce identical IDs.
var itemNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("plantsched/schedule-item"))

// Scheduler builds schedules with a fixed policy. It keeps no state between
// runs and is safe for concurrent use once configured.
type Scheduler struct {
	Config   Config
	Calendar WorkCalendar
	// Now is the planning origin every machine becomes free at.
	Now      func() time.Time
	Log      logger.Logger
}

// New validates cfg and returns a Scheduler using the wall clock.
func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cal, err := cfg.WorkCalendar()
	if err != nil {
		return nil, err
	}
	return &Scheduler{Config: cfg, Calendar: cal, Now: time.Now, Log: logger.Nop{}}, nil
}

func defaultScheduler() *Scheduler {
	return &Scheduler{Config: DefaultConfig(), Calendar: DefaultCalendar(), Now: time.Now}
}

// GenerateBaselineSchedule runs the baseline strategy with the default policy.
func GenerateBaselineSchedule(jobs []model.Job, machines []model.Machine, machineRisks map[string]float64) model.ScheduleResult {
	return defaultScheduler().GenerateBaseline(jobs, machines, machineRisks)
}

// GenerateRiskAwareSchedule runs the risk-aware strategy with the default policy.
func GenerateRiskAwareSchedule(jobs []model.Job, machines []model.Machine, machineRisks map[string]float64, riskWindows model.RiskWindows) model.ScheduleResult {
	return defaultScheduler().GenerateRiskAware(jobs, machines, machineRisks, riskWindows)
}

func (s *Scheduler) log() logger.Logger { return logger.OrNop(s.Log) }

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Scheduler) machineRisk(risks map[string]float64, id string) float64 {
	if r, ok := risks[id]; ok {
		return r
	}
	return s.Config.DefaultRisk
}

// machineState tracks one operational machine during a run.
type machineState struct {
	machine   model.Machine
	freeAt    time.Time
	lastGroup string
}

func newMachineStates(machines []model.Machine, origin time.Time) []*machineState {
	ops := model.OperationalMachines(machines)
	states := make([]*machineState, len(ops))
	for i, m := range ops {
		states[i] = &machineState{machine: m, freeAt: origin, lastGroup: m.SetupGroup}
	}
	return states
}

func (st *machineState) assign(job model.Job, end time.Time) {
	st.freeAt = end
	st.lastGroup = job.SetupGroup
}

func newItem(mode model.Mode, seq int, job model.Job, machineID string, start, end time.Time, risk float64) model.ScheduleItem {
	name := string(mode) + "/" + strconv.Itoa(seq) + "/" + job.ID + "/" + machineID
	return model.ScheduleItem{
		ID:        uuid.NewSHA1(itemNamespace, []byte(name)).String(),
		MachineID: machineID,
		JobID:     job.ID,
		StartTs:   start,
		EndTs:     end,
		Frozen:    job.IsUrgent,
		RiskScore: risk,
	}
}

// finish computes KPIs and logs the run.
func (s *Scheduler) finish(mode model.Mode, items []model.ScheduleItem, unscheduled []string, jobs []model.Job, machines []model.Machine, started time.Time) model.ScheduleResult {
	res := model.ScheduleResult{
		Mode:        mode,
		Items:       items,
		KPIs:        s.CalculateKPIs(items, jobs, machines, mode),
		Unscheduled: unscheduled,
	}
	s.log().Infow("schedule generated", map[string]any{
		"mode":         string(mode),
		"items":        len(items),
		"unscheduled":  len(unscheduled),
		"makespan_min": res.KPIs.Makespan,
		"risk_cost":    res.KPIs.RiskCost,
		"duration_ms":  time.Since(started).Milliseconds(),
	})
	return res
}

// dropJob logs why a job gets no item.
func (s *Scheduler) dropJob(mode model.Mode, job model.Job, reason string) {
	s.log().Debugw("job not scheduled", map[string]any{"mode": string(mode), "job_id": job.ID, "reason": reason})
}
