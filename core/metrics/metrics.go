package metrics

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/plantsched/core/model"
)

// ScheduleEvent describes one completed scheduling run.
type ScheduleEvent struct {
	RunID       string
	Mode        model.Mode
	KPIs        model.ScheduleKPIs
	Items       int
	Unscheduled int
	Duration    time.Duration
	Time        time.Time
}

// NewScheduleEvent describes res, generated at started in elapsed, under a
// fresh run ID.
func NewScheduleEvent(res model.ScheduleResult, started time.Time, elapsed time.Duration) ScheduleEvent {
	return ScheduleEvent{
		RunID:       uuid.NewString(),
		Mode:        res.Mode,
		KPIs:        res.KPIs,
		Items:       len(res.Items),
		Unscheduled: len(res.Unscheduled),
		Duration:    elapsed,
		Time:        started,
	}
}

// MetricsSink records scheduling runs for observability purposes.
type MetricsSink interface {
	RecordSchedule(ev ScheduleEvent) error
}

// TrainingEvent describes a fitted risk model.
type TrainingEvent struct {
	Samples    int
	Features   int
	Iterations int
	Accuracy   float64
	Precision  float64
	Recall     float64
	F1         float64
	Duration   time.Duration
	Time       time.Time
}

// TrainingRecorder is implemented by sinks able to record model training.
type TrainingRecorder interface {
	RecordTraining(ev TrainingEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSchedule(ScheduleEvent) error { return nil }
func (NopSink) RecordTraining(TrainingEvent) error { return nil }
