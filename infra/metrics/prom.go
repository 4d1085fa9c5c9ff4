package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/plantsched/core/metrics"
)

// PromSink exposes scheduling runs and model training as Prometheus metrics.
// When a Pushgateway URL is configured every recorded event is followed by a
// push, which suits the short-lived CLI process.
type PromSink struct {
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	kpis       *prometheus.GaugeVec
	items      *prometheus.GaugeVec
	training   *prometheus.GaugeVec
	pusher     *push.Pusher
	collectors []prometheus.Collector
}

// PromConfig configures a PromSink.
type PromConfig struct {
	PushgatewayURL string `json:"pushgateway_url"`
	Job            string `json:"job"`
}

// NewPromSink registers the metrics on the default Prometheus registerer.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plantsched_schedule_runs_total",
		Help: "Number of generated schedules",
	}, []string{"mode"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plantsched_schedule_duration_seconds",
		Help:    "Time spent building a schedule",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	kpis := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plantsched_schedule_kpi",
		Help: "KPIs of the last generated schedule",
	}, []string{"mode", "kpi"})
	items := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plantsched_schedule_jobs",
		Help: "Scheduled and unscheduled jobs of the last run",
	}, []string{"mode", "state"})
	training := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plantsched_risk_model_metric",
		Help: "Evaluation metrics of the last trained risk model",
	}, []string{"metric"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if kpis, err = register(reg, kpis); err != nil {
		return nil, err
	}
	if items, err = register(reg, items); err != nil {
		return nil, err
	}
	if training, err = register(reg, training); err != nil {
		return nil, err
	}

	s := &PromSink{runs: runs, duration: duration, kpis: kpis, items: items, training: training}
	s.collectors = []prometheus.Collector{runs, duration, kpis, items, training}
	if cfg.PushgatewayURL != "" {
		job := cfg.Job
		if job == "" {
			job = "plantsched"
		}
		s.pusher = push.New(cfg.PushgatewayURL, job)
		for _, c := range s.collectors {
			s.pusher.Collector(c)
		}
	}
	return s, nil
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSchedule updates the per-mode KPI gauges.
func (s *PromSink) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	mode := ev.Mode.String()
	s.runs.WithLabelValues(mode).Inc()
	s.duration.WithLabelValues(mode).Observe(ev.Duration.Seconds())
	k := ev.KPIs
	for name, v := range map[string]float64{
		"makespan_minutes":       k.Makespan,
		"total_lateness_minutes": k.TotalLateness,
		"on_time_rate":           k.OnTimeRate,
		"changeovers":            float64(k.Changeovers),
		"utilization":            k.Utilization,
		"risk_cost":              k.RiskCost,
		"stability":              k.Stability,
	} {
		s.kpis.WithLabelValues(mode, name).Set(v)
	}
	s.items.WithLabelValues(mode, "scheduled").Set(float64(ev.Items))
	s.items.WithLabelValues(mode, "unscheduled").Set(float64(ev.Unscheduled))
	return s.push()
}

// RecordTraining updates the risk model gauges.
func (s *PromSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	for name, v := range map[string]float64{
		"accuracy":   ev.Accuracy,
		"precision":  ev.Precision,
		"recall":     ev.Recall,
		"f1":         ev.F1,
		"samples":    float64(ev.Samples),
		"features":   float64(ev.Features),
		"iterations": float64(ev.Iterations),
	} {
		s.training.WithLabelValues(name).Set(v)
	}
	return s.push()
}

func (s *PromSink) push() error {
	if s.pusher == nil {
		return nil
	}
	return s.pusher.Add()
}
