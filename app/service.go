package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/plantsched/config"
	coremetrics "github.com/kilianp07/plantsched/core/metrics"
	"github.com/kilianp07/plantsched/core/model"
	coremon "github.com/kilianp07/plantsched/core/monitoring"
	"github.com/kilianp07/plantsched/core/risk"
	"github.com/kilianp07/plantsched/core/scheduler"
	"github.com/kilianp07/plantsched/infra/logger"
	"github.com/kilianp07/plantsched/infra/monitoring"
	"github.com/kilianp07/plantsched/infra/mqtt"
	"github.com/kilianp07/plantsched/internal/dataset"

	// Register the concrete metrics sinks with the core factory.
	_ "github.com/kilianp07/plantsched/infra/kpi"
	_ "github.com/kilianp07/plantsched/infra/metrics"
)

// ErrNoModel is returned by Predict before a model was trained or loaded.
var ErrNoModel = errors.New("no risk model loaded")

// SchedulePublisher forwards produced schedules to downstream consumers.
type SchedulePublisher interface {
	PublishSchedule(ctx context.Context, res model.ScheduleResult) error
}

// Service wires the scheduler, the risk model and the outbound adapters.
type Service struct {
	Scheduler *scheduler.Scheduler
	// Model is used for predictions and for scoring machine features. It is
	// set by Train or LoadModel.
	Model *risk.ModelFile

	// Monitor receives publish and recording failures. Never nil after New.
	Monitor coremon.Monitor

	sink      coremetrics.MetricsSink
	publisher SchedulePublisher
	riskOpts  risk.Options
	closers   []func()
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	svc := &Service{riskOpts: cfg.Risk.Options()}
	if cfg.Logging.File != "" {
		lc := cfg.Logging
		f := logger.NewRotatingFile(lc.File, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays)
		logger.SetOutput(f)
		svc.closers = append(svc.closers, func() {
			logger.SetOutput(nil)
			_ = f.Close()
		})
	}
	svc.log = logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("sentry: %w", err)
	}
	svc.Monitor = mon
	svc.closers = append(svc.closers, func() { mon.Flush(2 * time.Second) })

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.sink = sink
	svc.closers = append(svc.closers, sinkClosers(sink, svc.log)...)

	sched, err := scheduler.New(cfg.Scheduler)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	sched.Log = logger.New("scheduler")
	svc.Scheduler = sched

	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
		svc.closers = append(svc.closers, pub.Disconnect)
	}
	return svc, nil
}

func sinkClosers(sink coremetrics.MetricsSink, log logger.Logger) []func() {
	switch s := sink.(type) {
	case *coremetrics.MultiSink:
		var out []func()
		for _, inner := range s.Sinks {
			out = append(out, sinkClosers(inner, log)...)
		}
		return out
	case interface{ Close() error }:
		return []func(){func() {
			if err := s.Close(); err != nil {
				log.Errorf("close sink: %v", err)
			}
		}}
	case interface{ Close() }:
		return []func(){s.Close}
	}
	return nil
}

// LoadModel reads a model file and makes it the active model.
func (s *Service) LoadModel(path string) error {
	mf, err := risk.LoadModelFile(path)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	s.Model = &mf
	return nil
}

// Train fits a model on data, optionally min-max normalising the features
// first, and makes it the active model.
func (s *Service) Train(ctx context.Context, data risk.TrainingData, normalize bool) (risk.ModelFile, error) {
	started := time.Now()
	var mf risk.ModelFile
	if normalize {
		scaler, err := risk.FitMinMax(data.Features)
		if err != nil {
			return risk.ModelFile{}, err
		}
		scaled, err := scaler.Transform(data.Features)
		if err != nil {
			return risk.ModelFile{}, err
		}
		data.Features = scaled
		mf.Scaler = scaler
	}
	m, err := risk.Train(ctx, data, s.riskOpts)
	if err != nil {
		return risk.ModelFile{}, err
	}
	mf.Model = m
	s.Model = &mf

	s.log.Infow("risk model trained", map[string]any{
		"samples":   len(data.Features),
		"features":  len(m.Weights),
		"accuracy":  m.Accuracy,
		"f1":        m.F1,
		"normalize": normalize,
	})
	if rec, ok := s.sink.(coremetrics.TrainingRecorder); ok {
		ev := coremetrics.TrainingEvent{
			Samples:    len(data.Features),
			Features:   len(m.Weights),
			Iterations: s.riskOpts.Iterations,
			Accuracy:   m.Accuracy,
			Precision:  m.Precision,
			Recall:     m.Recall,
			F1:         m.F1,
			Duration:   time.Since(started),
			Time:       started,
		}
		if err := rec.RecordTraining(ev); err != nil {
			s.log.Warnf("record training: %v", err)
			s.monitor().CaptureException(err, map[string]string{"op": "record_training"})
			return mf, fmt.Errorf("record training: %w", err)
		}
	}
	return mf, nil
}

// Predict scores one raw feature vector with the active model.
func (s *Service) Predict(features []float64) (risk.Prediction, error) {
	if s.Model == nil {
		return risk.Prediction{}, ErrNoModel
	}
	if s.Model.Scaler != nil {
		scaled, err := s.Model.Scaler.TransformRow(features)
		if err != nil {
			return risk.Prediction{}, err
		}
		features = scaled
	}
	return risk.Predict(features, s.Model.Model)
}

// Schedule runs one strategy on in, records and publishes the result.
// Record and publish failures are returned together with the complete
// result.
func (s *Service) Schedule(ctx context.Context, in dataset.Input, mode model.Mode) (model.ScheduleResult, error) {
	if mode != model.ModeBaseline && mode != model.ModeRiskAware {
		return model.ScheduleResult{}, fmt.Errorf("unknown schedule mode %q", mode)
	}
	sched, risks, err := s.prepare(in)
	if err != nil {
		return model.ScheduleResult{}, err
	}
	started := time.Now()
	var res model.ScheduleResult
	if mode == model.ModeBaseline {
		res = sched.GenerateBaseline(in.Jobs, in.Machines, risks)
	} else {
		res = sched.GenerateRiskAware(in.Jobs, in.Machines, risks, in.RiskWindows)
	}
	recErr := s.record(res, started)
	return res, errors.Join(recErr, s.publish(ctx, res))
}

// Compare runs both strategies on in, records and publishes both results.
func (s *Service) Compare(ctx context.Context, in dataset.Input) (scheduler.Comparison, error) {
	sched, risks, err := s.prepare(in)
	if err != nil {
		return scheduler.Comparison{}, err
	}
	started := time.Now()
	base := sched.GenerateBaseline(in.Jobs, in.Machines, risks)
	baseErr := s.record(base, started)

	started = time.Now()
	aware := sched.GenerateRiskAware(in.Jobs, in.Machines, risks, in.RiskWindows)
	awareErr := s.record(aware, started)

	cmp := scheduler.Comparison{Baseline: base, RiskAware: aware, Delta: scheduler.Diff(base.KPIs, aware.KPIs)}
	return cmp, errors.Join(baseErr, awareErr, s.publish(ctx, base), s.publish(ctx, aware))
}

// prepare resolves machine risks and pins the planning origin of the input.
func (s *Service) prepare(in dataset.Input) (*scheduler.Scheduler, map[string]float64, error) {
	risks, err := in.Risks(s.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("score machines: %w", err)
	}
	sched := *s.Scheduler
	if !in.PlanningStart.IsZero() {
		start := in.PlanningStart
		sched.Now = func() time.Time { return start }
	}
	return &sched, risks, nil
}

func (s *Service) record(res model.ScheduleResult, started time.Time) error {
	if s.sink == nil {
		return nil
	}
	ev := coremetrics.NewScheduleEvent(res, started, time.Since(started))
	if err := s.sink.RecordSchedule(ev); err != nil {
		s.log.Errorf("record %s schedule: %v", res.Mode, err)
		s.monitor().CaptureException(err, map[string]string{"op": "record_schedule", "mode": string(res.Mode)})
		return fmt.Errorf("record %s schedule: %w", res.Mode, err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, res model.ScheduleResult) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishSchedule(ctx, res); err != nil {
		s.log.Errorf("publish %s schedule: %v", res.Mode, err)
		s.monitor().CaptureException(err, map[string]string{"op": "publish", "mode": string(res.Mode)})
		return fmt.Errorf("publish %s schedule: %w", res.Mode, err)
	}
	return nil
}

func (s *Service) monitor() coremon.Monitor { return coremon.OrNop(s.Monitor) }

// Close flushes the monitor and releases the sinks, the MQTT connection and
// the log file.
func (s *Service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
