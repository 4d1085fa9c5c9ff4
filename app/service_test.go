package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/plantsched/config"
	"github.com/kilianp07/plantsched/core/factory"
	coremetrics "github.com/kilianp07/plantsched/core/metrics"
	"github.com/kilianp07/plantsched/core/model"
	"github.com/kilianp07/plantsched/core/risk"
	"github.com/kilianp07/plantsched/internal/dataset"
)

type fakePublisher struct {
	modes []model.Mode
	err   error
}

func (f *fakePublisher) PublishSchedule(_ context.Context, res model.ScheduleResult) error {
	f.modes = append(f.modes, res.Mode)
	return f.err
}

type mockMonitor struct{ mock.Mock }

func (m *mockMonitor) CaptureException(err error, tags map[string]string) {
	m.Called(err, tags)
}

func (m *mockMonitor) Recover() {}

func (m *mockMonitor) Flush(d time.Duration) {
	m.Called(d)
}

type trainingSink struct {
	schedules []coremetrics.ScheduleEvent
	trainings []coremetrics.TrainingEvent
	err       error
}

func (t *trainingSink) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	t.schedules = append(t.schedules, ev)
	return t.err
}

func (t *trainingSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	t.trainings = append(t.trainings, ev)
	return nil
}

func newService(t *testing.T) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Risk.Iterations = 5000
	cfg.Risk.LearningRate = 1
	svc, err := New(&cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func plant() dataset.Input {
	start := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	job := func(id string, prio int, due time.Duration) model.Job {
		return model.Job{ID: id, Priority: prio, ProcessingTimeMin: 60, DueDate: start.Add(due), RequiredMachineType: "blow_mold"}
	}
	return dataset.Input{
		PlanningStart: start,
		Jobs:          []model.Job{job("j1", 1, 4*time.Hour), job("j2", 2, 6*time.Hour), job("j3", 1, 8*time.Hour)},
		Machines: []model.Machine{
			{ID: "A", Type: "blow_mold", Status: model.StatusOperational},
			{ID: "B", Type: "blow_mold", Status: model.StatusOperational},
		},
		MachineRisks: map[string]float64{"A": 0.1, "B": 0.6},
	}
}

func TestServiceCompare(t *testing.T) {
	svc := newService(t)
	pub := &fakePublisher{}
	svc.publisher = pub

	cmp, err := svc.Compare(context.Background(), plant())
	require.NoError(t, err)
	assert.Greater(t, cmp.RiskAware.JobsPerMachine()["A"], cmp.Baseline.JobsPerMachine()["A"])
	assert.Equal(t, []model.Mode{model.ModeBaseline, model.ModeRiskAware}, pub.modes)
	assert.True(t, cmp.Baseline.Items[0].StartTs.Equal(plant().PlanningStart))
}

func TestServiceScheduleKeepsResultOnPublishError(t *testing.T) {
	svc := newService(t)
	svc.publisher = &fakePublisher{err: errors.New("broker down")}

	res, err := svc.Schedule(context.Background(), plant(), model.ModeRiskAware)
	require.Error(t, err)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, model.ModeRiskAware, res.Mode)

	_, err = svc.Schedule(context.Background(), plant(), model.Mode("random"))
	assert.Error(t, err)
}

func TestServiceReportsPublishErrors(t *testing.T) {
	svc := newService(t)
	boom := errors.New("broker down")
	svc.publisher = &fakePublisher{err: boom}
	mon := &mockMonitor{}
	mon.On("CaptureException", boom, map[string]string{"op": "publish", "mode": "baseline"}).Once()
	svc.Monitor = mon

	_, err := svc.Schedule(context.Background(), plant(), model.ModeBaseline)
	require.ErrorIs(t, err, boom)
	mon.AssertExpectations(t)
}

func TestServiceRecordsSchedules(t *testing.T) {
	svc := newService(t)
	sink := &trainingSink{}
	svc.sink = sink

	res, err := svc.Schedule(context.Background(), plant(), model.ModeRiskAware)
	require.NoError(t, err)
	require.Len(t, sink.schedules, 1)
	assert.Equal(t, model.ModeRiskAware, sink.schedules[0].Mode)
	assert.Equal(t, res.KPIs, sink.schedules[0].KPIs)
	assert.Equal(t, 3, sink.schedules[0].Items)
	assert.NotEmpty(t, sink.schedules[0].RunID)

	_, err = svc.Compare(context.Background(), plant())
	require.NoError(t, err)
	require.Len(t, sink.schedules, 3)
	assert.Equal(t, model.ModeBaseline, sink.schedules[1].Mode)
	assert.Equal(t, model.ModeRiskAware, sink.schedules[2].Mode)
	assert.NotEqual(t, sink.schedules[1].RunID, sink.schedules[2].RunID)
}

func TestServiceReportsRecordErrors(t *testing.T) {
	svc := newService(t)
	diskFull := errors.New("disk full")
	svc.sink = &trainingSink{err: diskFull}
	pub := &fakePublisher{}
	svc.publisher = pub
	mon := &mockMonitor{}
	mon.On("CaptureException", diskFull, map[string]string{"op": "record_schedule", "mode": "risk_aware"}).Twice()
	mon.On("CaptureException", diskFull, map[string]string{"op": "record_schedule", "mode": "baseline"}).Once()
	svc.Monitor = mon

	res, err := svc.Schedule(context.Background(), plant(), model.ModeRiskAware)
	require.ErrorIs(t, err, diskFull)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, []model.Mode{model.ModeRiskAware}, pub.modes)

	cmp, err := svc.Compare(context.Background(), plant())
	require.ErrorIs(t, err, diskFull)
	assert.Len(t, cmp.Baseline.Items, 3)
	assert.Len(t, cmp.RiskAware.Items, 3)
	mon.AssertExpectations(t)
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantsched.log")
	cfg := config.Default()
	cfg.Logging.File = path
	cfg.Logging.SetDefaults()
	svc, err := New(&cfg)
	require.NoError(t, err)
	svc.publisher = &fakePublisher{err: errors.New("broker down")}
	_, err = svc.Schedule(context.Background(), plant(), model.ModeBaseline)
	require.Error(t, err)
	svc.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "broker down")
}

func TestServiceScheduleIsDeterministic(t *testing.T) {
	svc := newService(t)
	a, err := svc.Schedule(context.Background(), plant(), model.ModeBaseline)
	require.NoError(t, err)
	b, err := svc.Schedule(context.Background(), plant(), model.ModeBaseline)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestServiceTrainPredict(t *testing.T) {
	svc := newService(t)
	sink := &trainingSink{}
	svc.sink = sink

	_, err := svc.Predict([]float64{1, 1})
	require.ErrorIs(t, err, ErrNoModel)

	data := risk.TrainingData{
		Features:     [][]float64{{0, 0}, {0, 10}, {10, 0}, {10, 10}},
		Labels:       []int{0, 0, 0, 1},
		FeatureNames: []string{"temp", "vibration"},
	}
	mf, err := svc.Train(context.Background(), data, true)
	require.NoError(t, err)
	require.NotNil(t, mf.Scaler)
	assert.Equal(t, []float64{10, 10}, mf.Scaler.Max)
	require.Len(t, sink.trainings, 1)
	assert.Empty(t, sink.schedules)
	assert.Equal(t, 4, sink.trainings[0].Samples)

	hi, err := svc.Predict([]float64{10, 10})
	require.NoError(t, err)
	lo, err := svc.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.Greater(t, hi.Probability, lo.Probability)
	assert.Equal(t, 1, hi.Label)

	_, err = svc.Predict([]float64{1})
	assert.ErrorIs(t, err, risk.ErrDimensionMismatch)
}

func TestServiceScoresMachineFeatures(t *testing.T) {
	svc := newService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	fh, err := os.Create(path)
	require.NoError(t, err)
	mf := risk.ModelFile{Model: risk.TrainedModel{Weights: []float64{10}, Bias: -5, FeatureNames: []string{"vibration"}}}
	require.NoError(t, risk.WriteModel(fh, mf))
	require.NoError(t, fh.Close())
	require.NoError(t, svc.LoadModel(path))

	in := plant()
	in.MachineRisks = nil
	in.MachineFeatures = map[string][]float64{"A": {1}, "B": {0}}
	res, err := svc.Schedule(context.Background(), in, model.ModeRiskAware)
	require.NoError(t, err)
	for _, it := range res.Items {
		assert.Equal(t, "B", it.MachineID)
	}

	assert.Error(t, svc.LoadModel(filepath.Join(dir, "missing.json")))
}

func TestNewRejectsUnknownSink(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err := New(&cfg)
	assert.Error(t, err)
}

func TestNewClosesSQLiteSink(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{
		{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "kpi.db")}},
		{Type: "nop"},
	}
	svc, err := New(&cfg)
	require.NoError(t, err)
	// monitor flush and sqlite close
	assert.Len(t, svc.closers, 2)
	_, err = svc.Schedule(context.Background(), plant(), model.ModeBaseline)
	require.NoError(t, err)
	svc.Close()
	assert.Empty(t, svc.closers)
}
