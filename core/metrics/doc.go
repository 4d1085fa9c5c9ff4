// Package metrics defines the observability contract of the scheduling core.
// Schedulers report each run through a MetricsSink; trainers report fitted
// models through a TrainingRecorder. Concrete sinks (Prometheus, InfluxDB)
// live in infra/metrics and register themselves with the sink factory so
// they can be selected from configuration. Several sinks are combined with
// NewMultiSink.
package metrics
