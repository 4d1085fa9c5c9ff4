package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/plantsched/core/factory"
	coremetrics "github.com/kilianp07/plantsched/core/metrics"
)

// init registers the Prometheus and InfluxDB sinks with the core factory.
func init() {
	coremetrics.MustRegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c PromConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPromSinkWithRegistry(c, prometheus.DefaultRegisterer)
	})

	coremetrics.MustRegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
