// Package infra holds the outbound adapters of the scheduler: the MQTT
// schedule publisher, the Prometheus and InfluxDB metrics sinks, the SQLite
// KPI history and the zerolog logger. Adapters implement interfaces from the
// core packages and never the other way round.
package infra
