package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `scheduler:
  calendar:
    start_hour: 6
    end_hour: 20
  default_risk: 0.25
  risk_aware:
    window_penalty: 120
risk:
  learning_rate: 0.5
  iterations: 200
  timeout_seconds: 10
logging:
  level: debug
metrics:
  sinks:
    - type: "nop"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  topic_prefix: "plant"
  qos: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"start_hour", cfg.Scheduler.Calendar.StartHour, 6},
		{"end_hour", cfg.Scheduler.Calendar.EndHour, 20},
		{"timezone default", cfg.Scheduler.Calendar.Timezone, "UTC"},
		{"default_risk", cfg.Scheduler.DefaultRisk, 0.25},
		{"window_penalty", cfg.Scheduler.RiskAware.WindowPenalty, 120.0},
		{"risk_penalty default", cfg.Scheduler.RiskAware.RiskPenalty, 100.0},
		{"stability default", cfg.Scheduler.Stability.RiskAware, 0.88},
		{"learning_rate", cfg.Risk.LearningRate, 0.5},
		{"iterations", cfg.Risk.Iterations, 200},
		{"timeout", cfg.Risk.Options().Timeout, 10 * time.Second},
		{"level", cfg.Logging.Level, "debug"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "plant"},
		{"qos", cfg.MQTT.QoS, byte(1)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"risk": {"iterations": 50}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PS_RISK__ITERATIONS", "75")
	t.Setenv("PS_SCHEDULER__DEFAULT_RISK", "0.4")
	t.Setenv("PS_LOGGING__LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Risk.Iterations != 75 {
		t.Errorf("iterations = %d", cfg.Risk.Iterations)
	}
	if cfg.Scheduler.DefaultRisk != 0.4 {
		t.Errorf("default risk = %v", cfg.Scheduler.DefaultRisk)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %s", cfg.Logging.Level)
	}
	if cfg.Risk.LearningRate != 0.1 {
		t.Errorf("learning rate default not applied: %v", cfg.Risk.LearningRate)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Scheduler.Calendar.EndHour != 22 || cfg.Logging.Level != "info" || cfg.Risk.Iterations != 1000 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(bad, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Errorf("expected unsupported format error")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("expected missing file error")
	}

	cases := map[string]string{
		"calendar": "scheduler:\n  calendar:\n    start_hour: 22\n    end_hour: 8\n",
		"risk":     "risk:\n  learning_rate: -1\n",
		"level":    "logging:\n  level: loud\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoggingFileDefaults(t *testing.T) {
	lc := LoggingConfig{File: "plantsched.log"}
	lc.SetDefaults()
	if lc.Level != "info" || lc.MaxSizeMB != 10 || lc.MaxBackups != 3 || lc.MaxAgeDays != 7 {
		t.Fatalf("unexpected defaults: %+v", lc)
	}

	bare := LoggingConfig{}
	bare.SetDefaults()
	if bare.MaxSizeMB != 0 {
		t.Fatalf("rotation defaults applied without a file: %+v", bare)
	}
}

func TestValidateRejectsSentrySampleRate(t *testing.T) {
	cfg := Default()
	cfg.Sentry.TracesSampleRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for sample rate above 1")
	}
}
