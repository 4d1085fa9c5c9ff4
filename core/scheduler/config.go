package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CalendarConfig describes the single daily shift jobs must finish within.
type CalendarConfig struct {
	StartHour int    `json:"start_hour" yaml:"start_hour"`
	EndHour   int    `json:"end_hour" yaml:"end_hour"`
	Timezone  string `json:"timezone" yaml:"timezone"`
}

// Config holds the scheduling policy.
type Config struct {
	Calendar CalendarConfig `json:"calendar" yaml:"calendar"`
	// DefaultRisk is used for machines missing from the risk map.
	DefaultRisk float64            `json:"default_risk" yaml:"default_risk"`
	RiskAware   RiskAwareWeights   `json:"risk_aware" yaml:"risk_aware"`
	Urgency     UrgencyWeights     `json:"urgency" yaml:"urgency"`
	Stability   StabilityConstants `json:"stability" yaml:"stability"`
}

// DefaultConfig returns the policy the platform ships with.
func DefaultConfig() Config {
	return Config{
		Calendar:    CalendarConfig{StartHour: 8, EndHour: 22, Timezone: "UTC"},
		DefaultRisk: 0.2,
		RiskAware:   DefaultRiskAwareWeights(),
		Urgency:     DefaultUrgencyWeights(),
		Stability:   DefaultStability(),
	}
}

// Validate checks ranges that would make the schedulers misbehave.
func (c Config) Validate() error {
	if c.Calendar.StartHour < 0 || c.Calendar.StartHour > 23 {
		return fmt.Errorf("calendar start hour %d out of range", c.Calendar.StartHour)
	}
	if c.Calendar.EndHour <= c.Calendar.StartHour || c.Calendar.EndHour > 24 {
		return fmt.Errorf("calendar end hour %d must be after start hour %d and at most 24", c.Calendar.EndHour, c.Calendar.StartHour)
	}
	if _, err := c.location(); err != nil {
		return err
	}
	if c.DefaultRisk < 0 || c.DefaultRisk > 1 {
		return fmt.Errorf("default risk %.2f must be within [0,1]", c.DefaultRisk)
	}
	if c.RiskAware.SlackCapMinutes < 0 {
		return errors.New("risk_aware.slack_cap_minutes must not be negative")
	}
	if c.Stability.Baseline < 0 || c.Stability.Baseline > 1 || c.Stability.RiskAware < 0 || c.Stability.RiskAware > 1 {
		return errors.New("stability constants must be within [0,1]")
	}
	return nil
}

func (c Config) location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar timezone: %w", err)
	}
	return loc, nil
}

// WorkCalendar builds the calendar described by the config.
func (c Config) WorkCalendar() (WorkCalendar, error) {
	loc, err := c.location()
	if err != nil {
		return WorkCalendar{}, err
	}
	return WorkCalendar{StartHour: c.Calendar.StartHour, EndHour: c.Calendar.EndHour, Location: loc}, nil
}

// LoadConfig loads a policy from a JSON or YAML file. Keys absent from the
// file keep their DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var format string
	switch ext {
	case ".yaml", ".yml":
		format = "yaml"
	case ".json":
		format = "json"
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeConfig(f, format)
}

// DecodeConfig reads a policy from r on top of DefaultConfig.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, cfg.Validate()
}
