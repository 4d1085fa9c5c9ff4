package config

import (
	"errors"
	"time"

	"github.com/kilianp07/plantsched/core/risk"
)

// RiskConfig holds the risk model training hyper-parameters.
type RiskConfig struct {
	LearningRate   float64 `json:"learning_rate"`
	Iterations     int     `json:"iterations"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// SetDefaults fills unset values from risk.DefaultOptions.
func (c *RiskConfig) SetDefaults() {
	def := risk.DefaultOptions()
	if c.LearningRate == 0 {
		c.LearningRate = def.LearningRate
	}
	if c.Iterations == 0 {
		c.Iterations = def.Iterations
	}
}

// Validate checks the hyper-parameters.
func (c RiskConfig) Validate() error {
	if c.LearningRate <= 0 {
		return errors.New("learning_rate must be positive")
	}
	if c.Iterations <= 0 {
		return errors.New("iterations must be positive")
	}
	if c.TimeoutSeconds < 0 {
		return errors.New("timeout_seconds must not be negative")
	}
	return nil
}

// Options converts the section to training options.
func (c RiskConfig) Options() risk.Options {
	return risk.Options{
		LearningRate: c.LearningRate,
		Iterations:   c.Iterations,
		Timeout:      time.Duration(c.TimeoutSeconds) * time.Second,
	}
}
