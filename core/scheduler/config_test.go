package scheduler

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigYAMLKeepsDefaults(t *testing.T) {
	data := "calendar:\n  start_hour: 6\n  end_hour: 20\nrisk_aware:\n  window_penalty: 120\n"
	cfg, err := DecodeConfig(bytes.NewBufferString(data), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Calendar.StartHour)
	assert.Equal(t, 20, cfg.Calendar.EndHour)
	assert.Equal(t, "UTC", cfg.Calendar.Timezone)
	assert.Equal(t, 120.0, cfg.RiskAware.WindowPenalty)
	assert.Equal(t, 50.0, cfg.RiskAware.SetupMatchBonus)
	assert.Equal(t, 0.2, cfg.DefaultRisk)
	assert.Equal(t, DefaultStability(), cfg.Stability)
}

func TestDecodeConfigEmptyYAML(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString(""), "yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDecodeJSON(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString(`{"default_risk":0.3,"stability":{"baseline":0.5}}`), "json")
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.DefaultRisk)
	assert.Equal(t, 0.5, cfg.Stability.Baseline)
	assert.Equal(t, 0.88, cfg.Stability.RiskAware)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("urgency:\n  urgent_bonus: 200\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 200.0, cfg.Urgency.UrgentBonus)
	assert.Equal(t, 100.0, cfg.Urgency.Due24hBonus)

	_, err = LoadConfig(filepath.Join(dir, "policy.toml"))
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeConfig(bytes.NewBufferString("{}"), "toml")
	assert.Error(t, err)
	_, err = DecodeConfig(bytes.NewBufferString("calendar: [1, 2"), "yaml")
	assert.Error(t, err)
	_, err = DecodeConfig(bytes.NewBufferString(`{"calendar":{"start_hour":22,"end_hour":8}}`), "json")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Calendar.StartHour = -1 },
		func(c *Config) { c.Calendar.EndHour = 25 },
		func(c *Config) { c.Calendar.EndHour = c.Calendar.StartHour },
		func(c *Config) { c.Calendar.Timezone = "Not/AZone" },
		func(c *Config) { c.DefaultRisk = 1.5 },
		func(c *Config) { c.RiskAware.SlackCapMinutes = -1 },
		func(c *Config) { c.Stability.RiskAware = 2 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), "case %d", i)
		_, err := New(cfg)
		assert.Error(t, err, "case %d", i)
	}
	assert.NoError(t, DefaultConfig().Validate())
}
