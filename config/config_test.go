package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
fleet_file: fleet.yaml
dispatch:
  slot_minutes: 15
  max_alternatives: 2
metrics:
  prometheus_enabled: true
  prometheus_port: 9201
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fleet.yaml", cfg.FleetFile)
	assert.Equal(t, 15, cfg.Dispatch.SlotMinutes)
	assert.Equal(t, 2, cfg.Dispatch.MaxAlternatives)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
	assert.Equal(t, 9201, cfg.Metrics.PrometheusPort)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fleet_file":"fleet.json"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Dispatch.SlotMinutes)
	assert.Equal(t, 3, cfg.Dispatch.MaxAlternatives)
	assert.Equal(t, 9090, cfg.Metrics.PrometheusPort)
	assert.Equal(t, "fieldservice/technicians", cfg.MQTT.TopicPrefix)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispatch:\n  slot_minutes: 30\n"), 0o644))

	t.Setenv("FS_DISPATCH__SLOT_MINUTES", "45")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Dispatch.SlotMinutes)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("config.toml")
	assert.Error(t, err)
}

func TestLoadInvalidMQTT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mqtt:\n  enabled: true\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
