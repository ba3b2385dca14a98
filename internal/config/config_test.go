package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/blescout/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	cfg := config.New()

	assert.Equal(t, 10, cfg.Scan.DurationSeconds)
	assert.Equal(t, 1000, cfg.Scan.PollIntervalMS)
	assert.True(t, cfg.Scan.AllowDuplicates)
	assert.Equal(t, 100, cfg.Scan.EventBuffer)
	assert.Equal(t, "table", cfg.Scan.Format)
	assert.Equal(t, "warning", cfg.Log.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blescout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scan:
  duration_seconds: 30
  poll_interval_ms: 250
  services: ["180d"]
  block_list: ["AA:BB:CC:DD:EE:FF"]
log:
  level: debug
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Scan.DurationSeconds)
	assert.Equal(t, 250, cfg.Scan.PollIntervalMS)
	assert.Equal(t, []string{"180d"}, cfg.Scan.Services)
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:FF"}, cfg.Scan.BlockList)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Scan.EventBuffer)
}

func TestLoad_MissingExplicitPathFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero duration", "scan:\n  duration_seconds: 0\n"},
		{"negative poll interval", "scan:\n  poll_interval_ms: -5\n"},
		{"malformed yaml", "scan: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "blescout.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestScanOptions_Conversion(t *testing.T) {
	cfg := config.New()
	cfg.Scan.DurationSeconds = 5
	cfg.Scan.PollIntervalMS = 200
	cfg.Scan.Services = []string{"180f"}

	opts := cfg.ScanOptions()
	assert.Equal(t, 5*time.Second, opts.Duration)
	assert.Equal(t, 200*time.Millisecond, opts.PollInterval)
	assert.Equal(t, []string{"180f"}, opts.ServiceUUIDs)
	assert.True(t, opts.AllowDuplicates)
	assert.Equal(t, 100, opts.EventBuffer)
}
