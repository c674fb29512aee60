package appconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestParse(t *testing.T) {
	doc := `
env: production
server:
  port: 8080
  rateLimit: 20
  trustedProxies: [10.0.0.0/8, 192.0.2.1]
static:
  url: https://static.opendata.metlink.org.nz/v1/gtfs/full.zip
  feedInfoURL: https://api.opendata.metlink.org.nz/v1/gtfs/feed_info
  timeout: 90s
realtime:
  alertsURL: https://api.opendata.metlink.org.nz/v1/gtfs-rt/servicealerts
  vehiclePositionsURL: https://api.opendata.metlink.org.nz/v1/gtfs-rt/vehiclepositions
  vehiclesInterval: 15s
log:
  level: debug
  format: text
`
	cfg, err := Parse([]byte(doc), noEnv)
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Server.RateLimit)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, 90*time.Second, cfg.Static.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Realtime.VehiclesInterval)
	assert.Equal(t, "text", cfg.Log.Format)

	t.Run("defaults fill what the file leaves out", func(t *testing.T) {
		assert.Equal(t, DefaultStaticSchedule, cfg.Static.Schedule)
		assert.Equal(t, DefaultCachePath, cfg.Static.CachePath)
		assert.Equal(t, DefaultAPIKeyHeader, cfg.Realtime.APIKeyHeader)
		assert.Zero(t, cfg.Realtime.TripUpdatesURL)
	})
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("static:\n  url: testdata/gtfs.zip\n"), noEnv)
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Env)
	assert.Equal(t, "development", cfg.EnvName)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing static url", doc: "server:\n  port: 80\n"},
		{name: "port out of range", doc: "server:\n  port: 70000\nstatic:\n  url: gtfs.zip\n"},
		{name: "feed url is not a url", doc: "static:\n  url: gtfs.zip\nrealtime:\n  alertsURL: not a url\n"},
		{name: "unknown environment", doc: "env: staging\nstatic:\n  url: gtfs.zip\n"},
		{name: "unknown log format", doc: "static:\n  url: gtfs.zip\nlog:\n  format: xml\n"},
		{name: "negative interval", doc: "static:\n  url: gtfs.zip\nrealtime:\n  vehiclesInterval: -5s\n"},
		{name: "trusted proxy is not an address", doc: "static:\n  url: gtfs.zip\nserver:\n  trustedProxies: [lb.internal]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), noEnv)
			assert.ErrorContains(t, err, "invalid config")
		})
	}

	_, err := Parse([]byte("static: [unclosed"), noEnv)
	assert.ErrorContains(t, err, "parsing config")
}

func TestEnvironmentOverrides(t *testing.T) {
	env := map[string]string{
		"RTI_GTFS_URL":   "https://example.com/gtfs.zip",
		"RTI_API_KEY":    "secret",
		"RTI_ENV":        "test",
		"RTI_ALERTS_URL": "https://example.com/alerts",
	}
	cfg, err := Parse([]byte("static:\n  url: local.zip\n"), func(key string) string { return env[key] })
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/gtfs.zip", cfg.Static.URL)
	assert.Equal(t, "secret", cfg.Realtime.APIKey)
	assert.Equal(t, "https://example.com/alerts", cfg.Realtime.AlertsURL)
	assert.Equal(t, Test, cfg.Env)

	t.Run("overrides are validated too", func(t *testing.T) {
		_, err := Parse([]byte("static:\n  url: local.zip\n"), func(key string) string {
			if key == "RTI_TRIP_UPDATES_URL" {
				return "::bad"
			}
			return ""
		})
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("static:\n  url: gtfs.zip\nserver:\n  port: 5000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestEnvFlagToEnvironment(t *testing.T) {
	assert.Equal(t, Test, EnvFlagToEnvironment("test"))
	assert.Equal(t, Production, EnvFlagToEnvironment("Production"))
	assert.Equal(t, Production, EnvFlagToEnvironment("prod"))
	assert.Equal(t, Development, EnvFlagToEnvironment(""))
	assert.Equal(t, Development, EnvFlagToEnvironment("staging"))
	assert.Equal(t, "test", Test.String())
}
