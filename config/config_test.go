package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

// go test -v --run TestLoadFromDefaults
func TestLoadFromDefaults(t *testing.T) {
	dir := writeConfig(t, "feed:\n  token: abc\n")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "wss://ws.finnhub.io", cfg.Feed.URL)
	assert.Equal(t, 10*time.Second, cfg.Feed.HandshakeTimeout)
	assert.Equal(t, 1, cfg.Chart.Interval)
	assert.Equal(t, 50, cfg.Chart.MaxPoints)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, "postgres", cfg.Archive.Backend)
	assert.Equal(t, 2*time.Second, cfg.Archive.Timeout)
	assert.Zero(t, cfg.Archive.Retention)
}

// go test -v --run TestLoadFromEnvOverride
func TestLoadFromEnvOverride(t *testing.T) {
	dir := writeConfig(t, "chart:\n  interval: 1\n  max_points: 50\n")
	t.Setenv("CHART_INTERVAL", "5")
	t.Setenv("CHART_MAX_POINTS", "20")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Chart.Interval)
	assert.Equal(t, 20, cfg.Chart.MaxPoints)
}

// go test -v --run TestLoadFromMissing
func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	require.Error(t, err)
}

// go test -v --run TestFeedEndpoint
func TestFeedEndpoint(t *testing.T) {
	cfg := FeedConfig{URL: "wss://ws.finnhub.io", Token: "dev-token", TokenParameter: "FEED_TOKEN"}

	got, err := cfg.Endpoint("dev")
	require.NoError(t, err)
	assert.Equal(t, "wss://ws.finnhub.io?token=dev-token", got)

	orig := parameterLookup
	t.Cleanup(func() { parameterLookup = orig })
	parameterLookup = func(name string, decrypt bool) string {
		assert.Equal(t, "FEED_TOKEN", name)
		assert.True(t, decrypt)
		return "prod-token"
	}

	got, err = cfg.Endpoint("prod")
	require.NoError(t, err)
	assert.Equal(t, "wss://ws.finnhub.io?token=prod-token", got)
}

// go test -v --run TestFeedEndpointNoToken
func TestFeedEndpointNoToken(t *testing.T) {
	cfg := FeedConfig{URL: "ws://127.0.0.1:9000/feed"}

	got, err := cfg.Endpoint("dev")
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9000/feed", got)
}

// go test -v --run TestPostgresDSN
func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host: "localhost", Port: 5432, User: "postgres", Password: "pw",
		DBName: "pricechart", SSLMode: "disable", TimeZone: "UTC",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=pricechart sslmode=disable TimeZone=UTC",
		cfg.DSN("dev"))
}

// go test -v --run TestTimeLocation
func TestTimeLocation(t *testing.T) {
	loc, err := ChartConfig{}.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = ChartConfig{Location: "UTC"}.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = ChartConfig{Location: "Nowhere/Atlantis"}.TimeLocation()
	assert.Error(t, err)
}
