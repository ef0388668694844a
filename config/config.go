package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Feed     FeedConfig     `mapstructure:"feed"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// ChartConfig controls the aggregation window.
type ChartConfig struct {
	Symbol      string        `mapstructure:"symbol"`       // symbol subscribed at startup (optional)
	Interval    int           `mapstructure:"interval"`     // bucket width in minutes: 1 or 5
	MaxPoints   int           `mapstructure:"max_points"`   // aggregated points kept on the chart
	Location    string        `mapstructure:"location"`     // IANA zone for labels, "Local" by default
	ReportEvery time.Duration `mapstructure:"report_every"` // period of the projection log line, 0 disables it
}

// ArchiveConfig enables the write-only closed bucket archive.
type ArchiveConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Backend    string        `mapstructure:"backend"`     // "postgres" or "memory"
	CreateDB   bool          `mapstructure:"create_db"`   // create the postgres database when missing
	BufferSize int           `mapstructure:"buffer_size"` // queued batches
	Timeout    time.Duration `mapstructure:"timeout"`     // per write
	Retention  time.Duration `mapstructure:"retention"`   // 0 keeps everything
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	var dirs []string
	if dir := os.Getenv("CHART_CONFIG_DIR"); dir != "" {
		dirs = append(dirs, dir)
	}

	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		dirs = append(dirs, filepath.Join(pwd, "../../config"), filepath.Join(pwd, "config"))
	} else {
		dirs = append(dirs, filepath.Join(filepath.Dir(ex), "../config"))
	}

	cfg, err := LoadFrom(dirs...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// LoadFrom reads config.yaml from the first of dirs that contains one.
func LoadFrom(dirs ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	setDefaults(v)

	// Support environment variables with dot notation (e.g., CHART_MAX_POINTS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.url", "wss://ws.finnhub.io")
	v.SetDefault("feed.handshake_timeout", 10*time.Second)

	v.SetDefault("chart.interval", 1)
	v.SetDefault("chart.max_points", 50)
	v.SetDefault("chart.location", "Local")
	v.SetDefault("chart.report_every", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("archive.backend", "postgres")
	v.SetDefault("archive.buffer_size", 256)
	v.SetDefault("archive.timeout", 2*time.Second)
}

// TimeLocation resolves the label location, falling back to time.Local.
func (c ChartConfig) TimeLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid chart location %q: %w", c.Location, err)
	}
	return loc, nil
}
