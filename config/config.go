// Package config loads the agent configuration once at startup into a
// typed struct. Components receive the parts they need through their
// constructors; nothing re-reads the file at call time.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full agent configuration with documented defaults.
type Config struct {
	LogLevel string `mapstructure:"logLevel"`
	DebugDir string `mapstructure:"debugDir"`

	Window      WindowConfig      `mapstructure:"window"`
	OCR         OCRConfig         `mapstructure:"ocr"`
	Drag        DragConfig        `mapstructure:"drag"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Search      SearchConfig      `mapstructure:"search"`
	History     HistoryConfig     `mapstructure:"history"`
	Progress    ProgressConfig    `mapstructure:"progress"`
}

// WindowConfig identifies the game window.
type WindowConfig struct {
	Title string `mapstructure:"title"`
}

// OCRConfig controls the coordinate readout loop.
type OCRConfig struct {
	// Region is the coordinate readout ROI in window pixels: x, y, w, h.
	Region      [4]int `mapstructure:"region"`
	Retries     int    `mapstructure:"retries"`
	RetryMs     int    `mapstructure:"retryMs"`
	SoftLimitMs int    `mapstructure:"softLimitMs"`
}

type DragConfig struct {
	DurationMs int `mapstructure:"durationMs"`
	SettleMs   int `mapstructure:"settleMs"`
}

type CalibrationConfig struct {
	Runs            int     `mapstructure:"runs"`
	SoftTolerance   float64 `mapstructure:"softTolerance"`
	ConsistencyGate float64 `mapstructure:"consistencyGate"`
	FilePath        string  `mapstructure:"filePath"`
}

type SearchConfig struct {
	Pattern         string  `mapstructure:"pattern"`
	MaxDistance     float64 `mapstructure:"maxDistance"`
	OverlapFraction float64 `mapstructure:"overlapFraction"`
	ScreenMargin    float64 `mapstructure:"screenMargin"`
	SnapshotDir     string  `mapstructure:"snapshotDir"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ProgressConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("debugDir", "./debug")

	viper.SetDefault("window.title", "")

	viper.SetDefault("ocr.region", []int{0, 0, 0, 0})
	viper.SetDefault("ocr.retries", 5)
	viper.SetDefault("ocr.retryMs", 300)
	viper.SetDefault("ocr.softLimitMs", 3000)

	viper.SetDefault("drag.durationMs", 500)
	viper.SetDefault("drag.settleMs", 500)

	viper.SetDefault("calibration.runs", 3)
	viper.SetDefault("calibration.softTolerance", 0.20)
	viper.SetDefault("calibration.consistencyGate", 0.10)
	viper.SetDefault("calibration.filePath", "./calibration_data.json")

	viper.SetDefault("search.pattern", "spiral")
	viper.SetDefault("search.maxDistance", 200.0)
	viper.SetDefault("search.overlapFraction", 0.20)
	viper.SetDefault("search.screenMargin", 0.10)
	viper.SetDefault("search.snapshotDir", "./debug/snapshots")

	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", "./scout_history.db")

	viper.SetDefault("progress.enabled", false)
	viper.SetDefault("progress.addr", "127.0.0.1:8750")
}

// Load reads scout.cfg.json from configDir. A missing file falls back
// to defaults so a first run still boots; parse errors and bad values
// are fatal.
func Load(configDir string) (*Config, error) {
	setDefaults()

	viper.SetConfigName("scout.cfg.json")
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Calibration.Runs < 1 {
		return fmt.Errorf("calibration.runs must be >= 1, got %d", c.Calibration.Runs)
	}
	if c.Search.OverlapFraction < 0 || c.Search.OverlapFraction >= 1 {
		return fmt.Errorf("search.overlapFraction must be in [0, 1), got %g", c.Search.OverlapFraction)
	}
	if c.Search.ScreenMargin < 0 || c.Search.ScreenMargin >= 1 {
		return fmt.Errorf("search.screenMargin must be in [0, 1), got %g", c.Search.ScreenMargin)
	}
	return nil
}

// Durations with the millisecond fields already applied.

func (c OCRConfig) RetryDelay() time.Duration   { return time.Duration(c.RetryMs) * time.Millisecond }
func (c OCRConfig) SoftLimit() time.Duration    { return time.Duration(c.SoftLimitMs) * time.Millisecond }
func (c DragConfig) Duration() time.Duration    { return time.Duration(c.DurationMs) * time.Millisecond }
func (c DragConfig) SettleDelay() time.Duration { return time.Duration(c.SettleMs) * time.Millisecond }
