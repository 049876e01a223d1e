package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Source       string `yaml:"source"` // "eastmoney" or "mock"
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Engine struct {
		Windows        []int   `yaml:"windows"`
		TopN           int     `yaml:"top_n"`
		StreakMin      int     `yaml:"streak_min"`
		TopSectors     int     `yaml:"top_sectors"`
		TopGainSectors int     `yaml:"top_gain_sectors"`
		Rank60         int     `yaml:"rank60"`
		Decline3dPct   float64 `yaml:"decline3d_pct"`
		VolumeAvgDays  int     `yaml:"volume_avg_days"`
	} `yaml:"engine"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Source = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.DataSource.Source == "" {
		cfg.DataSource.Source = "eastmoney"
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = 60
	}
	if cfg.Schedule.DailyCron == "" {
		// After the close, Mon-Fri, Beijing time.
		cfg.Schedule.DailyCron = "0 0 16 * * 1-5"
	}
	if len(cfg.Engine.Windows) == 0 {
		cfg.Engine.Windows = []int{10, 20, 30, 50}
	}
	if cfg.Engine.TopN == 0 {
		cfg.Engine.TopN = 5
	}
	if cfg.Engine.StreakMin == 0 {
		cfg.Engine.StreakMin = 5
	}
	if cfg.Engine.TopSectors == 0 {
		cfg.Engine.TopSectors = 3
	}
	if cfg.Engine.TopGainSectors == 0 {
		cfg.Engine.TopGainSectors = 5
	}
	if cfg.Engine.Rank60 == 0 {
		cfg.Engine.Rank60 = 60
	}
	if cfg.Engine.Decline3dPct == 0 {
		cfg.Engine.Decline3dPct = -20
	}
	if cfg.Engine.VolumeAvgDays == 0 {
		cfg.Engine.VolumeAvgDays = 5
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/boardpulse.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are coherent.
func (c *Config) Validate() error {
	if c.DataSource.Source != "eastmoney" && c.DataSource.Source != "mock" {
		return fmt.Errorf("data_source.source must be eastmoney or mock, got %q", c.DataSource.Source)
	}
	maxWindow := 0
	for _, w := range c.Engine.Windows {
		if w <= 0 {
			return fmt.Errorf("engine.windows entries must be positive, got %d", w)
		}
		if w > maxWindow {
			maxWindow = w
		}
	}
	// Windows need w+1 closes; the cohort scans need one extra prior day.
	if c.DataSource.LookbackDays < maxWindow+2 {
		return fmt.Errorf("data_source.lookback_days %d too short for window %d",
			c.DataSource.LookbackDays, maxWindow)
	}
	if c.Engine.TopN <= 0 {
		return fmt.Errorf("engine.top_n must be positive")
	}
	if c.Engine.Decline3dPct >= 0 {
		return fmt.Errorf("engine.decline3d_pct must be negative")
	}
	return nil
}
