package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"civicreports/internal/duplicate"
	"civicreports/internal/engine"
)

// Config holds the application's configuration. Zero values fall back to the
// documented defaults, so a minimal config file only needs the database URL
// and server port.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int64  `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
	Validation struct {
		ConfirmationsThreshold int `yaml:"confirmations_threshold"`
		RejectionsThreshold    int `yaml:"rejections_threshold"`
		DuplicatesThreshold    int `yaml:"duplicates_threshold"`
		SeverityVotesThreshold int `yaml:"severity_votes_threshold"`
	} `yaml:"validation"`
	Duplicates struct {
		MaxDistanceMeters   float64 `yaml:"max_distance_meters"`
		MaxTimeWindowHours  float64 `yaml:"max_time_window_hours"`
		MinTextSimilarity   float64 `yaml:"min_text_similarity"`
		DistanceWeight      float64 `yaml:"distance_weight"`
		TimeWeight          float64 `yaml:"time_weight"`
		TextWeight          float64 `yaml:"text_weight"`
		CacheSize           int     `yaml:"cache_size"`
		CacheTTLMinutes     int64   `yaml:"cache_ttl_minutes"`
		ScanIntervalSeconds int64   `yaml:"scan_interval_seconds"`
		ScanEnabled         bool    `yaml:"scan_enabled"`
	} `yaml:"duplicates"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return config, nil
}

// EngineConfig returns the validation thresholds, with defaults applied for
// unset values.
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	if c.Validation.ConfirmationsThreshold > 0 {
		cfg.ConfirmationsThreshold = c.Validation.ConfirmationsThreshold
	}
	if c.Validation.RejectionsThreshold > 0 {
		cfg.RejectionsThreshold = c.Validation.RejectionsThreshold
	}
	if c.Validation.DuplicatesThreshold > 0 {
		cfg.DuplicatesThreshold = c.Validation.DuplicatesThreshold
	}
	if c.Validation.SeverityVotesThreshold > 0 {
		cfg.SeverityVotesThreshold = c.Validation.SeverityVotesThreshold
	}
	return cfg
}

// DetectorConfig returns the duplicate detection parameters, with defaults
// applied for unset values.
func (c *Config) DetectorConfig() duplicate.Config {
	cfg := duplicate.DefaultConfig()
	if c.Duplicates.MaxDistanceMeters > 0 {
		cfg.MaxDistanceMeters = c.Duplicates.MaxDistanceMeters
	}
	if c.Duplicates.MaxTimeWindowHours > 0 {
		cfg.MaxTimeWindowHours = c.Duplicates.MaxTimeWindowHours
	}
	if c.Duplicates.MinTextSimilarity > 0 {
		cfg.MinTextSimilarity = c.Duplicates.MinTextSimilarity
	}
	if c.Duplicates.DistanceWeight > 0 {
		cfg.DistanceWeight = c.Duplicates.DistanceWeight
	}
	if c.Duplicates.TimeWeight > 0 {
		cfg.TimeWeight = c.Duplicates.TimeWeight
	}
	if c.Duplicates.TextWeight > 0 {
		cfg.TextWeight = c.Duplicates.TextWeight
	}
	if c.Duplicates.CacheSize > 0 {
		cfg.CacheSize = c.Duplicates.CacheSize
	}
	if c.Duplicates.CacheTTLMinutes > 0 {
		cfg.CacheTTL = time.Duration(c.Duplicates.CacheTTLMinutes) * time.Minute
	}
	return cfg
}

// TokenTTL returns the moderator session lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLHours > 0 {
		return time.Duration(c.Auth.TokenTTLHours) * time.Hour
	}
	return 24 * time.Hour
}
