// internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key,omitempty"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`

	RateLimit struct {
		Requests      int `yaml:"requests"`
		WindowSeconds int `yaml:"window_seconds"`
		// UnitMillis is the rounding granularity of the spacing; 0 means 1s.
		UnitMillis    int `yaml:"unit_ms,omitempty"`
	} `yaml:"rate_limit"`

	Polling struct {
		Workers        int `yaml:"workers"`
		MaxAttempts    int `yaml:"max_attempts"`
		MaxWaitMinutes int `yaml:"max_wait_minutes"`
	} `yaml:"polling"`

	Output struct {
		Dir        string `yaml:"dir"`
		CSV        bool   `yaml:"csv"`
		DB         bool   `yaml:"db"`
		EventsFile string `yaml:"events_file"`
	} `yaml:"output"`

	Database struct {
		URL string `yaml:"url,omitempty"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default matches the reference deployment: 10 requests per minute.
func Default() Config {
	var cfg Config
	cfg.API.BaseURL = "https://api.waterfall.to/v1/prospector"
	cfg.API.TimeoutSeconds = 30
	cfg.RateLimit.Requests = 10
	cfg.RateLimit.WindowSeconds = 60
	cfg.Polling.Workers = 1
	cfg.Polling.MaxAttempts = 360
	cfg.Polling.MaxWaitMinutes = 120
	cfg.Output.Dir = "contacts"
	cfg.Output.CSV = true
	cfg.Output.DB = true
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads path on top of Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c Config) Window() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

func (c Config) Unit() time.Duration {
	if c.RateLimit.UnitMillis <= 0 {
		return time.Second
	}
	return time.Duration(c.RateLimit.UnitMillis) * time.Millisecond
}

func (c Config) MaxWait() time.Duration {
	return time.Duration(c.Polling.MaxWaitMinutes) * time.Minute
}
