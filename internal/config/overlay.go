// config/overlay.go
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// OverlayEnv applies environment overrides. API_KEY and DATABASE_URL keep the
// names the deployment already uses.
func OverlayEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str(&cfg.API.APIKey, "PROSPECT_API_KEY", "API_KEY")
	str(&cfg.API.BaseURL, "PROSPECT_BASE_URL")
	str(&cfg.Database.URL, "PROSPECT_DATABASE_URL", "DATABASE_URL")
	str(&cfg.Output.Dir, "PROSPECT_OUTPUT_DIR")
	str(&cfg.Log.Level, "PROSPECT_LOG_LEVEL")
	str(&cfg.Log.Format, "PROSPECT_LOG_FORMAT")
	num(&cfg.RateLimit.Requests, "PROSPECT_RATE_REQUESTS")
	num(&cfg.RateLimit.WindowSeconds, "PROSPECT_RATE_WINDOW_SECONDS")
	num(&cfg.Polling.Workers, "PROSPECT_WORKERS")
}
