package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a trimmed copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.API.BaseURL = strings.TrimSpace(out.API.BaseURL)
	out.API.APIKey = strings.TrimSpace(out.API.APIKey)
	out.Output.Dir = strings.TrimSpace(out.Output.Dir)
	out.Database.URL = strings.TrimSpace(out.Database.URL)
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))

	// ---- api ----
	if u, err := url.Parse(out.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("api.base_url must be an absolute URL")
	}
	if out.API.APIKey == "" {
		res.addErr("api key is required (API_KEY env, api.api_key, or `prospect key set`)")
	}
	if out.API.TimeoutSeconds <= 0 {
		res.addErr("api.timeout_seconds must be > 0")
	}

	// ---- rate limit ----
	if out.RateLimit.Requests <= 0 {
		res.addErr("rate_limit.requests must be > 0")
	}
	if out.RateLimit.WindowSeconds <= 0 {
		res.addErr("rate_limit.window_seconds must be > 0")
	}
	if out.RateLimit.UnitMillis < 0 {
		res.addErr("rate_limit.unit_ms must be >= 0")
	}

	// ---- polling ----
	if out.Polling.Workers <= 0 {
		res.addErr("polling.workers must be > 0")
	} else if out.Polling.Workers > 32 {
		res.addWarn("polling.workers is %d; every worker shares one rate limit, so extra workers only wait.", out.Polling.Workers)
	}
	if out.Polling.MaxAttempts < 0 {
		res.addErr("polling.max_attempts must be >= 0")
	}
	if out.Polling.MaxWaitMinutes < 0 {
		res.addErr("polling.max_wait_minutes must be >= 0")
	}
	if out.Polling.MaxAttempts == 0 && out.Polling.MaxWaitMinutes == 0 {
		res.addWarn("polling has no attempt or time bound; a job the server never resolves will poll forever.")
	}

	// ---- output ----
	if !out.Output.CSV && !out.Output.DB {
		res.addWarn("output.csv and output.db are both false; results will only be logged.")
	}
	if out.Output.CSV && out.Output.Dir == "" {
		res.addErr("output.dir is required when output.csv=true")
	}
	if out.Output.DB && out.Database.URL == "" {
		res.addErr("database url is required when output.db=true (DATABASE_URL env or database.url)")
	}

	// ---- log ----
	if _, err := logrus.ParseLevel(out.Log.Level); err != nil {
		res.addErr("log.level %q is not a valid level", out.Log.Level)
	}
	if out.Log.Format != "text" && out.Log.Format != "json" {
		res.addErr("log.format must be text or json")
	}

	return out, res
}
