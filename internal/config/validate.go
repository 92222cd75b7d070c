package config

import (
	"fmt"
	"net/url"
	"strings"

	"leadhunt/internal/query"
	"leadhunt/internal/search"
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

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// NormalizeAndValidate returns a normalized copy of cfg plus any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.Search.Endpoint = strings.TrimSpace(out.Search.Endpoint)
	out.Search.CX = strings.TrimSpace(out.Search.CX)
	out.Search.APIKey = strings.TrimSpace(out.Search.APIKey)
	out.Output.Dir = strings.TrimSpace(out.Output.Dir)
	out.History.DBPath = strings.TrimSpace(out.History.DBPath)
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))

	if out.Search.Endpoint == "" {
		out.Search.Endpoint = search.DefaultEndpoint
	} else if u, err := url.Parse(out.Search.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("search.endpoint must be an absolute URL")
	}

	// ---- paging ----
	if out.Search.PerPage == 0 {
		out.Search.PerPage = query.DefaultPerPage
	}
	if out.Search.PerPage < 1 || out.Search.PerPage > query.DefaultPerPage {
		res.addErr("search.per_page must be 1..%d", query.DefaultPerPage)
	}
	if out.Search.MaxStart == 0 {
		out.Search.MaxStart = query.DefaultMaxStart
	}
	if out.Search.MaxStart < 1 || out.Search.MaxStart > query.DefaultMaxStart {
		res.addErr("search.max_start must be 1..%d (the service rejects deeper offsets)", query.DefaultMaxStart)
	}

	// ---- retry / pacing ----
	if out.Search.TimeoutSeconds <= 0 {
		res.addErr("search.timeout_seconds must be > 0")
	} else if out.Search.TimeoutSeconds > 120 {
		res.addWarn("search.timeout_seconds is very high (%d); a stuck request will hold the run that long.", out.Search.TimeoutSeconds)
	}
	if out.Search.MaxAttempts < 1 {
		res.addErr("search.max_attempts must be >= 1")
	}
	if out.Search.BackoffSeconds < 0 {
		res.addErr("search.backoff_seconds must be >= 0")
	}
	if out.Search.PageDelayMS < 0 {
		res.addErr("search.page_delay_ms must be >= 0")
	} else if out.Search.PageDelayMS == 0 {
		res.addWarn("search.page_delay_ms is 0; pages are requested back to back.")
	}

	if out.Search.CX == "" {
		res.addWarn("search.cx is empty; run `leadhunt setup` before searching.")
	}
	if out.Search.APIKey != "" {
		res.addWarn("search.api_key is stored in plaintext; prefer the OS keychain.")
	}

	if out.Output.Dir == "" {
		res.addErr("output.dir is required")
	}
	if out.History.DBPath == "" {
		res.addErr("history.db_path is required")
	}
	if out.Server.Port <= 0 || out.Server.Port > 65535 {
		res.addErr("server.port must be 1..65535")
	}

	if out.Log.Level == "" {
		out.Log.Level = "info"
	}
	if !logLevels[out.Log.Level] {
		res.addErr("log.level must be one of debug, info, warn, error")
	}

	return out, res
}
