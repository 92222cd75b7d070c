package config

import (
	_ "embed"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"leadhunt/internal/query"
	"leadhunt/internal/search"
)

//go:embed default.yml
var defaultYAML []byte

type Config struct {
	Search struct {
		Endpoint       string `yaml:"endpoint" json:"endpoint"`
		CX             string `yaml:"cx" json:"cx"`
		APIKey         string `yaml:"api_key" json:"api_key,omitempty"`
		PerPage        int    `yaml:"per_page" json:"per_page"`
		MaxStart       int    `yaml:"max_start" json:"max_start"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
		MaxAttempts    int    `yaml:"max_attempts" json:"max_attempts"`
		BackoffSeconds int    `yaml:"backoff_seconds" json:"backoff_seconds"`
		PageDelayMS    int    `yaml:"page_delay_ms" json:"page_delay_ms"`
	} `yaml:"search" json:"search"`

	Output struct {
		Dir string `yaml:"dir" json:"dir"`
	} `yaml:"output" json:"output"`

	History struct {
		DBPath string `yaml:"db_path" json:"db_path"`
	} `yaml:"history" json:"history"`

	Server struct {
		Port int `yaml:"port" json:"port"`
	} `yaml:"server" json:"server"`

	Log struct {
		Level string `yaml:"level" json:"level"`
	} `yaml:"log" json:"log"`
}

// Default returns the embedded default configuration.
func Default() Config {
	var cfg Config
	// embedded file is covered by tests
	_ = yaml.Unmarshal(defaultYAML, &cfg)
	return cfg
}

// Load reads path on top of the defaults, so keys missing from an older
// config file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, eris.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func (c Config) Paging() query.Paging {
	return query.Paging{PerPage: c.Search.PerPage, MaxStart: c.Search.MaxStart}
}

func (c Config) SearchConfig() search.Config {
	return search.Config{
		Endpoint: c.Search.Endpoint,
		Timeout:  time.Duration(c.Search.TimeoutSeconds) * time.Second,
	}
}

func (c Config) Backoff() time.Duration {
	return time.Duration(c.Search.BackoffSeconds) * time.Second
}

func (c Config) PageInterval() time.Duration {
	return time.Duration(c.Search.PageDelayMS) * time.Millisecond
}
