package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Yaseeru/CodeToContent-sub005/internal/ratelimit"
)

type Server struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMS  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
	IdleTimeoutMS  int    `yaml:"idle_timeout_ms"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
}

type Observability struct {
	LogLevel       string `yaml:"log_level"`       // "debug","info","warn","error"
	PrometheusPath string `yaml:"prometheus_path"` // e.g. "/metrics"
}

// Quota is one rate-limit class as written in yaml. Interval is in
// milliseconds to match how the limits are usually quoted ("100 per
// 60000ms") and to avoid yaml duration-string parsing.
type Quota struct {
	IntervalMS             int `yaml:"interval_ms"`
	Limit                  int `yaml:"limit"`
	UniqueTokenPerInterval int `yaml:"unique_token_per_interval"`
}

func (q Quota) RateConfig() ratelimit.Config {
	return ratelimit.Config{
		Interval:               time.Duration(q.IntervalMS) * time.Millisecond,
		Limit:                  q.Limit,
		UniqueTokenPerInterval: q.UniqueTokenPerInterval,
	}
}

type Limits struct {
	// Anonymous applies to requests without a recognized API key,
	// Authenticated to requests with one. The two classes are counted
	// by independent limiters.
	Anonymous     Quota `yaml:"anonymous"`
	Authenticated Quota `yaml:"authenticated"`
	SweepPeriodMS int   `yaml:"sweep_period_ms"`
}

func (l Limits) SweepPeriod() time.Duration {
	if l.SweepPeriodMS <= 0 {
		return time.Minute
	}
	return time.Duration(l.SweepPeriodMS) * time.Millisecond
}

type APIKey struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

type Auth struct {
	Header string   `yaml:"header"`
	Keys   []APIKey `yaml:"keys"`
}

type Root struct {
	Server        Server        `yaml:"server"`
	Observability Observability `yaml:"observability"`
	Auth          Auth          `yaml:"auth"`
	Limits        Limits        `yaml:"limits"`
}

func (s Server) ReadTimeout() time.Duration {
	if s.ReadTimeoutMS == 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

func (s Server) WriteTimeout() time.Duration {
	if s.WriteTimeoutMS == 0 {
		return 10 * time.Second
	}
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

func (s Server) IdleTimeout() time.Duration {
	if s.IdleTimeoutMS == 0 {
		return 60 * time.Second
	}
	return time.Duration(s.IdleTimeoutMS) * time.Millisecond
}

func (s Server) MaxBody() int64 {
	if s.MaxBodyBytes == 0 {
		return 1 << 20
	}
	return s.MaxBodyBytes
} // default 1MB

func Load(path string) (*Root, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Root
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.PrometheusPath == "" {
		cfg.Observability.PrometheusPath = "/metrics"
	}
	if cfg.Auth.Header == "" {
		cfg.Auth.Header = "X-API-Key"
	}

	applyQuotaDefaults(&cfg.Limits.Anonymous, 60_000, 10)
	applyQuotaDefaults(&cfg.Limits.Authenticated, 60_000, 100)

	if err := cfg.Limits.Anonymous.RateConfig().Validate(); err != nil {
		return nil, fmt.Errorf("limits.anonymous: %w", err)
	}
	if err := cfg.Limits.Authenticated.RateConfig().Validate(); err != nil {
		return nil, fmt.Errorf("limits.authenticated: %w", err)
	}

	return &cfg, nil
}

func applyQuotaDefaults(q *Quota, intervalMS, limit int) {
	if q.IntervalMS == 0 {
		q.IntervalMS = intervalMS
	}
	if q.Limit == 0 {
		q.Limit = limit
	}
	if q.UniqueTokenPerInterval == 0 {
		q.UniqueTokenPerInterval = 500
	}
}
