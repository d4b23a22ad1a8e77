// Package config provides configuration management for the mailprobe service.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FileConfig is the top-level wrapper for the configuration file.
// Settings live under a [mailprobe] table so the file can be shared
// with companion tools.
type FileConfig struct {
	Mailprobe Config `toml:"mailprobe"`
}

// Config holds the complete service configuration.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Verify   VerifyConfig  `toml:"verify"`
	Server   ServerConfig  `toml:"server"`
	Metrics  MetricsConfig `toml:"metrics"`
}

// VerifyConfig holds settings for DNS resolution and SMTP probing.
// Duration fields accept Go duration strings ("3s", "80ms") or bare
// numbers interpreted as seconds ("3", "0.08").
type VerifyConfig struct {
	DNSTimeout  string `toml:"dns_timeout"`
	DNSLifetime string `toml:"dns_lifetime"`
	SMTPTimeout string `toml:"smtp_timeout"`
	SMTPPort    int    `toml:"smtp_port"`
	ProbePause  string `toml:"probe_pause"`
	MaxWorkers  int    `toml:"max_workers"`
	MXCacheTTL  string `toml:"mx_cache_ttl"`
	HELODomain  string `toml:"helo_domain"`
	MailFrom    string `toml:"mail_from"`
}

// ServerConfig holds settings for the HTTP API listener.
type ServerConfig struct {
	Address        string   `toml:"address"`
	ReadTimeout    string   `toml:"read_timeout"`
	WriteTimeout   string   `toml:"write_timeout"`
	RateLimit      int      `toml:"rate_limit"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// MetricsConfig holds configuration for Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Path    string `toml:"path"`
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		LogLevel: "info",
		Verify: VerifyConfig{
			DNSTimeout:  "3s",
			DNSLifetime: "3s",
			SMTPTimeout: "6s",
			SMTPPort:    25,
			ProbePause:  "80ms",
			MaxWorkers:  20,
			MXCacheTTL:  "1h",
			HELODomain:  "example.com",
			MailFrom:    "probe@example.com",
		},
		Server: ServerConfig{
			Address:        ":8000",
			ReadTimeout:    "30s",
			WriteTimeout:   "5m",
			RateLimit:      120,
			AllowedOrigins: []string{"*"},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9100",
			Path:    "/metrics",
		},
	}
}

// Validate checks that the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Verify.HELODomain == "" {
		return errors.New("helo_domain is required")
	}

	if c.Verify.MailFrom == "" {
		return errors.New("mail_from is required")
	}

	if !strings.Contains(c.Verify.MailFrom, "@") {
		return fmt.Errorf("mail_from %q is not an address", c.Verify.MailFrom)
	}

	if c.Verify.SMTPPort <= 0 || c.Verify.SMTPPort > 65535 {
		return fmt.Errorf("invalid smtp_port %d", c.Verify.SMTPPort)
	}

	if c.Verify.MaxWorkers <= 0 {
		return errors.New("max_workers must be positive")
	}

	for _, d := range []struct {
		name, value string
	}{
		{"dns_timeout", c.Verify.DNSTimeout},
		{"dns_lifetime", c.Verify.DNSLifetime},
		{"smtp_timeout", c.Verify.SMTPTimeout},
		{"probe_pause", c.Verify.ProbePause},
		{"mx_cache_ttl", c.Verify.MXCacheTTL},
		{"read_timeout", c.Server.ReadTimeout},
		{"write_timeout", c.Server.WriteTimeout},
	} {
		if d.value == "" {
			continue
		}
		if _, err := parseDuration(d.value); err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
	}

	if c.Server.Address == "" {
		return errors.New("server address is required")
	}

	if c.Server.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return errors.New("metrics address is required when metrics are enabled")
		}
		if c.Metrics.Path == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
	}

	return nil
}

// DNSTimeoutDuration returns the per-query DNS timeout.
// Returns 3 seconds if not configured or invalid.
func (c *VerifyConfig) DNSTimeoutDuration() time.Duration {
	return durationOrDefault(c.DNSTimeout, 3*time.Second)
}

// DNSLifetimeDuration returns the total budget for one MX resolution.
// Returns 3 seconds if not configured or invalid.
func (c *VerifyConfig) DNSLifetimeDuration() time.Duration {
	return durationOrDefault(c.DNSLifetime, 3*time.Second)
}

// SMTPTimeoutDuration returns the per-operation SMTP timeout.
// Returns 6 seconds if not configured or invalid.
func (c *VerifyConfig) SMTPTimeoutDuration() time.Duration {
	return durationOrDefault(c.SMTPTimeout, 6*time.Second)
}

// ProbePauseDuration returns the pause between RCPT probes.
// Returns 80 milliseconds if not configured or invalid.
func (c *VerifyConfig) ProbePauseDuration() time.Duration {
	return durationOrDefault(c.ProbePause, 80*time.Millisecond)
}

// MXCacheTTLDuration returns the MX cache entry lifetime.
// Returns 1 hour if not configured or invalid.
func (c *VerifyConfig) MXCacheTTLDuration() time.Duration {
	return durationOrDefault(c.MXCacheTTL, time.Hour)
}

// ReadTimeoutDuration returns the HTTP read timeout.
// Returns 30 seconds if not configured or invalid.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return durationOrDefault(c.ReadTimeout, 30*time.Second)
}

// WriteTimeoutDuration returns the HTTP write timeout. Bulk verification
// holds the response open while probes run, so the default is generous.
// Returns 5 minutes if not configured or invalid.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return durationOrDefault(c.WriteTimeout, 5*time.Minute)
}

// parseDuration parses a Go duration string or a bare number of seconds.
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(f * float64(time.Second)), nil
}

func durationOrDefault(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := parseDuration(s)
	if err != nil {
		return def
	}
	return d
}
