package config

import (
	"os"
	"strconv"
)

// ApplyEnv applies environment variable overrides to the configuration.
// Environment variables take precedence over TOML config but are overridden
// by command-line flags.
//
// Probe tuning variables are read without a prefix so deployments can share
// them with sibling tools; durations accept bare seconds ("3", "0.08") as
// well as Go duration strings. Service-level settings use the MAILPROBE_
// prefix.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("DNS_TIMEOUT"); v != "" {
		cfg.Verify.DNSTimeout = v
	}
	if v := os.Getenv("DNS_LIFETIME"); v != "" {
		cfg.Verify.DNSLifetime = v
	}
	if v := os.Getenv("SMTP_TIMEOUT"); v != "" {
		cfg.Verify.SMTPTimeout = v
	}
	if v := os.Getenv("PROBE_PAUSE"); v != "" {
		cfg.Verify.ProbePause = v
	}
	if v := os.Getenv("MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Verify.MaxWorkers = n
		}
	}
	if v := os.Getenv("MX_CACHE_TTL"); v != "" {
		cfg.Verify.MXCacheTTL = v
	}
	if v := os.Getenv("HELO_DOMAIN"); v != "" {
		cfg.Verify.HELODomain = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.Verify.MailFrom = v
	}

	if v := os.Getenv("MAILPROBE_LISTEN"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("MAILPROBE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MAILPROBE_METRICS_ADDRESS"); v != "" {
		cfg.Metrics.Address = v
		cfg.Metrics.Enabled = true
	}

	return cfg
}
