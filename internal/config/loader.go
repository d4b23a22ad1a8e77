package config

import (
	"flag"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Flags holds command-line flag values.
type Flags struct {
	ConfigPath string
	LogLevel   string
	Listen     string
	MaxWorkers int
	HELODomain string
	MailFrom   string
}

// ParseFlags parses command-line flags and returns a Flags struct.
func ParseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "./mailprobe.toml", "Path to configuration file")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.Listen, "listen", "", "HTTP API listen address")
	flag.IntVar(&f.MaxWorkers, "max-workers", 0, "Default worker count for bulk verification")
	flag.StringVar(&f.HELODomain, "helo-domain", "", "Domain announced in HELO")
	flag.StringVar(&f.MailFrom, "mail-from", "", "Envelope sender used for probes")

	flag.Parse()
	return f
}

// Load parses a TOML configuration file and returns the Config.
// If the file does not exist, returns the default configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig FileConfig
	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge file config into defaults
	cfg = mergeConfig(cfg, fileConfig.Mailprobe)

	return cfg, nil
}

// ApplyFlags merges command-line flag values into the config.
// Non-zero/non-empty flag values override config file values.
func ApplyFlags(cfg Config, f *Flags) Config {
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}

	if f.Listen != "" {
		cfg.Server.Address = f.Listen
	}

	if f.MaxWorkers > 0 {
		cfg.Verify.MaxWorkers = f.MaxWorkers
	}

	if f.HELODomain != "" {
		cfg.Verify.HELODomain = f.HELODomain
	}

	if f.MailFrom != "" {
		cfg.Verify.MailFrom = f.MailFrom
	}

	return cfg
}

// LoadWithFlags loads configuration from the path specified in flags,
// then applies environment and flag overrides in that order.
func LoadWithFlags(f *Flags) (Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg = ApplyEnv(cfg)
	return ApplyFlags(cfg, f), nil
}

// mergeConfig merges non-zero values from src into dst.
func mergeConfig(dst, src Config) Config {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}

	if src.Verify.DNSTimeout != "" {
		dst.Verify.DNSTimeout = src.Verify.DNSTimeout
	}

	if src.Verify.DNSLifetime != "" {
		dst.Verify.DNSLifetime = src.Verify.DNSLifetime
	}

	if src.Verify.SMTPTimeout != "" {
		dst.Verify.SMTPTimeout = src.Verify.SMTPTimeout
	}

	if src.Verify.SMTPPort > 0 {
		dst.Verify.SMTPPort = src.Verify.SMTPPort
	}

	if src.Verify.ProbePause != "" {
		dst.Verify.ProbePause = src.Verify.ProbePause
	}

	if src.Verify.MaxWorkers > 0 {
		dst.Verify.MaxWorkers = src.Verify.MaxWorkers
	}

	if src.Verify.MXCacheTTL != "" {
		dst.Verify.MXCacheTTL = src.Verify.MXCacheTTL
	}

	if src.Verify.HELODomain != "" {
		dst.Verify.HELODomain = src.Verify.HELODomain
	}

	if src.Verify.MailFrom != "" {
		dst.Verify.MailFrom = src.Verify.MailFrom
	}

	if src.Server.Address != "" {
		dst.Server.Address = src.Server.Address
	}

	if src.Server.ReadTimeout != "" {
		dst.Server.ReadTimeout = src.Server.ReadTimeout
	}

	if src.Server.WriteTimeout != "" {
		dst.Server.WriteTimeout = src.Server.WriteTimeout
	}

	if src.Server.RateLimit > 0 {
		dst.Server.RateLimit = src.Server.RateLimit
	}

	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}

	// Metrics: enabled is explicitly set (boolean), so we merge if source has any non-zero value
	if src.Metrics.Enabled {
		dst.Metrics.Enabled = src.Metrics.Enabled
	}

	if src.Metrics.Address != "" {
		dst.Metrics.Address = src.Metrics.Address
	}

	if src.Metrics.Path != "" {
		dst.Metrics.Path = src.Metrics.Path
	}

	return dst
}
