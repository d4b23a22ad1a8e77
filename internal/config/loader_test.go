package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}

	// Should return defaults
	expected := Default()
	if cfg.Verify.HELODomain != expected.Verify.HELODomain {
		t.Errorf("expected helo_domain %q, got %q", expected.Verify.HELODomain, cfg.Verify.HELODomain)
	}
}

func TestLoadValidTOML(t *testing.T) {
	content := `
[mailprobe]
log_level = "debug"

[mailprobe.verify]
dns_timeout = "5s"
smtp_timeout = "10s"
smtp_port = 2525
probe_pause = "100ms"
max_workers = 10
mx_cache_ttl = "30m"
helo_domain = "probe.example.net"
mail_from = "verify@example.net"

[mailprobe.server]
address = ":9000"
read_timeout = "15s"
rate_limit = 60
allowed_origins = ["https://app.example.net"]
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug'", cfg.LogLevel)
	}

	if cfg.Verify.DNSTimeout != "5s" {
		t.Errorf("verify.dns_timeout = %q, want '5s'", cfg.Verify.DNSTimeout)
	}

	if cfg.Verify.SMTPTimeout != "10s" {
		t.Errorf("verify.smtp_timeout = %q, want '10s'", cfg.Verify.SMTPTimeout)
	}

	if cfg.Verify.SMTPPort != 2525 {
		t.Errorf("verify.smtp_port = %d, want 2525", cfg.Verify.SMTPPort)
	}

	if cfg.Verify.ProbePause != "100ms" {
		t.Errorf("verify.probe_pause = %q, want '100ms'", cfg.Verify.ProbePause)
	}

	if cfg.Verify.MaxWorkers != 10 {
		t.Errorf("verify.max_workers = %d, want 10", cfg.Verify.MaxWorkers)
	}

	if cfg.Verify.MXCacheTTL != "30m" {
		t.Errorf("verify.mx_cache_ttl = %q, want '30m'", cfg.Verify.MXCacheTTL)
	}

	if cfg.Verify.HELODomain != "probe.example.net" {
		t.Errorf("verify.helo_domain = %q, want 'probe.example.net'", cfg.Verify.HELODomain)
	}

	if cfg.Verify.MailFrom != "verify@example.net" {
		t.Errorf("verify.mail_from = %q, want 'verify@example.net'", cfg.Verify.MailFrom)
	}

	if cfg.Server.Address != ":9000" {
		t.Errorf("server.address = %q, want ':9000'", cfg.Server.Address)
	}

	if cfg.Server.ReadTimeout != "15s" {
		t.Errorf("server.read_timeout = %q, want '15s'", cfg.Server.ReadTimeout)
	}

	if cfg.Server.RateLimit != 60 {
		t.Errorf("server.rate_limit = %d, want 60", cfg.Server.RateLimit)
	}

	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://app.example.net" {
		t.Errorf("server.allowed_origins = %v, want ['https://app.example.net']", cfg.Server.AllowedOrigins)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	content := `
[mailprobe
log_level = "broken
`

	path := createTempConfig(t, content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLoadPartialConfig(t *testing.T) {
	content := `
[mailprobe.verify]
helo_domain = "partial.example.com"
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Provided value should be used
	if cfg.Verify.HELODomain != "partial.example.com" {
		t.Errorf("helo_domain = %q, want 'partial.example.com'", cfg.Verify.HELODomain)
	}

	// Defaults should be preserved for unspecified values
	defaults := Default()
	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("log_level = %q, want default %q", cfg.LogLevel, defaults.LogLevel)
	}

	if cfg.Verify.MaxWorkers != defaults.Verify.MaxWorkers {
		t.Errorf("max_workers = %d, want default %d", cfg.Verify.MaxWorkers, defaults.Verify.MaxWorkers)
	}

	if cfg.Verify.MailFrom != defaults.Verify.MailFrom {
		t.Errorf("mail_from = %q, want default %q", cfg.Verify.MailFrom, defaults.Verify.MailFrom)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := Default()

	flags := &Flags{
		LogLevel:   "debug",
		Listen:     ":9999",
		MaxWorkers: 5,
		HELODomain: "flag.example.com",
		MailFrom:   "flag@example.com",
	}

	result := ApplyFlags(cfg, flags)

	if result.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug'", result.LogLevel)
	}

	if result.Server.Address != ":9999" {
		t.Errorf("server.address = %q, want ':9999'", result.Server.Address)
	}

	if result.Verify.MaxWorkers != 5 {
		t.Errorf("max_workers = %d, want 5", result.Verify.MaxWorkers)
	}

	if result.Verify.HELODomain != "flag.example.com" {
		t.Errorf("helo_domain = %q, want 'flag.example.com'", result.Verify.HELODomain)
	}

	if result.Verify.MailFrom != "flag@example.com" {
		t.Errorf("mail_from = %q, want 'flag@example.com'", result.Verify.MailFrom)
	}
}

func TestApplyFlagsEmptyValuesDoNotOverride(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	cfg.Server.Address = ":7000"
	cfg.Verify.MaxWorkers = 50

	// Empty/zero flags should not override
	flags := &Flags{
		LogLevel:   "",
		Listen:     "",
		MaxWorkers: 0,
	}

	result := ApplyFlags(cfg, flags)

	if result.LogLevel != "warn" {
		t.Errorf("log_level = %q, want 'warn' (should not be overridden)", result.LogLevel)
	}

	if result.Server.Address != ":7000" {
		t.Errorf("server.address = %q, want ':7000' (should not be overridden)", result.Server.Address)
	}

	if result.Verify.MaxWorkers != 50 {
		t.Errorf("max_workers = %d, want 50 (should not be overridden)", result.Verify.MaxWorkers)
	}
}

func TestLoadMetricsConfig(t *testing.T) {
	content := `
[mailprobe.metrics]
enabled = true
address = ":9200"
path = "/custom-metrics"
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Metrics.Enabled {
		t.Errorf("metrics.enabled = %v, want true", cfg.Metrics.Enabled)
	}

	if cfg.Metrics.Address != ":9200" {
		t.Errorf("metrics.address = %q, want ':9200'", cfg.Metrics.Address)
	}

	if cfg.Metrics.Path != "/custom-metrics" {
		t.Errorf("metrics.path = %q, want '/custom-metrics'", cfg.Metrics.Path)
	}
}

func TestLoadMetricsConfigPartial(t *testing.T) {
	content := `
[mailprobe.metrics]
enabled = true
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// enabled should be set from file
	if !cfg.Metrics.Enabled {
		t.Errorf("metrics.enabled = %v, want true", cfg.Metrics.Enabled)
	}

	// address and path should use defaults
	defaults := Default()
	if cfg.Metrics.Address != defaults.Metrics.Address {
		t.Errorf("metrics.address = %q, want default %q", cfg.Metrics.Address, defaults.Metrics.Address)
	}

	if cfg.Metrics.Path != defaults.Metrics.Path {
		t.Errorf("metrics.path = %q, want default %q", cfg.Metrics.Path, defaults.Metrics.Path)
	}
}

func TestFlagPriorityOverConfig(t *testing.T) {
	content := `
[mailprobe]
log_level = "info"

[mailprobe.verify]
helo_domain = "config.example.com"
max_workers = 30
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Flags should override config file values
	flags := &Flags{
		HELODomain: "flag.example.com",
	}

	result := ApplyFlags(cfg, flags)

	// Flag values should win
	if result.Verify.HELODomain != "flag.example.com" {
		t.Errorf("helo_domain = %q, want 'flag.example.com' (flag should override)", result.Verify.HELODomain)
	}

	// Non-overridden config values should remain
	if result.LogLevel != "info" {
		t.Errorf("log_level = %q, want 'info' (config value should remain)", result.LogLevel)
	}

	if result.Verify.MaxWorkers != 30 {
		t.Errorf("max_workers = %d, want 30 (config value should remain)", result.Verify.MaxWorkers)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DNS_TIMEOUT", "4")
	t.Setenv("SMTP_TIMEOUT", "8s")
	t.Setenv("PROBE_PAUSE", "0.05")
	t.Setenv("MAX_WORKERS", "12")
	t.Setenv("MX_CACHE_TTL", "1800")
	t.Setenv("HELO_DOMAIN", "env.example.com")
	t.Setenv("MAIL_FROM", "env@example.com")
	t.Setenv("MAILPROBE_LISTEN", ":8080")
	t.Setenv("MAILPROBE_LOG_LEVEL", "debug")

	cfg := ApplyEnv(Default())

	if cfg.Verify.DNSTimeout != "4" {
		t.Errorf("dns_timeout = %q, want '4'", cfg.Verify.DNSTimeout)
	}
	if cfg.Verify.SMTPTimeout != "8s" {
		t.Errorf("smtp_timeout = %q, want '8s'", cfg.Verify.SMTPTimeout)
	}
	if cfg.Verify.ProbePause != "0.05" {
		t.Errorf("probe_pause = %q, want '0.05'", cfg.Verify.ProbePause)
	}
	if cfg.Verify.MaxWorkers != 12 {
		t.Errorf("max_workers = %d, want 12", cfg.Verify.MaxWorkers)
	}
	if cfg.Verify.MXCacheTTL != "1800" {
		t.Errorf("mx_cache_ttl = %q, want '1800'", cfg.Verify.MXCacheTTL)
	}
	if cfg.Verify.HELODomain != "env.example.com" {
		t.Errorf("helo_domain = %q, want 'env.example.com'", cfg.Verify.HELODomain)
	}
	if cfg.Verify.MailFrom != "env@example.com" {
		t.Errorf("mail_from = %q, want 'env@example.com'", cfg.Verify.MailFrom)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("server.address = %q, want ':8080'", cfg.Server.Address)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug'", cfg.LogLevel)
	}

	// Numeric env durations resolve through the accessors
	if got := cfg.Verify.DNSTimeoutDuration(); got.Seconds() != 4 {
		t.Errorf("DNSTimeoutDuration() = %v, want 4s", got)
	}
	if got := cfg.Verify.ProbePauseDuration(); got.Milliseconds() != 50 {
		t.Errorf("ProbePauseDuration() = %v, want 50ms", got)
	}
}

func TestApplyEnvInvalidMaxWorkersIgnored(t *testing.T) {
	t.Setenv("MAX_WORKERS", "many")

	cfg := ApplyEnv(Default())

	if cfg.Verify.MaxWorkers != 20 {
		t.Errorf("max_workers = %d, want default 20", cfg.Verify.MaxWorkers)
	}
}

func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create temp config: %v", err)
	}
	return path
}
