// Package verify implements the deliverability decision pipeline:
// timing analysis, scoring, and the single and bulk verifiers.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mailprobe/mailprobe/internal/logging"
	"github.com/mailprobe/mailprobe/internal/metrics"
	"github.com/mailprobe/mailprobe/internal/mx"
	"github.com/mailprobe/mailprobe/internal/probe"
)

// emailPattern is the syntax gate. Anything it rejects is terminal
// before any network I/O.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// MXResolver resolves a domain to its ordered MX hosts. Implemented by
// mx.Service.
type MXResolver interface {
	Resolve(ctx context.Context, domain string) ([]string, error)
}

// Prober runs one SMTP probe session. Implemented by probe.Prober.
type Prober interface {
	Probe(ctx context.Context, mxHost, email string, adaptive bool) []probe.Record
}

// Config wires the verifier's collaborators.
type Config struct {
	MX      MXResolver
	Prober  Prober
	Metrics metrics.Collector
	Logger  *slog.Logger
}

// Verifier orchestrates syntax check, MX resolution, probing, timing
// analysis, and scoring into one result record per address.
type Verifier struct {
	mx      MXResolver
	prober  Prober
	metrics metrics.Collector
	logger  *slog.Logger
}

// New creates a Verifier. MX and Prober are required; Metrics and
// Logger fall back to noop and slog.Default.
func New(cfg Config) *Verifier {
	collector := cfg.Metrics
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{mx: cfg.MX, prober: cfg.Prober, metrics: collector, logger: logger}
}

// Verify runs the full pipeline for one address. It always returns a
// result record; failures surface in Status and Reason, never as
// errors.
func (v *Verifier) Verify(ctx context.Context, email string) Result {
	start := time.Now()
	email = strings.TrimSpace(email)
	logger := logging.WithVerification(v.logger, email)

	if !emailPattern.MatchString(email) {
		v.metrics.VerificationRejected("bad_syntax")
		return terminal(email, ReasonBadSyntax)
	}

	domain := email[strings.Index(email, "@")+1:]
	hosts, err := v.mx.Resolve(ctx, domain)
	if err != nil {
		logger.Debug("mx resolution failed", "error", err)
		v.metrics.VerificationRejected("mx_error")
		return terminal(email, fmt.Sprintf("mx_error:%v", err))
	}
	if len(hosts) == 0 {
		v.metrics.VerificationRejected("no_mx")
		return terminal(email, ReasonNoMX)
	}

	provider := mx.DetectProvider(hosts[0])
	records := v.prober.Probe(ctx, hosts[0], email, true)

	res := Result{
		Email:    email,
		MX:       hosts,
		Provider: provider,
		Reason:   ReasonPatternAnalysis,
	}
	if probe.IsSentinel(records) {
		records = nil
	} else {
		liftRecords(&res, records)
	}

	a := analyzeTiming(records)
	res.TimingDelta = &a.Delta
	res.Entropy = &a.Entropy
	res.AvgLatency = a.AvgLatency
	res.Confidence = &a.Confidence

	vd := scoreTiming(scoreInput{
		Decoy1Time: res.Fake1Time,
		Decoy2Time: res.Fake2Time,
		RealTime:   res.RealTime,
		RealCode:   res.RealCode,
		Confidence: a.Confidence,
		Entropy:    a.Entropy,
		Provider:   provider,
	})
	res.Pattern = vd.Pattern
	res.Score = vd.Score
	res.Status = vd.Status
	res.Deliverable = vd.Deliverable

	v.metrics.VerificationCompleted(provider, vd.Status, time.Since(start))
	logger.Info("verification completed",
		"provider", provider,
		"status", vd.Status,
		"score", vd.Score,
		"pattern", vd.Pattern,
	)
	return res
}

// liftRecords copies the probe sequence into the fixed result slots:
// decoy#1, real, optional decoy#2.
func liftRecords(res *Result, records []probe.Record) {
	if len(records) > 0 {
		res.Fake1Code, res.Fake1Time = records[0].Code, records[0].Latency
	}
	if len(records) > 1 {
		res.RealCode, res.RealTime = records[1].Code, records[1].Latency
	}
	if len(records) > 2 {
		res.Fake2Code, res.Fake2Time = records[2].Code, records[2].Latency
	}
}
