package finder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mailprobe/mailprobe/internal/logging"
	"github.com/mailprobe/mailprobe/internal/metrics"
	"github.com/mailprobe/mailprobe/internal/verify"
)

// ErrNoPatterns is returned when a name yields no usable candidates.
var ErrNoPatterns = errors.New("no candidate patterns could be generated")

// Verifier produces a verification result for one address.
// Implemented by verify.Verifier.
type Verifier interface {
	Verify(ctx context.Context, email string) verify.Result
}

// Config wires the finder's collaborators.
type Config struct {
	Verifier Verifier
	Metrics  metrics.Collector
	Logger   *slog.Logger
}

// Finder tries candidate addresses in ranked order and stops at the
// first deliverable one.
type Finder struct {
	verifier Verifier
	metrics  metrics.Collector
	logger   *slog.Logger
}

// New creates a Finder. Verifier is required; Metrics and Logger fall
// back to noop and slog.Default.
func New(cfg Config) *Finder {
	collector := cfg.Metrics
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{verifier: cfg.Verifier, metrics: collector, logger: logger}
}

// Find generates the candidate addresses for fullName at domain and
// verifies them sequentially. It returns the first address whose
// result is deliverable, or ok == false when none qualifies. A domain
// failing the cleaning rule or a name producing no candidates returns
// an error; not finding an address is not an error.
func (f *Finder) Find(ctx context.Context, fullName, domain string) (found string, ok bool, err error) {
	cleaned, err := CleanDomain(domain)
	if err != nil {
		return "", false, err
	}
	candidates := GeneratePatterns(fullName, cleaned)
	if len(candidates) == 0 {
		return "", false, ErrNoPatterns
	}

	logger := f.logger.With("domain", cleaned, "candidates", len(candidates))
	logger.Debug("pattern search started", "name", fullName)

	for i, candidate := range candidates {
		res, verified := f.verifyCandidate(ctx, candidate)
		if !verified {
			continue
		}
		if res.Deliverable && res.Status == verify.StatusValid {
			f.metrics.PatternSearchCompleted("found", i+1)
			logger.Info("deliverable address found", "address", candidate, "attempts", i+1)
			return candidate, true, nil
		}
	}

	f.metrics.PatternSearchCompleted("not_found", len(candidates))
	logger.Info("no deliverable address found", "attempts", len(candidates))
	return "", false, nil
}

// verifyCandidate shields the search loop from a panicking verifier:
// the candidate is skipped and the loop moves on.
func (f *Finder) verifyCandidate(ctx context.Context, candidate string) (res verify.Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.WithVerification(f.logger, candidate).Error("verifier panicked, skipping candidate", "panic", r)
			ok = false
		}
	}()
	return f.verifier.Verify(ctx, candidate), true
}
