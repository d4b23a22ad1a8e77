// Package metrics provides interfaces and implementations for collecting
// verification metrics. This package defines the Collector interface for
// recording metrics and the Server interface for exposing them.
package metrics

import (
	"context"
	"time"
)

// Collector defines the interface for recording verification metrics.
type Collector interface {
	// Verification metrics (provider label comes from MX classification)
	// status should be "valid", "risky", "invalid", or "error"
	VerificationCompleted(provider string, status string, duration time.Duration)
	// VerificationRejected records terminal outcomes that never reached
	// probing: "bad_syntax", "no_mx", or "mx_error"
	VerificationRejected(reason string)

	// Probe metrics (no domain label - cardinality)
	// outcome should be "completed" or "connect_error"
	ProbeSessionCompleted(outcome string)
	// kind should be "decoy" or "real"
	RcptProbeSent(kind string)

	// MX cache metrics
	// result should be "hit", "miss", "expired", or "error"
	MXLookupCompleted(result string)

	// Finder metrics
	// outcome should be "found" or "not_found"
	PatternSearchCompleted(outcome string, attempts int)

	// Bulk metrics
	BulkBatchReceived(size int)
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is canceled
	// or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
