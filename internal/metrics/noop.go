package metrics

import "time"

// NoopCollector is a no-op implementation of the Collector interface.
// All methods are empty stubs that do nothing.
type NoopCollector struct{}

// VerificationCompleted is a no-op.
func (n *NoopCollector) VerificationCompleted(provider string, status string, duration time.Duration) {
}

// VerificationRejected is a no-op.
func (n *NoopCollector) VerificationRejected(reason string) {}

// ProbeSessionCompleted is a no-op.
func (n *NoopCollector) ProbeSessionCompleted(outcome string) {}

// RcptProbeSent is a no-op.
func (n *NoopCollector) RcptProbeSent(kind string) {}

// MXLookupCompleted is a no-op.
func (n *NoopCollector) MXLookupCompleted(result string) {}

// PatternSearchCompleted is a no-op.
func (n *NoopCollector) PatternSearchCompleted(outcome string, attempts int) {}

// BulkBatchReceived is a no-op.
func (n *NoopCollector) BulkBatchReceived(size int) {}
