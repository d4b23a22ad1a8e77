package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements the Collector interface using Prometheus metrics.
type PrometheusCollector struct {
	// Verification metrics
	verificationsTotal         *prometheus.CounterVec
	verificationDuration       prometheus.Histogram
	verificationsRejectedTotal *prometheus.CounterVec

	// Probe metrics
	probeSessionsTotal *prometheus.CounterVec
	rcptProbesTotal    *prometheus.CounterVec

	// MX cache metrics
	mxLookupsTotal *prometheus.CounterVec

	// Finder metrics
	patternSearchesTotal *prometheus.CounterVec
	patternAttempts      prometheus.Histogram

	// Bulk metrics
	bulkBatchSize prometheus.Histogram
}

// NewPrometheusCollector creates a new PrometheusCollector with all metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		verificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailprobe_verifications_total",
			Help: "Total number of completed verifications.",
		}, []string{"provider", "status"}),
		verificationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mailprobe_verification_duration_seconds",
			Help:    "Wall-clock duration of single verifications.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		verificationsRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailprobe_verifications_rejected_total",
			Help: "Total number of verifications that ended before probing.",
		}, []string{"reason"}),

		probeSessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailprobe_probe_sessions_total",
			Help: "Total number of SMTP probe sessions.",
		}, []string{"outcome"}),
		rcptProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailprobe_rcpt_probes_total",
			Help: "Total number of RCPT probes sent.",
		}, []string{"kind"}),

		mxLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailprobe_mx_lookups_total",
			Help: "Total number of MX cache lookups.",
		}, []string{"result"}),

		patternSearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailprobe_pattern_searches_total",
			Help: "Total number of pattern finder searches.",
		}, []string{"outcome"}),
		patternAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mailprobe_pattern_attempts",
			Help:    "Number of candidates verified per finder search.",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8},
		}),

		bulkBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mailprobe_bulk_batch_size",
			Help:    "Number of addresses per bulk verification batch.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}

	// Register all metrics
	reg.MustRegister(
		c.verificationsTotal,
		c.verificationDuration,
		c.verificationsRejectedTotal,
		c.probeSessionsTotal,
		c.rcptProbesTotal,
		c.mxLookupsTotal,
		c.patternSearchesTotal,
		c.patternAttempts,
		c.bulkBatchSize,
	)

	return c
}

// VerificationCompleted increments the verification counter and observes duration.
func (c *PrometheusCollector) VerificationCompleted(provider string, status string, duration time.Duration) {
	c.verificationsTotal.WithLabelValues(provider, status).Inc()
	c.verificationDuration.Observe(duration.Seconds())
}

// VerificationRejected increments the rejected verification counter.
func (c *PrometheusCollector) VerificationRejected(reason string) {
	c.verificationsRejectedTotal.WithLabelValues(reason).Inc()
}

// ProbeSessionCompleted increments the probe session counter.
func (c *PrometheusCollector) ProbeSessionCompleted(outcome string) {
	c.probeSessionsTotal.WithLabelValues(outcome).Inc()
}

// RcptProbeSent increments the RCPT probe counter.
func (c *PrometheusCollector) RcptProbeSent(kind string) {
	c.rcptProbesTotal.WithLabelValues(kind).Inc()
}

// MXLookupCompleted increments the MX lookup counter.
func (c *PrometheusCollector) MXLookupCompleted(result string) {
	c.mxLookupsTotal.WithLabelValues(result).Inc()
}

// PatternSearchCompleted increments the search counter and observes attempts.
func (c *PrometheusCollector) PatternSearchCompleted(outcome string, attempts int) {
	c.patternSearchesTotal.WithLabelValues(outcome).Inc()
	c.patternAttempts.Observe(float64(attempts))
}

// BulkBatchReceived observes the batch size.
func (c *PrometheusCollector) BulkBatchReceived(size int) {
	c.bulkBatchSize.Observe(float64(size))
}
