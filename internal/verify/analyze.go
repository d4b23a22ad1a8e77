package verify

import (
	"math"
	"strconv"

	"github.com/mailprobe/mailprobe/internal/probe"
)

// analysis carries the timing-derived signals for one probe sequence.
// AvgLatency is nil when no latency was captured at all.
type analysis struct {
	Confidence float64
	Delta      int
	Entropy    int
	AvgLatency *int
}

// analyzeTiming derives latency spread, reply-code entropy, and a
// bounded confidence signal from a probe sequence. The caller strips
// the connect sentinel beforehand.
func analyzeTiming(records []probe.Record) analysis {
	var times []float64
	codes := make(map[string]struct{})
	for _, rec := range records {
		if rec.Latency != nil {
			times = append(times, *rec.Latency)
		}
		if rec.Code != nil {
			codes[strconv.Itoa(*rec.Code)] = struct{}{}
		}
	}
	if len(times) == 0 {
		return analysis{Confidence: 0, Delta: 0, Entropy: 1}
	}

	minT, maxT := times[0], times[0]
	var sum float64
	for _, t := range times {
		minT = min(minT, t)
		maxT = max(maxT, t)
		sum += t
	}

	var delta int
	if len(times) >= 2 {
		delta = int(maxT - minT)
	}
	avg := int(sum / float64(len(times)))
	entropy := max(1, len(codes))

	// A wide latency spread is the strongest hint that the server
	// treats the addresses differently; mixed reply codes add a little
	// more. The signal is deliberately capped low.
	var confidence float64
	switch {
	case delta > 120:
		confidence = 0.25
	case delta > 80:
		confidence = 0.18
	case delta > 40:
		confidence = 0.12
	case delta > 10:
		confidence = 0.06
	}
	if entropy > 1 {
		confidence += 0.05
	}
	confidence = min(confidence, 0.35)
	confidence = math.Round(confidence*100) / 100

	return analysis{
		Confidence: confidence,
		Delta:      delta,
		Entropy:    entropy,
		AvgLatency: &avg,
	}
}
