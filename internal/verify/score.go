package verify

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mailprobe/mailprobe/internal/mx"
)

// Pattern labels produced by the scorer.
const (
	PatternNoData      = "no_data"
	PatternFlat        = "flat_pattern"
	PatternStrongDelay = "strong_delay"
	PatternSemiFlat    = "semi_flat"
	PatternUnclear     = "unclear"
)

// scoreInput bundles the signals the scorer combines. Times are the
// measured RCPT latencies in milliseconds.
type scoreInput struct {
	Decoy1Time *float64
	Decoy2Time *float64
	RealTime   *float64
	RealCode   *int
	Confidence float64
	Entropy    int
	Provider   string
}

// verdict is the scorer's decision for one probe sequence.
type verdict struct {
	Pattern     string
	Score       float64
	Status      string
	Deliverable bool
}

// scoreTiming turns timing signals, the provider tag, and the real
// reply code into a pattern label, a 0..99 score, and a categorical
// deliverability decision.
func scoreTiming(in scoreInput) verdict {
	if in.Decoy1Time == nil || in.RealTime == nil {
		return verdict{Pattern: PatternNoData, Score: 0, Status: StatusInvalid}
	}

	decoy1 := *in.Decoy1Time
	decoy2 := decoy1
	if in.Decoy2Time != nil {
		decoy2 = *in.Decoy2Time
	}
	target := *in.RealTime

	avgFake := (decoy1 + decoy2) / 2
	gapFakes := math.Abs(decoy1 - decoy2)
	gapReal := math.Abs(target - avgFake)

	var pattern string
	switch {
	case gapFakes < 20 && gapReal < 20:
		pattern = PatternFlat
	case gapReal > 60 && target > avgFake:
		pattern = PatternStrongDelay
	case gapFakes < 25 && gapReal >= 20 && gapReal <= 50:
		pattern = PatternSemiFlat
	default:
		pattern = PatternUnclear
	}

	base := min(gapReal/80, 1)*40 +
		(1-min(gapFakes/100, 1))*20 +
		min(in.Confidence/0.35, 1)*20 +
		min(float64(in.Entropy)/3, 1)*10
	score := min(99, math.Round(base*100)/100)

	// Providers that enforce recipient validation make the reply code
	// itself trustworthy, overriding the timing read.
	if trustsReplyCodes(in.Provider) {
		switch {
		case in.RealCode != nil && isAcceptCode(*in.RealCode):
			score = 99
			pattern = fmt.Sprintf("smtp_%d_valid", *in.RealCode)
		case in.RealCode != nil && *in.RealCode == 550:
			score = 10
			pattern = "smtp_550_invalid"
		default:
			pattern = fmt.Sprintf("smtp_%s_unclear", renderCode(in.RealCode))
		}
	}

	// Google answers every RCPT positively, so only timing separates
	// real mailboxes from decoys there.
	if in.Provider == mx.ProviderGoogle {
		switch pattern {
		case PatternStrongDelay:
			score = max(score, 90)
		case PatternFlat:
			score = min(score, 40)
		}
	}

	var status string
	switch {
	case score >= 80:
		status = StatusValid
	case score >= 55:
		status = StatusRisky
	default:
		status = StatusInvalid
	}

	return verdict{
		Pattern:     pattern,
		Score:       score,
		Status:      status,
		Deliverable: status == StatusValid,
	}
}

// trustsReplyCodes reports whether the provider rejects unknown
// recipients at RCPT time instead of accepting everything.
func trustsReplyCodes(provider string) bool {
	switch provider {
	case mx.ProviderMicrosoft365, mx.ProviderProofpoint, mx.ProviderMimecast, mx.ProviderBarracuda:
		return true
	}
	return false
}

// isAcceptCode reports whether the RCPT reply indicates acceptance or
// a soft failure that still implies the mailbox exists.
func isAcceptCode(code int) bool {
	switch code {
	case 250, 450, 451, 452:
		return true
	}
	return false
}

func renderCode(code *int) string {
	if code == nil {
		return "none"
	}
	return strconv.Itoa(*code)
}
