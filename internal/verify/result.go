package verify

// Status values carried by Result.
const (
	StatusValid   = "valid"
	StatusRisky   = "risky"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Reason tags for results that carry no cause detail.
const (
	ReasonBadSyntax       = "bad_syntax"
	ReasonNoMX            = "no_mx"
	ReasonPatternAnalysis = "pattern_analysis"
)

// Result is the verification record for one address. Pointer fields
// serialize as null when the corresponding value was never produced;
// consumers distinguish "absent" from zero.
type Result struct {
	Email       string   `json:"email"`
	MX          []string `json:"MX"`
	Provider    string   `json:"Provider"`
	Fake1Code   *int     `json:"Fake1_Code"`
	Fake1Time   *float64 `json:"Fake1_Time"`
	RealCode    *int     `json:"Real_Code"`
	RealTime    *float64 `json:"Real_Time"`
	Fake2Code   *int     `json:"Fake2_Code"`
	Fake2Time   *float64 `json:"Fake2_Time"`
	TimingDelta *int     `json:"Timing_Delta"`
	Entropy     *int     `json:"Entropy"`
	AvgLatency  *int     `json:"Avg_Latency"`
	Confidence  *float64 `json:"Confidence"`
	Pattern     string   `json:"Pattern"`
	Score       float64  `json:"Score"`
	Status      string   `json:"Status"`
	Deliverable bool     `json:"Deliverable"`
	Reason      string   `json:"Reason"`
}

// terminal builds the short-circuit result for inputs that never reach
// probing. Probe and timing fields stay absent and the score is zero.
func terminal(email, reason string) Result {
	return Result{
		Email:  email,
		Status: StatusInvalid,
		Reason: reason,
	}
}
