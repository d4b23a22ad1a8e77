// Package probe opens scripted SMTP sessions against MX hosts and
// measures per-recipient reply codes and latencies.
package probe

import (
	"math"
	"math/rand"
	"time"
)

// SentinelAddress is the address slot of the record emitted when a
// session could not be established at all.
const SentinelAddress = "__connect__"

// Record captures one RCPT probe: the address tried, the reply code if
// one was read, and the elapsed milliseconds around the exchange.
// A nil Code with a non-nil Latency means the command failed mid-dialog.
type Record struct {
	Address string
	Code    *int
	Latency *float64
}

// sentinelRecord marks a failed connection attempt.
func sentinelRecord() Record {
	return Record{Address: SentinelAddress}
}

// IsSentinel reports whether seq marks a session that never came up.
// Such a sequence contains exactly the sentinel record.
func IsSentinel(seq []Record) bool {
	return len(seq) == 1 && seq[0].Address == SentinelAddress
}

const localChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomLocal returns a local-part of length n drawn uniformly from
// lowercase letters and digits. Collisions between concurrent probes
// are as unlikely as the shared PRNG allows; cryptographic strength is
// not required here.
func randomLocal(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = localChars[rand.Intn(len(localChars))]
	}
	return string(buf)
}

// roundMS converts a duration to milliseconds with two decimal places.
func roundMS(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
