package finder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailprobe/mailprobe/internal/metrics"
	"github.com/mailprobe/mailprobe/internal/verify"
)

var _ Verifier = (*verify.Verifier)(nil)

type stubVerifier struct {
	mu      sync.Mutex
	calls   []string
	results map[string]verify.Result
	panicOn string
}

func (s *stubVerifier) Verify(_ context.Context, email string) verify.Result {
	s.mu.Lock()
	s.calls = append(s.calls, email)
	s.mu.Unlock()
	if email == s.panicOn {
		panic("verification blew up")
	}
	if res, ok := s.results[email]; ok {
		return res
	}
	return verify.Result{
		Email:  email,
		Status: verify.StatusInvalid,
		Reason: verify.ReasonPatternAnalysis,
	}
}

type searchCollector struct {
	metrics.NoopCollector

	mu       sync.Mutex
	searches []string
}

func (c *searchCollector) PatternSearchCompleted(outcome string, attempts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches = append(c.searches, fmt.Sprintf("%s/%d", outcome, attempts))
}

func validResult(email string) verify.Result {
	return verify.Result{
		Email:       email,
		Status:      verify.StatusValid,
		Deliverable: true,
		Score:       90,
		Reason:      verify.ReasonPatternAnalysis,
	}
}

func newTestFinder(v Verifier, collector metrics.Collector) *Finder {
	return New(Config{
		Verifier: v,
		Metrics:  collector,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestFindNothingDeliverable(t *testing.T) {
	stub := &stubVerifier{}
	f := newTestFinder(stub, nil)

	found, ok, err := f.Find(context.Background(), "Jane Doe", "acme.com")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, found)

	// Every candidate is tried, in ranked order.
	assert.Equal(t, []string{
		"jane@acme.com",
		"doe@acme.com",
		"j.doe@acme.com",
		"jane.doe@acme.com",
		"jane.d@acme.com",
		"janedoe@acme.com",
		"doejane@acme.com",
		"jd@acme.com",
	}, stub.calls)
}

func TestFindStopsAtFirstDeliverable(t *testing.T) {
	stub := &stubVerifier{results: map[string]verify.Result{
		"jane.doe@acme.com": validResult("jane.doe@acme.com"),
	}}
	f := newTestFinder(stub, nil)

	found, ok, err := f.Find(context.Background(), "Jane Doe", "acme.com")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jane.doe@acme.com", found)
	assert.Len(t, stub.calls, 4)
	assert.Equal(t, "jane.doe@acme.com", stub.calls[3])
}

func TestFindFirstCandidateWins(t *testing.T) {
	stub := &stubVerifier{results: map[string]verify.Result{
		"jane@acme.com": validResult("jane@acme.com"),
	}}
	f := newTestFinder(stub, nil)

	found, ok, err := f.Find(context.Background(), "Jane Doe", "acme.com")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jane@acme.com", found)
	assert.Len(t, stub.calls, 1)
}

func TestFindSkipsPanickingCandidate(t *testing.T) {
	stub := &stubVerifier{
		panicOn: "jane@acme.com",
		results: map[string]verify.Result{
			"doe@acme.com": validResult("doe@acme.com"),
		},
	}
	f := newTestFinder(stub, nil)

	found, ok, err := f.Find(context.Background(), "Jane Doe", "acme.com")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "doe@acme.com", found)
	assert.Equal(t, []string{"jane@acme.com", "doe@acme.com"}, stub.calls)
}

func TestFindRequiresValidStatus(t *testing.T) {
	// Deliverable alone must not win; the status has to agree.
	stub := &stubVerifier{results: map[string]verify.Result{
		"jane@acme.com": {
			Email:       "jane@acme.com",
			Status:      verify.StatusRisky,
			Deliverable: true,
			Score:       70,
		},
	}}
	f := newTestFinder(stub, nil)

	found, ok, err := f.Find(context.Background(), "Jane", "acme.com")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, found)
}

func TestFindRejectsBadDomain(t *testing.T) {
	stub := &stubVerifier{}
	f := newTestFinder(stub, nil)

	_, _, err := f.Find(context.Background(), "Jane Doe", "nodot")

	assert.Error(t, err)
	assert.Empty(t, stub.calls)
}

func TestFindRejectsUnusableName(t *testing.T) {
	stub := &stubVerifier{}
	f := newTestFinder(stub, nil)

	_, _, err := f.Find(context.Background(), "12345", "acme.com")

	assert.ErrorIs(t, err, ErrNoPatterns)
	assert.Empty(t, stub.calls)
}

func TestFindCleansDomainBeforeGenerating(t *testing.T) {
	stub := &stubVerifier{results: map[string]verify.Result{
		"jane@acme.com": validResult("jane@acme.com"),
	}}
	f := newTestFinder(stub, nil)

	found, ok, err := f.Find(context.Background(), "Jane", "@ACME.com ")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jane@acme.com", found)
}

func TestFindMetrics(t *testing.T) {
	collector := &searchCollector{}
	stub := &stubVerifier{results: map[string]verify.Result{
		"jane.doe@acme.com": validResult("jane.doe@acme.com"),
	}}
	f := newTestFinder(stub, collector)

	_, _, err := f.Find(context.Background(), "Jane Doe", "acme.com")
	require.NoError(t, err)

	stub2 := &stubVerifier{}
	f2 := newTestFinder(stub2, collector)
	_, _, err = f2.Find(context.Background(), "Jane Doe", "acme.com")
	require.NoError(t, err)

	assert.Equal(t, []string{"found/4", "not_found/8"}, collector.searches)
}
