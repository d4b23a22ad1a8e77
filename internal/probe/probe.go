package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/mailprobe/mailprobe/internal/logging"
	"github.com/mailprobe/mailprobe/internal/metrics"
)

// adaptiveGapMS is the latency gap between the target probe and the
// first decoy beyond which a second decoy adds no information.
const adaptiveGapMS = 60

// DialFunc opens the TCP connection for a probe session. It matches
// net.Dialer.DialContext so tests can substitute in-memory pipes.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config carries the SMTP parameters for probe sessions.
type Config struct {
	// Port is the SMTP port to connect to. Defaults to 25.
	Port int
	// Timeout bounds each network round trip.
	Timeout time.Duration
	// Pause separates consecutive RCPT probes.
	Pause time.Duration
	// HELODomain is the identity announced in HELO.
	HELODomain string
	// MailFrom is the envelope sender offered in MAIL FROM.
	MailFrom string

	// Dial defaults to a plain net.Dialer when nil.
	Dial    DialFunc
	Metrics metrics.Collector
	Logger  *slog.Logger
}

// Prober measures how an MX host answers RCPT TO commands for real and
// decoy recipients within a single session.
type Prober struct {
	cfg     Config
	dial    DialFunc
	metrics metrics.Collector
	logger  *slog.Logger
}

// New creates a Prober. Zero-value Config fields fall back to defaults.
func New(cfg Config) *Prober {
	if cfg.Port == 0 {
		cfg.Port = 25
	}
	dial := cfg.Dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	collector := cfg.Metrics
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{cfg: cfg, dial: dial, metrics: collector, logger: logger}
}

// Probe opens one SMTP session against mxHost and issues RCPT TO for a
// random decoy, the target address, and, unless the adaptive cutoff
// fires, a second decoy. It returns one record per RCPT in that order.
// When no session can be established the result is the single connect
// sentinel record.
func (p *Prober) Probe(ctx context.Context, mxHost, email string, adaptive bool) []Record {
	logger := logging.WithProbe(p.logger, mxHost)

	sess, err := p.connect(ctx, logger, mxHost)
	if err != nil {
		logger.Debug("session not established", "error", err)
		p.metrics.ProbeSessionCompleted("connect_error")
		return []Record{sentinelRecord()}
	}
	defer sess.close()

	// HELO and MAIL FROM failures are tolerated. Many hosts answer
	// RCPT regardless, and the reply codes are all we need.
	sess.exchange(ctx, "HELO %s", p.cfg.HELODomain)
	sess.exchange(ctx, "MAIL FROM:<%s>", p.cfg.MailFrom)

	domain := domainOf(email)

	records := make([]Record, 0, 3)
	decoy1 := sess.rcpt(ctx, randomLocal(8)+"@"+domain)
	p.metrics.RcptProbeSent("decoy")
	records = append(records, decoy1)

	p.pause(ctx)

	target := sess.rcpt(ctx, email)
	p.metrics.RcptProbeSent("real")
	records = append(records, target)

	if !(adaptive && strongGap(decoy1, target)) {
		p.pause(ctx)
		decoy2 := sess.rcpt(ctx, randomLocal(8)+"@"+domain)
		p.metrics.RcptProbeSent("decoy")
		records = append(records, decoy2)
	}

	sess.exchange(ctx, "QUIT")
	p.metrics.ProbeSessionCompleted("completed")
	logger.Debug("probe session finished", "probes", len(records))
	return records
}

// connect dials the host and consumes the greeting. Any failure up to
// and including a non-220 greeting means no usable session.
func (p *Prober) connect(ctx context.Context, logger *slog.Logger, mxHost string) (*session, error) {
	addr := net.JoinHostPort(mxHost, strconv.Itoa(p.cfg.Port))

	dialCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	conn, err := p.dial(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	var rw io.ReadWriteCloser = conn
	if logger.Enabled(ctx, slog.LevelDebug) {
		rw = dialogConn{
			Reader: logging.NewDialogReader(conn, logger, "read"),
			Writer: logging.NewDialogWriter(conn, logger, "write"),
			Closer: conn,
		}
	}

	sess := &session{conn: conn, text: textproto.NewConn(rw), timeout: p.cfg.Timeout}
	sess.deadline(ctx)
	if _, _, err := sess.text.ReadResponse(220); err != nil {
		sess.close()
		return nil, fmt.Errorf("greeting: %w", err)
	}
	return sess, nil
}

// pause sleeps the configured inter-probe pause. Cancellation cuts the
// sleep short; the following commands then fail on their own deadlines,
// which keeps the record sequence shape intact.
func (p *Prober) pause(ctx context.Context) {
	if p.cfg.Pause <= 0 {
		return
	}
	t := time.NewTimer(p.cfg.Pause)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// strongGap reports whether the target reply looks acceptance-like and
// arrived far enough from the first decoy that a second decoy would add
// nothing.
func strongGap(decoy, target Record) bool {
	if target.Code == nil || decoy.Latency == nil || target.Latency == nil {
		return false
	}
	switch *target.Code {
	case 250, 450, 451, 452:
	default:
		return false
	}
	return math.Abs(*target.Latency-*decoy.Latency) > adaptiveGapMS
}

// domainOf returns the part after the first "@". Callers validate
// addresses before probing; anything without "@" yields an empty domain.
func domainOf(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return ""
}

// session wraps a live SMTP connection with per-command deadlines.
type session struct {
	conn    net.Conn
	text    *textproto.Conn
	timeout time.Duration
}

// dialogConn substitutes logging reader and writer pairs for the raw
// connection while keeping Close bound to the underlying socket.
type dialogConn struct {
	io.Reader
	io.Writer
	io.Closer
}

// deadline arms the per-command I/O deadline, clipped by any earlier
// context deadline.
func (s *session) deadline(ctx context.Context) {
	var deadline time.Time
	if s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		s.conn.SetDeadline(deadline)
	}
}

// exchange sends one command and reads its reply. The reply code is
// returned with a nil error even for negative replies; err reports I/O
// and protocol failures only.
func (s *session) exchange(ctx context.Context, format string, args ...any) (int, error) {
	s.deadline(ctx)
	id, err := s.text.Cmd(format, args...)
	if err != nil {
		return 0, err
	}
	s.text.StartResponse(id)
	defer s.text.EndResponse(id)
	code, _, err := s.text.ReadResponse(0)
	return code, err
}

// rcpt issues a single RCPT TO probe and measures the elapsed time
// around the exchange. On failure the code stays absent but the elapsed
// time is still recorded.
func (s *session) rcpt(ctx context.Context, address string) Record {
	rec := Record{Address: address}
	start := time.Now()
	code, err := s.exchange(ctx, "RCPT TO:<%s>", address)
	elapsed := roundMS(time.Since(start))
	rec.Latency = &elapsed
	if err == nil {
		rec.Code = &code
	}
	return rec
}

func (s *session) close() {
	s.text.Close()
}
