package mx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mailprobe/mailprobe/internal/metrics"
)

// ServiceConfig holds the dependencies and tuning for a Service.
type ServiceConfig struct {
	// Resolver performs the underlying DNS queries. Required.
	Resolver Resolver
	// TTL bounds the lifetime of cached MX lists.
	TTL time.Duration
	// Lifetime bounds one complete resolution including retries.
	Lifetime time.Duration
	// Metrics receives cache hit/miss counters. Optional.
	Metrics metrics.Collector
	// Logger is used for debug logging. Optional.
	Logger *slog.Logger
}

// Service resolves MX hosts with a TTL cache in front of DNS.
// Concurrent lookups for the same domain are collapsed into one query.
type Service struct {
	resolver Resolver
	cache    *cache
	group    singleflight.Group
	lifetime time.Duration
	metrics  metrics.Collector
	logger   *slog.Logger
}

// NewService creates a Service from the given configuration.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := cfg.Metrics
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}
	return &Service{
		resolver: cfg.Resolver,
		cache:    newCache(cfg.TTL),
		lifetime: cfg.Lifetime,
		metrics:  collector,
		logger:   logger,
	}
}

// Resolve returns the MX hosts for domain in the order the DNS layer
// reported them, lowercased and stripped of the trailing root dot.
// Results are cached per lowercase domain; an entry older than the TTL
// is discarded and the lookup reissued.
func (s *Service) Resolve(ctx context.Context, domain string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(domain))

	hosts, ok, expired := s.cache.get(key)
	if ok {
		s.metrics.MXLookupCompleted("hit")
		return hosts, nil
	}
	if expired {
		s.metrics.MXLookupCompleted("expired")
	} else {
		s.metrics.MXLookupCompleted("miss")
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.lookup(ctx, key)
	})
	if err != nil {
		s.metrics.MXLookupCompleted("error")
		return nil, err
	}
	return v.([]string), nil
}

// lookup queries DNS and caches a non-empty answer. Empty answers are
// returned but not cached: they are indistinguishable from a miss on
// the read path, so caching them would only delay recovery for domains
// whose records appear later.
func (s *Service) lookup(ctx context.Context, key string) ([]string, error) {
	if s.lifetime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lifetime)
		defer cancel()
	}

	records, err := s.resolver.LookupMX(ctx, asciiDomain(key))
	if err != nil {
		return nil, fmt.Errorf("mx lookup for %s: %w", key, err)
	}

	hosts := make([]string, 0, len(records))
	for _, rr := range records {
		host := strings.ToLower(strings.TrimSuffix(rr.Host, "."))
		if host == "" {
			// Null MX (RFC 7505) advertises that the domain accepts no mail.
			continue
		}
		hosts = append(hosts, host)
	}

	if len(hosts) > 0 {
		s.cache.set(key, hosts)
	}

	s.logger.Debug("resolved mx",
		slog.String("domain", key),
		slog.Int("hosts", len(hosts)),
	)
	return hosts, nil
}

// CacheSize returns the number of cached domains.
func (s *Service) CacheSize() int {
	return s.cache.len()
}
