// Package mx resolves and caches the MX hosts for a domain and classifies
// the hosting provider from the first exchange hostname.
package mx

import (
	"context"
	"net"
	"time"

	"golang.org/x/net/idna"
)

// Resolver is the subset of net.Resolver used for MX resolution.
// It is satisfied by *net.Resolver and by mockdns.Resolver in tests.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// NewResolver returns a DNS resolver whose queries are bounded by the
// given per-dial timeout.
func NewResolver(timeout time.Duration) *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: timeout}
			return d.DialContext(ctx, network, address)
		},
	}
}

// asciiDomain converts a domain to its ASCII (punycode) form for lookup.
// Returns the input unchanged if conversion fails; the resolver will
// produce the authoritative error.
func asciiDomain(domain string) string {
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return domain
	}
	return ascii
}
