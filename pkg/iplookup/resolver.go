// Package iplookup picks the public IP address recorded for a visitor.
//
// The server never asks an external service for "its" address: behind a load
// balancer or NAT that is the server's own egress address, not the visitor's.
// The lookup against Endpoint runs in the visitor's browser instead, and the
// address it reports is only one more candidate to validate.
package iplookup

import (
	"context"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Unknown is recorded whenever no address could be determined.
const Unknown = "unknown"

const (
	DefaultEndpoint = "https://api.ipify.org?format=json"
	DefaultTimeout  = 3 * time.Second
)

// Resolver never fails: it returns Unknown instead of an error.
type Resolver interface {
	// Resolve returns the first public address among candidates, in order.
	Resolve(ctx context.Context, candidates ...string) string
}

// Config describes the browser-side lookup. Endpoint must answer {"ip": "..."}.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	Disabled bool
}

// BrowserLookup is what the landing page needs to run the lookup client side.
type BrowserLookup struct {
	Endpoint  string
	TimeoutMs int64
	Enabled   bool
}

func (c *Config) BrowserLookup() BrowserLookup {
	if c == nil {
		c = &Config{}
	}

	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return BrowserLookup{
		Endpoint:  endpoint,
		TimeoutMs: timeout.Milliseconds(),
		Enabled:   !c.Disabled,
	}
}

// CandidateResolver validates addresses the request already carries.
// It performs no I/O.
type CandidateResolver struct{}

func NewCandidateResolver() *CandidateResolver {
	return &CandidateResolver{}
}

func (*CandidateResolver) Resolve(ctx context.Context, candidates ...string) string {
	span := trace.SpanFromContext(ctx)

	for i, candidate := range candidates {
		if ip := PublicIP(candidate); ip != "" {
			span.SetAttributes(attribute.Int("iplookup.candidate_index", i))
			return ip
		}
	}

	span.SetAttributes(attribute.Bool("iplookup.unknown", true))
	return Unknown
}

// PublicIP returns the canonical form of candidate when it is a routable
// public address, and "" for private, loopback, or malformed input.
func PublicIP(candidate string) string {
	ip := net.ParseIP(strings.TrimSpace(candidate))
	if ip == nil || !ip.IsGlobalUnicast() || ip.IsPrivate() {
		return ""
	}
	return ip.String()
}
