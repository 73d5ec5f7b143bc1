// Package credentials holds the shared mutable credential state required for
// token rotation, confined behind an acquire/report-failure interface.
package credentials

import (
	"errors"
	"sync"
	"time"
)

// ErrExhausted: every credential for the service is marked invalid. Converted
// to a rate-limited failure at the task boundary.
var ErrExhausted = errors.New("all credentials exhausted")

// Failure reasons that permanently invalidate a credential. Transient network
// errors must not be reported with these.
var (
	ErrUnauthorized   = errors.New("credential rejected")
	ErrQuotaExhausted = errors.New("credential quota exhausted")
)

// Credential for one external service.
type Credential struct {
	Service     string
	Secret      string
	invalid     bool
	lastFailure time.Time
}

// Valid reports whether the credential is still usable. Callers must hold no
// assumptions across calls; the rotator owns the state.
func (c *Credential) Valid() bool { return !c.invalid }

// Rotator hands out credentials for one service in configured priority order.
// Safe for concurrent use; a single exclusive lock guards all state.
type Rotator struct {
	service string
	mu      sync.Mutex
	creds   []*Credential
}

// NewRotator builds a rotator from secrets in priority order. An empty secret
// is allowed and represents anonymous access.
func NewRotator(service string, secrets []string) *Rotator {
	r := &Rotator{service: service}
	for _, s := range secrets {
		r.creds = append(r.creds, &Credential{Service: service, Secret: s})
	}
	return r
}

// Acquire returns the first credential not currently marked invalid.
func (r *Rotator) Acquire() (*Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.creds {
		if !c.invalid {
			return c, nil
		}
	}
	return nil, ErrExhausted
}

// ReportFailure records a failure against a credential. The credential is
// marked invalid only when the reason indicates authentication or quota
// exhaustion; invalid credentials are never retried within the process
// lifetime.
func (r *Rotator) ReportFailure(c *Credential, reason error) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c.lastFailure = time.Now()
	if errors.Is(reason, ErrUnauthorized) || errors.Is(reason, ErrQuotaExhausted) {
		c.invalid = true
	}
}

// Remaining counts credentials still considered valid.
func (r *Rotator) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.creds {
		if !c.invalid {
			n++
		}
	}
	return n
}

// Size returns the configured credential count.
func (r *Rotator) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.creds)
}
