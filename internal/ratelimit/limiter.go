package ratelimit

import (
	"fmt"
	"time"
)

// Config describes one quota: how many requests each identifier may make
// per window.
type Config struct {
	Interval time.Duration // window length
	Limit    int           // allowed requests per identifier per window
	// UniqueTokenPerInterval is a sizing hint for the backing store
	// (roughly how many distinct identifiers are expected per window).
	// It does not affect decisions.
	UniqueTokenPerInterval int
}

// Validate reports whether the config can back a limiter. Zero or negative
// interval/limit is a programming error in the caller and is rejected up
// front rather than producing undefined counting behavior.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("ratelimit: interval must be positive, got %v", c.Interval)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("ratelimit: limit must be positive, got %d", c.Limit)
	}
	return nil
}

// Result is the outcome of a single Check call.
type Result struct {
	Success   bool
	Limit     int   // configured per-window limit
	Remaining int   // requests left in the current window (min 0)
	Reset     int64 // unix ms at which the current window ends
}

// RetryAfter returns the whole seconds a denied caller should wait for
// the window to reset, rounded up, never negative. Meant for the
// Retry-After response header.
func (r Result) RetryAfter(now time.Time) int64 {
	ms := r.Reset - now.UnixMilli()
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}

// Limiter tracks request counts per identifier and decides allow/deny.
//
// Check never fails: any string, the empty string included, is a valid
// identifier and gets its own independent counter. Callers that want
// separate quota classes for the same client bake the class into the
// identifier (e.g. "ip:auth") or use separate Limiter instances.
type Limiter interface {
	// Check records one request for identifier and returns the decision.
	Check(identifier string) Result
	// Sweep drops expired entries. Purely a memory bound; Check treats
	// expired entries as absent either way. Safe to call concurrently
	// with Check.
	Sweep()
	// Len reports how many identifiers are currently tracked.
	Len() int
}
