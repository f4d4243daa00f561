// Package fixedwindow is an in-process fixed-window limiter: each
// identifier gets at most Limit requests per Interval, counted against
// fixed window boundaries. Counters live in one process; nothing is
// shared across instances.
//
// Fixed windows deliberately trade smoothness for simplicity: a client
// can land up to 2x Limit requests straddling a window boundary (Limit
// at the end of one window, Limit again right after the reset). If that
// burst matters, this is the wrong algorithm, not a tuning problem.
package fixedwindow

import (
	"sync"
	"time"

	"github.com/Yaseeru/CodeToContent-sub005/internal/ratelimit"
)

type entry struct {
	count   int
	resetAt int64 // unix ms; never mutated until the window expires
}

// Limiter implements ratelimit.Limiter over a mutex-guarded map. The map
// is small and every critical section is a handful of instructions, so
// one coarse lock beats per-entry locking here.
type Limiter struct {
	cfg ratelimit.Config
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// New builds an independent limiter for cfg. Limiters share no state;
// two instances built from the same config still count separately.
func New(cfg ratelimit.Config) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hint := cfg.UniqueTokenPerInterval
	if hint < 0 {
		hint = 0
	}
	return &Limiter{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*entry, hint),
	}, nil
}

// Check records one request for identifier and decides allow/deny.
// Exactly cfg.Limit requests succeed per identifier per window; the
// next one is denied without bumping the counter. An expired entry is
// treated the same as a never-seen identifier.
func (l *Limiter) Check(identifier string) ratelimit.Result {
	now := l.now().UnixMilli()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok || now >= e.resetAt {
		e = &entry{count: 1, resetAt: now + l.cfg.Interval.Milliseconds()}
		l.entries[identifier] = e
		return l.result(true, e)
	}

	if e.count >= l.cfg.Limit {
		return l.result(false, e)
	}

	e.count++
	return l.result(true, e)
}

func (l *Limiter) result(ok bool, e *entry) ratelimit.Result {
	remaining := l.cfg.Limit - e.count
	if !ok {
		remaining = 0
	}
	return ratelimit.Result{
		Success:   ok,
		Limit:     l.cfg.Limit,
		Remaining: remaining,
		Reset:     e.resetAt,
	}
}

// Sweep removes every entry whose window has passed. Idempotent; safe to
// run on any schedule the host picks, or never.
func (l *Limiter) Sweep() {
	now := l.now().UnixMilli()

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, e := range l.entries {
		if now >= e.resetAt {
			delete(l.entries, id)
		}
	}
}

// Len reports how many identifiers are currently tracked, expired
// entries included until the next Sweep.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
