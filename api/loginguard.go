package api

import (
	"sync"
	"time"
)

// pruneThreshold is the number of tracked usernames above which stale
// entries are dropped
const pruneThreshold = 1024

// LoginGuard locks a username for a while after too many consecutive failed
// authentications. A nil *LoginGuard never locks.
type LoginGuard struct {
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	failures map[string]*loginFailures
}

type loginFailures struct {
	count       int
	last        time.Time
	lockedUntil time.Time
}

// NewLoginGuard returns a LoginGuard that locks a username for lockout after
// maxAttempts failures in a row. It returns nil if maxAttempts is not
// positive.
func NewLoginGuard(maxAttempts int, lockout time.Duration) *LoginGuard {
	if maxAttempts <= 0 {
		return nil
	}
	return &LoginGuard{
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
		failures:    make(map[string]*loginFailures),
	}
}

// Locked reports whether username is currently locked
func (g *LoginGuard) Locked(username string) bool {
	if g == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	f, ok := g.failures[username]
	if !ok || f.lockedUntil.IsZero() {
		return false
	}
	if g.now().Before(f.lockedUntil) {
		return true
	}
	// lock expired, start counting afresh
	delete(g.failures, username)
	return false
}

// Failed records a failed authentication of username
func (g *LoginGuard) Failed(username string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if len(g.failures) >= pruneThreshold {
		g.prune(now)
	}
	f, ok := g.failures[username]
	if !ok {
		f = &loginFailures{}
		g.failures[username] = f
	}
	f.count++
	f.last = now
	if f.count >= g.maxAttempts {
		f.lockedUntil = now.Add(g.lockout)
	}
}

// Succeeded clears the failures of username
func (g *LoginGuard) Succeeded(username string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failures, username)
}

// prune drops expired locks and counters without a failure for the lockout
// duration
func (g *LoginGuard) prune(now time.Time) {
	for name, f := range g.failures {
		if f.lockedUntil.IsZero() {
			if now.Sub(f.last) >= g.lockout {
				delete(g.failures, name)
			}
			continue
		}
		if !now.Before(f.lockedUntil) {
			delete(g.failures, name)
		}
	}
}
