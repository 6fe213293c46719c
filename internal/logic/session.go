package logic

import (
	"crypto/subtle"
	"sync"
	"time"
)

// DefaultSessionTimeout is how long a session survives without an
// authorised request.
const DefaultSessionTimeout = time.Hour

// SessionGuard tracks the single shared-password session.
// There is at most one session system-wide; it is not bound to a client.
type SessionGuard struct {
	mu              sync.Mutex
	password        string
	timeout         time.Duration
	active          bool
	authenticatedAt time.Time
}

// NewSessionGuard creates a guard checking submissions against password.
// A non-positive timeout selects DefaultSessionTimeout.
func NewSessionGuard(password string, timeout time.Duration) *SessionGuard {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &SessionGuard{password: password, timeout: timeout}
}

// IsAuthenticated reports whether a session exists at now.
// An expired session is cleared as a side effect.
func (g *SessionGuard) IsAuthenticated(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return false
	}
	if now.Sub(g.authenticatedAt) > g.timeout {
		g.active = false
		g.authenticatedAt = time.Time{}
		return false
	}
	return true
}

// Authenticate creates or refreshes the session when password matches
// exactly. A mismatch leaves any existing session untouched.
func (g *SessionGuard) Authenticate(password string, now time.Time) bool {
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		return false
	}

	g.mu.Lock()
	g.active = true
	g.authenticatedAt = now
	g.mu.Unlock()
	return true
}

// Refresh slides the current session's start to now.
// It is a no-op when no session exists.
func (g *SessionGuard) Refresh(now time.Time) {
	g.mu.Lock()
	if g.active {
		g.authenticatedAt = now
	}
	g.mu.Unlock()
}

// Active reports whether a session record exists, without checking expiry.
func (g *SessionGuard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Timeout returns the configured session timeout.
func (g *SessionGuard) Timeout() time.Duration {
	return g.timeout
}
