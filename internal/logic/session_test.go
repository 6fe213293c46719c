package logic

import (
	"testing"
	"time"
)

func TestNewSessionGuardDefaultTimeout(t *testing.T) {
	g := NewSessionGuard("pw", 0)
	if g.Timeout() != DefaultSessionTimeout {
		t.Errorf("timeout: got %v, want %v", g.Timeout(), DefaultSessionTimeout)
	}
	if DefaultSessionTimeout != 3600*time.Second {
		t.Errorf("DefaultSessionTimeout: got %v, want 3600s", DefaultSessionTimeout)
	}
}

func TestNoSessionInitially(t *testing.T) {
	g := NewSessionGuard("mypassword", time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if g.IsAuthenticated(now) {
		t.Error("expected no session before authentication")
	}
	if g.Active() {
		t.Error("expected Active=false initially")
	}
}

func TestAuthenticateCorrectPassword(t *testing.T) {
	g := NewSessionGuard("mypassword", time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if !g.Authenticate("mypassword", now) {
		t.Fatal("expected correct password to authenticate")
	}
	if !g.IsAuthenticated(now) {
		t.Error("expected session after authentication")
	}
}

func TestAuthenticateWrongPasswords(t *testing.T) {
	tests := []string{"", "MyPassword", "mypassword ", " mypassword", "mypasswor", "mypassword1", "password"}

	for _, pw := range tests {
		t.Run(pw, func(t *testing.T) {
			g := NewSessionGuard("mypassword", time.Hour)
			now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

			if g.Authenticate(pw, now) {
				t.Errorf("password %q should not authenticate", pw)
			}
			if g.IsAuthenticated(now) {
				t.Error("failed attempt must not create a session")
			}
		})
	}
}

func TestWrongPasswordLeavesSessionUntouched(t *testing.T) {
	g := NewSessionGuard("mypassword", time.Hour)
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	g.Authenticate("mypassword", t0)

	// A failed attempt later must neither destroy nor refresh the session.
	if g.Authenticate("wrong", t0.Add(30*time.Minute)) {
		t.Fatal("wrong password authenticated")
	}
	if !g.IsAuthenticated(t0.Add(59 * time.Minute)) {
		t.Error("session should survive a failed attempt")
	}
	if g.IsAuthenticated(t0.Add(time.Hour + time.Second)) {
		t.Error("failed attempt must not have refreshed the session")
	}
}

func TestSessionExpiry(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"just authenticated", 0, true},
		{"3599s", 3599 * time.Second, true},
		{"exactly 3600s", 3600 * time.Second, true},
		{"3601s", 3601 * time.Second, false},
		{"one day", 24 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSessionGuard("mypassword", DefaultSessionTimeout)
			g.Authenticate("mypassword", t0)

			if got := g.IsAuthenticated(t0.Add(tt.elapsed)); got != tt.want {
				t.Errorf("IsAuthenticated(t0+%v): got %v, want %v", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestExpiryClearsSession(t *testing.T) {
	g := NewSessionGuard("mypassword", time.Hour)
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	g.Authenticate("mypassword", t0)

	if g.IsAuthenticated(t0.Add(time.Hour + time.Second)) {
		t.Fatal("expected expiry")
	}
	if g.Active() {
		t.Error("expired session should be cleared")
	}
	// Once cleared, an earlier timestamp must not resurrect it.
	if g.IsAuthenticated(t0) {
		t.Error("cleared session must stay cleared")
	}
}

func TestRefreshSlidesWindow(t *testing.T) {
	g := NewSessionGuard("mypassword", time.Hour)
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	g.Authenticate("mypassword", t0)

	// Authorised request at +50m slides the window.
	t1 := t0.Add(50 * time.Minute)
	if !g.IsAuthenticated(t1) {
		t.Fatal("expected session at +50m")
	}
	g.Refresh(t1)

	if !g.IsAuthenticated(t0.Add(100 * time.Minute)) {
		t.Error("refreshed session should still be valid at +100m")
	}
	if g.IsAuthenticated(t1.Add(time.Hour + time.Second)) {
		t.Error("refreshed session should expire an hour after the refresh")
	}
}

func TestRefreshWithoutSessionIsNoop(t *testing.T) {
	g := NewSessionGuard("mypassword", time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	g.Refresh(now)
	if g.IsAuthenticated(now) {
		t.Error("Refresh must not create a session")
	}
}

func TestReauthenticateRefreshes(t *testing.T) {
	g := NewSessionGuard("mypassword", time.Hour)
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	g.Authenticate("mypassword", t0)
	g.Authenticate("mypassword", t0.Add(45*time.Minute))

	if !g.IsAuthenticated(t0.Add(90 * time.Minute)) {
		t.Error("second authentication should refresh the session")
	}
}

func TestEmptyConfiguredPassword(t *testing.T) {
	g := NewSessionGuard("", time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if g.Authenticate("x", now) {
		t.Error("non-empty submission should not match empty password")
	}
	if !g.Authenticate("", now) {
		t.Error("empty submission should match empty password")
	}
}
