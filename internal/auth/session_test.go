package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	a := NewAuthenticator("test-secret-key")

	token, err := a.Issue("admin@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	id := a.Verify(token)
	if id == nil {
		t.Fatal("expected identity for fresh token")
	}
	if id.Email != "admin@example.com" {
		t.Errorf("expected email 'admin@example.com', got %q", id.Email)
	}
	if got := id.ExpiresAt.Sub(id.IssuedAt); got != SessionLifetime {
		t.Errorf("expected lifetime %v, got %v", SessionLifetime, got)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _ := NewAuthenticator("secret1").Issue("admin@example.com")

	if id := NewAuthenticator("secret2").Verify(token); id != nil {
		t.Error("expected nil identity for token signed with another secret")
	}
}

func TestVerifyInvalid(t *testing.T) {
	a := NewAuthenticator("secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if id := a.Verify(token); id != nil {
			t.Errorf("expected nil identity for %q", token)
		}
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	a := NewAuthenticator("secret")
	token, _ := a.Issue("admin@example.com")

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if id := a.Verify(strings.Join(parts, ".")); id != nil {
		t.Error("expected nil identity for tampered token")
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	a := NewAuthenticator("secret")
	// {"alg":"none","typ":"JWT"}.{"email":"admin@example.com","exp":9999999999}.
	token := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJlbWFpbCI6ImFkbWluQGV4YW1wbGUuY29tIiwiZXhwIjo5OTk5OTk5OTk5fQ."
	if id := a.Verify(token); id != nil {
		t.Error("expected nil identity for unsigned token")
	}
}

func TestSessionExpiryBoundary(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewAuthenticator("secret")
	a.now = fixedClock(t0)

	token, err := a.Issue("admin@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	a.now = fixedClock(t0.Add(SessionLifetime - time.Second))
	if id := a.Verify(token); id == nil {
		t.Error("expected token to be valid just before expiry")
	}

	a.now = fixedClock(t0.Add(SessionLifetime + time.Second))
	if id := a.Verify(token); id != nil {
		t.Error("expected token to be rejected just after expiry")
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	a := NewAuthenticator("")

	_, err := a.Issue("admin@example.com")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if id := a.Verify("anything"); id != nil {
		t.Error("expected nil identity without secret")
	}
}
