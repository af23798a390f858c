package security

import (
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ttl time.Duration) *TokenProvider {
	t.Helper()
	priv, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	return NewTokenProvider(priv, pub, "pm-auth", "pm-api", ttl)
}

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p := newTestProvider(t, time.Hour)

	token, expiresAt, err := p.IssueAccess("user-1", "MEMBER")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("IssueAccess returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt %v should be in the future", expiresAt)
	}

	sess, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if sess.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", sess.UserID)
	}
	if sess.Role != "MEMBER" {
		t.Errorf("Role = %q, want MEMBER", sess.Role)
	}
	if sess.IsAdmin() {
		t.Error("MEMBER session should not be admin")
	}
	if sess.ExpiresAt.IsZero() {
		t.Error("ExpiresAt should be set")
	}
}

func TestTokenProvider_AdminRole(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	token, _, err := p.IssueAccess("admin-1", "ADMIN")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	sess, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if !sess.IsAdmin() {
		t.Error("ADMIN session should report IsAdmin")
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute)
	token, _, err := p.IssueAccess("user-1", "MEMBER")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("ValidateAccess(expired) = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_Malformed(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	if _, err := p.ValidateAccess("not.a.jwt"); err != ErrInvalidToken {
		t.Errorf("ValidateAccess(malformed) = %v, want ErrInvalidToken", err)
	}
	if _, err := p.ValidateAccess(""); err != ErrInvalidToken {
		t.Errorf("ValidateAccess(empty) = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_WrongIssuer(t *testing.T) {
	priv, _ := ParsePrivateKey(testPrivateKeyPEM)
	pub, _ := ParsePublicKey(testPublicKeyPEM)
	issuing := NewTokenProvider(priv, pub, "other-issuer", "pm-api", time.Hour)
	validating := NewTokenProvider(priv, pub, "pm-auth", "pm-api", time.Hour)

	token, _, err := issuing.IssueAccess("user-1", "MEMBER")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := validating.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("ValidateAccess(wrong issuer) = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_WrongAudience(t *testing.T) {
	priv, _ := ParsePrivateKey(testPrivateKeyPEM)
	pub, _ := ParsePublicKey(testPublicKeyPEM)
	issuing := NewTokenProvider(priv, pub, "pm-auth", "other-api", time.Hour)
	validating := NewTokenProvider(priv, pub, "pm-auth", "pm-api", time.Hour)

	token, _, err := issuing.IssueAccess("user-1", "MEMBER")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := validating.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("ValidateAccess(wrong audience) = %v, want ErrInvalidToken", err)
	}
}
