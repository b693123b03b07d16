package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"horizon/backend/internal/user/domain"
)

func TestIssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}

	before := time.Now().UTC()
	token, expiresAt, err := p.IssueAccess("user-1", domain.RoleManager)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	wantExp := before.Add(p.AccessTTL())
	if expiresAt.Before(wantExp.Add(-2*time.Second)) || expiresAt.After(wantExp.Add(2*time.Second)) {
		t.Fatalf("expiresAt = %v, want about %v", expiresAt, wantExp)
	}

	claims, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("sub = %q, want user-1", claims.Subject)
	}
	if claims.Role != domain.RoleManager {
		t.Errorf("role = %q, want manager", claims.Role)
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("iss = %q", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("jti missing")
	}
}

func TestValidateAccess_UniqueJTI(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	t1, _, err := p.IssueAccess("u", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	t2, _, err := p.IssueAccess("u", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	c1, err := p.ValidateAccess(t1)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	c2, err := p.ValidateAccess(t2)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if c1.ID == c2.ID {
		t.Error("jti repeated across tokens")
	}
}

func TestValidateAccess_Tampered(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	token, _, err := p.IssueAccess("user-1", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	if _, err := p.ValidateAccess(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateAccess_Expired(t *testing.T) {
	p, err := NewTestTokenProviderTTL(-1 * time.Minute)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	token, _, err := p.IssueAccess("user-1", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateAccess_WrongIssuerAudience(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("key: %v", err)
	}

	issuerA := NewTokenProvider(signer, pub, "issuer-a", "aud", 5*time.Minute)
	issuerB := NewTokenProvider(signer, pub, "issuer-b", "aud", 5*time.Minute)
	token, _, err := issuerA.IssueAccess("u", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := issuerB.ValidateAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong issuer: got %v, want ErrInvalidToken", err)
	}

	audA := NewTokenProvider(signer, pub, "iss", "aud-a", 5*time.Minute)
	audB := NewTokenProvider(signer, pub, "iss", "aud-b", 5*time.Minute)
	token, _, err = audA.IssueAccess("u", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := audB.ValidateAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong audience: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateAccess_Garbage(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := p.ValidateAccess(bad); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateAccess(%q): got %v, want ErrInvalidToken", bad, err)
		}
	}
}
