package service

import (
	"errors"
	"testing"
	"time"

	"taskmanager/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", 30*time.Minute)
	u := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleManager}

	tok, err := svc.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	id := claims.Identity()
	if id.UserID != "u1" || id.Username != "alice" || !id.IsManager() {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 30*time.Minute {
		t.Fatalf("expiry window = %v", got)
	}
}

func TestTokenUniquePerIssue(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	u := &domain.User{ID: "u1", Username: "alice"}
	a, _ := svc.Issue(u)
	b, _ := svc.Issue(u)
	if a == b {
		t.Fatal("two issues produced the same token")
	}
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("secret", 30*time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := svc.Issue(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.Parse(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenInvalid(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	other := NewTokenService("other", time.Minute)
	foreign, _ := other.Issue(&domain.User{ID: "u1"})

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"none algorithm": unsigned,
	} {
		if _, err := svc.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)
	hash, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "p1" {
		t.Fatal("hash equals plaintext")
	}
	if ok, err := h.Verify("p1", hash); err != nil || !ok {
		t.Fatalf("Verify correct: ok=%v err=%v", ok, err)
	}
	if ok, err := h.Verify("nope", hash); err != nil || ok {
		t.Fatalf("Verify wrong: ok=%v err=%v", ok, err)
	}
	if _, err := h.Verify("p1", "not-a-bcrypt-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
