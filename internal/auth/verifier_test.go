package auth

import (
	"errors"
	"testing"
	"time"

	"quiz-room-service/internal/domain"
	"github.com/golang-jwt/jwt/v4"
)

func signToken(t *testing.T, secret, username string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestJWTVerifierAcceptsSignedToken(t *testing.T) {
	verifier := NewJWTVerifier("s3cret")

	identity, err := verifier.Verify(signToken(t, "s3cret", "Alice"))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity != "Alice" {
		t.Fatalf("expected Alice, got %q", identity)
	}
}

func TestJWTVerifierRejects(t *testing.T) {
	verifier := NewJWTVerifier("s3cret")

	cases := map[string]string{
		"empty token":  "",
		"wrong secret": signToken(t, "other", "Alice"),
		"no username":  mustSign(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
		"garbage":      "not.a.token",
	}
	for name, token := range cases {
		if _, err := verifier.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected invalid token, got %v", name, err)
		}
	}
}

func TestJWTVerifierRejectsExpired(t *testing.T) {
	verifier := NewJWTVerifier("s3cret")
	expired := mustSign(t, jwt.MapClaims{
		"username": "Alice",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	if _, err := verifier.Verify(expired); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestInsecureVerifier(t *testing.T) {
	verifier := InsecureVerifier{}

	identity, err := verifier.Verify("Bob")
	if err != nil || identity != "Bob" {
		t.Fatalf("expected Bob accepted, got %q %v", identity, err)
	}
	if _, err := verifier.Verify(""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected empty credential refused, got %v", err)
	}
}

func mustSign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
