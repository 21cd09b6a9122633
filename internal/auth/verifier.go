package auth

import (
	"fmt"

	"quiz-room-service/internal/domain"
	"github.com/golang-jwt/jwt/v4"
)

// IdentityVerifier turns an inbound credential into an Identity. It is
// called once per new connection, before any room event is accepted.
type IdentityVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// JWTVerifier validates HMAC-signed tokens carrying a username claim.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type identityClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(token string) (domain.Identity, error) {
	if token == "" {
		return "", domain.ErrInvalidToken
	}

	claims := &identityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Username == "" {
		return "", domain.ErrInvalidToken
	}
	return domain.Identity(claims.Username), nil
}

// InsecureVerifier accepts the presented credential as the identity
// itself. It exists for local development when no secret is configured;
// never enable it in production.
type InsecureVerifier struct{}

func (InsecureVerifier) Verify(token string) (domain.Identity, error) {
	if token == "" {
		return "", domain.ErrInvalidToken
	}
	return domain.Identity(token), nil
}
