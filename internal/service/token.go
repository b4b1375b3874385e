package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification errors.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims carries the principal a token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	PrincipalID int                 `json:"id"`
	Kind        model.PrincipalKind `json:"kind"`
}

// Principal converts verified claims into the request-scoped principal.
func (c *Claims) Principal() model.Principal {
	p := model.Principal{
		ID:      c.PrincipalID,
		Kind:    c.Kind,
		TokenID: c.ID,
	}
	if c.ExpiresAt != nil {
		exp := c.ExpiresAt.Time
		p.ExpiresAt = &exp
	}
	return p
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. A zero ttl issues tokens with no expiry.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs a token for the given principal.
func (s *TokenService) IssueToken(kind model.PrincipalKind, principalID int) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.New().String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
		PrincipalID: principalID,
		Kind:        kind,
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and checks a token. The returned error is always one of
// ErrTokenMalformed, ErrTokenSignature or ErrTokenExpired.
func (s *TokenService) VerifyToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenMalformed
	}

	if !claims.Kind.Valid() || claims.PrincipalID <= 0 {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
