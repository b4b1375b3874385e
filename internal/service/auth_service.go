package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token revoked")
)

// AuthService handles signup, signin and token authentication for both
// principal kinds.
type AuthService struct {
	admins  AdminStore
	users   UserStore
	hasher  *PasswordHasher
	tokens  *TokenService
	revoked RevocationStore
	log     zerolog.Logger
}

// NewAuthService creates a new AuthService. revoked may be nil, in which case
// signout is a no-op and tokens are never checked against a denylist.
func NewAuthService(
	admins AdminStore,
	users UserStore,
	hasher *PasswordHasher,
	tokens *TokenService,
	revoked RevocationStore,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		admins:  admins,
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoked: revoked,
		log:     log.With().Str("component", "auth_service").Logger(),
	}
}

// SignupAdmin creates an admin account and returns it with a fresh token.
func (s *AuthService) SignupAdmin(ctx context.Context, req model.AdminSignupRequest) (*model.Admin, string, error) {
	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	admin := &model.Admin{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.IssueToken(model.PrincipalAdmin, admin.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Int("admin_id", admin.ID).Msg("Admin signed up")
	return admin, token, nil
}

// SigninAdmin verifies admin credentials and returns a fresh token.
func (s *AuthService) SigninAdmin(ctx context.Context, req model.SigninRequest) (*model.Admin, string, error) {
	admin, err := s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !s.hasher.CheckPassword(admin.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(model.PrincipalAdmin, admin.ID)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// SignupUser creates a user account and returns it with a fresh token.
func (s *AuthService) SignupUser(ctx context.Context, req model.UserSignupRequest) (*model.User, string, error) {
	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{Name: req.Name, Email: req.Email, PasswordHash: hash, Age: req.Age}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.IssueToken(model.PrincipalUser, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Int("user_id", user.ID).Msg("User signed up")
	return user, token, nil
}

// SigninUser verifies user credentials and returns a fresh token.
func (s *AuthService) SigninUser(ctx context.Context, req model.SigninRequest) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !s.hasher.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(model.PrincipalUser, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate verifies a bearer token and resolves it to a principal whose
// account still exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	p := claims.Principal()
	if err := s.resolvePrincipal(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// resolvePrincipal confirms the account behind a valid token still exists.
// A deleted account yields ErrNotAuthorized.
func (s *AuthService) resolvePrincipal(ctx context.Context, p model.Principal) error {
	var err error
	switch p.Kind {
	case model.PrincipalAdmin:
		_, err = s.admins.GetByID(ctx, p.ID)
	case model.PrincipalUser:
		_, err = s.users.GetByID(ctx, p.ID)
	default:
		return ErrTokenMalformed
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotAuthorized
		}
		return fmt.Errorf("resolve principal: %w", err)
	}
	return nil
}

// Signout revokes the token the principal authenticated with until it would
// have expired anyway.
func (s *AuthService) Signout(ctx context.Context, p model.Principal) error {
	if s.revoked == nil || p.TokenID == "" {
		return nil
	}

	var ttl time.Duration
	if p.ExpiresAt != nil {
		ttl = time.Until(*p.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	if err := s.revoked.Revoke(ctx, p.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.log.Info().Str("kind", string(p.Kind)).Int("principal_id", p.ID).Msg("Token revoked")
	return nil
}
