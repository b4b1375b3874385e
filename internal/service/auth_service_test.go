package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/repository"
	"github.com/eventhub/eventhub-backend/internal/service/servicetest"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, ttl time.Duration) (*AuthService, *servicetest.Stores, *servicetest.RevocationStore) {
	t.Helper()
	stores := servicetest.NewStores()
	revoked := &servicetest.RevocationStore{}
	auth := NewAuthService(stores.Admins, stores.Users,
		NewPasswordHasher(bcrypt.MinCost), NewTokenService("test-secret", ttl),
		revoked, zerolog.Nop())
	return auth, stores, revoked
}

func TestAdminSignupThenSignin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t, 0)

	admin, signupToken, err := auth.SignupAdmin(ctx, model.AdminSignupRequest{
		Name: "Ada", Email: "ada@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("SignupAdmin: %v", err)
	}

	_, signinToken, err := auth.SigninAdmin(ctx, model.SigninRequest{Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("SigninAdmin: %v", err)
	}

	for _, tok := range []string{signupToken, signinToken} {
		p, err := auth.Authenticate(ctx, tok)
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if p.ID != admin.ID || p.Kind != model.PrincipalAdmin {
			t.Errorf("principal = (%d, %s), want (%d, admin)", p.ID, p.Kind, admin.ID)
		}
	}
}

func TestUserSignupThenSignin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t, 0)

	user, _, err := auth.SignupUser(ctx, model.UserSignupRequest{
		Name: "Bo", Email: "bo@example.com", Password: "pw", Age: 30,
	})
	if err != nil {
		t.Fatalf("SignupUser: %v", err)
	}
	if user.PasswordHash == "pw" {
		t.Fatal("password stored in plaintext")
	}

	_, tok, err := auth.SigninUser(ctx, model.SigninRequest{Email: "bo@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("SigninUser: %v", err)
	}
	p, err := auth.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.ID != user.ID || p.Kind != model.PrincipalUser {
		t.Errorf("principal = (%d, %s), want (%d, user)", p.ID, p.Kind, user.ID)
	}
}

func TestSigninRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t, 0)
	if _, _, err := auth.SignupUser(ctx, model.UserSignupRequest{Name: "Bo", Email: "bo@example.com", Password: "pw"}); err != nil {
		t.Fatalf("SignupUser: %v", err)
	}

	tests := []struct {
		name string
		req  model.SigninRequest
	}{
		{"wrong password", model.SigninRequest{Email: "bo@example.com", Password: "nope"}},
		{"unknown email", model.SigninRequest{Email: "who@example.com", Password: "pw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := auth.SigninUser(ctx, tt.req); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}

	// The admin table is separate from the user table.
	if _, _, err := auth.SigninAdmin(ctx, model.SigninRequest{Email: "bo@example.com", Password: "pw"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("user credentials on admin signin: got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t, 0)
	req := model.AdminSignupRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}

	if _, _, err := auth.SignupAdmin(ctx, req); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, _, err := auth.SignupAdmin(ctx, req); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Errorf("second signup: got %v, want ErrDuplicateEmail", err)
	}
}

func TestAuthenticateRejectsForeignToken(t *testing.T) {
	auth, _, _ := newTestAuth(t, 0)
	foreign, _ := NewTokenService("another-secret", 0).IssueToken(model.PrincipalAdmin, 1)

	p, err := auth.Authenticate(context.Background(), foreign)
	if !errors.Is(err, ErrTokenSignature) {
		t.Errorf("got %v, want ErrTokenSignature", err)
	}
	if p != nil {
		t.Error("principal bound for a foreign token")
	}
}

func TestSignoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t, time.Hour)

	_, tok, err := auth.SignupUser(ctx, model.UserSignupRequest{Name: "Bo", Email: "bo@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("SignupUser: %v", err)
	}
	p, err := auth.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := auth.Signout(ctx, *p); err != nil {
		t.Fatalf("Signout: %v", err)
	}
	if _, err := auth.Authenticate(ctx, tok); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("after signout: got %v, want ErrTokenRevoked", err)
	}

	// Other sessions of the same user stay valid.
	_, other, _ := auth.SigninUser(ctx, model.SigninRequest{Email: "bo@example.com", Password: "pw"})
	if _, err := auth.Authenticate(ctx, other); err != nil {
		t.Errorf("second token rejected: %v", err)
	}
}

func TestAuthenticateRejectsDeletedPrincipal(t *testing.T) {
	ctx := context.Background()
	auth, stores, _ := newTestAuth(t, 0)

	admin, tok, err := auth.SignupAdmin(ctx, model.AdminSignupRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("SignupAdmin: %v", err)
	}
	if _, err := auth.Authenticate(ctx, tok); err != nil {
		t.Fatalf("Authenticate before delete: %v", err)
	}

	stores.Admins.Delete(admin.ID)
	p, err := auth.Authenticate(ctx, tok)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("after delete: got %v, want ErrNotAuthorized", err)
	}
	if p != nil {
		t.Error("principal bound for a deleted account")
	}
}

func TestAuthenticateStoreFailure(t *testing.T) {
	ctx := context.Background()
	auth, stores, _ := newTestAuth(t, 0)

	_, tok, err := auth.SignupUser(ctx, model.UserSignupRequest{Name: "Bo", Email: "bo@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("SignupUser: %v", err)
	}

	stores.Users.Err = errors.New("connection reset")
	if _, err := auth.Authenticate(ctx, tok); err == nil || errors.Is(err, ErrNotAuthorized) {
		t.Errorf("got %v, want a wrapped store error", err)
	}
}
