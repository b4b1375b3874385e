package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// ContextKeyPrincipal is the Gin context key for the authenticated principal.
	ContextKeyPrincipal = "principal"
)

// Authenticator resolves a bearer token to a principal.
// *service.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
}

// Authenticate is the shared auth gate. It accepts either a raw token or
// "Bearer <token>" in the Authorization header. Every failure aborts with 403
// and the handler chain never runs.
func Authenticate(auth Authenticator, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "auth_gate").Logger()

	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))

		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug().
				Err(err).
				Str("request_id", response.RequestID(c)).
				Str("path", c.FullPath()).
				Msg("Rejected request")
			response.AbortFail(c, http.StatusForbidden, response.ErrNotLoggedIn)
			return
		}

		c.Set(ContextKeyPrincipal, principal)
		c.Next()
	}
}

// TokenFromQuery copies the named query parameter into the Authorization
// header when the header is absent. Browsers cannot set headers on a
// WebSocket handshake, so live routes mount it ahead of the gate.
func TokenFromQuery(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query(param); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from the Gin context.
func GetPrincipal(c *gin.Context) *model.Principal {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, ok := val.(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

func extractToken(header string) string {
	header = strings.TrimSpace(header)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}
