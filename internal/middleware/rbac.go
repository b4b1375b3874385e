package middleware

import (
	"net/http"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireKind allows only principals of the given kinds. It must run after
// Authenticate.
func RequireKind(kinds ...model.PrincipalKind) gin.HandlerFunc {
	code := response.ErrPermissionDenied
	if len(kinds) == 1 {
		code = accessOnlyCode(kinds[0])
	}

	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.AbortFail(c, http.StatusForbidden, response.ErrNotLoggedIn)
			return
		}

		for _, k := range kinds {
			if p.Kind == k {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, code)
	}
}

// RequirePermission checks the principal's kind against the permission table.
// When only one kind holds perm, the rejection names that kind.
func RequirePermission(perm model.Permission) gin.HandlerFunc {
	code := response.ErrPermissionDenied
	var holders []model.PrincipalKind
	for _, k := range []model.PrincipalKind{model.PrincipalAdmin, model.PrincipalUser} {
		if k.Can(perm) {
			holders = append(holders, k)
		}
	}
	if len(holders) == 1 {
		code = accessOnlyCode(holders[0])
	}

	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.AbortFail(c, http.StatusForbidden, response.ErrNotLoggedIn)
			return
		}

		if !p.Kind.Can(perm) {
			response.AbortFail(c, http.StatusForbidden, code)
			return
		}

		c.Next()
	}
}

func accessOnlyCode(kind model.PrincipalKind) response.ErrCode {
	switch kind {
	case model.PrincipalAdmin:
		return response.ErrAdminAccessOnly
	case model.PrincipalUser:
		return response.ErrUserAccessOnly
	}
	return response.ErrPermissionDenied
}
