package handler

import (
	"net/http"

	"github.com/eventhub/eventhub-backend/internal/middleware"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/eventhub/eventhub-backend/internal/service"
	"github.com/eventhub/eventhub-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminHandler handles admin account endpoints.
type AdminHandler struct {
	authService  *service.AuthService
	adminService *service.AdminService
	log          zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService *service.AuthService, adminService *service.AdminService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		adminService: adminService,
		log:          log.With().Str("component", "admin_handler").Logger(),
	}
}

// Signup godoc
// POST /api/v1/admin/signup
// Creates an admin account and returns a token for it.
func (h *AdminHandler) Signup(c *gin.Context) {
	var req model.AdminSignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, token, err := h.authService.SignupAdmin(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"token": token, "admin": admin})
}

// Signin godoc
// POST /api/v1/admin/signin
// Validates email + password and returns a token.
func (h *AdminHandler) Signin(c *gin.Context) {
	var req model.SigninRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, token, err := h.authService.SigninAdmin(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "admin": admin})
}

// Profile godoc
// GET /api/v1/admin/profile
// Returns the authenticated admin and the events they organize.
func (h *AdminHandler) Profile(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	profile, err := h.adminService.Profile(c.Request.Context(), *p)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// Signout godoc
// POST /api/v1/admin/signout
// Revokes the token used for this request.
func (h *AdminHandler) Signout(c *gin.Context) {
	signout(c, h.authService, h.log)
}

func signout(c *gin.Context, auth *service.AuthService, log zerolog.Logger) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	if err := auth.Signout(c.Request.Context(), *p); err != nil {
		fail(c, log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
