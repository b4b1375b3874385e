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

// UserHandler handles attendee account endpoints.
type UserHandler struct {
	authService *service.AuthService
	userService *service.UserService
	log         zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *service.AuthService, userService *service.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		log:         log.With().Str("component", "user_handler").Logger(),
	}
}

// Signup godoc
// POST /api/v1/user/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req model.UserSignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, token, err := h.authService.SignupUser(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"token": token, "user": user})
}

// Signin godoc
// POST /api/v1/user/signin
func (h *UserHandler) Signin(c *gin.Context) {
	var req model.SigninRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, token, err := h.authService.SigninUser(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "user": user})
}

// Profile godoc
// GET /api/v1/user/profile
// Returns the authenticated user and the events they are enrolled in.
func (h *UserHandler) Profile(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	profile, err := h.userService.Profile(c.Request.Context(), *p)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// Signout godoc
// POST /api/v1/user/signout
func (h *UserHandler) Signout(c *gin.Context) {
	signout(c, h.authService, h.log)
}
