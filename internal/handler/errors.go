package handler

import (
	"errors"
	"net/http"

	"github.com/eventhub/eventhub-backend/internal/repository"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/eventhub/eventhub-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// fail maps a service or repository error to its HTTP status and error code.
// Anything unrecognized is logged and reported as 500.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateEmail):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrNotAuthorized):
		response.Fail(c, http.StatusForbidden, response.ErrNotAuthorized)
	case errors.Is(err, service.ErrPermissionDenied):
		response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
	case errors.Is(err, service.ErrAgeRestricted):
		response.Fail(c, http.StatusForbidden, response.ErrAgeRestricted)
	case errors.Is(err, service.ErrInvalidEventTime):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidTime)
	case errors.Is(err, service.ErrEncoding):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrNoImage):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		log.Error().
			Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
