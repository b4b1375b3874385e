package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eventhub/eventhub-backend/internal/middleware"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/eventhub/eventhub-backend/internal/service"
	"github.com/eventhub/eventhub-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventHandler handles event and enrollment endpoints.
type EventHandler struct {
	eventService *service.EventService
	mediaService *service.MediaService
	log          zerolog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService *service.EventService, mediaService *service.MediaService, log zerolog.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		mediaService: mediaService,
		log:          log.With().Str("component", "event_handler").Logger(),
	}
}

// AddEvent godoc
// POST /api/v1/event/addEvent
// Creates an event from a multipart form. The image part is required.
func (h *EventHandler) AddEvent(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	var form model.EventForm
	if fields := validator.BindForm(c, &form); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	image, ok := h.readImage(c, true)
	if !ok {
		return
	}

	event, err := h.eventService.FromForm(form, image)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if err := h.eventService.Create(c.Request.Context(), *p, event); err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, event)
}

// EditEvent godoc
// PUT /api/v1/event/editEvent/:id
// Rewrites an event the caller organizes. Omitting the image keeps the current one.
func (h *EventHandler) EditEvent(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var form model.EventForm
	if fields := validator.BindForm(c, &form); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	image, ok := h.readImage(c, false)
	if !ok {
		return
	}

	event, err := h.eventService.FromForm(form, image)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	event.EventID = eventID

	updated, err := h.eventService.Update(c.Request.Context(), *p, event)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// DeleteEvent godoc
// DELETE /api/v1/event/deleteEvent/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), *p, eventID); err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"eventId": eventID})
}

// AllEvents godoc
// GET /api/v1/event/allEvents?category=
func (h *EventHandler) AllEvents(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	events, err := h.eventService.ListAll(c.Request.Context(), *p, c.Query("category"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// AdminEvents godoc
// GET /api/v1/event/adminEvents
// Lists the events the calling admin organizes.
func (h *EventHandler) AdminEvents(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	events, err := h.eventService.ListOwned(c.Request.Context(), *p)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// TrendingEvents godoc
// GET /api/v1/event/trendingEvents
func (h *EventHandler) TrendingEvents(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	events, err := h.eventService.Trending(c.Request.Context(), *p)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// GetEvent godoc
// GET /api/v1/event/:eventId
// Returns one event with its attendees and organizer.
func (h *EventHandler) GetEvent(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	event, err := h.eventService.Get(c.Request.Context(), *p, eventID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, event)
}

// GetEventImage godoc
// GET /api/v1/event/:eventId/image
// Serves the decoded image bytes.
func (h *EventHandler) GetEventImage(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	data, contentType, err := h.eventService.Image(c.Request.Context(), *p, eventID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// Enroll godoc
// POST /api/v1/event/enroll
// Adds the calling user to an event's attendees.
func (h *EventHandler) Enroll(c *gin.Context) {
	h.enrollment(c, h.eventService.Enroll)
}

// Unroll godoc
// POST /api/v1/event/unroll
// Removes the calling user from an event's attendees.
func (h *EventHandler) Unroll(c *gin.Context) {
	h.enrollment(c, h.eventService.Unroll)
}

func (h *EventHandler) enrollment(c *gin.Context, apply func(context.Context, model.Principal, uuid.UUID) (*model.Event, error)) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusForbidden, response.ErrNotLoggedIn)
		return
	}

	var req model.EnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	event, err := apply(c.Request.Context(), *p, eventID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, event)
}

// readImage reads the "image" form file as base64. It writes the error
// response itself and reports ok=false when the request should stop.
func (h *EventHandler) readImage(c *gin.Context, required bool) (string, bool) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		if !required && (errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart)) {
			return "", true
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return "", false
	}
	defer file.Close()

	image, err := h.mediaService.EncodeUpload(file, header)
	if err != nil {
		fail(c, h.log, err)
		return "", false
	}
	return image, true
}
