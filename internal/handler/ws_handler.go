package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/eventhub/eventhub-backend/internal/middleware"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/eventhub/eventhub-backend/internal/service"
	ws "github.com/eventhub/eventhub-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// AttendanceSubscriber streams attendee count changes for one event.
// *service.RedisAttendanceFeed satisfies it.
type AttendanceSubscriber interface {
	Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan model.AttendanceUpdate, error)
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler serves live attendee counts over WebSocket.
type WSHandler struct {
	eventService *service.EventService
	feed         AttendanceSubscriber
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(eventService *service.EventService, feed AttendanceSubscriber, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		eventService: eventService,
		feed:         feed,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// EventAttendanceStream godoc
// WS /ws/v1/event/:eventId/live
// Sends the current attendee count, then every change until the client leaves.
func (h *WSHandler) EventAttendanceStream(c *gin.Context) {
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

	// Resolve before upgrading so a missing event is a plain 404.
	event, err := h.eventService.Get(c.Request.Context(), *p, eventID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("principal_id", p.ID).
		Str("kind", string(p.Kind)).
		Str("event_id", eventID.String()).
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := h.feed.Subscribe(ctx, eventID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Attendance subscribe failed")
		ws.WriteError(conn, "live updates unavailable")
		return
	}

	// Re-read now that updates are flowing so no change falls between the
	// snapshot and the first update.
	event, err = h.eventService.Get(ctx, *p, eventID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Attendance snapshot failed")
		ws.WriteError(conn, "live updates unavailable")
		return
	}
	if err := ws.WriteTyped(conn, attendanceResponse(event.EventID, event.AttendeeCount)); err != nil {
		return
	}
	wsLog.Info().Msg("Live subscriber connected")

	// Only this goroutine writes; the reader hands replies over.
	replies := make(chan interface{}, 4)
	go h.readLoop(conn, wsLog, replies, cancel)

	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Live subscriber disconnected")
			return
		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, attendanceResponse(update.EventID, update.AttendeeCount)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

// readLoop answers pings and cancels the stream once the client goes away.
func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, replies chan<- interface{}, cancel context.CancelFunc) {
	defer cancel()

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		default:
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		}

		select {
		case replies <- reply:
		default:
			wsLog.Debug().Msg("Dropping reply to slow client")
		}
	}
}

func attendanceResponse(eventID uuid.UUID, count int) ws.AttendanceResponse {
	return ws.AttendanceResponse{
		Event:         ws.EventAttendance,
		EventID:       eventID.String(),
		AttendeeCount: count,
	}
}
