package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only client message shape; the action decides the rest.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventAttendance Event = "attendance"
	EventPong       Event = "pong"
)

// AttendanceResponse carries an event's current attendee count. The first
// one is sent as soon as the socket opens.
type AttendanceResponse struct {
	Event         Event  `json:"event"`
	EventID       string `json:"eventId"`
	AttendeeCount int    `json:"attendeeCount"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
