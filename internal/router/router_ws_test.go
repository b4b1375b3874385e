package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eventhub/eventhub-backend/internal/model"
	ws "github.com/eventhub/eventhub-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func liveURL(srv *httptest.Server, eventID uuid.UUID, token string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/event/" + eventID.String() + "/live"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func readAttendance(t *testing.T, conn *websocket.Conn) ws.AttendanceResponse {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ws.AttendanceResponse
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Event != ws.EventAttendance {
		t.Fatalf("event = %q, want %q", msg.Event, ws.EventAttendance)
	}
	return msg
}

func TestLiveAttendanceStream(t *testing.T) {
	s := newTestServer(t)
	a := s.signupAdmin("Alice")
	u := s.signupUser("Uma", 30)

	_, env := s.form(http.MethodPost, "/api/v1/event/addEvent", a.Token, eventFields, pngImage)
	event := decode[model.Event](t, env)

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(liveURL(srv, event.EventID, a.Token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if got := readAttendance(t, conn); got.AttendeeCount != 0 || got.EventID != event.EventID.String() {
		t.Errorf("snapshot = %+v", got)
	}

	if w, _ := s.json(http.MethodPost, "/api/v1/event/enroll", u.Token, gin.H{"eventId": event.EventID.String()}); w.Code != http.StatusOK {
		t.Fatalf("enroll: %d", w.Code)
	}
	if got := readAttendance(t, conn); got.AttendeeCount != 1 {
		t.Errorf("after enroll = %d, want 1", got.AttendeeCount)
	}

	if w, _ := s.json(http.MethodPost, "/api/v1/event/unroll", u.Token, gin.H{"eventId": event.EventID.String()}); w.Code != http.StatusOK {
		t.Fatalf("unroll: %d", w.Code)
	}
	if got := readAttendance(t, conn); got.AttendeeCount != 0 {
		t.Errorf("after unroll = %d, want 0", got.AttendeeCount)
	}

	if err := conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
		t.Fatalf("ping: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var pong ws.PongResponse
	if err := conn.ReadJSON(&pong); err != nil || pong.Event != ws.EventPong {
		t.Errorf("pong = %+v, err %v", pong, err)
	}

	if err := conn.WriteJSON(ws.RequestEnvelope{Action: "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var bad ws.ErrorResponse
	if err := conn.ReadJSON(&bad); err != nil || bad.Event != ws.EventError {
		t.Errorf("unknown action reply = %+v, err %v", bad, err)
	}
}

func TestLiveAttendanceRejects(t *testing.T) {
	s := newTestServer(t)
	a := s.signupAdmin("Alice")

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(liveURL(srv, uuid.New(), ""), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("without token: err %v, resp %v", err, resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial(liveURL(srv, uuid.New(), a.Token), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown event: err %v, resp %v", err, resp)
	}
}

func TestLiveAttendanceSnapshotAfterSubscribe(t *testing.T) {
	s := newTestServer(t)
	a := s.signupAdmin("Alice")
	u := s.signupUser("Uma", 30)

	_, env := s.form(http.MethodPost, "/api/v1/event/addEvent", a.Token, eventFields, pngImage)
	event := decode[model.Event](t, env)

	// An enrollment that lands between the existence check and the
	// subscription publishes nothing the new subscriber can see.
	s.feed.OnSubscribe = func(eventID uuid.UUID) {
		if err := s.stores.Events.AddAttendee(context.Background(), eventID, u.User.ID); err != nil {
			t.Errorf("AddAttendee: %v", err)
		}
	}

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(liveURL(srv, event.EventID, a.Token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if got := readAttendance(t, conn); got.AttendeeCount != 1 {
		t.Errorf("snapshot = %d, want 1", got.AttendeeCount)
	}
}
