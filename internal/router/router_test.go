package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/handler"
	"github.com/eventhub/eventhub-backend/internal/middleware"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/eventhub/eventhub-backend/internal/service"
	"github.com/eventhub/eventhub-backend/internal/service/servicetest"
	"github.com/eventhub/eventhub-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var pngImage = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type envelope struct {
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorBody `json:"error"`
	Message string              `json:"message"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	feed   *servicetest.AttendanceFeed
	stores *servicetest.Stores
	events *service.EventService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{GinMode: gin.TestMode, MaxUploadBytes: 1 << 20}
	log := zerolog.Nop()
	stores := servicetest.NewStores()

	tokens := service.NewTokenService("router-secret", time.Hour)
	auth := service.NewAuthService(stores.Admins, stores.Users,
		service.NewPasswordHasher(bcrypt.MinCost), tokens, &servicetest.RevocationStore{}, log)
	media := service.NewMediaService(cfg.MaxUploadBytes)
	events := service.NewEventService(stores.Events, stores.Admins, stores.Users,
		&servicetest.TrendingCache{}, media, time.UTC, log)
	feed := &servicetest.AttendanceFeed{}
	events.SetAttendanceFeed(feed)

	handlers := &Handlers{
		Admin:  handler.NewAdminHandler(auth, service.NewAdminService(stores.Admins, stores.Events), log),
		User:   handler.NewUserHandler(auth, service.NewUserService(stores.Users, stores.Events), log),
		Event:  handler.NewEventHandler(events, media, log),
		WS:     handler.NewWSHandler(events, feed, log, nil),
		System: handler.NewSystemHandler(log),
	}
	limiter := middleware.NewMemoryLimiter(1000, time.Minute)
	return &testServer{t: t, engine: SetupRouter(auth, limiter, handlers, cfg, log), feed: feed, stores: stores, events: events}
}

func (s *testServer) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: decode body: %v", req.Method, req.URL.Path, err)
		}
	}
	return w, env
}

func (s *testServer) json(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *testServer) form(method, path, token string, fields map[string]string, image []byte) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if image != nil {
		part, _ := mw.CreateFormFile("image", "cover.png")
		_, _ = part.Write(image)
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req, token)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
	return v
}

type authData struct {
	Token string       `json:"token"`
	Admin *model.Admin `json:"admin"`
	User  *model.User  `json:"user"`
}

func (s *testServer) signupAdmin(name string) authData {
	s.t.Helper()
	w, env := s.json(http.MethodPost, "/api/v1/admin/signup", "", gin.H{
		"name": name, "email": strings.ToLower(name) + "@example.com", "password": "pw-" + name,
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("admin signup: %d %s", w.Code, w.Body)
	}
	return decode[authData](s.t, env)
}

func (s *testServer) signupUser(name string, age int) authData {
	s.t.Helper()
	w, env := s.json(http.MethodPost, "/api/v1/user/signup", "", gin.H{
		"name": name, "email": strings.ToLower(name) + "@example.com", "password": "pw-" + name, "age": age,
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("user signup: %d %s", w.Code, w.Body)
	}
	return decode[authData](s.t, env)
}

var eventFields = map[string]string{
	"eventName":   "Jazz Night",
	"description": "Live quartet",
	"venue":       "Blue Room",
	"time":        "2026-11-20T20:00",
	"price":       "500",
	"category":    "music",
	"minAge":      "18",
}

func TestEventOwnershipScenario(t *testing.T) {
	s := newTestServer(t)
	a := s.signupAdmin("Alice")
	b := s.signupAdmin("Bob")

	w, env := s.form(http.MethodPost, "/api/v1/event/addEvent", a.Token, eventFields, pngImage)
	if w.Code != http.StatusCreated {
		t.Fatalf("addEvent: %d %s", w.Code, w.Body)
	}
	event := decode[model.Event](t, env)
	if event.OrganizerID != a.Admin.ID {
		t.Fatalf("organizerId = %d, want %d", event.OrganizerID, a.Admin.ID)
	}
	path := "/api/v1/event/" + event.EventID.String()

	w, _ = s.json(http.MethodDelete, "/api/v1/event/deleteEvent/"+event.EventID.String(), b.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete by non-owner: %d, want 404", w.Code)
	}
	edited := map[string]string{}
	for k, v := range eventFields {
		edited[k] = v
	}
	edited["eventName"] = "Hijacked"
	w, _ = s.form(http.MethodPut, "/api/v1/event/editEvent/"+event.EventID.String(), "Bearer "+b.Token, edited, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("edit by non-owner: %d, want 404", w.Code)
	}

	w, env = s.json(http.MethodGet, path, b.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get after non-owner mutations: %d", w.Code)
	}
	if got := decode[model.Event](t, env); got.EventName != "Jazz Night" {
		t.Errorf("event name = %q", got.EventName)
	}

	// The owner may edit without re-uploading the image.
	edited["eventName"] = "Jazz Night II"
	w, env = s.form(http.MethodPut, "/api/v1/event/editEvent/"+event.EventID.String(), a.Token, edited, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("edit by owner: %d %s", w.Code, w.Body)
	}
	if got := decode[model.Event](t, env); got.EventName != "Jazz Night II" || got.Image == "" {
		t.Errorf("after owner edit: name %q, image kept %v", got.EventName, got.Image != "")
	}

	w, env = s.json(http.MethodGet, "/api/v1/admin/profile", a.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin profile: %d", w.Code)
	}
	if p := decode[model.AdminProfile](t, env); len(p.Events) != 1 || p.ID != a.Admin.ID {
		t.Errorf("profile = id %d with %d events", p.ID, len(p.Events))
	}

	w, _ = s.json(http.MethodDelete, "/api/v1/event/deleteEvent/"+event.EventID.String(), a.Token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete by owner: %d", w.Code)
	}
	if w, _ = s.json(http.MethodGet, path, a.Token, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: %d, want 404", w.Code)
	}
}

func TestEnrollmentScenario(t *testing.T) {
	s := newTestServer(t)
	a := s.signupAdmin("Alice")
	u := s.signupUser("Uma", 30)
	kid := s.signupUser("Kid", 12)

	_, env := s.form(http.MethodPost, "/api/v1/event/addEvent", a.Token, eventFields, pngImage)
	event := decode[model.Event](t, env)
	body := gin.H{"eventId": event.EventID.String()}

	w, env := s.json(http.MethodPost, "/api/v1/event/enroll", u.Token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("enroll: %d %s", w.Code, w.Body)
	}
	if got := decode[model.Event](t, env); got.AttendeeCount != 1 {
		t.Errorf("count after enroll = %d", got.AttendeeCount)
	}

	// minAge is informational unless the service enforces it.
	w, env = s.json(http.MethodPost, "/api/v1/event/enroll", kid.Token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("underage enroll: %d %+v", w.Code, env.Error)
	}
	if got := decode[model.Event](t, env); got.AttendeeCount != 2 {
		t.Errorf("count after second enroll = %d", got.AttendeeCount)
	}
	if w, _ = s.json(http.MethodPost, "/api/v1/event/unroll", kid.Token, body); w.Code != http.StatusOK {
		t.Fatalf("kid unroll: %d", w.Code)
	}

	w, env = s.json(http.MethodPost, "/api/v1/event/enroll", a.Token, body)
	if w.Code != http.StatusForbidden || env.Error == nil || env.Error.Code != response.ErrUserAccessOnly {
		t.Errorf("admin enroll: %d %+v", w.Code, env.Error)
	}

	w, env = s.json(http.MethodGet, "/api/v1/user/profile", u.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("user profile: %d", w.Code)
	}
	if p := decode[model.UserProfile](t, env); len(p.Events) != 1 {
		t.Errorf("user enrolled in %d events, want 1", len(p.Events))
	}

	w, env = s.json(http.MethodGet, "/api/v1/event/trendingEvents", u.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("trending: %d", w.Code)
	}
	if got := decode[[]model.Event](t, env); len(got) != 1 || got[0].AttendeeCount != 1 {
		t.Errorf("trending = %+v", got)
	}

	w, env = s.json(http.MethodPost, "/api/v1/event/unroll", u.Token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("unroll: %d", w.Code)
	}
	if got := decode[model.Event](t, env); got.AttendeeCount != 0 {
		t.Errorf("count after unroll = %d", got.AttendeeCount)
	}

	w, _ = s.json(http.MethodPost, "/api/v1/event/enroll", u.Token, gin.H{"eventId": "not-a-uuid"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad event id: %d, want 400", w.Code)
	}
}

func TestAuthGateOnRoutes(t *testing.T) {
	s := newTestServer(t)
	a := s.signupAdmin("Alice")
	u := s.signupUser("Uma", 30)

	for _, path := range []string{"/api/v1/event/allEvents", "/api/v1/admin/profile", "/api/v1/user/profile"} {
		w, env := s.json(http.MethodGet, path, "", nil)
		if w.Code != http.StatusForbidden || env.Message != "You are not logged in" {
			t.Errorf("%s without token: %d %q", path, w.Code, env.Message)
		}
	}

	w, env := s.json(http.MethodGet, "/api/v1/admin/profile", u.Token, nil)
	if w.Code != http.StatusForbidden || env.Error.Code != response.ErrAdminAccessOnly {
		t.Errorf("user on admin profile: %d %+v", w.Code, env.Error)
	}

	w, env = s.form(http.MethodPost, "/api/v1/event/addEvent", u.Token, eventFields, pngImage)
	if w.Code != http.StatusForbidden || env.Error.Code != response.ErrAdminAccessOnly {
		t.Errorf("user addEvent: %d %+v", w.Code, env.Error)
	}

	if w, _ = s.json(http.MethodGet, "/api/v1/event/allEvents", u.Token, nil); w.Code != http.StatusOK {
		t.Errorf("user allEvents: %d", w.Code)
	}

	if w, _ = s.json(http.MethodPost, "/api/v1/admin/signout", a.Token, nil); w.Code != http.StatusOK {
		t.Fatalf("signout: %d", w.Code)
	}
	if w, _ = s.json(http.MethodGet, "/api/v1/admin/profile", a.Token, nil); w.Code != http.StatusForbidden {
		t.Errorf("profile after signout: %d, want 403", w.Code)
	}
}

func TestSignupSigninErrors(t *testing.T) {
	s := newTestServer(t)
	s.signupAdmin("Alice")

	w, env := s.json(http.MethodPost, "/api/v1/admin/signup", "", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "x",
	})
	if w.Code != http.StatusConflict || env.Error.Code != response.ErrConflict {
		t.Errorf("duplicate signup: %d %+v", w.Code, env.Error)
	}

	w, env = s.json(http.MethodPost, "/api/v1/admin/signin", "", gin.H{
		"email": "alice@example.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized || env.Error.Code != response.ErrInvalidCredentials {
		t.Errorf("wrong password: %d %+v", w.Code, env.Error)
	}

	w, env = s.json(http.MethodPost, "/api/v1/admin/signin", "", gin.H{
		"email": "alice@example.com", "password": "pw-Alice",
	})
	if w.Code != http.StatusOK || decode[authData](t, env).Token == "" {
		t.Errorf("signin: %d", w.Code)
	}

	w, env = s.json(http.MethodPost, "/api/v1/user/signup", "", gin.H{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest || env.Error.Code != response.ErrValidation || len(env.Error.Fields) == 0 {
		t.Errorf("invalid signup: %d %+v", w.Code, env.Error)
	}
}

func TestEventImage(t *testing.T) {
	s := newTestServer(t)
	a := s.signupAdmin("Alice")

	w, env := s.form(http.MethodPost, "/api/v1/event/addEvent", a.Token, eventFields, nil)
	if w.Code != http.StatusBadRequest || env.Error.Code != response.ErrFileRequired {
		t.Errorf("addEvent without image: %d %+v", w.Code, env.Error)
	}

	w, env = s.form(http.MethodPost, "/api/v1/event/addEvent", a.Token, eventFields, []byte("just text"))
	if w.Code != http.StatusBadRequest || env.Error.Code != response.ErrUnsupportedFile {
		t.Errorf("addEvent with text file: %d %+v", w.Code, env.Error)
	}

	_, env = s.form(http.MethodPost, "/api/v1/event/addEvent", a.Token, eventFields, pngImage)
	event := decode[model.Event](t, env)

	w, _ = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/event/"+event.EventID.String()+"/image", nil), a.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("image: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.HasPrefix(cc, "private") {
		t.Errorf("cache control = %q", cc)
	}
	if !bytes.Equal(w.Body.Bytes(), pngImage) {
		t.Error("image bytes differ")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.json(http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health: %d", w.Code)
	}
}

func TestDeletedAccountIsLoggedOut(t *testing.T) {
	s := newTestServer(t)
	a := s.signupAdmin("Alice")

	if w, _ := s.json(http.MethodGet, "/api/v1/event/adminEvents", a.Token, nil); w.Code != http.StatusOK {
		t.Fatalf("adminEvents before delete: %d", w.Code)
	}

	s.stores.Admins.Delete(a.Admin.ID)
	for _, path := range []string{"/api/v1/event/adminEvents", "/api/v1/admin/profile", "/api/v1/event/allEvents"} {
		w, env := s.json(http.MethodGet, path, a.Token, nil)
		if w.Code != http.StatusForbidden || env.Error == nil || env.Error.Code != response.ErrNotLoggedIn {
			t.Errorf("%s after delete: %d %+v", path, w.Code, env.Error)
		}
	}
}

func TestEnforcedMinAge(t *testing.T) {
	s := newTestServer(t)
	s.events.EnforceMinAge(true)
	a := s.signupAdmin("Alice")
	kid := s.signupUser("Kid", 12)

	_, env := s.form(http.MethodPost, "/api/v1/event/addEvent", a.Token, eventFields, pngImage)
	event := decode[model.Event](t, env)

	w, env := s.json(http.MethodPost, "/api/v1/event/enroll", kid.Token, gin.H{"eventId": event.EventID.String()})
	if w.Code != http.StatusForbidden || env.Error == nil || env.Error.Code != response.ErrAgeRestricted {
		t.Errorf("underage enroll: %d %+v", w.Code, env.Error)
	}
}
