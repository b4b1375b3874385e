package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrNotAuthorized    = errors.New("principal no longer exists")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAgeRestricted    = errors.New("user is below the event's minimum age")
)

// Authorize checks the fixed kind-to-permission table.
func Authorize(kind model.PrincipalKind, perm model.Permission) error {
	if !kind.Can(perm) {
		return ErrPermissionDenied
	}
	return nil
}

// EventService enforces who may do what to which event.
type EventService struct {
	events   EventStore
	admins   AdminStore
	users    UserStore
	trending TrendingCache
	feed     AttendanceFeed
	media    *MediaService
	minAge   bool
	loc      *time.Location
	log      zerolog.Logger
}

// NewEventService creates a new EventService. trending may be nil, which
// disables caching of the trending list.
func NewEventService(
	events EventStore,
	admins AdminStore,
	users UserStore,
	trending TrendingCache,
	media *MediaService,
	loc *time.Location,
	log zerolog.Logger,
) *EventService {
	return &EventService{
		events:   events,
		admins:   admins,
		users:    users,
		trending: trending,
		media:    media,
		loc:      loc,
		log:      log.With().Str("component", "event_service").Logger(),
	}
}

// EnforceMinAge makes Enroll reject users younger than the event's minAge.
// Off by default: minAge is otherwise informational.
func (s *EventService) EnforceMinAge(on bool) {
	s.minAge = on
}

// SetAttendanceFeed makes Enroll and Unroll publish the new attendee count.
func (s *EventService) SetAttendanceFeed(feed AttendanceFeed) {
	s.feed = feed
}

// FromForm builds an event from submitted form fields. image is the
// base64-encoded picture, empty when none was uploaded.
func (s *EventService) FromForm(form model.EventForm, image string) (*model.Event, error) {
	t, err := ParseEventTime(form.Time, s.loc)
	if err != nil {
		return nil, err
	}

	e := &model.Event{
		EventName:   strings.TrimSpace(form.EventName),
		Description: form.Description,
		Venue:       strings.TrimSpace(form.Venue),
		Time:        t,
		Price:       form.Price,
		Category:    strings.TrimSpace(form.Category),
		Image:       image,
		MinAge:      form.MinAge,
	}
	if c := strings.TrimSpace(form.Contact); c != "" {
		e.Contact = &c
	}
	return e, nil
}

// Create stores a new event owned by the calling admin.
func (s *EventService) Create(ctx context.Context, p model.Principal, e *model.Event) error {
	if err := Authorize(p.Kind, model.PermissionEventsCreate); err != nil {
		return err
	}

	// A valid token can outlive its account.
	if _, err := s.admins.GetByID(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotAuthorized
		}
		return fmt.Errorf("resolve organizer: %w", err)
	}

	e.EventID = uuid.New()
	e.OrganizerID = p.ID
	if err := s.events.Create(ctx, e); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	s.invalidateTrending(ctx)
	s.log.Info().
		Str("event_id", e.EventID.String()).
		Int("organizer_id", p.ID).
		Msg("Event created")
	return nil
}

// Update rewrites an event the caller organizes. Events that do not exist and
// events owned by someone else both yield repository.ErrNotFound.
func (s *EventService) Update(ctx context.Context, p model.Principal, e *model.Event) (*model.Event, error) {
	if err := Authorize(p.Kind, model.PermissionEventsWriteOwn); err != nil {
		return nil, err
	}

	e.OrganizerID = p.ID
	if err := s.events.UpdateOwned(ctx, e); err != nil {
		return nil, err
	}

	s.invalidateTrending(ctx)
	return s.events.GetByID(ctx, e.EventID)
}

// Delete removes an event the caller organizes, with the same not-found
// semantics as Update.
func (s *EventService) Delete(ctx context.Context, p model.Principal, eventID uuid.UUID) error {
	if err := Authorize(p.Kind, model.PermissionEventsWriteOwn); err != nil {
		return err
	}

	if err := s.events.DeleteOwned(ctx, eventID, p.ID); err != nil {
		return err
	}

	s.invalidateTrending(ctx)
	s.log.Info().
		Str("event_id", eventID.String()).
		Int("organizer_id", p.ID).
		Msg("Event deleted")
	return nil
}

// Get returns one event with its attendees and organizer.
func (s *EventService) Get(ctx context.Context, p model.Principal, eventID uuid.UUID) (*model.Event, error) {
	if err := Authorize(p.Kind, model.PermissionEventsRead); err != nil {
		return nil, err
	}

	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	attendees, err := s.events.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	e.Attendees = attendees

	organizer, err := s.admins.GetByID(ctx, e.OrganizerID)
	switch {
	case err == nil:
		e.Organizer = organizer
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("resolve organizer: %w", err)
	}
	return e, nil
}

// Image returns the decoded image of one event and its content type.
func (s *EventService) Image(ctx context.Context, p model.Principal, eventID uuid.UUID) ([]byte, string, error) {
	if err := Authorize(p.Kind, model.PermissionEventsRead); err != nil {
		return nil, "", err
	}

	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, "", err
	}
	return s.media.Decode(e.Image)
}

// ListAll returns every event, optionally filtered by category.
func (s *EventService) ListAll(ctx context.Context, p model.Principal, category string) ([]model.Event, error) {
	if err := Authorize(p.Kind, model.PermissionEventsRead); err != nil {
		return nil, err
	}
	return nonNil(s.events.ListAll(ctx, strings.TrimSpace(category)))
}

// ListOwned returns the events the calling admin organizes.
func (s *EventService) ListOwned(ctx context.Context, p model.Principal) ([]model.Event, error) {
	if err := Authorize(p.Kind, model.PermissionEventsReadOwn); err != nil {
		return nil, err
	}
	return nonNil(s.events.ListByOrganizer(ctx, p.ID))
}

// Trending returns events ordered by attendee count, highest first, served
// from the cache when it is warm.
func (s *EventService) Trending(ctx context.Context, p model.Principal) ([]model.Event, error) {
	if err := Authorize(p.Kind, model.PermissionEventsRead); err != nil {
		return nil, err
	}

	if s.trending != nil {
		events, ok, err := s.trending.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("Trending cache read failed, falling back to database")
		} else if ok {
			return events, nil
		}
	}
	return s.RefreshTrending(ctx)
}

// RefreshTrending recomputes the trending list and stores it in the cache.
// The list is cached under the generation read before the query, so a
// refresh that overlaps an enrollment change never outlives the invalidation.
func (s *EventService) RefreshTrending(ctx context.Context) ([]model.Event, error) {
	var gen int64
	cacheable := s.trending != nil
	if cacheable {
		var err error
		if gen, err = s.trending.Generation(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Trending cache generation unavailable, skipping cache write")
			cacheable = false
		}
	}

	events, err := nonNil(s.events.ListTrending(ctx))
	if err != nil {
		return nil, fmt.Errorf("list trending: %w", err)
	}

	if cacheable {
		if err := s.trending.Set(ctx, gen, events); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache trending events")
		}
	}
	return events, nil
}

// Enroll adds the calling user to an event's attendees. Enrolling twice is a no-op.
func (s *EventService) Enroll(ctx context.Context, p model.Principal, eventID uuid.UUID) (*model.Event, error) {
	if err := Authorize(p.Kind, model.PermissionEventsEnroll); err != nil {
		return nil, err
	}

	user, e, err := s.resolveEnrollment(ctx, p, eventID)
	if err != nil {
		return nil, err
	}
	if s.minAge && user.Age < e.MinAge {
		return nil, ErrAgeRestricted
	}

	if err := s.events.AddAttendee(ctx, eventID, user.ID); err != nil {
		return nil, fmt.Errorf("add attendee: %w", err)
	}

	return s.attendanceChanged(ctx, eventID)
}

// Unroll removes the calling user from an event's attendees. Unrolling a
// user who is not enrolled is a no-op.
func (s *EventService) Unroll(ctx context.Context, p model.Principal, eventID uuid.UUID) (*model.Event, error) {
	if err := Authorize(p.Kind, model.PermissionEventsEnroll); err != nil {
		return nil, err
	}

	user, _, err := s.resolveEnrollment(ctx, p, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.events.RemoveAttendee(ctx, eventID, user.ID); err != nil {
		return nil, fmt.Errorf("remove attendee: %w", err)
	}

	return s.attendanceChanged(ctx, eventID)
}

func (s *EventService) resolveEnrollment(ctx context.Context, p model.Principal, eventID uuid.UUID) (*model.User, *model.Event, error) {
	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, nil, err
	}
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return user, e, nil
}

// attendanceChanged reloads the event after an enrollment change and tells
// everyone watching it.
func (s *EventService) attendanceChanged(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	s.invalidateTrending(ctx)

	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		update := model.AttendanceUpdate{EventID: e.EventID, AttendeeCount: e.AttendeeCount}
		if err := s.feed.Publish(ctx, update); err != nil {
			s.log.Warn().Err(err).Str("event_id", eventID.String()).Msg("Failed to publish attendance")
		}
	}
	return e, nil
}

func (s *EventService) invalidateTrending(ctx context.Context) {
	if s.trending == nil {
		return
	}
	if err := s.trending.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate trending cache")
	}
}

func nonNil(events []model.Event, err error) ([]model.Event, error) {
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}
