package repository

import (
	"context"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// eventColumns is shared by every event read so scanEvent stays in sync.
const eventColumns = `e.event_id, e.event_name, e.description, e.venue, e.time, e.price,
	e.category, e.image, e.contact, e.min_age, e.organizer_id,
	(SELECT COUNT(*) FROM event_attendees ea WHERE ea.event_id = e.event_id) AS attendee_count,
	e.created_at, e.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner, e *model.Event) error {
	return row.Scan(&e.EventID, &e.EventName, &e.Description, &e.Venue, &e.Time, &e.Price,
		&e.Category, &e.Image, &e.Contact, &e.MinAge, &e.OrganizerID,
		&e.AttendeeCount, &e.CreatedAt, &e.UpdatedAt)
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// EventRepository handles event and attendee data access.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Create inserts a new event. EventID and OrganizerID must already be set.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO events (event_id, event_name, description, venue, time, price,
		                     category, image, contact, min_age, organizer_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`,
		e.EventID, e.EventName, e.Description, e.Venue, e.Time, e.Price,
		e.Category, e.Image, e.Contact, e.MinAge, e.OrganizerID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	e := &model.Event{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.event_id = $1`, id)
	if err := scanEvent(row, e); err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// ListAll retrieves every event, soonest first. An empty category disables the filter.
func (r *EventRepository) ListAll(ctx context.Context, category string) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events e
		 WHERE ($1 = '' OR e.category = $1)
		 ORDER BY e.time ASC`, category)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListByOrganizer retrieves the events owned by one admin.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID int) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events e
		 WHERE e.organizer_id = $1
		 ORDER BY e.time ASC`, organizerID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListByAttendee retrieves the events a user is enrolled in.
func (r *EventRepository) ListByAttendee(ctx context.Context, userID int) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events e
		 JOIN event_attendees a ON a.event_id = e.event_id
		 WHERE a.user_id = $1
		 ORDER BY e.time ASC`, userID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListTrending retrieves events ordered by attendee count, highest first,
// with the organizer attached.
func (r *EventRepository) ListTrending(ctx context.Context) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+`, o.id, o.name, o.email, o.created_at
		 FROM events e
		 JOIN admins o ON o.id = e.organizer_id
		 ORDER BY attendee_count DESC, e.time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		o := &model.Admin{}
		if err := rows.Scan(&e.EventID, &e.EventName, &e.Description, &e.Venue, &e.Time, &e.Price,
			&e.Category, &e.Image, &e.Contact, &e.MinAge, &e.OrganizerID,
			&e.AttendeeCount, &e.CreatedAt, &e.UpdatedAt,
			&o.ID, &o.Name, &o.Email, &o.CreatedAt); err != nil {
			return nil, err
		}
		e.Organizer = o
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListAttendees retrieves the attendee edges of one event.
func (r *EventRepository) ListAttendees(ctx context.Context, eventID uuid.UUID) ([]model.Attendee, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, a.enrolled_at
		 FROM event_attendees a JOIN users u ON u.id = a.user_id
		 WHERE a.event_id = $1
		 ORDER BY a.enrolled_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.UserID, &a.Name, &a.EnrolledAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// UpdateOwned rewrites an event's details, filtering on both the event ID and
// the organizer. An empty Image keeps the stored one. A non-owner matches no
// row and gets ErrNotFound, the same as a missing event.
func (r *EventRepository) UpdateOwned(ctx context.Context, e *model.Event) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE events SET
		     event_name = $3, description = $4, venue = $5, time = $6, price = $7,
		     category = $8, image = COALESCE(NULLIF($9, ''), image), contact = $10,
		     min_age = $11, updated_at = NOW()
		 WHERE event_id = $1 AND organizer_id = $2
		 RETURNING image, created_at, updated_at`,
		e.EventID, e.OrganizerID,
		e.EventName, e.Description, e.Venue, e.Time, e.Price,
		e.Category, e.Image, e.Contact, e.MinAge,
	).Scan(&e.Image, &e.CreatedAt, &e.UpdatedAt)
	return notFound(err)
}

// DeleteOwned removes an event if organizerID owns it.
func (r *EventRepository) DeleteOwned(ctx context.Context, eventID uuid.UUID, organizerID int) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM events WHERE event_id = $1 AND organizer_id = $2`, eventID, organizerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddAttendee connects a user to an event. Repeating it is a no-op.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID uuid.UUID, userID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (event_id, user_id) DO NOTHING`, eventID, userID)
	return err
}

// RemoveAttendee disconnects a user from an event. Removing a missing edge is a no-op.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID uuid.UUID, userID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	return err
}
