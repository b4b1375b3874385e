package service

import (
	"context"
	"time"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/google/uuid"
)

// AdminStore is the admin persistence the services depend on.
// *repository.AdminRepository satisfies it.
type AdminStore interface {
	GetByID(ctx context.Context, id int) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, admin *model.Admin) error
}

// UserStore is the attendee persistence the services depend on.
// *repository.UserRepository satisfies it.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// EventStore is the event persistence the services depend on.
// *repository.EventRepository satisfies it.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	ListAll(ctx context.Context, category string) ([]model.Event, error)
	ListByOrganizer(ctx context.Context, organizerID int) ([]model.Event, error)
	ListByAttendee(ctx context.Context, userID int) ([]model.Event, error)
	ListTrending(ctx context.Context) ([]model.Event, error)
	ListAttendees(ctx context.Context, eventID uuid.UUID) ([]model.Attendee, error)
	UpdateOwned(ctx context.Context, e *model.Event) error
	DeleteOwned(ctx context.Context, eventID uuid.UUID, organizerID int) error
	AddAttendee(ctx context.Context, eventID uuid.UUID, userID int) error
	RemoveAttendee(ctx context.Context, eventID uuid.UUID, userID int) error
}

// TrendingCache holds the last computed trending list.
type TrendingCache interface {
	// Generation returns the current cache generation. Invalidate advances it.
	Generation(ctx context.Context) (int64, error)
	// Get reports ok=false on a cache miss.
	Get(ctx context.Context) (events []model.Event, ok bool, err error)
	// Set stores events under generation gen. A list stored under a stale
	// generation is never returned by Get.
	Set(ctx context.Context, gen int64, events []model.Event) error
	Invalidate(ctx context.Context) error
}

// RevocationStore records signed-out token IDs.
type RevocationStore interface {
	// Revoke marks jti as revoked for ttl. A zero ttl never expires.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AttendanceFeed fans attendee count changes out to live subscribers.
type AttendanceFeed interface {
	Publish(ctx context.Context, update model.AttendanceUpdate) error
	// Subscribe delivers updates for one event until ctx is done, then
	// closes the channel.
	Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan model.AttendanceUpdate, error)
}
