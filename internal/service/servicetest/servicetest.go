// Package servicetest provides in-memory implementations of the service
// store interfaces for tests.
package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/repository"
	"github.com/google/uuid"
)

// Stores is a wired set of fakes sharing one lock, so event reads can join
// against admins and users the way the SQL does.
type Stores struct {
	mu sync.Mutex

	Admins *AdminStore
	Users  *UserStore
	Events *EventStore
}

// NewStores returns empty, wired fakes.
func NewStores() *Stores {
	s := &Stores{}
	s.Admins = &AdminStore{s: s, rows: map[int]model.Admin{}}
	s.Users = &UserStore{s: s, rows: map[int]model.User{}}
	s.Events = &EventStore{s: s, rows: map[uuid.UUID]model.Event{}, attendees: map[uuid.UUID]map[int]time.Time{}}
	return s
}

// AdminStore is an in-memory service.AdminStore. Setting Err makes every
// call fail with it.
type AdminStore struct {
	s    *Stores
	rows map[int]model.Admin
	next int
	Err  error
}

func (f *AdminStore) GetByID(_ context.Context, id int) (*model.Admin, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	a, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (f *AdminStore) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, a := range f.rows {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *AdminStore) Create(_ context.Context, admin *model.Admin) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for _, a := range f.rows {
		if a.Email == admin.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.next++
	admin.ID = f.next
	admin.CreatedAt = time.Now()
	f.rows[admin.ID] = *admin
	return nil
}

// Delete removes an admin row, leaving any issued tokens valid.
func (f *AdminStore) Delete(id int) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.rows, id)
}

// UserStore is an in-memory service.UserStore.
type UserStore struct {
	s    *Stores
	rows map[int]model.User
	next int
	Err  error
}

func (f *UserStore) GetByID(_ context.Context, id int) (*model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, u := range f.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *UserStore) Create(_ context.Context, user *model.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for _, u := range f.rows {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.next++
	user.ID = f.next
	user.CreatedAt = time.Now()
	f.rows[user.ID] = *user
	return nil
}

// EventStore is an in-memory service.EventStore.
type EventStore struct {
	s         *Stores
	rows      map[uuid.UUID]model.Event
	attendees map[uuid.UUID]map[int]time.Time
	Err       error
}

// withCount copies e and fills its attendee count. Callers hold the lock.
func (f *EventStore) withCount(e model.Event) model.Event {
	e.AttendeeCount = len(f.attendees[e.EventID])
	e.Attendees = nil
	e.Organizer = nil
	return e
}

func (f *EventStore) list(keep func(model.Event) bool) []model.Event {
	var out []model.Event
	for _, e := range f.rows {
		if keep(e) {
			out = append(out, f.withCount(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func (f *EventStore) Create(_ context.Context, e *model.Event) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	f.rows[e.EventID] = *e
	return nil
}

func (f *EventStore) GetByID(_ context.Context, id uuid.UUID) (*model.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	e, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = f.withCount(e)
	return &e, nil
}

func (f *EventStore) ListAll(_ context.Context, category string) ([]model.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.list(func(e model.Event) bool { return category == "" || e.Category == category }), nil
}

func (f *EventStore) ListByOrganizer(_ context.Context, organizerID int) ([]model.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.list(func(e model.Event) bool { return e.OrganizerID == organizerID }), nil
}

func (f *EventStore) ListByAttendee(_ context.Context, userID int) ([]model.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.list(func(e model.Event) bool {
		_, ok := f.attendees[e.EventID][userID]
		return ok
	}), nil
}

func (f *EventStore) ListTrending(_ context.Context) ([]model.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := f.list(func(model.Event) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttendeeCount > out[j].AttendeeCount })
	for i := range out {
		if a, ok := f.s.Admins.rows[out[i].OrganizerID]; ok {
			out[i].Organizer = &a
		}
	}
	return out, nil
}

func (f *EventStore) ListAttendees(_ context.Context, eventID uuid.UUID) ([]model.Attendee, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []model.Attendee
	for userID, at := range f.attendees[eventID] {
		out = append(out, model.Attendee{UserID: userID, Name: f.s.Users.rows[userID].Name, EnrolledAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *EventStore) UpdateOwned(_ context.Context, e *model.Event) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	existing, ok := f.rows[e.EventID]
	if !ok || existing.OrganizerID != e.OrganizerID {
		return repository.ErrNotFound
	}
	if e.Image == "" {
		e.Image = existing.Image
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now()
	f.rows[e.EventID] = *e
	return nil
}

func (f *EventStore) DeleteOwned(_ context.Context, eventID uuid.UUID, organizerID int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	existing, ok := f.rows[eventID]
	if !ok || existing.OrganizerID != organizerID {
		return repository.ErrNotFound
	}
	delete(f.rows, eventID)
	delete(f.attendees, eventID)
	return nil
}

func (f *EventStore) AddAttendee(_ context.Context, eventID uuid.UUID, userID int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	set, ok := f.attendees[eventID]
	if !ok {
		set = map[int]time.Time{}
		f.attendees[eventID] = set
	}
	if _, ok := set[userID]; !ok {
		set[userID] = time.Now()
	}
	return nil
}

func (f *EventStore) RemoveAttendee(_ context.Context, eventID uuid.UUID, userID int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	delete(f.attendees[eventID], userID)
	return nil
}

// TrendingCache is an in-memory service.TrendingCache.
type TrendingCache struct {
	mu          sync.Mutex
	gen         int64
	cachedGen   int64
	events      []model.Event
	warm        bool
	Sets        int
	Invalidated int
}

func (c *TrendingCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *TrendingCache) Get(context.Context) ([]model.Event, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.warm || c.cachedGen != c.gen {
		return nil, false, nil
	}
	return c.events, true, nil
}

func (c *TrendingCache) Set(_ context.Context, gen int64, events []model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events, c.cachedGen, c.warm = events, gen, true
	c.Sets++
	return nil
}

func (c *TrendingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.Invalidated++
	return nil
}

// RevocationStore is an in-memory service.RevocationStore.
type RevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *RevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[jti] = ttl
	return nil
}

func (r *RevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[jti]
	return ok, nil
}

// AttendanceFeed is an in-memory service.AttendanceFeed that delivers to
// subscribers in the same process.
type AttendanceFeed struct {
	mu        sync.Mutex
	subs      map[uuid.UUID][]chan model.AttendanceUpdate
	Published []model.AttendanceUpdate

	// OnSubscribe, when set, runs after a subscription is registered.
	OnSubscribe func(eventID uuid.UUID)
}

func (f *AttendanceFeed) Publish(_ context.Context, update model.AttendanceUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published = append(f.Published, update)
	for _, ch := range f.subs[update.EventID] {
		select {
		case ch <- update:
		default:
		}
	}
	return nil
}

func (f *AttendanceFeed) Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan model.AttendanceUpdate, error) {
	ch := make(chan model.AttendanceUpdate, 16)

	f.mu.Lock()
	if f.subs == nil {
		f.subs = map[uuid.UUID][]chan model.AttendanceUpdate{}
	}
	f.subs[eventID] = append(f.subs[eventID], ch)
	hook := f.OnSubscribe
	f.mu.Unlock()

	if hook != nil {
		hook(eventID)
	}

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subs[eventID]
		for i, c := range subs {
			if c == ch {
				f.subs[eventID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// Subscribers reports how many live subscriptions eventID has.
func (f *AttendanceFeed) Subscribers(eventID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[eventID])
}
