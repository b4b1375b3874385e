package service

import (
	"context"
	"fmt"

	"github.com/eventhub/eventhub-backend/internal/model"
)

// UserService handles attendee account reads.
type UserService struct {
	users  UserStore
	events EventStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, events EventStore) *UserService {
	return &UserService{users: users, events: events}
}

// Profile returns the user together with the events they are enrolled in.
func (s *UserService) Profile(ctx context.Context, p model.Principal) (*model.UserProfile, error) {
	if err := Authorize(p.Kind, model.PermissionProfileRead); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListByAttendee(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}

	return &model.UserProfile{User: *user, Events: events}, nil
}
