package service

import (
	"context"
	"fmt"

	"github.com/eventhub/eventhub-backend/internal/model"
)

// AdminService handles admin account reads.
type AdminService struct {
	admins AdminStore
	events EventStore
}

// NewAdminService creates a new AdminService.
func NewAdminService(admins AdminStore, events EventStore) *AdminService {
	return &AdminService{admins: admins, events: events}
}

// Profile returns the admin together with the events they organize.
func (s *AdminService) Profile(ctx context.Context, p model.Principal) (*model.AdminProfile, error) {
	if err := Authorize(p.Kind, model.PermissionProfileRead); err != nil {
		return nil, err
	}

	admin, err := s.admins.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListByOrganizer(ctx, admin.ID)
	if err != nil {
		return nil, fmt.Errorf("list organized events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}

	return &model.AdminProfile{Admin: *admin, Events: events}, nil
}
