package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is a ticketed event owned by exactly one admin.
type Event struct {
	EventID       uuid.UUID  `json:"eventId"`
	EventName     string     `json:"eventName"`
	Description   string     `json:"description"`
	Venue         string     `json:"venue"`
	Time          time.Time  `json:"time"`
	Price         int        `json:"price"`
	Category      string     `json:"category"`
	Image         string     `json:"image,omitempty"` // base64
	Contact       *string    `json:"contact"`
	MinAge        int        `json:"minAge"`
	OrganizerID   int        `json:"organizerId"`
	AttendeeCount int        `json:"attendeeCount"`
	Attendees     []Attendee `json:"attendees,omitempty"`
	Organizer     *Admin     `json:"organizer,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Attendee is one edge of an event's attendee association.
type Attendee struct {
	UserID     int       `json:"userId"`
	Name       string    `json:"name"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// EventForm is the multipart payload for creating or editing an event.
// The image part is read separately from the form file.
type EventForm struct {
	EventName   string `form:"eventName" binding:"required,max=255"`
	Description string `form:"description" binding:"required,max=5000"`
	Venue       string `form:"venue" binding:"required,max=255"`
	Time        string `form:"time" binding:"required"`
	Price       int    `form:"price" binding:"gte=0"`
	Category    string `form:"category" binding:"required,max=100"`
	Contact     string `form:"contact" binding:"omitempty,max=255"`
	MinAge      int    `form:"minAge" binding:"gte=0,lte=150"`
}

// EnrollmentRequest is the payload for enroll and unroll.
type EnrollmentRequest struct {
	EventID string `json:"eventId" binding:"required,uuid"`
}

// AttendanceUpdate is pushed to live subscribers when an event's attendee
// count changes.
type AttendanceUpdate struct {
	EventID       uuid.UUID `json:"eventId"`
	AttendeeCount int       `json:"attendeeCount"`
}
