package service

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidEventTime is returned when an event time matches no accepted layout.
var ErrInvalidEventTime = errors.New("invalid event time")

// Layouts sent by an HTML datetime-local input. They carry no offset.
var localTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseEventTime parses raw as RFC3339, or as a zone-less local time in loc.
func ParseEventTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidEventTime
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidEventTime
}
