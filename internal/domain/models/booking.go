// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// BookingState is the lifecycle state of a booking.
type BookingState string

const (
	// BookingStateTentative is a booking that passed policy validation but has
	// not completed its commit yet.
	BookingStateTentative BookingState = "tentative"
	// BookingStateConfirmed is a committed booking with a backing calendar event.
	BookingStateConfirmed BookingState = "confirmed"
	// BookingStateCancelled is a withdrawn booking. Terminal.
	BookingStateCancelled BookingState = "cancelled"
)

// CalendarEvent is an event to create or update on an external calendar when
// a booking commits.
type CalendarEvent struct {
	Summary     string               `json:"summary"`
	Description string               `json:"description,omitempty"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	Attendees   []BookingParticipant `json:"attendees,omitempty"`
}

// BookingParticipant is an attendee recorded on a booking.
type BookingParticipant struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Booking is the key-value store representation of a committed booking.
// Rescheduling replaces StartsOn/EndsOn in place and preserves identity;
// a second record is never created for schedule-only-once groups.
type Booking struct {
	UID             string               `json:"uid"`
	GroupUID        string               `json:"group_uid"`
	Subject         string               `json:"subject,omitempty"`
	Participants    []BookingParticipant `json:"participants,omitempty"`
	LinkedReference string               `json:"linked_reference,omitempty"`
	StartsOn        time.Time            `json:"starts_on"`
	EndsOn          time.Time            `json:"ends_on"`
	State           BookingState         `json:"state"`
	ExternalEventID string               `json:"external_event_id,omitempty"`
	CreatedAt       *time.Time           `json:"created_at,omitempty"`
	UpdatedAt       *time.Time           `json:"updated_at,omitempty"`
}

// IsActive reports whether the booking still occupies its slot.
func (b *Booking) IsActive() bool {
	return b.State == BookingStateConfirmed || b.State == BookingStateTentative
}

// Tags generates a set of log attributes for the booking.
func (b *Booking) Tags() []string {
	var tags []string
	if b == nil {
		return tags
	}
	if b.UID != "" {
		tags = append(tags, b.UID)
	}
	if b.GroupUID != "" {
		tags = append(tags, b.GroupUID)
	}
	return tags
}
