// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects that the appointment service sends messages about.
const (
	// BookingCreatedSubject is the subject for booking creation events.
	// The subject is of the form: appointment.booking.created
	BookingCreatedSubject = "appointment.booking.created"

	// BookingRescheduledSubject is the subject for booking reschedule events.
	// The subject is of the form: appointment.booking.rescheduled
	BookingRescheduledSubject = "appointment.booking.rescheduled"

	// BookingCancelledSubject is the subject for booking cancellation events.
	// The subject is of the form: appointment.booking.cancelled
	BookingCancelledSubject = "appointment.booking.cancelled"
)

// NATS wildcard subjects that the appointment service handles messages about.
const (
	// AppointmentAPIQueue is the queue name for the appointment API subscriptions.
	// The subject is of the form: appointment.api.queue
	AppointmentAPIQueue = "appointment.api.queue"
)

// NATS specific subjects that the appointment service handles messages about.
const (
	// GetSlotsSubject is the request/reply subject for single-day slot queries.
	// The subject is of the form: appointment.api.get_slots
	GetSlotsSubject = "appointment.api.get_slots"

	// GetSlotsRangeSubject is the request/reply subject for date-range slot queries.
	// The subject is of the form: appointment.api.get_slots_range
	GetSlotsRangeSubject = "appointment.api.get_slots_range"

	// BookSlotSubject is the request/reply subject for booking a slot.
	// The subject is of the form: appointment.api.book_slot
	BookSlotSubject = "appointment.api.book_slot"
)

// GetSlotsRequest asks for the bookable slots of a group on one day.
type GetSlotsRequest struct {
	GroupUID              string `json:"group_uid"`
	Date                  string `json:"date"`
	TimezoneOffsetMinutes int    `json:"timezone_offset_minutes"`
}

// GetSlotsRangeRequest asks for the bookable slots of a group over a date range.
type GetSlotsRangeRequest struct {
	GroupUID              string `json:"group_uid"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
	TimezoneOffsetMinutes int    `json:"timezone_offset_minutes"`
}

// BookSlotRequest proposes a booking for a previously offered slot.
type BookSlotRequest struct {
	GroupUID              string               `json:"group_uid"`
	Date                  string               `json:"date"`
	Start                 time.Time            `json:"start"`
	End                   time.Time            `json:"end"`
	TimezoneOffsetMinutes int                  `json:"timezone_offset_minutes"`
	Subject               string               `json:"subject,omitempty"`
	Participants          []BookingParticipant `json:"participants,omitempty"`
	LinkedReference       string               `json:"linked_reference,omitempty"`
	RescheduleToken       string               `json:"reschedule_token,omitempty"`
}

// BookSlotResponse reports the outcome of a booking attempt. Rejections carry
// a human-readable reason and are never retried by the service.
type BookSlotResponse struct {
	BookingUID      string `json:"booking_uid,omitempty"`
	Accepted        bool   `json:"accepted"`
	Reason          string `json:"reason,omitempty"`
	RescheduleToken string `json:"reschedule_token,omitempty"`
}

// BookingEventMessage is the payload published on booking lifecycle subjects.
type BookingEventMessage struct {
	BookingUID string    `json:"booking_uid"`
	GroupUID   string    `json:"group_uid"`
	StartsOn   time.Time `json:"starts_on"`
	EndsOn     time.Time `json:"ends_on"`
	State      string    `json:"state"`
	OccurredAt time.Time `json:"occurred_at"`
}
