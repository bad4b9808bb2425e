// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// UnlimitedBookings disables the booking frequency limit for a group.
const UnlimitedBookings = -1

// GroupMember links a participant into a scheduling group. Only mandatory
// members constrain slot generation; optional members are informational
// attendees.
type GroupMember struct {
	ParticipantUID string `json:"participant_uid"`
	IsMandatory    bool   `json:"is_mandatory"`
}

// GroupPolicy holds the booking constraints owned by a scheduling group.
// It is read-only during slot computation. All durations are in seconds.
type GroupPolicy struct {
	Duration              int      `json:"duration"`
	BufferTime            int      `json:"buffer_time,omitempty"`
	MinimumNotice         int      `json:"minimum_notice,omitempty"`
	RescheduleNotice      int      `json:"reschedule_notice,omitempty"`
	AvailabilityWindow    int      `json:"availability_window_days"`
	AllowRescheduling     bool     `json:"allow_rescheduling"`
	BookingFrequencyLimit int      `json:"booking_frequency_limit,omitempty"`
	ScheduleOnlyOnce      bool     `json:"schedule_only_once,omitempty"`
	BlackoutRules         []string `json:"blackout_rules,omitempty"`
}

// SlotDuration returns the slot length as a duration.
func (p GroupPolicy) SlotDuration() time.Duration {
	return time.Duration(p.Duration) * time.Second
}

// SlotStride returns the distance between consecutive slot starts: the slot
// duration plus the buffer separating bookable slots.
func (p GroupPolicy) SlotStride() time.Duration {
	return time.Duration(p.Duration+p.BufferTime) * time.Second
}

// NoticeWindow returns the minimum lead time before a bookable slot start.
func (p GroupPolicy) NoticeWindow() time.Duration {
	return time.Duration(p.MinimumNotice) * time.Second
}

// RescheduleWindow returns the minimum lead time before the original start of
// a booking being rescheduled. Zero means no restriction.
func (p GroupPolicy) RescheduleWindow() time.Duration {
	return time.Duration(p.RescheduleNotice) * time.Second
}

// AppointmentGroup is the key-value store representation of a scheduling
// group: its members, the calendar that receives booked events, and the
// booking policy.
type AppointmentGroup struct {
	UID             string       `json:"uid"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Members         []GroupMember `json:"members,omitempty"`
	EventCalendarID string       `json:"event_calendar_id"`
	OrganizerEmail  string       `json:"organizer_email,omitempty"`
	Policy          GroupPolicy  `json:"policy"`
	CreatedAt       *time.Time   `json:"created_at,omitempty"`
	UpdatedAt       *time.Time   `json:"updated_at,omitempty"`
}

// MandatoryMembers returns the members whose availability constrains slot
// generation, in declared order.
func (g *AppointmentGroup) MandatoryMembers() []GroupMember {
	var mandatory []GroupMember
	for _, m := range g.Members {
		if m.IsMandatory {
			mandatory = append(mandatory, m)
		}
	}
	return mandatory
}

// Tags generates a set of log attributes for the group.
func (g *AppointmentGroup) Tags() []string {
	var tags []string
	if g == nil {
		return tags
	}
	if g.UID != "" {
		tags = append(tags, g.UID)
	}
	if g.Name != "" {
		tags = append(tags, g.Name)
	}
	return tags
}
