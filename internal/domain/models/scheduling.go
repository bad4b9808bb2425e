// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"
)

// Interval is a closed UTC time interval. It is a derived value type: produced
// fresh per computation and never persisted.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the interval is unset.
func (i Interval) IsZero() bool {
	return i.Start.IsZero() && i.End.IsZero()
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s]", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// WorkingHourRule declares a participant's working window for one weekday.
// Times are local to the participant's timezone, formatted as "15:04:05".
// At most one rule per weekday per participant.
type WorkingHourRule struct {
	Day       time.Weekday `json:"day"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
}

const clockLayout = "15:04:05"

// Window resolves the rule onto a concrete local date, returning the local
// start and end instants in the given location.
func (r WorkingHourRule) Window(localDate time.Time, loc *time.Location) (time.Time, time.Time, error) {
	start, err := applyClock(localDate, r.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time %q: %w", r.StartTime, err)
	}
	end, err := applyClock(localDate, r.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time %q: %w", r.EndTime, err)
	}
	return start, end, nil
}

// Validate checks that both clock values parse and start precedes end.
func (r WorkingHourRule) Validate() error {
	start, err := time.Parse(clockLayout, r.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q: %w", r.StartTime, err)
	}
	end, err := time.Parse(clockLayout, r.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time %q: %w", r.EndTime, err)
	}
	if !start.Before(end) {
		return fmt.Errorf("start time %s must be before end time %s", r.StartTime, r.EndTime)
	}
	return nil
}

func applyClock(localDate time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(localDate.Year(), localDate.Month(), localDate.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// CalendarRef references one of a participant's calendars. Only calendars with
// CheckForConflicts set contribute busy intervals; the primary calendar always
// has it implied.
type CalendarRef struct {
	CalendarID         string `json:"calendar_id"`
	CheckForConflicts  bool   `json:"check_for_conflicts"`
	IgnoreAllDayEvents bool   `json:"ignore_all_day_events,omitempty"`
}

// Participant is the key-value store representation of a user's appointment
// availability: their timezone, weekly working hours, and calendars.
type Participant struct {
	UID             string            `json:"uid"`
	Email           string            `json:"email"`
	Timezone        string            `json:"timezone"`
	PrimaryCalendar CalendarRef       `json:"primary_calendar"`
	LinkedCalendars []CalendarRef     `json:"linked_calendars,omitempty"`
	WorkingHours    []WorkingHourRule `json:"working_hours,omitempty"`
	CreatedAt       *time.Time        `json:"created_at,omitempty"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
}

// RuleForDay returns the participant's working-hour rule for the given local
// weekday, if any.
func (p *Participant) RuleForDay(day time.Weekday) (WorkingHourRule, bool) {
	for _, rule := range p.WorkingHours {
		if rule.Day == day {
			return rule, true
		}
	}
	return WorkingHourRule{}, false
}

// ConflictCalendars returns the calendars that contribute busy intervals:
// the primary calendar first, then linked calendars with CheckForConflicts
// set, in declared order.
func (p *Participant) ConflictCalendars() []CalendarRef {
	primary := p.PrimaryCalendar
	primary.CheckForConflicts = true
	calendars := []CalendarRef{primary}
	for _, ref := range p.LinkedCalendars {
		if ref.CheckForConflicts && ref.CalendarID != "" {
			calendars = append(calendars, ref)
		}
	}
	return calendars
}

// EventTime is the start or end of a fetched calendar event. Timed events have
// DateTime and TimeZone set; all-day events carry only Date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
	Date     string `json:"date,omitempty"`
}

// EventAttendee is one attendee entry on a fetched calendar event. Self marks
// the entry belonging to the calendar owner.
type EventAttendee struct {
	Email          string `json:"email,omitempty"`
	Self           bool   `json:"self,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// ResponseStatusDeclined is the attendee response that excludes an event from
// the busy set.
const ResponseStatusDeclined = "declined"

// BusyEvent is a calendar event fetched for busy-interval aggregation.
// Transient: fetched per query and never persisted.
type BusyEvent struct {
	Start        EventTime       `json:"start"`
	End          EventTime       `json:"end"`
	CreatorEmail string          `json:"creator_email,omitempty"`
	Attendees    []EventAttendee `json:"attendees,omitempty"`
}

// IsAllDay reports whether the event is an all-day event, which carries a
// plain date without an explicit time zone.
func (e *BusyEvent) IsAllDay() bool {
	return e.Start.TimeZone == "" && e.Start.DateTime == ""
}

// SelfAttendee returns the attendee entry for the calendar owner, if present.
func (e *BusyEvent) SelfAttendee() (EventAttendee, bool) {
	for _, a := range e.Attendees {
		if a.Self {
			return a, true
		}
	}
	return EventAttendee{}, false
}

// Slot is a discrete bookable UTC time interval. Derived, never persisted, and
// re-derived on every request so slot lists never go stale.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DaySlots groups the slots generated for one calendar day.
type DaySlots struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// SlotMetadata aggregates slot information across a requested range.
type SlotMetadata struct {
	EarliestStart *time.Time `json:"earliest_start,omitempty"`
	LatestEnd     *time.Time `json:"latest_end,omitempty"`
	TotalCount    int        `json:"total_count"`
}

// SlotsResult is the outcome of a slot computation for one or more days.
type SlotsResult struct {
	Days     []DaySlots   `json:"days"`
	Metadata SlotMetadata `json:"metadata"`
}
