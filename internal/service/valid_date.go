// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package service

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/rtcamp/appointment-service/internal/domain"
)

// blackoutAnchor is the DTSTART applied to recurrence rules that do not carry
// one, so occurrence expansion is deterministic across restarts.
var blackoutAnchor = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// defaultValidDateHorizonDays bounds the next-valid-date scan for groups
// without a booking horizon of their own.
const defaultValidDateHorizonDays = 365

// BlackoutCalendar evaluates a group's blackout recurrence rules. A date with
// at least one rule occurrence is not bookable.
type BlackoutCalendar struct {
	rules []*rrule.RRule
}

// NewBlackoutCalendar parses the given RFC 5545 recurrence rule strings.
// An unparseable rule fails construction rather than silently opening up
// blacked-out dates.
func NewBlackoutCalendar(ruleStrings []string) (*BlackoutCalendar, error) {
	rules := make([]*rrule.RRule, 0, len(ruleStrings))
	for _, s := range ruleStrings {
		opt, err := rrule.StrToROption(s)
		if err != nil {
			return nil, domain.NewValidationError("invalid blackout rule "+s, err)
		}
		if opt.Dtstart.IsZero() {
			opt.Dtstart = blackoutAnchor
		}
		rule, err := rrule.NewRRule(*opt)
		if err != nil {
			return nil, domain.NewValidationError("invalid blackout rule "+s, err)
		}
		rules = append(rules, rule)
	}
	return &BlackoutCalendar{rules: rules}, nil
}

// IsValidDate reports whether the given calendar date is bookable. The time
// portion of date is ignored.
func (c *BlackoutCalendar) IsValidDate(date time.Time) bool {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	for _, rule := range c.rules {
		if len(rule.Between(dayStart, dayEnd, true)) > 0 {
			return false
		}
	}
	return true
}

// NextValidDate returns the first bookable date at or after from, scanning at
// most horizonDays days. Returns false when every date in the horizon is
// blacked out.
func (c *BlackoutCalendar) NextValidDate(from time.Time, horizonDays int) (time.Time, bool) {
	date := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i <= horizonDays; i++ {
		if c.IsValidDate(date) {
			return date, true
		}
		date = date.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}
