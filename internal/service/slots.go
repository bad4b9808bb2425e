// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/interval"
	"github.com/rtcamp/appointment-service/internal/logging"
	"github.com/rtcamp/appointment-service/pkg/utils"
)

const dateLayout = "2006-01-02"

// SlotService generates bookable slots for appointment groups. Slots are
// derived on every request from live calendar data and never persisted, so
// an offered slot list can go stale but a committed booking cannot.
type SlotService struct {
	GroupRepository     domain.GroupRepository
	AvailabilityService *AvailabilityService

	nowFunc func() time.Time
}

// NewSlotService creates a new SlotService.
func NewSlotService(groupRepository domain.GroupRepository, availabilityService *AvailabilityService) *SlotService {
	return &SlotService{
		GroupRepository:     groupRepository,
		AvailabilityService: availabilityService,
		nowFunc:             time.Now,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *SlotService) ServiceReady() bool {
	return s.GroupRepository != nil && s.AvailabilityService != nil
}

// GetAvailableSlots computes the bookable slots of a group for one day, in
// the requester's timezone. When the requested date is blacked out, the next
// bookable date inside the availability window is served instead; the
// returned day carries the date actually served.
func (s *SlotService) GetAvailableSlots(ctx context.Context, payload *models.GetSlotsRequest) (*models.SlotsResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("slot service not initialized")
	}

	group, err := s.GroupRepository.Get(ctx, payload.GroupUID)
	if err != nil {
		return nil, err
	}

	if err := validatePolicy(group.Policy); err != nil {
		return nil, err
	}

	blackout, err := NewBlackoutCalendar(group.Policy.BlackoutRules)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		return nil, domain.NewValidationError("invalid date "+payload.Date, err)
	}

	horizon := group.Policy.AvailabilityWindow
	if horizon <= 0 {
		horizon = defaultValidDateHorizonDays
	}

	served, ok := blackout.NextValidDate(date, horizon)
	if !ok {
		slog.DebugContext(ctx, "no bookable date in availability window",
			slog.String("requested_date", payload.Date),
		)
		return &models.SlotsResult{}, nil
	}
	if !served.Equal(date) {
		slog.DebugContext(ctx, "requested date is blacked out, serving next bookable date",
			slog.String("requested_date", payload.Date),
			slog.String("served_date", served.Format(dateLayout)),
		)
	}

	now := s.nowFunc().UTC()
	cache := newAvailabilityCache()

	day, err := s.computeDaySlots(ctx, group, served.Format(dateLayout), payload.TimezoneOffsetMinutes, now, cache)
	if err != nil {
		return nil, err
	}

	result := &models.SlotsResult{Days: []models.DaySlots{day}}
	fillMetadata(result)

	slog.DebugContext(ctx, "computed day slots",
		slog.String("date", day.Date),
		slog.Int("slot_count", len(day.Slots)),
	)

	return result, nil
}

// GetAvailableSlotsRange computes the bookable slots of a group over an
// inclusive date range. Blacked-out dates are skipped rather than
// substituted; every served day appears in the result, slots or not.
func (s *SlotService) GetAvailableSlotsRange(ctx context.Context, payload *models.GetSlotsRangeRequest) (*models.SlotsResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("slot service not initialized")
	}

	group, err := s.GroupRepository.Get(ctx, payload.GroupUID)
	if err != nil {
		return nil, err
	}

	if err := validatePolicy(group.Policy); err != nil {
		return nil, err
	}

	blackout, err := NewBlackoutCalendar(group.Policy.BlackoutRules)
	if err != nil {
		return nil, err
	}

	startDate, err := time.Parse(dateLayout, payload.StartDate)
	if err != nil {
		return nil, domain.NewValidationError("invalid start date "+payload.StartDate, err)
	}
	endDate, err := time.Parse(dateLayout, payload.EndDate)
	if err != nil {
		return nil, domain.NewValidationError("invalid end date "+payload.EndDate, err)
	}
	if endDate.Before(startDate) {
		return nil, domain.NewValidationError("end date precedes start date")
	}

	now := s.nowFunc().UTC()
	cache := newAvailabilityCache()
	result := &models.SlotsResult{}

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		if !blackout.IsValidDate(date) {
			continue
		}

		day, err := s.computeDaySlots(ctx, group, date.Format(dateLayout), payload.TimezoneOffsetMinutes, now, cache)
		if err != nil {
			return nil, err
		}
		result.Days = append(result.Days, day)
	}

	fillMetadata(result)

	return result, nil
}

// SlotOffered reports whether the exact [start, end] slot would be offered
// for the group right now. Booking revalidates against live data with this,
// never against a previously returned slot list.
func (s *SlotService) SlotOffered(ctx context.Context, group *models.AppointmentGroup, date string, offsetMinutes int, start, end time.Time) (bool, error) {
	blackout, err := NewBlackoutCalendar(group.Policy.BlackoutRules)
	if err != nil {
		return false, err
	}

	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return false, domain.NewValidationError("invalid date "+date, err)
	}
	if !blackout.IsValidDate(parsed) {
		return false, nil
	}

	now := s.nowFunc().UTC()
	cache := newAvailabilityCache()

	day, err := s.computeDaySlots(ctx, group, date, offsetMinutes, now, cache)
	if err != nil {
		return false, err
	}

	for _, slot := range day.Slots {
		if slot.Start.Equal(start) && slot.End.Equal(end) {
			return true, nil
		}
	}
	return false, nil
}

// computeDaySlots generates the slots for one requester-local day: intersect
// every mandatory member's availability, then partition the common free time
// into fixed-duration slots.
func (s *SlotService) computeDaySlots(ctx context.Context, group *models.AppointmentGroup, date string, offsetMinutes int, now time.Time, cache *availabilityCache) (models.DaySlots, error) {
	day := models.DaySlots{Date: date}

	window, err := dayWindow(date, offsetMinutes)
	if err != nil {
		return day, err
	}

	if outsideAvailabilityWindow(window, group.Policy, now) {
		return day, nil
	}

	mandatory := group.MandatoryMembers()

	var common []models.Interval
	if len(mandatory) == 0 {
		// A group with no mandatory members is constrained by nothing: the
		// whole day is available.
		common = []models.Interval{window}
	} else {
		sets := make([][]models.Interval, 0, len(mandatory))
		for _, member := range mandatory {
			free, err := s.AvailabilityService.ComputeAvailability(ctx, member.ParticipantUID, window, cache)
			if err != nil {
				return day, err
			}
			if len(free) == 0 {
				return day, nil
			}
			sets = append(sets, free)
		}
		common = interval.IntersectAll(sets...)
	}

	day.Slots = partitionSlots(common, group.Policy, now)
	return day, nil
}

// partitionSlots walks each free interval with the policy stride, keeping
// full-duration slots that respect the minimum notice. A trailing remainder
// shorter than the slot duration is dropped.
func partitionSlots(free []models.Interval, policy models.GroupPolicy, now time.Time) []models.Slot {
	duration := policy.SlotDuration()
	stride := policy.SlotStride()
	minStart := now.Add(policy.NoticeWindow())

	var slots []models.Slot
	for _, f := range free {
		for start := f.Start; !start.Add(duration).After(f.End); start = start.Add(stride) {
			if start.Before(minStart) {
				continue
			}
			slots = append(slots, models.Slot{Start: start, End: start.Add(duration)})
		}
	}
	return slots
}

// dayWindow returns the UTC interval covering one calendar day in the
// requester's timezone, expressed as minutes east of UTC.
func dayWindow(date string, offsetMinutes int) (models.Interval, error) {
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return models.Interval{}, domain.NewValidationError("invalid date "+date, err)
	}

	loc := time.FixedZone("requester", offsetMinutes*60)
	start := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, loc)

	return models.Interval{
		Start: start.UTC(),
		End:   start.Add(24 * time.Hour).UTC(),
	}, nil
}

// outsideAvailabilityWindow reports whether the day is entirely in the past
// or starts beyond the group's booking horizon.
func outsideAvailabilityWindow(window models.Interval, policy models.GroupPolicy, now time.Time) bool {
	if window.End.Before(now) {
		return true
	}
	if policy.AvailabilityWindow > 0 {
		horizon := now.AddDate(0, 0, policy.AvailabilityWindow)
		if window.Start.After(horizon) {
			return true
		}
	}
	return false
}

// validatePolicy rejects group policies that cannot generate slots.
func validatePolicy(policy models.GroupPolicy) error {
	if policy.Duration <= 0 {
		return domain.NewValidationError("group policy has no slot duration")
	}
	if policy.BufferTime < 0 || policy.MinimumNotice < 0 || policy.RescheduleNotice < 0 {
		return domain.NewValidationError("group policy has a negative duration field")
	}
	return nil
}

// fillMetadata computes the aggregate metadata over all served days.
func fillMetadata(result *models.SlotsResult) {
	for _, day := range result.Days {
		for _, slot := range day.Slots {
			result.Metadata.TotalCount++
			if result.Metadata.EarliestStart == nil || slot.Start.Before(*result.Metadata.EarliestStart) {
				result.Metadata.EarliestStart = utils.Ptr(slot.Start)
			}
			if result.Metadata.LatestEnd == nil || slot.End.After(*result.Metadata.LatestEnd) {
				result.Metadata.LatestEnd = utils.Ptr(slot.End)
			}
		}
	}
}
