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
)

// AvailabilityService computes the free intervals of a participant inside a
// query window: working hours minus busy time.
type AvailabilityService struct {
	ParticipantRepository domain.ParticipantRepository
	BusyCollector         *BusyCollector
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(participantRepository domain.ParticipantRepository, busyCollector *BusyCollector) *AvailabilityService {
	return &AvailabilityService{
		ParticipantRepository: participantRepository,
		BusyCollector:         busyCollector,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AvailabilityService) ServiceReady() bool {
	return s.ParticipantRepository != nil && s.BusyCollector != nil
}

// availabilityCache memoizes per-participant availability for the lifetime of
// one slot request, so a range query does not refetch the same calendars for
// every day. Not safe for concurrent use; each request builds its own.
type availabilityCache struct {
	entries map[string][]models.Interval
}

func newAvailabilityCache() *availabilityCache {
	return &availabilityCache{entries: make(map[string][]models.Interval)}
}

func cacheKey(participantUID string, window models.Interval) string {
	return participantUID + "|" + window.Start.Format(time.RFC3339) + "|" + window.End.Format(time.RFC3339)
}

// ComputeAvailability returns the participant's free intervals inside the UTC
// window, consulting the cache first.
func (s *AvailabilityService) ComputeAvailability(ctx context.Context, participantUID string, window models.Interval, cache *availabilityCache) ([]models.Interval, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("availability service not initialized")
	}

	key := cacheKey(participantUID, window)
	if cache != nil {
		if free, ok := cache.entries[key]; ok {
			return free, nil
		}
	}

	participant, err := s.ParticipantRepository.Get(ctx, participantUID)
	if err != nil {
		return nil, err
	}

	free, err := s.computeAvailability(ctx, participant, window)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache.entries[key] = free
	}

	return free, nil
}

func (s *AvailabilityService) computeAvailability(ctx context.Context, participant *models.Participant, window models.Interval) ([]models.Interval, error) {
	working, err := workingWindows(participant, window)
	if err != nil {
		return nil, err
	}
	if len(working) == 0 {
		return nil, nil
	}

	collected, err := s.BusyCollector.CollectBusyIntervals(ctx, participant, window)
	if err != nil {
		return nil, err
	}
	if len(collected.FailedCalendarIDs) > 0 {
		slog.WarnContext(ctx, "availability degraded by calendar failures",
			slog.String("participant_uid", participant.UID),
			slog.Any("failed_calendar_ids", collected.FailedCalendarIDs),
		)
	}
	if collected.AllFailed {
		// Unknown availability fails closed: the participant is treated as
		// fully busy rather than failing the request or overbooking them.
		return nil, nil
	}

	var free []models.Interval
	for _, w := range working {
		free = append(free, interval.Subtract(w, collected.Busy)...)
	}

	return free, nil
}

// workingWindows resolves the participant's weekly working hours onto the
// concrete local dates the window touches, clipped to the window. A UTC
// window can span two local dates near midnight, so both are considered.
func workingWindows(participant *models.Participant, window models.Interval) ([]models.Interval, error) {
	loc, err := time.LoadLocation(participant.Timezone)
	if err != nil {
		return nil, domain.NewValidationError("participant "+participant.UID+" has invalid timezone "+participant.Timezone, err)
	}

	var windows []models.Interval

	localStart := window.Start.In(loc)
	date := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	localEnd := window.End.In(loc)

	for !date.After(localEnd) {
		rule, ok := participant.RuleForDay(date.Weekday())
		if ok {
			start, end, err := rule.Window(date, loc)
			if err != nil {
				return nil, domain.NewValidationError("participant "+participant.UID+" has an invalid working-hour rule", err)
			}
			candidate := models.Interval{Start: start.UTC(), End: end.UTC()}
			if clipped, ok := interval.Intersect(candidate, window); ok && clipped.End.After(clipped.Start) {
				windows = append(windows, clipped)
			}
		}
		date = date.AddDate(0, 0, 1)
	}

	return windows, nil
}
