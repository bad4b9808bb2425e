// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/interval"
	"github.com/rtcamp/appointment-service/internal/logging"
	"github.com/rtcamp/appointment-service/pkg/concurrent"
)

// BusyCollector aggregates a participant's busy intervals across their
// conflict-checked calendars.
type BusyCollector struct {
	CalendarRegistry domain.CalendarRegistry
	Config           ServiceConfig
}

// NewBusyCollector creates a new BusyCollector.
func NewBusyCollector(calendarRegistry domain.CalendarRegistry, config ServiceConfig) *BusyCollector {
	return &BusyCollector{
		CalendarRegistry: calendarRegistry,
		Config:           config.withDefaults(),
	}
}

// ServiceReady checks if the service is ready for use.
func (c *BusyCollector) ServiceReady() bool {
	return c.CalendarRegistry != nil
}

// CollectResult is the outcome of busy collection for one participant.
// AllFailed means the participant's availability is unknown and callers must
// treat them as fully busy; overbooking is worse than under-offering.
// FailedCalendarIDs lists calendars skipped after a fetch failure while the
// rest of the collection succeeded.
type CollectResult struct {
	Busy              []models.Interval
	FailedCalendarIDs []string
	AllFailed         bool
}

// calendarBusyResult is the outcome of fetching one calendar.
type calendarBusyResult struct {
	intervals []models.Interval
	err       error
}

// CollectBusyIntervals fetches all conflict-checked calendars of the
// participant in parallel and returns the sorted, deduplicated busy intervals
// inside the window. A calendar that fails to fetch is logged and skipped, so
// one flaky linked calendar cannot take availability down. When every
// calendar fails, or any calendar returns an event that cannot be parsed,
// the result is marked AllFailed rather than returned as an error: the
// request still succeeds and the participant counts as fully busy.
func (c *BusyCollector) CollectBusyIntervals(ctx context.Context, participant *models.Participant, window models.Interval) (*CollectResult, error) {
	if !c.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("busy collector not initialized")
	}

	provider, err := c.CalendarRegistry.GetProvider(c.Config.CalendarProvider)
	if err != nil {
		return nil, err
	}

	calendars := participant.ConflictCalendars()
	results := make([]calendarBusyResult, len(calendars))
	var mu sync.Mutex

	pool := concurrent.NewWorkerPool(c.Config.BusyFetchWorkers)
	functions := make([]func() error, len(calendars))
	for i, ref := range calendars {
		i, ref := i, ref
		isPrimary := i == 0
		functions[i] = func() error {
			intervals, fetchErr := c.collectCalendar(ctx, provider, participant, ref, isPrimary, window)
			mu.Lock()
			results[i] = calendarBusyResult{intervals: intervals, err: fetchErr}
			mu.Unlock()
			return nil
		}
	}

	// Fetch errors are collected per calendar rather than short-circuiting
	// the pool, so Run only fails on context cancellation.
	if err := pool.Run(ctx, functions...); err != nil {
		return nil, err
	}

	collected := &CollectResult{}
	for i, result := range results {
		if result.err != nil {
			if domain.GetErrorType(result.err) != domain.ErrorTypeUpstreamFetch {
				// Unparseable calendar data poisons the whole collection:
				// the participant's real busy time is unknowable.
				slog.WarnContext(ctx, "unusable calendar data, treating participant as busy",
					slog.String("calendar_id", calendars[i].CalendarID),
					logging.ErrKey, result.err,
				)
				return &CollectResult{
					FailedCalendarIDs: []string{calendars[i].CalendarID},
					AllFailed:         true,
				}, nil
			}
			collected.FailedCalendarIDs = append(collected.FailedCalendarIDs, calendars[i].CalendarID)
			slog.WarnContext(ctx, "skipping calendar after fetch failure",
				slog.String("calendar_id", calendars[i].CalendarID),
				logging.ErrKey, result.err,
			)
			continue
		}
		collected.Busy = append(collected.Busy, result.intervals...)
	}

	if len(calendars) > 0 && len(collected.FailedCalendarIDs) == len(calendars) {
		collected.AllFailed = true
		return collected, nil
	}

	interval.Sort(collected.Busy)
	collected.Busy = interval.DedupAdjacent(collected.Busy)
	return collected, nil
}

// collectCalendar fetches one calendar and converts its events to busy
// intervals, applying the per-calendar filtering rules.
func (c *BusyCollector) collectCalendar(
	ctx context.Context,
	provider domain.CalendarProvider,
	participant *models.Participant,
	ref models.CalendarRef,
	isPrimary bool,
	window models.Interval,
) ([]models.Interval, error) {
	events, err := provider.FetchBusyEvents(ctx, ref.CalendarID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	var busy []models.Interval
	for i := range events {
		event := &events[i]

		if !eventBlocks(participant, event, isPrimary) {
			continue
		}

		if event.IsAllDay() {
			if ref.IgnoreAllDayEvents {
				continue
			}
			span, err := allDayInterval(event)
			if err != nil {
				return nil, domain.NewValidationError("unparseable all-day event on calendar "+ref.CalendarID, err)
			}
			busy = append(busy, span)
			continue
		}

		start, err := interval.ConvertToUTC(event.Start.DateTime, event.Start.TimeZone)
		if err != nil {
			return nil, domain.NewValidationError("unparseable event start on calendar "+ref.CalendarID, err)
		}
		end, err := interval.ConvertToUTC(event.End.DateTime, event.End.TimeZone)
		if err != nil {
			return nil, domain.NewValidationError("unparseable event end on calendar "+ref.CalendarID, err)
		}

		busy = append(busy, models.Interval{Start: start, End: end})
	}

	return busy, nil
}

// allDayInterval converts an all-day event's civil dates to a UTC busy
// interval. The end date is exclusive; an event missing one covers a single
// day.
func allDayInterval(event *models.BusyEvent) (models.Interval, error) {
	start, err := time.Parse(dateLayout, event.Start.Date)
	if err != nil {
		return models.Interval{}, err
	}
	end := start.AddDate(0, 0, 1)
	if event.End.Date != "" {
		end, err = time.Parse(dateLayout, event.End.Date)
		if err != nil {
			return models.Interval{}, err
		}
	}
	return models.Interval{Start: start, End: end}, nil
}

// eventBlocks applies the per-calendar filter. A declined invitation never
// blocks, on any calendar. Beyond that, the primary calendar only counts
// events the participant created or was invited to, while linked calendars
// exist purely to block time: everything else on them counts.
func eventBlocks(participant *models.Participant, event *models.BusyEvent, isPrimary bool) bool {
	if self, ok := event.SelfAttendee(); ok {
		return self.ResponseStatus != models.ResponseStatusDeclined
	}
	if isPrimary {
		return strings.EqualFold(event.CreatorEmail, participant.Email)
	}
	return true
}
