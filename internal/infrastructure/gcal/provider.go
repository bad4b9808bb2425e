// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package gcal adapts the Google Calendar API to the domain calendar provider.
package gcal

import (
	"context"
	"fmt"
	"time"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/infrastructure/gcal/api"
)

// ProviderName identifies this provider in the calendar registry.
const ProviderName = "google"

// Provider implements domain.CalendarProvider backed by the Google Calendar API.
type Provider struct {
	client api.ClientAPI
}

// Ensure Provider implements CalendarProvider
var _ domain.CalendarProvider = (*Provider)(nil)

// NewProvider creates a calendar provider on top of an API client.
func NewProvider(client api.ClientAPI) *Provider {
	return &Provider{client: client}
}

// FetchBusyEvents returns the non-cancelled events on the calendar that
// intersect the [start, end] window. Recurring events are expanded into
// single instances by the API.
func (p *Provider) FetchBusyEvents(ctx context.Context, calendarID string, start, end time.Time) ([]models.BusyEvent, error) {
	events, err := p.client.ListEvents(ctx, calendarID, api.ListEventsQuery{
		TimeMin:      start,
		TimeMax:      end,
		SingleEvents: true,
		OrderBy:      "startTime",
	})
	if err != nil {
		return nil, domain.NewUpstreamFetchError(
			fmt.Sprintf("failed to fetch events for calendar %q", calendarID), err)
	}

	var busy []models.BusyEvent
	for _, event := range events {
		if event.Status == api.EventStatusCancelled {
			continue
		}
		busy = append(busy, toBusyEvent(event))
	}

	return busy, nil
}

// CreateEvent creates an event on the calendar and returns its ID.
func (p *Provider) CreateEvent(ctx context.Context, calendarID string, event *models.CalendarEvent) (string, error) {
	created, err := p.client.InsertEvent(ctx, calendarID, toAPIEvent(event))
	if err != nil {
		return "", domain.NewCommitError(
			fmt.Sprintf("failed to create event on calendar %q", calendarID), err)
	}
	return created.ID, nil
}

// UpdateEvent moves an existing event to a new start/end.
func (p *Provider) UpdateEvent(ctx context.Context, calendarID string, eventID string, event *models.CalendarEvent) error {
	err := p.client.PatchEvent(ctx, calendarID, eventID, toAPIEvent(event))
	if err != nil {
		return domain.NewCommitError(
			fmt.Sprintf("failed to update event %q on calendar %q", eventID, calendarID), err)
	}
	return nil
}

// DeleteEvent removes an event from the calendar.
func (p *Provider) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	err := p.client.DeleteEvent(ctx, calendarID, eventID)
	if err != nil {
		return domain.NewCommitError(
			fmt.Sprintf("failed to delete event %q from calendar %q", eventID, calendarID), err)
	}
	return nil
}

func toBusyEvent(event api.Event) models.BusyEvent {
	busy := models.BusyEvent{
		Start: models.EventTime{
			DateTime: event.Start.DateTime,
			TimeZone: event.Start.TimeZone,
			Date:     event.Start.Date,
		},
		End: models.EventTime{
			DateTime: event.End.DateTime,
			TimeZone: event.End.TimeZone,
			Date:     event.End.Date,
		},
	}
	if event.Creator != nil {
		busy.CreatorEmail = event.Creator.Email
	}
	for _, a := range event.Attendees {
		busy.Attendees = append(busy.Attendees, models.EventAttendee{
			Email:          a.Email,
			Self:           a.Self,
			ResponseStatus: a.ResponseStatus,
		})
	}
	return busy
}

func toAPIEvent(event *models.CalendarEvent) *api.Event {
	apiEvent := &api.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Status:      api.EventStatusConfirmed,
		Start: api.EventDateTime{
			DateTime: event.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: api.EventDateTime{
			DateTime: event.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
	for _, attendee := range event.Attendees {
		apiEvent.Attendees = append(apiEvent.Attendees, api.Attendee{Email: attendee.Email})
	}
	return apiEvent
}
