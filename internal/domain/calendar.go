// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/rtcamp/appointment-service/internal/domain/models"
)

// CalendarProvider defines the interface for external calendar integrations.
type CalendarProvider interface {
	// FetchBusyEvents returns the events on the given calendar that intersect
	// the [start, end] window. Cancelled events are excluded by the provider.
	FetchBusyEvents(ctx context.Context, calendarID string, start, end time.Time) ([]models.BusyEvent, error)

	// CreateEvent creates an event on the given calendar and returns the
	// provider-specific event ID.
	CreateEvent(ctx context.Context, calendarID string, event *models.CalendarEvent) (string, error)

	// UpdateEvent moves an existing event to a new start/end.
	UpdateEvent(ctx context.Context, calendarID string, eventID string, event *models.CalendarEvent) error

	// DeleteEvent removes an event from the given calendar.
	DeleteEvent(ctx context.Context, calendarID string, eventID string) error
}

// CalendarRegistry manages calendar providers keyed by provider name.
type CalendarRegistry interface {
	// GetProvider returns the calendar provider for the specified provider name
	GetProvider(provider string) (CalendarProvider, error)

	// RegisterProvider registers a calendar provider
	RegisterProvider(provider string, calendarProvider CalendarProvider)
}
