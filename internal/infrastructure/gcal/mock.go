// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package gcal

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rtcamp/appointment-service/internal/infrastructure/gcal/api"
)

// MockClientAPI implements api.ClientAPI for testing
type MockClientAPI struct {
	mock.Mock
}

func (m *MockClientAPI) ListEvents(ctx context.Context, calendarID string, query api.ListEventsQuery) ([]api.Event, error) {
	args := m.Called(ctx, calendarID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Event), args.Error(1)
}

func (m *MockClientAPI) InsertEvent(ctx context.Context, calendarID string, event *api.Event) (*api.Event, error) {
	args := m.Called(ctx, calendarID, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.Event), args.Error(1)
}

func (m *MockClientAPI) PatchEvent(ctx context.Context, calendarID string, eventID string, event *api.Event) error {
	args := m.Called(ctx, calendarID, eventID, event)
	return args.Error(0)
}

func (m *MockClientAPI) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	args := m.Called(ctx, calendarID, eventID)
	return args.Error(0)
}
