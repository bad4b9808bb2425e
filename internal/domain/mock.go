// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rtcamp/appointment-service/internal/domain/models"
)

// MockGroupRepository implements GroupRepository for testing
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *models.AppointmentGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) Exists(ctx context.Context, groupUID string) (bool, error) {
	args := m.Called(ctx, groupUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupRepository) Delete(ctx context.Context, groupUID string, revision uint64) error {
	args := m.Called(ctx, groupUID, revision)
	return args.Error(0)
}

func (m *MockGroupRepository) Get(ctx context.Context, groupUID string) (*models.AppointmentGroup, error) {
	args := m.Called(ctx, groupUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppointmentGroup), args.Error(1)
}

func (m *MockGroupRepository) GetWithRevision(ctx context.Context, groupUID string) (*models.AppointmentGroup, uint64, error) {
	args := m.Called(ctx, groupUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.AppointmentGroup), args.Get(1).(uint64), args.Error(2)
}

func (m *MockGroupRepository) Update(ctx context.Context, group *models.AppointmentGroup, revision uint64) error {
	args := m.Called(ctx, group, revision)
	return args.Error(0)
}

func (m *MockGroupRepository) ListAll(ctx context.Context) ([]*models.AppointmentGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AppointmentGroup), args.Error(1)
}

// MockParticipantRepository implements ParticipantRepository for testing
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockParticipantRepository) Exists(ctx context.Context, participantUID string) (bool, error) {
	args := m.Called(ctx, participantUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipantRepository) Delete(ctx context.Context, participantUID string, revision uint64) error {
	args := m.Called(ctx, participantUID, revision)
	return args.Error(0)
}

func (m *MockParticipantRepository) Get(ctx context.Context, participantUID string) (*models.Participant, error) {
	args := m.Called(ctx, participantUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetWithRevision(ctx context.Context, participantUID string) (*models.Participant, uint64, error) {
	args := m.Called(ctx, participantUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Participant), args.Get(1).(uint64), args.Error(2)
}

func (m *MockParticipantRepository) Update(ctx context.Context, participant *models.Participant, revision uint64) error {
	args := m.Called(ctx, participant, revision)
	return args.Error(0)
}

// MockBookingRepository implements BookingRepository for testing
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) Exists(ctx context.Context, bookingUID string) (bool, error) {
	args := m.Called(ctx, bookingUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) Delete(ctx context.Context, bookingUID string, revision uint64) error {
	args := m.Called(ctx, bookingUID, revision)
	return args.Error(0)
}

func (m *MockBookingRepository) Get(ctx context.Context, bookingUID string) (*models.Booking, error) {
	args := m.Called(ctx, bookingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetWithRevision(ctx context.Context, bookingUID string) (*models.Booking, uint64, error) {
	args := m.Called(ctx, bookingUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Booking), args.Get(1).(uint64), args.Error(2)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *models.Booking, revision uint64) error {
	args := m.Called(ctx, booking, revision)
	return args.Error(0)
}

func (m *MockBookingRepository) ListByGroup(ctx context.Context, groupUID string) ([]*models.Booking, error) {
	args := m.Called(ctx, groupUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByReference(ctx context.Context, reference string) ([]*models.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

// MockCalendarProvider implements CalendarProvider for testing
type MockCalendarProvider struct {
	mock.Mock
}

func (m *MockCalendarProvider) FetchBusyEvents(ctx context.Context, calendarID string, start, end time.Time) ([]models.BusyEvent, error) {
	args := m.Called(ctx, calendarID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BusyEvent), args.Error(1)
}

func (m *MockCalendarProvider) CreateEvent(ctx context.Context, calendarID string, event *models.CalendarEvent) (string, error) {
	args := m.Called(ctx, calendarID, event)
	return args.String(0), args.Error(1)
}

func (m *MockCalendarProvider) UpdateEvent(ctx context.Context, calendarID string, eventID string, event *models.CalendarEvent) error {
	args := m.Called(ctx, calendarID, eventID, event)
	return args.Error(0)
}

func (m *MockCalendarProvider) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	args := m.Called(ctx, calendarID, eventID)
	return args.Error(0)
}

// MockCalendarRegistry implements CalendarRegistry for testing
type MockCalendarRegistry struct {
	mock.Mock
}

func (m *MockCalendarRegistry) GetProvider(provider string) (CalendarProvider, error) {
	args := m.Called(provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(CalendarProvider), args.Error(1)
}

func (m *MockCalendarRegistry) RegisterProvider(provider string, calendarProvider CalendarProvider) {
	m.Called(provider, calendarProvider)
}

// MockBookingEventSender implements BookingEventSender for testing
type MockBookingEventSender struct {
	mock.Mock
}

func (m *MockBookingEventSender) SendBookingCreated(ctx context.Context, data models.BookingEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockBookingEventSender) SendBookingRescheduled(ctx context.Context, data models.BookingEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockBookingEventSender) SendBookingCancelled(ctx context.Context, data models.BookingEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingConfirmation(ctx context.Context, notice BookingNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockEmailService) SendBookingRescheduled(ctx context.Context, notice BookingNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockEmailService) SendBookingCancellation(ctx context.Context, notice BookingNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

// MockTokenCodec implements TokenCodec for testing
type MockTokenCodec struct {
	mock.Mock
}

func (m *MockTokenCodec) Encode(claim RescheduleClaim) (string, error) {
	args := m.Called(claim)
	return args.String(0), args.Error(1)
}

func (m *MockTokenCodec) Decode(token string) (RescheduleClaim, error) {
	args := m.Called(token)
	return args.Get(0).(RescheduleClaim), args.Error(1)
}
