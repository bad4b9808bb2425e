// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/domain/models"
)

type bookingFixture struct {
	service     *BookingService
	groupRepo   *domain.MockGroupRepository
	bookingRepo *domain.MockBookingRepository
	provider    *domain.MockCalendarProvider
	tokenCodec  *domain.MockTokenCodec
	email       *domain.MockEmailService
	events      *domain.MockBookingEventSender
}

// newBookingFixture wires a booking service over an empty calendar so that
// every slot of the working day is offered.
func newBookingFixture(t *testing.T, group *models.AppointmentGroup) *bookingFixture {
	t.Helper()

	groupRepo := &domain.MockGroupRepository{}
	groupRepo.On("Get", mock.Anything, group.UID).Return(group, nil)

	provider := &domain.MockCalendarProvider{}
	provider.On("FetchBusyEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.BusyEvent{}, nil)

	registry := &domain.MockCalendarRegistry{}
	registry.On("GetProvider", "google").Return(provider, nil)

	participantRepo := &domain.MockParticipantRepository{}
	participantRepo.On("Get", mock.Anything, "part-1").Return(testAvailabilityParticipant(), nil)

	busyCollector := NewBusyCollector(registry, ServiceConfig{})
	availability := NewAvailabilityService(participantRepo, busyCollector)
	slots := NewSlotService(groupRepo, availability)
	slots.nowFunc = func() time.Time { return testNow }

	bookingRepo := &domain.MockBookingRepository{}
	tokenCodec := &domain.MockTokenCodec{}
	email := &domain.MockEmailService{}
	events := &domain.MockBookingEventSender{}

	svc := NewBookingService(groupRepo, bookingRepo, slots, registry, tokenCodec, email, events, ServiceConfig{})
	svc.nowFunc = func() time.Time { return testNow }

	return &bookingFixture{
		service:     svc,
		groupRepo:   groupRepo,
		bookingRepo: bookingRepo,
		provider:    provider,
		tokenCodec:  tokenCodec,
		email:       email,
		events:      events,
	}
}

func bookRequest() *models.BookSlotRequest {
	return &models.BookSlotRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
		Start:    time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC),
		Subject:  "Quarterly check-in",
		Participants: []models.BookingParticipant{
			{Email: "pat@example.org", Name: "Pat"},
		},
	}
}

func TestBookSlot_HappyPath(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	f.provider.On("CreateEvent", mock.Anything, "cal-group", mock.Anything).Return("evt-1", nil)
	f.bookingRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Booking).UID = "booking-1"
	}).Return(nil)
	f.tokenCodec.On("Encode", mock.Anything).Return("tok-1", nil)
	f.events.On("SendBookingCreated", mock.Anything, mock.Anything).Return(nil)
	f.email.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.BookSlot(context.Background(), bookRequest())
	require.NoError(t, err)

	assert.True(t, resp.Accepted)
	assert.Equal(t, "booking-1", resp.BookingUID)
	assert.Equal(t, "tok-1", resp.RescheduleToken)

	f.provider.AssertCalled(t, "CreateEvent", mock.Anything, "cal-group", mock.Anything)
	f.events.AssertCalled(t, "SendBookingCreated", mock.Anything, mock.MatchedBy(func(m models.BookingEventMessage) bool {
		return m.BookingUID == "booking-1" && m.State == string(models.BookingStateConfirmed)
	}))
	f.email.AssertCalled(t, "SendBookingConfirmation", mock.Anything, mock.MatchedBy(func(n domain.BookingNotice) bool {
		return n.RecipientEmail == "pat@example.org" && n.RescheduleToken == "tok-1"
	}))
}

func TestBookSlot_SlotNotOffered(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	req := bookRequest()
	req.Start = time.Date(2026, 9, 7, 3, 0, 0, 0, time.UTC) // outside working hours
	req.End = req.Start.Add(30 * time.Minute)

	resp, err := f.service.BookSlot(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, resp.Accepted)
	assert.Equal(t, "the requested slot is no longer available", resp.Reason)
	f.provider.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookSlot_ScheduleOnlyOnce(t *testing.T) {
	group := testGroup()
	group.Policy.ScheduleOnlyOnce = true

	t.Run("missing reference is rejected", func(t *testing.T) {
		f := newBookingFixture(t, group)

		resp, err := f.service.BookSlot(context.Background(), bookRequest())
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
	})

	t.Run("active booking for the reference is rejected", func(t *testing.T) {
		f := newBookingFixture(t, group)
		f.bookingRepo.On("ListByReference", mock.Anything, "lead-42").Return([]*models.Booking{
			{UID: "booking-9", GroupUID: "group-1", State: models.BookingStateConfirmed},
		}, nil)

		req := bookRequest()
		req.LinkedReference = "lead-42"

		resp, err := f.service.BookSlot(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
		assert.Equal(t, "a booking already exists for this reference", resp.Reason)
	})

	t.Run("cancelled booking does not block rebooking", func(t *testing.T) {
		f := newBookingFixture(t, group)
		f.bookingRepo.On("ListByReference", mock.Anything, "lead-42").Return([]*models.Booking{
			{UID: "booking-9", GroupUID: "group-1", State: models.BookingStateCancelled},
		}, nil)
		f.provider.On("CreateEvent", mock.Anything, "cal-group", mock.Anything).Return("evt-2", nil)
		f.bookingRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).UID = "booking-10"
		}).Return(nil)
		f.tokenCodec.On("Encode", mock.Anything).Return("tok-2", nil)
		f.events.On("SendBookingCreated", mock.Anything, mock.Anything).Return(nil)
		f.email.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil)

		req := bookRequest()
		req.LinkedReference = "lead-42"

		resp, err := f.service.BookSlot(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, resp.Accepted)
	})
}

func TestBookSlot_FrequencyLimit(t *testing.T) {
	group := testGroup()
	group.Policy.BookingFrequencyLimit = 2

	f := newBookingFixture(t, group)
	f.bookingRepo.On("ListByGroup", mock.Anything, "group-1").Return([]*models.Booking{
		{UID: "b1", GroupUID: "group-1", State: models.BookingStateConfirmed, StartsOn: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)},
		{UID: "b2", GroupUID: "group-1", State: models.BookingStateConfirmed, StartsOn: time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC)},
		{UID: "b3", GroupUID: "group-1", State: models.BookingStateCancelled, StartsOn: time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)},
	}, nil)

	resp, err := f.service.BookSlot(context.Background(), bookRequest())
	require.NoError(t, err)

	assert.False(t, resp.Accepted)
	assert.Equal(t, "the daily booking limit for this group is reached", resp.Reason)
}

func TestBookSlot_FrequencyLimitCountsOnlySameDay(t *testing.T) {
	group := testGroup()
	group.Policy.BookingFrequencyLimit = 2

	f := newBookingFixture(t, group)
	f.bookingRepo.On("ListByGroup", mock.Anything, "group-1").Return([]*models.Booking{
		{UID: "b1", GroupUID: "group-1", State: models.BookingStateConfirmed, StartsOn: time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)},
		{UID: "b2", GroupUID: "group-1", State: models.BookingStateConfirmed, StartsOn: time.Date(2026, 9, 8, 11, 0, 0, 0, time.UTC)},
	}, nil)
	f.provider.On("CreateEvent", mock.Anything, "cal-group", mock.Anything).Return("evt-1", nil)
	f.bookingRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Booking).UID = "booking-1"
	}).Return(nil)
	f.tokenCodec.On("Encode", mock.Anything).Return("tok-1", nil)
	f.events.On("SendBookingCreated", mock.Anything, mock.Anything).Return(nil)
	f.email.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.BookSlot(context.Background(), bookRequest())
	require.NoError(t, err)
	assert.True(t, resp.Accepted)
}

func TestBookSlot_CommitRollsBackOnPersistFailure(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	f.provider.On("CreateEvent", mock.Anything, "cal-group", mock.Anything).Return("evt-1", nil)
	f.bookingRepo.On("Create", mock.Anything, mock.Anything).Return(domain.NewInternalError("kv write failed"))
	f.provider.On("DeleteEvent", mock.Anything, "cal-group", "evt-1").Return(nil)

	_, err := f.service.BookSlot(context.Background(), bookRequest())
	require.Error(t, err)

	assert.Equal(t, domain.ErrorTypeCommit, domain.GetErrorType(err))
	f.provider.AssertCalled(t, "DeleteEvent", mock.Anything, "cal-group", "evt-1")
	f.events.AssertNotCalled(t, "SendBookingCreated", mock.Anything, mock.Anything)
}

func TestBookSlot_EventCreationFailureLeavesNoRecord(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	f.provider.On("CreateEvent", mock.Anything, "cal-group", mock.Anything).
		Return("", domain.NewCommitError("calendar rejected the event"))

	_, err := f.service.BookSlot(context.Background(), bookRequest())
	require.Error(t, err)

	assert.Equal(t, domain.ErrorTypeCommit, domain.GetErrorType(err))
	f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func existingBooking() *models.Booking {
	return &models.Booking{
		UID:             "booking-1",
		GroupUID:        "group-1",
		Subject:         "Quarterly check-in",
		Participants:    []models.BookingParticipant{{Email: "pat@example.org", Name: "Pat"}},
		StartsOn:        time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC),
		EndsOn:          time.Date(2026, 9, 4, 10, 30, 0, 0, time.UTC),
		State:           models.BookingStateConfirmed,
		ExternalEventID: "evt-1",
	}
}

func TestBookSlot_Reschedule(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	f.tokenCodec.On("Decode", "tok-1").Return(domain.RescheduleClaim{BookingUID: "booking-1"}, nil)
	f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(existingBooking(), uint64(5), nil)
	f.provider.On("UpdateEvent", mock.Anything, "cal-group", "evt-1", mock.Anything).Return(nil)
	f.bookingRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.UID == "booking-1" && b.StartsOn.Equal(time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC))
	}), uint64(5)).Return(nil)
	f.tokenCodec.On("Encode", mock.Anything).Return("tok-2", nil)
	f.events.On("SendBookingRescheduled", mock.Anything, mock.Anything).Return(nil)
	f.email.On("SendBookingRescheduled", mock.Anything, mock.Anything).Return(nil)

	req := bookRequest()
	req.RescheduleToken = "tok-1"

	resp, err := f.service.BookSlot(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.Accepted)
	assert.Equal(t, "booking-1", resp.BookingUID)
	assert.Equal(t, "tok-2", resp.RescheduleToken)

	f.email.AssertCalled(t, "SendBookingRescheduled", mock.Anything, mock.MatchedBy(func(n domain.BookingNotice) bool {
		return n.PreviousStart != nil && n.PreviousStart.Equal(time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC))
	}))
	// No second booking record is ever created on reschedule.
	f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookSlot_RescheduleRejections(t *testing.T) {
	t.Run("group forbids rescheduling", func(t *testing.T) {
		group := testGroup()
		group.Policy.AllowRescheduling = false

		f := newBookingFixture(t, group)

		req := bookRequest()
		req.RescheduleToken = "tok-1"

		resp, err := f.service.BookSlot(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
	})

	t.Run("tampered token", func(t *testing.T) {
		f := newBookingFixture(t, testGroup())
		f.tokenCodec.On("Decode", "forged").Return(domain.RescheduleClaim{}, domain.NewValidationError("signature mismatch"))

		req := bookRequest()
		req.RescheduleToken = "forged"

		resp, err := f.service.BookSlot(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
		assert.Equal(t, "the reschedule token is not valid", resp.Reason)
	})

	t.Run("booking from another group", func(t *testing.T) {
		f := newBookingFixture(t, testGroup())
		other := existingBooking()
		other.GroupUID = "group-2"

		f.tokenCodec.On("Decode", "tok-1").Return(domain.RescheduleClaim{BookingUID: "booking-1"}, nil)
		f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(other, uint64(5), nil)

		req := bookRequest()
		req.RescheduleToken = "tok-1"

		resp, err := f.service.BookSlot(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
	})

	t.Run("too close to the original start", func(t *testing.T) {
		group := testGroup()
		group.Policy.RescheduleNotice = 7 * 24 * 3600 // a week of notice, original start is in 3 days

		f := newBookingFixture(t, group)
		f.tokenCodec.On("Decode", "tok-1").Return(domain.RescheduleClaim{BookingUID: "booking-1"}, nil)
		f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(existingBooking(), uint64(5), nil)

		req := bookRequest()
		req.RescheduleToken = "tok-1"

		resp, err := f.service.BookSlot(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
		assert.Equal(t, "it is too late to reschedule this booking", resp.Reason)
	})

	t.Run("cancelled booking", func(t *testing.T) {
		f := newBookingFixture(t, testGroup())
		cancelled := existingBooking()
		cancelled.State = models.BookingStateCancelled

		f.tokenCodec.On("Decode", "tok-1").Return(domain.RescheduleClaim{BookingUID: "booking-1"}, nil)
		f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(cancelled, uint64(5), nil)

		req := bookRequest()
		req.RescheduleToken = "tok-1"

		resp, err := f.service.BookSlot(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
	})
}

func TestBookSlot_ReschedulePersistFailureRevertsEvent(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	f.tokenCodec.On("Decode", "tok-1").Return(domain.RescheduleClaim{BookingUID: "booking-1"}, nil)
	f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(existingBooking(), uint64(5), nil)
	f.provider.On("UpdateEvent", mock.Anything, "cal-group", "evt-1", mock.Anything).Return(nil)
	f.bookingRepo.On("Update", mock.Anything, mock.Anything, uint64(5)).Return(domain.NewConflictError("stale revision"))

	req := bookRequest()
	req.RescheduleToken = "tok-1"

	_, err := f.service.BookSlot(context.Background(), req)
	require.Error(t, err)

	assert.Equal(t, domain.ErrorTypeCommit, domain.GetErrorType(err))
	// Two UpdateEvent calls: the move and the revert.
	f.provider.AssertNumberOfCalls(t, "UpdateEvent", 2)
}

func TestCancelBooking(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(existingBooking(), uint64(5), nil)
	f.provider.On("DeleteEvent", mock.Anything, "cal-group", "evt-1").Return(nil)
	f.bookingRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.State == models.BookingStateCancelled
	}), uint64(5)).Return(nil)
	f.events.On("SendBookingCancelled", mock.Anything, mock.Anything).Return(nil)
	f.email.On("SendBookingCancellation", mock.Anything, mock.Anything).Return(nil)

	err := f.service.CancelBooking(context.Background(), "booking-1", "Host unavailable")
	require.NoError(t, err)

	f.email.AssertCalled(t, "SendBookingCancellation", mock.Anything, mock.MatchedBy(func(n domain.BookingNotice) bool {
		return n.Reason == "Host unavailable"
	}))
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	cancelled := existingBooking()
	cancelled.State = models.BookingStateCancelled
	f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(cancelled, uint64(5), nil)

	err := f.service.CancelBooking(context.Background(), "booking-1", "")
	require.NoError(t, err)

	f.provider.AssertNotCalled(t, "DeleteEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_AlreadyStarted(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	past := existingBooking()
	past.StartsOn = testNow.Add(-time.Hour)
	past.EndsOn = testNow.Add(-30 * time.Minute)
	f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(past, uint64(5), nil)

	err := f.service.CancelBooking(context.Background(), "booking-1", "")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypePolicyRejection, domain.GetErrorType(err))

	f.provider.AssertNotCalled(t, "DeleteEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_EventDeletionFailureKeepsBooking(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	f.bookingRepo.On("GetWithRevision", mock.Anything, "booking-1").Return(existingBooking(), uint64(5), nil)
	f.provider.On("DeleteEvent", mock.Anything, "cal-group", "evt-1").
		Return(domain.NewCommitError("calendar unreachable"))

	err := f.service.CancelBooking(context.Background(), "booking-1", "")
	require.Error(t, err)

	f.bookingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookSlot_InvalidInterval(t *testing.T) {
	f := newBookingFixture(t, testGroup())

	req := bookRequest()
	req.End = req.Start

	_, err := f.service.BookSlot(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}
