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

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testGroup() *models.AppointmentGroup {
	return &models.AppointmentGroup{
		UID:  "group-1",
		Name: "Support Review",
		Members: []models.GroupMember{
			{ParticipantUID: "part-1", IsMandatory: true},
		},
		EventCalendarID: "cal-group",
		Policy: models.GroupPolicy{
			Duration:           1800,
			AvailabilityWindow: 14,
			AllowRescheduling:  true,
		},
	}
}

func newSlotServiceForTest(group *models.AppointmentGroup, participant *models.Participant, events []models.BusyEvent) *SlotService {
	groupRepo := &domain.MockGroupRepository{}
	if group != nil {
		groupRepo.On("Get", mock.Anything, group.UID).Return(group, nil)
	}

	availability, _ := newAvailabilityServiceForTest(participant, events)

	svc := NewSlotService(groupRepo, availability)
	svc.nowFunc = func() time.Time { return testNow }
	return svc
}

func TestGetAvailableSlots_FullWorkingDay(t *testing.T) {
	svc := newSlotServiceForTest(testGroup(), testAvailabilityParticipant(), nil)

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err)

	// 09:00-17:00 partitioned into 30-minute slots
	require.Len(t, result.Days, 1)
	assert.Equal(t, "2026-09-07", result.Days[0].Date)
	require.Len(t, result.Days[0].Slots, 16)
	assert.Equal(t, time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC), result.Days[0].Slots[0].Start)
	assert.Equal(t, time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC), result.Days[0].Slots[0].End)
	assert.Equal(t, time.Date(2026, 9, 7, 16, 30, 0, 0, time.UTC), result.Days[0].Slots[15].Start)

	assert.Equal(t, 16, result.Metadata.TotalCount)
	require.NotNil(t, result.Metadata.EarliestStart)
	assert.Equal(t, result.Days[0].Slots[0].Start, *result.Metadata.EarliestStart)
	require.NotNil(t, result.Metadata.LatestEnd)
	assert.Equal(t, time.Date(2026, 9, 7, 17, 0, 0, 0, time.UTC), *result.Metadata.LatestEnd)
}

func TestGetAvailableSlots_BufferWidensStride(t *testing.T) {
	group := testGroup()
	group.Policy.BufferTime = 900

	svc := newSlotServiceForTest(group, testAvailabilityParticipant(), nil)

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err)

	// 45-minute stride over 8 hours: starts 09:00, 09:45, ... 16:30
	slots := result.Days[0].Slots
	require.Len(t, slots, 11)
	assert.Equal(t, time.Date(2026, 9, 7, 9, 45, 0, 0, time.UTC), slots[1].Start)
	// Slot ends stay 30 minutes after their start; the buffer is dead time.
	assert.Equal(t, time.Date(2026, 9, 7, 10, 15, 0, 0, time.UTC), slots[1].End)
}

func TestGetAvailableSlots_BusyEventRemovesSlots(t *testing.T) {
	participant := testAvailabilityParticipant()
	busy := timedEvent("2026-09-07T10:00:00Z", "2026-09-07T10:15:00Z")
	busy.CreatorEmail = participant.Email

	svc := newSlotServiceForTest(testGroup(), participant, []models.BusyEvent{busy})

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err)

	// The 09:00-10:00 run yields two slots. 10:15-17:00 restarts the walk at
	// 10:15 and its trailing 16:45-17:00 remainder is dropped.
	slots := result.Days[0].Slots
	require.Len(t, slots, 15)
	assert.Equal(t, time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC), slots[1].Start)
	assert.Equal(t, time.Date(2026, 9, 7, 10, 15, 0, 0, time.UTC), slots[2].Start)
	assert.Equal(t, time.Date(2026, 9, 7, 16, 15, 0, 0, time.UTC), slots[len(slots)-1].Start)
}

func TestGetAvailableSlots_MinimumNotice(t *testing.T) {
	group := testGroup()
	group.Policy.MinimumNotice = 6 * 24 * 3600 // six days

	svc := newSlotServiceForTest(group, testAvailabilityParticipant(), nil)

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err)

	// Notice boundary is 2026-09-07T12:00Z: morning slots are gone.
	slots := result.Days[0].Slots
	require.NotEmpty(t, slots)
	assert.Equal(t, time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC), slots[0].Start)
}

func TestGetAvailableSlots_BlackoutSkipsToNextValidDate(t *testing.T) {
	group := testGroup()
	group.Policy.BlackoutRules = []string{"FREQ=WEEKLY;BYDAY=SA,SU"}

	svc := newSlotServiceForTest(group, testAvailabilityParticipant(), nil)

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-05", // Saturday
	})
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	assert.Equal(t, "2026-09-07", result.Days[0].Date)
	assert.NotEmpty(t, result.Days[0].Slots)
}

func TestGetAvailableSlots_BlackoutSkipsWithoutBookingHorizon(t *testing.T) {
	group := testGroup()
	group.Policy.AvailabilityWindow = 0
	group.Policy.BlackoutRules = []string{"FREQ=WEEKLY;BYDAY=SA,SU"}

	svc := newSlotServiceForTest(group, testAvailabilityParticipant(), nil)

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-05", // Saturday
	})
	require.NoError(t, err)

	// A group without a booking horizon still substitutes forward.
	require.Len(t, result.Days, 1)
	assert.Equal(t, "2026-09-07", result.Days[0].Date)
}

func TestGetAvailableSlots_CalendarOutageYieldsNoSlots(t *testing.T) {
	groupRepo := &domain.MockGroupRepository{}
	groupRepo.On("Get", mock.Anything, "group-1").Return(testGroup(), nil)

	provider := &domain.MockCalendarProvider{}
	provider.On("FetchBusyEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewUpstreamFetchError("upstream timeout"))

	repo := &domain.MockParticipantRepository{}
	repo.On("Get", mock.Anything, "part-1").Return(testAvailabilityParticipant(), nil)

	svc := NewSlotService(groupRepo, NewAvailabilityService(repo, newBusyCollectorForTest(provider)))
	svc.nowFunc = func() time.Time { return testNow }

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err, "an unreachable calendar must not fail the request")

	// The member's availability is unknown, so they count as fully busy.
	require.Len(t, result.Days, 1)
	assert.Empty(t, result.Days[0].Slots)
}

func TestGetAvailableSlots_FullyBlackedOut(t *testing.T) {
	group := testGroup()
	group.Policy.BlackoutRules = []string{"FREQ=DAILY"}

	svc := newSlotServiceForTest(group, testAvailabilityParticipant(), nil)

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Days)
	assert.Equal(t, 0, result.Metadata.TotalCount)
}

func TestGetAvailableSlots_BeyondAvailabilityWindow(t *testing.T) {
	svc := newSlotServiceForTest(testGroup(), testAvailabilityParticipant(), nil)

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-10-19", // weeks past the 14-day window
	})
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	assert.Empty(t, result.Days[0].Slots)
}

func TestGetAvailableSlots_NoMandatoryMembers(t *testing.T) {
	group := testGroup()
	group.Members = []models.GroupMember{
		{ParticipantUID: "part-1", IsMandatory: false},
	}

	svc := newSlotServiceForTest(group, nil, nil)

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err)

	// Nothing constrains the group: the whole day partitions into slots.
	require.Len(t, result.Days, 1)
	assert.Len(t, result.Days[0].Slots, 48)
}

func newTwoMemberSlotServiceForTest(first, second *models.Participant) *SlotService {
	group := testGroup()
	group.Members = []models.GroupMember{
		{ParticipantUID: first.UID, IsMandatory: true},
		{ParticipantUID: second.UID, IsMandatory: true},
	}

	groupRepo := &domain.MockGroupRepository{}
	groupRepo.On("Get", mock.Anything, group.UID).Return(group, nil)

	provider := &domain.MockCalendarProvider{}
	provider.On("FetchBusyEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.BusyEvent{}, nil)

	repo := &domain.MockParticipantRepository{}
	repo.On("Get", mock.Anything, first.UID).Return(first, nil)
	repo.On("Get", mock.Anything, second.UID).Return(second, nil)

	svc := NewSlotService(groupRepo, NewAvailabilityService(repo, newBusyCollectorForTest(provider)))
	svc.nowFunc = func() time.Time { return testNow }
	return svc
}

func secondParticipant(start, end string) *models.Participant {
	return &models.Participant{
		UID:             "part-2",
		Email:           "bob@example.org",
		Timezone:        "UTC",
		PrimaryCalendar: models.CalendarRef{CalendarID: "cal-bob"},
		WorkingHours:    weekdays(start, end),
	}
}

func TestGetAvailableSlots_TwoMembersDisjointHours(t *testing.T) {
	morning := testAvailabilityParticipant()
	morning.WorkingHours = weekdays("09:00:00", "12:00:00")

	svc := newTwoMemberSlotServiceForTest(morning, secondParticipant("13:00:00", "17:00:00"))

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	assert.Empty(t, result.Days[0].Slots, "members who never overlap yield no group slots")
}

func TestGetAvailableSlots_TwoMembersOverlappingHours(t *testing.T) {
	morning := testAvailabilityParticipant()
	morning.WorkingHours = weekdays("09:00:00", "13:00:00")

	svc := newTwoMemberSlotServiceForTest(morning, secondParticipant("11:00:00", "17:00:00"))

	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID: "group-1",
		Date:     "2026-09-07",
	})
	require.NoError(t, err)

	// Only the common 11:00-13:00 stretch is bookable.
	slots := result.Days[0].Slots
	require.Len(t, slots, 4)
	assert.Equal(t, time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2026, 9, 7, 12, 30, 0, 0, time.UTC), slots[3].Start)
}

func TestGetAvailableSlots_RequesterTimezoneOffset(t *testing.T) {
	svc := newSlotServiceForTest(testGroup(), testAvailabilityParticipant(), nil)

	// Requester is at UTC+05:30: their 2026-09-07 runs from 2026-09-06T18:30Z
	// to 2026-09-07T18:30Z, which still contains the whole working day.
	result, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{
		GroupUID:              "group-1",
		Date:                  "2026-09-07",
		TimezoneOffsetMinutes: 330,
	})
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	assert.Len(t, result.Days[0].Slots, 16)
}

func TestGetAvailableSlots_InvalidInput(t *testing.T) {
	t.Run("unknown group", func(t *testing.T) {
		groupRepo := &domain.MockGroupRepository{}
		groupRepo.On("Get", mock.Anything, "ghost").Return(nil, domain.NewNotFoundError("group not found"))

		availability, _ := newAvailabilityServiceForTest(nil, nil)
		svc := NewSlotService(groupRepo, availability)

		_, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{GroupUID: "ghost", Date: "2026-09-07"})
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
	})

	t.Run("malformed date", func(t *testing.T) {
		svc := newSlotServiceForTest(testGroup(), testAvailabilityParticipant(), nil)

		_, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{GroupUID: "group-1", Date: "07/09/2026"})
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("zero duration policy", func(t *testing.T) {
		group := testGroup()
		group.Policy.Duration = 0

		svc := newSlotServiceForTest(group, testAvailabilityParticipant(), nil)

		_, err := svc.GetAvailableSlots(context.Background(), &models.GetSlotsRequest{GroupUID: "group-1", Date: "2026-09-07"})
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}

func TestGetAvailableSlotsRange(t *testing.T) {
	group := testGroup()
	group.Policy.BlackoutRules = []string{"FREQ=WEEKLY;BYDAY=SA,SU"}

	svc := newSlotServiceForTest(group, testAvailabilityParticipant(), nil)

	result, err := svc.GetAvailableSlotsRange(context.Background(), &models.GetSlotsRangeRequest{
		GroupUID:  "group-1",
		StartDate: "2026-09-04", // Friday
		EndDate:   "2026-09-08", // Tuesday
	})
	require.NoError(t, err)

	// Saturday and Sunday are blacked out and skipped, not substituted.
	require.Len(t, result.Days, 3)
	assert.Equal(t, "2026-09-04", result.Days[0].Date)
	assert.Equal(t, "2026-09-07", result.Days[1].Date)
	assert.Equal(t, "2026-09-08", result.Days[2].Date)
	assert.Equal(t, 48, result.Metadata.TotalCount)
}

func TestGetAvailableSlotsRange_InvertedRange(t *testing.T) {
	svc := newSlotServiceForTest(testGroup(), testAvailabilityParticipant(), nil)

	_, err := svc.GetAvailableSlotsRange(context.Background(), &models.GetSlotsRangeRequest{
		GroupUID:  "group-1",
		StartDate: "2026-09-08",
		EndDate:   "2026-09-07",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestSlotOffered(t *testing.T) {
	svc := newSlotServiceForTest(testGroup(), testAvailabilityParticipant(), nil)
	group := testGroup()

	t.Run("offered slot", func(t *testing.T) {
		offered, err := svc.SlotOffered(context.Background(), group, "2026-09-07", 0,
			time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.True(t, offered)
	})

	t.Run("off-grid slot", func(t *testing.T) {
		offered, err := svc.SlotOffered(context.Background(), group, "2026-09-07", 0,
			time.Date(2026, 9, 7, 9, 10, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 9, 40, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.False(t, offered)
	})

	t.Run("blacked-out date is never offered", func(t *testing.T) {
		blocked := testGroup()
		blocked.Policy.BlackoutRules = []string{"FREQ=DAILY"}

		offered, err := svc.SlotOffered(context.Background(), blocked, "2026-09-07", 0,
			time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.False(t, offered)
	})
}
