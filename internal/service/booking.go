// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/logging"
	"github.com/rtcamp/appointment-service/pkg/utils"
)

// BookingService enforces the booking policy and commits bookings
// all-or-nothing: the external calendar event and the local record exist
// together or not at all.
type BookingService struct {
	GroupRepository   domain.GroupRepository
	BookingRepository domain.BookingRepository
	SlotService       *SlotService
	CalendarRegistry  domain.CalendarRegistry
	TokenCodec        domain.TokenCodec
	EmailService      domain.EmailService
	EventSender       domain.BookingEventSender
	Config            ServiceConfig

	nowFunc func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	groupRepository domain.GroupRepository,
	bookingRepository domain.BookingRepository,
	slotService *SlotService,
	calendarRegistry domain.CalendarRegistry,
	tokenCodec domain.TokenCodec,
	emailService domain.EmailService,
	eventSender domain.BookingEventSender,
	config ServiceConfig,
) *BookingService {
	return &BookingService{
		GroupRepository:   groupRepository,
		BookingRepository: bookingRepository,
		SlotService:       slotService,
		CalendarRegistry:  calendarRegistry,
		TokenCodec:        tokenCodec,
		EmailService:      emailService,
		EventSender:       eventSender,
		Config:            config.withDefaults(),
		nowFunc:           time.Now,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *BookingService) ServiceReady() bool {
	return s.GroupRepository != nil &&
		s.BookingRepository != nil &&
		s.SlotService != nil &&
		s.CalendarRegistry != nil &&
		s.TokenCodec != nil &&
		s.EmailService != nil &&
		s.EventSender != nil
}

// BookSlot validates a proposed booking against the group policy and, when it
// passes, commits it. Policy rejections come back as a non-accepted response
// with a reason; only infrastructure failures surface as errors.
func (s *BookingService) BookSlot(ctx context.Context, payload *models.BookSlotRequest) (*models.BookSlotResponse, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("booking service not initialized")
	}

	ctx = logging.AppendCtx(ctx, slog.String("group_uid", payload.GroupUID))

	group, err := s.GroupRepository.Get(ctx, payload.GroupUID)
	if err != nil {
		return nil, err
	}

	if err := validatePolicy(group.Policy); err != nil {
		return nil, err
	}
	if !payload.End.After(payload.Start) {
		return nil, domain.NewValidationError("slot end must be after slot start")
	}

	if payload.RescheduleToken != "" {
		return s.rescheduleBooking(ctx, group, payload)
	}
	return s.createBooking(ctx, group, payload)
}

func reject(reason string) *models.BookSlotResponse {
	return &models.BookSlotResponse{Accepted: false, Reason: reason}
}

func (s *BookingService) createBooking(ctx context.Context, group *models.AppointmentGroup, payload *models.BookSlotRequest) (*models.BookSlotResponse, error) {
	policy := group.Policy

	if policy.ScheduleOnlyOnce {
		if payload.LinkedReference == "" {
			return reject("this group requires a linked reference to book"), nil
		}
		existing, err := s.BookingRepository.ListByReference(ctx, payload.LinkedReference)
		if err != nil {
			return nil, err
		}
		for _, b := range existing {
			if b.GroupUID == group.UID && b.IsActive() {
				slog.DebugContext(ctx, "rejecting duplicate booking for reference",
					slog.String("linked_reference", payload.LinkedReference),
					slog.String("existing_booking_uid", b.UID),
				)
				return reject("a booking already exists for this reference"), nil
			}
		}
	}

	if policy.BookingFrequencyLimit > 0 && policy.BookingFrequencyLimit != models.UnlimitedBookings {
		count, err := s.countBookingsOnDay(ctx, group.UID, payload.Date, payload.TimezoneOffsetMinutes)
		if err != nil {
			return nil, err
		}
		if count >= policy.BookingFrequencyLimit {
			return reject("the daily booking limit for this group is reached"), nil
		}
	}

	offered, err := s.SlotService.SlotOffered(ctx, group, payload.Date, payload.TimezoneOffsetMinutes, payload.Start.UTC(), payload.End.UTC())
	if err != nil {
		return nil, err
	}
	if !offered {
		return reject("the requested slot is no longer available"), nil
	}

	booking := &models.Booking{
		GroupUID:        group.UID,
		Subject:         payload.Subject,
		Participants:    payload.Participants,
		LinkedReference: payload.LinkedReference,
		StartsOn:        payload.Start.UTC(),
		EndsOn:          payload.End.UTC(),
		State:           models.BookingStateConfirmed,
	}

	if err := s.commitBooking(ctx, group, booking); err != nil {
		return nil, err
	}

	token := s.issueToken(ctx, group, booking.UID)

	s.publishEvent(ctx, models.BookingCreatedSubject, booking)
	s.notifyParticipants(ctx, group, booking, token, nil, "")

	return &models.BookSlotResponse{
		BookingUID:      booking.UID,
		Accepted:        true,
		RescheduleToken: token,
	}, nil
}

func (s *BookingService) rescheduleBooking(ctx context.Context, group *models.AppointmentGroup, payload *models.BookSlotRequest) (*models.BookSlotResponse, error) {
	policy := group.Policy

	if !policy.AllowRescheduling {
		return reject("this group does not allow rescheduling"), nil
	}

	claim, err := s.TokenCodec.Decode(payload.RescheduleToken)
	if err != nil {
		slog.WarnContext(ctx, "rejecting unverifiable reschedule token", logging.ErrKey, err)
		return reject("the reschedule token is not valid"), nil
	}

	ctx = logging.AppendCtx(ctx, slog.String("booking_uid", claim.BookingUID))

	booking, revision, err := s.BookingRepository.GetWithRevision(ctx, claim.BookingUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return reject("the booking no longer exists"), nil
		}
		return nil, err
	}

	if booking.GroupUID != group.UID {
		return reject("the booking does not belong to this group"), nil
	}
	if booking.State == models.BookingStateCancelled {
		return reject("the booking was cancelled"), nil
	}

	now := s.nowFunc().UTC()
	if policy.RescheduleNotice > 0 && now.After(booking.StartsOn.Add(-policy.RescheduleWindow())) {
		return reject("it is too late to reschedule this booking"), nil
	}

	offered, err := s.SlotService.SlotOffered(ctx, group, payload.Date, payload.TimezoneOffsetMinutes, payload.Start.UTC(), payload.End.UTC())
	if err != nil {
		return nil, err
	}
	if !offered {
		return reject("the requested slot is no longer available"), nil
	}

	provider, err := s.CalendarRegistry.GetProvider(s.Config.CalendarProvider)
	if err != nil {
		return nil, err
	}

	previousStart := booking.StartsOn
	previousEnd := booking.EndsOn

	updated := *booking
	updated.StartsOn = payload.Start.UTC()
	updated.EndsOn = payload.End.UTC()
	if payload.Subject != "" {
		updated.Subject = payload.Subject
	}
	updatedAt := now
	updated.UpdatedAt = &updatedAt

	event := buildCalendarEvent(group, &updated)
	if err := provider.UpdateEvent(ctx, group.EventCalendarID, booking.ExternalEventID, event); err != nil {
		return nil, err
	}

	if err := s.BookingRepository.Update(ctx, &updated, revision); err != nil {
		// Move the calendar event back so the two stores stay consistent.
		revertEvent := buildCalendarEvent(group, booking)
		if revertErr := provider.UpdateEvent(ctx, group.EventCalendarID, booking.ExternalEventID, revertEvent); revertErr != nil {
			slog.ErrorContext(ctx, "failed to revert calendar event after persist failure",
				logging.ErrKey, revertErr, logging.PriorityCritical(),
			)
		}
		return nil, domain.NewCommitError("failed to persist rescheduled booking", err)
	}

	token := s.issueToken(ctx, group, updated.UID)

	s.publishEvent(ctx, models.BookingRescheduledSubject, &updated)
	s.notifyParticipants(ctx, group, &updated, token, &previousStart, "")

	slog.InfoContext(ctx, "rescheduled booking",
		slog.Time("previous_start", previousStart),
		slog.Time("previous_end", previousEnd),
		slog.Time("new_start", updated.StartsOn),
	)

	return &models.BookSlotResponse{
		BookingUID:      updated.UID,
		Accepted:        true,
		RescheduleToken: token,
	}, nil
}

// CancelBooking withdraws a booking: the external calendar event is removed
// first, then the record moves to its terminal state. Cancelling an already
// cancelled booking is a no-op.
func (s *BookingService) CancelBooking(ctx context.Context, bookingUID string, reason string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("booking service not initialized")
	}

	ctx = logging.AppendCtx(ctx, slog.String("booking_uid", bookingUID))

	booking, revision, err := s.BookingRepository.GetWithRevision(ctx, bookingUID)
	if err != nil {
		return err
	}
	if booking.State == models.BookingStateCancelled {
		slog.DebugContext(ctx, "booking already cancelled")
		return nil
	}
	if !booking.StartsOn.After(s.nowFunc().UTC()) {
		return domain.NewPolicyRejectionError("the booking has already started")
	}

	group, err := s.GroupRepository.Get(ctx, booking.GroupUID)
	if err != nil {
		return err
	}

	provider, err := s.CalendarRegistry.GetProvider(s.Config.CalendarProvider)
	if err != nil {
		return err
	}

	if booking.ExternalEventID != "" {
		if err := provider.DeleteEvent(ctx, group.EventCalendarID, booking.ExternalEventID); err != nil {
			return err
		}
	}

	now := s.nowFunc().UTC()
	cancelled := *booking
	cancelled.State = models.BookingStateCancelled
	cancelled.UpdatedAt = &now

	if err := s.BookingRepository.Update(ctx, &cancelled, revision); err != nil {
		slog.ErrorContext(ctx, "calendar event deleted but booking record not updated",
			logging.ErrKey, err, logging.PriorityCritical(),
		)
		return domain.NewCommitError("failed to persist booking cancellation", err)
	}

	s.publishEvent(ctx, models.BookingCancelledSubject, &cancelled)
	s.notifyParticipants(ctx, group, &cancelled, "", nil, reason)

	slog.InfoContext(ctx, "cancelled booking")

	return nil
}

// commitBooking performs the all-or-nothing commit: create the calendar event,
// then persist the booking. A persist failure rolls the event back so no
// half-committed booking survives.
func (s *BookingService) commitBooking(ctx context.Context, group *models.AppointmentGroup, booking *models.Booking) error {
	provider, err := s.CalendarRegistry.GetProvider(s.Config.CalendarProvider)
	if err != nil {
		return err
	}

	event := buildCalendarEvent(group, booking)
	eventID, err := provider.CreateEvent(ctx, group.EventCalendarID, event)
	if err != nil {
		return err
	}
	booking.ExternalEventID = eventID

	if err := s.BookingRepository.Create(ctx, booking); err != nil {
		if deleteErr := provider.DeleteEvent(ctx, group.EventCalendarID, eventID); deleteErr != nil {
			slog.ErrorContext(ctx, "failed to roll back calendar event after persist failure",
				logging.ErrKey, deleteErr, logging.PriorityCritical(),
				slog.String("external_event_id", eventID),
			)
		}
		return domain.NewCommitError("failed to persist booking after creating calendar event", err)
	}

	slog.InfoContext(ctx, "committed booking",
		slog.String("booking_uid", booking.UID),
		slog.String("external_event_id", eventID),
	)

	return nil
}

// countBookingsOnDay counts the group's active bookings that start inside the
// requester-local day.
func (s *BookingService) countBookingsOnDay(ctx context.Context, groupUID string, date string, offsetMinutes int) (int, error) {
	window, err := dayWindow(date, offsetMinutes)
	if err != nil {
		return 0, err
	}

	bookings, err := s.BookingRepository.ListByGroup(ctx, groupUID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, b := range bookings {
		if b.IsActive() && !b.StartsOn.Before(window.Start) && b.StartsOn.Before(window.End) {
			count++
		}
	}
	return count, nil
}

// issueToken encodes a reschedule token for the booking when the group policy
// allows rescheduling. Token failures degrade to a booking without one.
func (s *BookingService) issueToken(ctx context.Context, group *models.AppointmentGroup, bookingUID string) string {
	if !group.Policy.AllowRescheduling {
		return ""
	}
	token, err := s.TokenCodec.Encode(domain.RescheduleClaim{
		BookingUID: bookingUID,
		IssuedAt:   s.nowFunc().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to issue reschedule token", logging.ErrKey, err)
		return ""
	}
	return token
}

// publishEvent publishes a booking lifecycle event. Publish failures are
// logged but never fail the booking: the commit already happened.
func (s *BookingService) publishEvent(ctx context.Context, subject string, booking *models.Booking) {
	message := models.BookingEventMessage{
		BookingUID: booking.UID,
		GroupUID:   booking.GroupUID,
		StartsOn:   booking.StartsOn,
		EndsOn:     booking.EndsOn,
		State:      string(booking.State),
		OccurredAt: s.nowFunc().UTC(),
	}

	var err error
	switch subject {
	case models.BookingCreatedSubject:
		err = s.EventSender.SendBookingCreated(ctx, message)
	case models.BookingRescheduledSubject:
		err = s.EventSender.SendBookingRescheduled(ctx, message)
	case models.BookingCancelledSubject:
		err = s.EventSender.SendBookingCancelled(ctx, message)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish booking event",
			logging.ErrKey, err,
			slog.String("event_subject", subject),
		)
	}
}

// notifyParticipants emails every booking participant. Email failures are
// logged and do not fail the booking.
func (s *BookingService) notifyParticipants(ctx context.Context, group *models.AppointmentGroup, booking *models.Booking, token string, previousStart *time.Time, reason string) {
	for _, p := range booking.Participants {
		if p.Email == "" {
			continue
		}

		notice := domain.BookingNotice{
			RecipientEmail:  p.Email,
			RecipientName:   p.Name,
			GroupName:       group.Name,
			Subject:         booking.Subject,
			StartTime:       booking.StartsOn,
			EndTime:         booking.EndsOn,
			Timezone:        "UTC",
			RescheduleToken: token,
			PreviousStart:   previousStart,
			Reason:          reason,
		}

		var err error
		switch {
		case booking.State == models.BookingStateCancelled:
			err = s.EmailService.SendBookingCancellation(ctx, notice)
		case previousStart != nil:
			err = s.EmailService.SendBookingRescheduled(ctx, notice)
		default:
			err = s.EmailService.SendBookingConfirmation(ctx, notice)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to send booking email",
				logging.ErrKey, err,
				slog.String("recipient", p.Email),
			)
		}
	}
}

// buildCalendarEvent maps a booking onto the event committed to the group's
// calendar.
func buildCalendarEvent(group *models.AppointmentGroup, booking *models.Booking) *models.CalendarEvent {
	return &models.CalendarEvent{
		Summary:     utils.Coalesce(booking.Subject, group.Name),
		Description: group.Description,
		Start:       booking.StartsOn,
		End:         booking.EndsOn,
		Attendees:   booking.Participants,
	}
}
