// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package email provides SMTP delivery of booking lifecycle notifications.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/logging"
)

// SMTPService sends booking notifications over SMTP.
type SMTPService struct {
	config    SMTPConfig
	templates BookingTemplateManager
}

// NewSMTPService creates a new SMTP-backed email service.
func NewSMTPService(config SMTPConfig) (*SMTPService, error) {
	templates, err := NewTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &SMTPService{
		config:    config,
		templates: templates,
	}, nil
}

// SendBookingConfirmation sends a confirmation email for a new booking.
func (s *SMTPService) SendBookingConfirmation(ctx context.Context, notice domain.BookingNotice) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient", notice.RecipientEmail))

	rendered, err := s.templates.RenderConfirmation(notice)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render confirmation email", logging.ErrKey, err)
		return err
	}

	msg := emailMessage{
		to:      notice.RecipientEmail,
		subject: fmt.Sprintf("Appointment confirmed: %s", notice.Subject),
		html:    rendered.HTML,
		text:    rendered.Text,
	}

	if err := sendEmailMessage(s.config, msg); err != nil {
		slog.ErrorContext(ctx, "failed to send confirmation email", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "sent booking confirmation email")

	return nil
}

// SendBookingRescheduled sends a notification that a booking moved to a new time.
func (s *SMTPService) SendBookingRescheduled(ctx context.Context, notice domain.BookingNotice) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient", notice.RecipientEmail))

	rendered, err := s.templates.RenderRescheduled(notice)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render reschedule email", logging.ErrKey, err)
		return err
	}

	msg := emailMessage{
		to:      notice.RecipientEmail,
		subject: fmt.Sprintf("Appointment rescheduled: %s", notice.Subject),
		html:    rendered.HTML,
		text:    rendered.Text,
	}

	if err := sendEmailMessage(s.config, msg); err != nil {
		slog.ErrorContext(ctx, "failed to send reschedule email", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "sent booking reschedule email")

	return nil
}

// SendBookingCancellation sends a cancellation notice.
func (s *SMTPService) SendBookingCancellation(ctx context.Context, notice domain.BookingNotice) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient", notice.RecipientEmail))

	rendered, err := s.templates.RenderCancellation(notice)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render cancellation email", logging.ErrKey, err)
		return err
	}

	msg := emailMessage{
		to:      notice.RecipientEmail,
		subject: fmt.Sprintf("Appointment cancelled: %s", notice.Subject),
		html:    rendered.HTML,
		text:    rendered.Text,
	}

	if err := sendEmailMessage(s.config, msg); err != nil {
		slog.ErrorContext(ctx, "failed to send cancellation email", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "sent booking cancellation email")

	return nil
}
