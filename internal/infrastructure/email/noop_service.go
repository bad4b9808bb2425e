// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/rtcamp/appointment-service/internal/domain"
)

// NoOpService is an email service that logs instead of sending. Used when
// SMTP is not configured.
type NoOpService struct{}

// NewNoOpService creates a new no-op email service.
func NewNoOpService() *NoOpService {
	return &NoOpService{}
}

// SendBookingConfirmation logs the confirmation that would have been sent.
func (s *NoOpService) SendBookingConfirmation(ctx context.Context, notice domain.BookingNotice) error {
	slog.InfoContext(ctx, "email service disabled, skipping booking confirmation",
		slog.String("recipient", notice.RecipientEmail),
		slog.String("subject", notice.Subject),
	)
	return nil
}

// SendBookingRescheduled logs the reschedule notice that would have been sent.
func (s *NoOpService) SendBookingRescheduled(ctx context.Context, notice domain.BookingNotice) error {
	slog.InfoContext(ctx, "email service disabled, skipping reschedule notice",
		slog.String("recipient", notice.RecipientEmail),
		slog.String("subject", notice.Subject),
	)
	return nil
}

// SendBookingCancellation logs the cancellation notice that would have been sent.
func (s *NoOpService) SendBookingCancellation(ctx context.Context, notice domain.BookingNotice) error {
	slog.InfoContext(ctx, "email service disabled, skipping cancellation notice",
		slog.String("recipient", notice.RecipientEmail),
		slog.String("subject", notice.Subject),
	)
	return nil
}
