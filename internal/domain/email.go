// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendBookingConfirmation(ctx context.Context, notice BookingNotice) error
	SendBookingRescheduled(ctx context.Context, notice BookingNotice) error
	SendBookingCancellation(ctx context.Context, notice BookingNotice) error
}

// BookingNotice contains the data needed to send a booking lifecycle email
type BookingNotice struct {
	RecipientEmail  string
	RecipientName   string
	GroupName       string
	Subject         string
	StartTime       time.Time
	EndTime         time.Time
	Timezone        string
	RescheduleToken string // Optional token the recipient can use to reschedule
	PreviousStart   *time.Time
	Reason          string // Optional reason for cancellation
}
