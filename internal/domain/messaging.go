// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/rtcamp/appointment-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// BookingEventSender handles booking lifecycle events.
type BookingEventSender interface {
	SendBookingCreated(ctx context.Context, data models.BookingEventMessage) error
	SendBookingRescheduled(ctx context.Context, data models.BookingEventMessage) error
	SendBookingCancelled(ctx context.Context, data models.BookingEventMessage) error
}
