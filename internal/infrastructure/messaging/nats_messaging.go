// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package messaging publishes booking lifecycle events to NATS.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/logging"
)

// INatsConn is the NATS connection interface the message builder needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds booking event messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

func (m *MessageBuilder) sendBookingEvent(ctx context.Context, subject string, data models.BookingEventMessage) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling booking event into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "publishing booking event to NATS",
		"subject", subject,
		"booking_uid", data.BookingUID,
		"group_uid", data.GroupUID,
	)

	return m.sendMessage(ctx, subject, dataBytes)
}

// SendBookingCreated sends a message about a booking being committed.
func (m *MessageBuilder) SendBookingCreated(ctx context.Context, data models.BookingEventMessage) error {
	return m.sendBookingEvent(ctx, models.BookingCreatedSubject, data)
}

// SendBookingRescheduled sends a message about a booking being moved to a new slot.
func (m *MessageBuilder) SendBookingRescheduled(ctx context.Context, data models.BookingEventMessage) error {
	return m.sendBookingEvent(ctx, models.BookingRescheduledSubject, data)
}

// SendBookingCancelled sends a message about a booking being cancelled.
func (m *MessageBuilder) SendBookingCancelled(ctx context.Context, data models.BookingEventMessage) error {
	return m.sendBookingEvent(ctx, models.BookingCancelledSubject, data)
}
