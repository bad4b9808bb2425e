// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtcamp/appointment-service/internal/domain/models"
)

// mockNatsConn implements INatsConn for testing
type mockNatsConn struct {
	connected    bool
	publishError error
	published    []publishedMessage
}

type publishedMessage struct {
	subject string
	data    []byte
}

func (m *mockNatsConn) IsConnected() bool {
	return m.connected
}

func (m *mockNatsConn) Publish(subj string, data []byte) error {
	if m.publishError != nil {
		return m.publishError
	}
	m.published = append(m.published, publishedMessage{subject: subj, data: data})
	return nil
}

func testBookingEvent() models.BookingEventMessage {
	return models.BookingEventMessage{
		BookingUID: "booking-1",
		GroupUID:   "group-1",
		StartsOn:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndsOn:     time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
		State:      string(models.BookingStateConfirmed),
		OccurredAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestMessageBuilder_SendBookingCreated(t *testing.T) {
	conn := &mockNatsConn{connected: true}
	builder := NewMessageBuilder(conn)

	err := builder.SendBookingCreated(context.Background(), testBookingEvent())
	require.NoError(t, err)

	require.Len(t, conn.published, 1)
	assert.Equal(t, models.BookingCreatedSubject, conn.published[0].subject)

	var got models.BookingEventMessage
	require.NoError(t, json.Unmarshal(conn.published[0].data, &got))
	assert.Equal(t, "booking-1", got.BookingUID)
	assert.Equal(t, "group-1", got.GroupUID)
}

func TestMessageBuilder_SendBookingRescheduled(t *testing.T) {
	conn := &mockNatsConn{connected: true}
	builder := NewMessageBuilder(conn)

	err := builder.SendBookingRescheduled(context.Background(), testBookingEvent())
	require.NoError(t, err)

	require.Len(t, conn.published, 1)
	assert.Equal(t, models.BookingRescheduledSubject, conn.published[0].subject)
}

func TestMessageBuilder_SendBookingCancelled(t *testing.T) {
	conn := &mockNatsConn{connected: true}
	builder := NewMessageBuilder(conn)

	err := builder.SendBookingCancelled(context.Background(), testBookingEvent())
	require.NoError(t, err)

	require.Len(t, conn.published, 1)
	assert.Equal(t, models.BookingCancelledSubject, conn.published[0].subject)
}

func TestMessageBuilder_PublishError(t *testing.T) {
	conn := &mockNatsConn{connected: true, publishError: errors.New("nats down")}
	builder := NewMessageBuilder(conn)

	err := builder.SendBookingCreated(context.Background(), testBookingEvent())
	assert.Error(t, err)
	assert.Empty(t, conn.published)
}
