// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/infrastructure/store"
	"github.com/rtcamp/appointment-service/internal/logging"
)

// natsMessage adapts a *nats.Msg to the domain.Message interface.
type natsMessage struct {
	msg *nats.Msg
}

func (m *natsMessage) Subject() string { return m.msg.Subject }
func (m *natsMessage) Data() []byte    { return m.msg.Data }
func (m *natsMessage) HasReply() bool  { return m.msg.Reply != "" }
func (m *natsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

// setupNATS connects to the NATS server. The connection drains during
// graceful shutdown; the closed handler releases the wait group once the
// drain completes.
func setupNATS(_ context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.With(logging.ErrKey, err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.With("url", c.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(c *nats.Conn) {
			if err := c.LastError(); err != nil {
				slog.With(logging.ErrKey, err).Error("NATS connection closed with error")
				// A terminal connection error means the service cannot do its
				// job anymore; signal shutdown.
				select {
				case done <- os.Interrupt:
				default:
				}
			}
			gracefulCloseWG.Done()
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}

	slog.With("url", natsConn.ConnectedUrl()).Info("connected to NATS")

	return natsConn, nil
}

// repositories bundles the key-value backed stores of the service.
type repositories struct {
	Group       *store.NatsGroupRepository
	Participant *store.NatsParticipantRepository
	Booking     *store.NatsBookingRepository
}

// getKeyValueStores opens the JetStream key-value buckets for the service,
// creating them when absent.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]jetstream.KeyValue, 3)
	for _, name := range []string{
		store.KVStoreNameGroups,
		store.KVStoreNameParticipants,
		store.KVStoreNameBookings,
	} {
		kv, err := js.KeyValue(ctx, name)
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: name})
		}
		if err != nil {
			return nil, err
		}
		buckets[name] = kv
	}

	return &repositories{
		Group:       store.NewNatsGroupRepository(buckets[store.KVStoreNameGroups]),
		Participant: store.NewNatsParticipantRepository(buckets[store.KVStoreNameParticipants]),
		Booking:     store.NewNatsBookingRepository(buckets[store.KVStoreNameBookings]),
	}, nil
}

// createNatsSubcriptions subscribes the handler to the API subjects in a
// queue group so replicas share the request load.
func createNatsSubcriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.GetSlotsSubject,
		models.GetSlotsRangeSubject,
		models.BookSlotSubject,
	}

	for _, subject := range subjects {
		_, err := natsConn.QueueSubscribe(subject, models.AppointmentAPIQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, &natsMessage{msg: msg})
		})
		if err != nil {
			return err
		}
		slog.With("subject", subject, "queue", models.AppointmentAPIQueue).Debug("subscribed to NATS subject")
	}

	return nil
}
