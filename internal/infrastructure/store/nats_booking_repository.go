// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/logging"
)

// NatsBookingRepository is the NATS KV store repository for bookings. Bookings
// are indexed by group and by linked reference so frequency-limit and
// schedule-only-once checks avoid full scans.
type NatsBookingRepository struct {
	*NatsBaseRepository[models.Booking]
	keyBuilder *KeyBuilder
}

// NewNatsBookingRepository creates a new NATS KV store repository for bookings.
func NewNatsBookingRepository(kvStore INatsKeyValue) *NatsBookingRepository {
	return &NatsBookingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Booking](kvStore, "booking"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Create creates a new booking with indexing
func (r *NatsBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.UID == "" {
		booking.UID = uuid.New().String()
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixBooking, booking.UID)
	err := r.NatsBaseRepository.Create(ctx, key, booking)
	if err != nil {
		return err
	}

	if err := r.createIndices(ctx, booking); err != nil {
		slog.WarnContext(ctx, "failed to create booking indices", logging.ErrKey, err, "booking_uid", booking.UID)
		// Don't fail the operation if indexing fails
	}

	return nil
}

// Exists checks if a booking exists
func (r *NatsBookingRepository) Exists(ctx context.Context, bookingUID string) (bool, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixBooking, bookingUID)
	return r.NatsBaseRepository.Exists(ctx, key)
}

// Get retrieves a booking by UID
func (r *NatsBookingRepository) Get(ctx context.Context, bookingUID string) (*models.Booking, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixBooking, bookingUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves a booking with its revision by UID
func (r *NatsBookingRepository) GetWithRevision(ctx context.Context, bookingUID string) (*models.Booking, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixBooking, bookingUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an existing booking
func (r *NatsBookingRepository) Update(ctx context.Context, booking *models.Booking, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixBooking, booking.UID)
	return r.NatsBaseRepository.Update(ctx, key, booking, revision)
}

// Delete removes a booking
func (r *NatsBookingRepository) Delete(ctx context.Context, bookingUID string, revision uint64) error {
	// Get booking first for index cleanup
	booking, err := r.Get(ctx, bookingUID)
	if err != nil {
		return err
	}

	if err := r.deleteIndices(ctx, booking); err != nil {
		slog.WarnContext(ctx, "failed to delete booking indices", logging.ErrKey, err, "booking_uid", bookingUID)
		// Don't fail the operation if index cleanup fails
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixBooking, bookingUID)
	return r.NatsBaseRepository.Delete(ctx, key, revision)
}

// ListByGroup retrieves all bookings that belong to an appointment group
func (r *NatsBookingRepository) ListByGroup(ctx context.Context, groupUID string) ([]*models.Booking, error) {
	allBookings, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []*models.Booking
	for _, booking := range allBookings {
		if booking.GroupUID == groupUID {
			matching = append(matching, booking)
		}
	}

	return matching, nil
}

// ListByReference retrieves all bookings linked to an external reference
func (r *NatsBookingRepository) ListByReference(ctx context.Context, reference string) ([]*models.Booking, error) {
	allBookings, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []*models.Booking
	for _, booking := range allBookings {
		if booking.LinkedReference == reference {
			matching = append(matching, booking)
		}
	}

	return matching, nil
}

// ListAll lists all bookings
func (r *NatsBookingRepository) ListAll(ctx context.Context) ([]*models.Booking, error) {
	pattern := KeyPrefixBooking + "/"
	return r.ListEntitiesEncoded(ctx, pattern, r.keyBuilder)
}

func (r *NatsBookingRepository) createIndices(ctx context.Context, booking *models.Booking) error {
	groupIndexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexGroup, booking.GroupUID, booking.UID)
	if err := r.PutIndex(ctx, groupIndexKey); err != nil {
		return err
	}

	if booking.LinkedReference != "" {
		referenceIndexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexReference, booking.LinkedReference, booking.UID)
		if err := r.PutIndex(ctx, referenceIndexKey); err != nil {
			return err
		}
	}

	return nil
}

func (r *NatsBookingRepository) deleteIndices(ctx context.Context, booking *models.Booking) error {
	groupIndexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexGroup, booking.GroupUID, booking.UID)
	if err := r.DeleteIndex(ctx, groupIndexKey); err != nil {
		slog.WarnContext(ctx, "failed to delete group index", logging.ErrKey, err)
	}

	if booking.LinkedReference != "" {
		referenceIndexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexReference, booking.LinkedReference, booking.UID)
		if err := r.DeleteIndex(ctx, referenceIndexKey); err != nil {
			slog.WarnContext(ctx, "failed to delete reference index", logging.ErrKey, err)
		}
	}

	return nil
}
