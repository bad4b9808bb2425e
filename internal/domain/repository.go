// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/rtcamp/appointment-service/internal/domain/models"
)

// GroupRepository defines the interface for appointment group storage operations.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type GroupRepository interface {
	Create(ctx context.Context, group *models.AppointmentGroup) error
	Exists(ctx context.Context, groupUID string) (bool, error)
	Delete(ctx context.Context, groupUID string, revision uint64) error

	Get(ctx context.Context, groupUID string) (*models.AppointmentGroup, error)
	GetWithRevision(ctx context.Context, groupUID string) (*models.AppointmentGroup, uint64, error)
	Update(ctx context.Context, group *models.AppointmentGroup, revision uint64) error

	ListAll(ctx context.Context) ([]*models.AppointmentGroup, error)
}

// ParticipantRepository defines the interface for participant storage operations.
// Participants carry the working hours and calendar links used for availability.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	Exists(ctx context.Context, participantUID string) (bool, error)
	Delete(ctx context.Context, participantUID string, revision uint64) error

	Get(ctx context.Context, participantUID string) (*models.Participant, error)
	GetWithRevision(ctx context.Context, participantUID string) (*models.Participant, uint64, error)
	Update(ctx context.Context, participant *models.Participant, revision uint64) error
}

// BookingRepository defines the interface for booking storage operations.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	Exists(ctx context.Context, bookingUID string) (bool, error)
	Delete(ctx context.Context, bookingUID string, revision uint64) error

	Get(ctx context.Context, bookingUID string) (*models.Booking, error)
	GetWithRevision(ctx context.Context, bookingUID string) (*models.Booking, uint64, error)
	Update(ctx context.Context, booking *models.Booking, revision uint64) error

	// ListByGroup returns all bookings that belong to the given appointment group.
	ListByGroup(ctx context.Context, groupUID string) ([]*models.Booking, error)

	// ListByReference returns all bookings linked to the given external reference.
	ListByReference(ctx context.Context, reference string) ([]*models.Booking, error)
}
