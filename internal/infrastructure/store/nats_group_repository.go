// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/rtcamp/appointment-service/internal/domain/models"
)

// NatsGroupRepository is the NATS KV store repository for appointment groups.
type NatsGroupRepository struct {
	*NatsBaseRepository[models.AppointmentGroup]
	keyBuilder *KeyBuilder
}

// NewNatsGroupRepository creates a new NATS KV store repository for appointment groups.
func NewNatsGroupRepository(kvStore INatsKeyValue) *NatsGroupRepository {
	return &NatsGroupRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.AppointmentGroup](kvStore, "appointment group"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Create creates a new appointment group
func (r *NatsGroupRepository) Create(ctx context.Context, group *models.AppointmentGroup) error {
	if group.UID == "" {
		group.UID = uuid.New().String()
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixGroup, group.UID)
	return r.NatsBaseRepository.Create(ctx, key, group)
}

// Exists checks if an appointment group exists
func (r *NatsGroupRepository) Exists(ctx context.Context, groupUID string) (bool, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixGroup, groupUID)
	return r.NatsBaseRepository.Exists(ctx, key)
}

// Get retrieves an appointment group by UID
func (r *NatsGroupRepository) Get(ctx context.Context, groupUID string) (*models.AppointmentGroup, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixGroup, groupUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves an appointment group with its revision by UID
func (r *NatsGroupRepository) GetWithRevision(ctx context.Context, groupUID string) (*models.AppointmentGroup, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixGroup, groupUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an existing appointment group
func (r *NatsGroupRepository) Update(ctx context.Context, group *models.AppointmentGroup, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixGroup, group.UID)
	return r.NatsBaseRepository.Update(ctx, key, group, revision)
}

// Delete removes an appointment group
func (r *NatsGroupRepository) Delete(ctx context.Context, groupUID string, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixGroup, groupUID)
	return r.NatsBaseRepository.Delete(ctx, key, revision)
}

// ListAll lists all appointment groups
func (r *NatsGroupRepository) ListAll(ctx context.Context) ([]*models.AppointmentGroup, error) {
	pattern := KeyPrefixGroup + "/"
	return r.ListEntitiesEncoded(ctx, pattern, r.keyBuilder)
}
