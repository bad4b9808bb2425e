// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/rtcamp/appointment-service/internal/domain/models"
)

// NatsParticipantRepository is the NATS KV store repository for participants.
type NatsParticipantRepository struct {
	*NatsBaseRepository[models.Participant]
	keyBuilder *KeyBuilder
}

// NewNatsParticipantRepository creates a new NATS KV store repository for participants.
func NewNatsParticipantRepository(kvStore INatsKeyValue) *NatsParticipantRepository {
	return &NatsParticipantRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Participant](kvStore, "participant"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Create creates a new participant
func (r *NatsParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	if participant.UID == "" {
		participant.UID = uuid.New().String()
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixParticipant, participant.UID)
	return r.NatsBaseRepository.Create(ctx, key, participant)
}

// Exists checks if a participant exists
func (r *NatsParticipantRepository) Exists(ctx context.Context, participantUID string) (bool, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixParticipant, participantUID)
	return r.NatsBaseRepository.Exists(ctx, key)
}

// Get retrieves a participant by UID
func (r *NatsParticipantRepository) Get(ctx context.Context, participantUID string) (*models.Participant, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixParticipant, participantUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves a participant with its revision by UID
func (r *NatsParticipantRepository) GetWithRevision(ctx context.Context, participantUID string) (*models.Participant, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixParticipant, participantUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an existing participant
func (r *NatsParticipantRepository) Update(ctx context.Context, participant *models.Participant, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixParticipant, participant.UID)
	return r.NatsBaseRepository.Update(ctx, key, participant, revision)
}

// Delete removes a participant
func (r *NatsParticipantRepository) Delete(ctx context.Context, participantUID string, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixParticipant, participantUID)
	return r.NatsBaseRepository.Delete(ctx, key, revision)
}
