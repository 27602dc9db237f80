package repository

import (
	"context"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository handles message data access operations
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository instance
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a negotiation's log
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByNegotiation returns all messages for a negotiation, oldest first
func (r *MessageRepository) ListByNegotiation(ctx context.Context, negotiationID uuid.UUID) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("negotiation_id = ?", negotiationID).
		Order("timestamp ASC").
		Find(&messages).Error
	return messages, err
}

// Recent returns the last limit messages for a negotiation in chronological
// order. Used to build the conversation window for the reply generator.
func (r *MessageRepository) Recent(ctx context.Context, negotiationID uuid.UUID, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("negotiation_id = ?", negotiationID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// reverse back to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CountByNegotiation returns the total number of messages in a negotiation
func (r *MessageRepository) CountByNegotiation(ctx context.Context, negotiationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("negotiation_id = ?", negotiationID).
		Count(&count).Error
	return count, err
}
