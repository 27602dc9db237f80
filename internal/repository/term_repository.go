package repository

import (
	"context"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TermRepository handles term data access operations
type TermRepository struct {
	db *gorm.DB
}

// NewTermRepository creates a new term repository instance
func NewTermRepository(db *gorm.DB) *TermRepository {
	return &TermRepository{db: db}
}

// GetByID retrieves a term by primary key
func (r *TermRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Term, error) {
	var term domain.Term
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

// Update persists changes to an existing term
func (r *TermRepository) Update(ctx context.Context, term *domain.Term) error {
	return r.db.WithContext(ctx).Save(term).Error
}

// ListByNegotiation returns every term attached to a negotiation, both
// negotiation-level and item-scoped, in stable order
func (r *TermRepository) ListByNegotiation(ctx context.Context, negotiationID uuid.UUID) ([]domain.Term, error) {
	var terms []domain.Term
	err := r.db.WithContext(ctx).
		Where("negotiation_id = ?", negotiationID).
		Order("term_type ASC, created_at ASC").
		Find(&terms).Error
	return terms, err
}
