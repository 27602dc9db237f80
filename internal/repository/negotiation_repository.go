package repository

import (
	"context"
	"time"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NegotiationRepository handles negotiation data access operations
type NegotiationRepository struct {
	db *gorm.DB
}

// NewNegotiationRepository creates a new negotiation repository instance
func NewNegotiationRepository(db *gorm.DB) *NegotiationRepository {
	return &NegotiationRepository{db: db}
}

// CreateGraph atomically persists a negotiation together with its suppliers,
// items, and initial terms. Foreign keys must be pre-assigned by the caller.
// Nothing is persisted if any insert fails.
func (r *NegotiationRepository) CreateGraph(
	ctx context.Context,
	negotiation *domain.Negotiation,
	suppliers []domain.Supplier,
	items []domain.Item,
	terms []domain.Term,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(negotiation).Error; err != nil {
			return err
		}
		if len(suppliers) > 0 {
			if err := tx.Omit(clause.Associations).Create(&suppliers).Error; err != nil {
				return err
			}
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}
		if len(terms) > 0 {
			if err := tx.Omit(clause.Associations).Create(&terms).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByLink retrieves a negotiation by its public link token with the full
// graph preloaded. Negotiation-level terms are the ones without an item scope;
// item-scoped terms are preloaded under their items.
func (r *NegotiationRepository) GetByLink(ctx context.Context, link string) (*domain.Negotiation, error) {
	var negotiation domain.Negotiation
	err := r.db.WithContext(ctx).
		Scopes(withNegotiationGraph).
		Where("unique_link = ?", link).
		First(&negotiation).Error
	if err != nil {
		return nil, err
	}
	return &negotiation, nil
}

// GetByID retrieves a negotiation by primary key without preloads
func (r *NegotiationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Negotiation, error) {
	var negotiation domain.Negotiation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&negotiation).Error
	if err != nil {
		return nil, err
	}
	return &negotiation, nil
}

// List returns all negotiations with their full graphs, newest first
func (r *NegotiationRepository) List(ctx context.Context) ([]domain.Negotiation, error) {
	var negotiations []domain.Negotiation
	err := r.db.WithContext(ctx).
		Scopes(withNegotiationGraph).
		Order("created_at DESC").
		Find(&negotiations).Error
	return negotiations, err
}

// Update persists changes to an existing negotiation
func (r *NegotiationRepository) Update(ctx context.Context, negotiation *domain.Negotiation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(negotiation).Error
}

// DeleteConcludedBefore removes concluded negotiations whose conclusion is
// older than the cutoff, together with their children. Used by the retention
// job; child rows are deleted explicitly so the purge does not depend on
// database-level cascade support.
func (r *NegotiationRepository) DeleteConcludedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Negotiation{}).
		Where("status = ?", domain.NegotiationStatusConcluded).
		Where("concluded_at < ?", cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("negotiation_id IN ?", ids).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("negotiation_id IN ?", ids).Delete(&domain.Term{}).Error; err != nil {
			return err
		}
		if err := tx.Where("negotiation_id IN ?", ids).Delete(&domain.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("negotiation_id IN ?", ids).Delete(&domain.Supplier{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&domain.Negotiation{}).Error
	})
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// ResetAll wipes every negotiation and all dependent rows. Destructive and
// unconditional; intended for non-production use only.
func (r *NegotiationRepository) ResetAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&domain.Term{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&domain.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&domain.Supplier{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&domain.Negotiation{}).Error
	})
}

// withNegotiationGraph preloads the full negotiation graph in stable order
func withNegotiationGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Suppliers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Supplier").
		Preload("Items.Terms", func(db *gorm.DB) *gorm.DB {
			return db.Order("term_type ASC")
		}).
		Preload("Terms", func(db *gorm.DB) *gorm.DB {
			return db.Where("item_id IS NULL").Order("term_type ASC")
		}).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		})
}
