package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/mapper"
	"github.com/dealbridge/negotiation-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TermService handles business logic for the term ledger
type TermService struct {
	termRepo        *repository.TermRepository
	negotiationRepo *repository.NegotiationRepository
	logger          *zap.Logger
}

// NewTermService creates a new term service instance
func NewTermService(
	termRepo *repository.TermRepository,
	negotiationRepo *repository.NegotiationRepository,
	logger *zap.Logger,
) *TermService {
	return &TermService{
		termRepo:        termRepo,
		negotiationRepo: negotiationRepo,
		logger:          logger,
	}
}

// UpdateQuoted sets the supplier's quoted value on a term
func (s *TermService) UpdateQuoted(ctx context.Context, id uuid.UUID, value string) (*domain.TermDTO, error) {
	return s.update(ctx, id, func(term *domain.Term) error {
		term.QuotedValue = value
		return nil
	})
}

// UpdateCurrent sets the working value on a term
func (s *TermService) UpdateCurrent(ctx context.Context, id uuid.UUID, value string) (*domain.TermDTO, error) {
	return s.update(ctx, id, func(term *domain.Term) error {
		term.CurrentValue = value
		return nil
	})
}

// UpdateAgreed sets the final value on a term. Write-once: a second write is
// a conflict.
func (s *TermService) UpdateAgreed(ctx context.Context, id uuid.UUID, value string) (*domain.TermDTO, error) {
	return s.update(ctx, id, func(term *domain.Term) error {
		if term.AgreedValue != "" {
			return ErrAgreedValueSet
		}
		term.AgreedValue = value
		return nil
	})
}

// update loads a term, rejects writes on concluded negotiations, applies the
// mutation, and persists
func (s *TermService) update(ctx context.Context, id uuid.UUID, mutate func(*domain.Term) error) (*domain.TermDTO, error) {
	term, err := s.termRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		return nil, fmt.Errorf("failed to get term: %w", err)
	}

	negotiation, err := s.negotiationRepo.GetByID(ctx, term.NegotiationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}
	if negotiation.IsConcluded() {
		return nil, ErrNegotiationConcluded
	}

	if err := mutate(term); err != nil {
		return nil, err
	}

	if err := s.termRepo.Update(ctx, term); err != nil {
		return nil, fmt.Errorf("failed to update term: %w", err)
	}

	s.logger.Debug("term updated",
		zap.String("term_id", term.ID.String()),
		zap.String("term_type", string(term.TermType)),
	)

	dto := mapper.ToTermDTO(term)
	return &dto, nil
}
