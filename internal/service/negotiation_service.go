package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/export"
	"github.com/dealbridge/negotiation-api/internal/mapper"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConcludedSystemMessage is the terminal message appended when a negotiation
// is concluded. Exactly one is written per negotiation.
const ConcludedSystemMessage = "This negotiation has been concluded. Thank you for your participation."

// NegotiationService handles business logic for negotiations
type NegotiationService struct {
	negotiationRepo *repository.NegotiationRepository
	messageRepo     *repository.MessageRepository
	hub             *realtime.Hub
	logger          *zap.Logger
}

// NewNegotiationService creates a new negotiation service instance
func NewNegotiationService(
	negotiationRepo *repository.NegotiationRepository,
	messageRepo *repository.MessageRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *NegotiationService {
	return &NegotiationService{
		negotiationRepo: negotiationRepo,
		messageRepo:     messageRepo,
		hub:             hub,
		logger:          logger,
	}
}

// Create sets up a negotiation with its suppliers, items, and opening terms
// in one transaction and mints the public link token
func (s *NegotiationService) Create(ctx context.Context, req *domain.CreateNegotiationRequest) (*domain.CreateNegotiationResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	negotiation := &domain.Negotiation{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		UniqueLink:  uuid.New().String(),
		Name:        req.Name,
		BuyerName:   req.BuyerName,
		CompanyName: req.CompanyName,
		Currency:    currency,
		Status:      domain.NegotiationStatusActive,
	}

	var suppliers []domain.Supplier
	var items []domain.Item
	var terms []domain.Term

	for _, sr := range req.Suppliers {
		supplier := domain.Supplier{
			BaseModel:      domain.BaseModel{ID: uuid.New()},
			NegotiationID:  negotiation.ID,
			Name:           sr.Name,
			Email:          sr.Email,
			Representative: sr.Representative,
		}
		suppliers = append(suppliers, supplier)

		for _, ir := range sr.Items {
			item := domain.Item{
				BaseModel:     domain.BaseModel{ID: uuid.New()},
				NegotiationID: negotiation.ID,
				SupplierID:    supplier.ID,
				Name:          ir.Name,
				Description:   ir.Description,
				Quantity:      ir.Quantity,
				Unit:          ir.Unit,
			}
			items = append(items, item)
			terms = append(terms, itemTerms(negotiation.ID, item.ID, ir.Terms)...)
		}
	}

	if err := s.negotiationRepo.CreateGraph(ctx, negotiation, suppliers, items, terms); err != nil {
		return nil, fmt.Errorf("failed to create negotiation: %w", err)
	}

	created, err := s.negotiationRepo.GetByLink(ctx, negotiation.UniqueLink)
	if err != nil {
		return nil, fmt.Errorf("failed to load created negotiation: %w", err)
	}

	s.logger.Info("negotiation created",
		zap.String("negotiation_id", negotiation.ID.String()),
		zap.Int("suppliers", len(suppliers)),
		zap.Int("items", len(items)),
		zap.Int("terms", len(terms)),
	)

	return &domain.CreateNegotiationResponse{
		UniqueLink:  created.UniqueLink,
		Negotiation: mapper.ToNegotiationDTO(created),
	}, nil
}

// GetByLink retrieves a negotiation's full graph by its public link token
func (s *NegotiationService) GetByLink(ctx context.Context, link string) (*domain.NegotiationDTO, error) {
	negotiation, err := s.negotiationRepo.GetByLink(ctx, link)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNegotiationNotFound
		}
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}
	dto := mapper.ToNegotiationDTO(negotiation)
	return &dto, nil
}

// List returns all negotiations, newest first
func (s *NegotiationService) List(ctx context.Context) ([]domain.NegotiationDTO, error) {
	negotiations, err := s.negotiationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list negotiations: %w", err)
	}
	return mapper.NegotiationsToDTO(negotiations), nil
}

// Conclude transitions a negotiation to CONCLUDED, appends the terminal
// system message, and notifies the relay room. Not idempotent: concluding an
// already concluded negotiation is a conflict.
func (s *NegotiationService) Conclude(ctx context.Context, link string) (*domain.ConcludeResponse, error) {
	negotiation, err := s.negotiationRepo.GetByLink(ctx, link)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNegotiationNotFound
		}
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}
	if negotiation.IsConcluded() {
		return nil, ErrAlreadyConcluded
	}

	now := time.Now().UTC()
	negotiation.Status = domain.NegotiationStatusConcluded
	negotiation.ConcludedAt = &now
	if err := s.negotiationRepo.Update(ctx, negotiation); err != nil {
		return nil, fmt.Errorf("failed to conclude negotiation: %w", err)
	}

	message := &domain.Message{
		NegotiationID: negotiation.ID,
		Content:       ConcludedSystemMessage,
		Role:          domain.RoleSystem,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to append conclusion message: %w", err)
	}

	updated, err := s.negotiationRepo.GetByLink(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to reload negotiation: %w", err)
	}

	messageDTO := mapper.ToMessageDTO(message)
	negotiationDTO := mapper.ToNegotiationDTO(updated)

	room := realtime.Room(negotiation.ID)
	s.hub.Publish(room, realtime.Event{Name: realtime.EventNewMessage, Data: messageDTO})
	s.hub.Publish(room, realtime.Event{Name: realtime.EventStatusChanged, Data: domain.StatusChangedEvent{
		NegotiationID: negotiation.ID,
		Status:        domain.NegotiationStatusConcluded,
		ConcludedAt:   negotiationDTO.ConcludedAt,
	}})

	s.logger.Info("negotiation concluded",
		zap.String("negotiation_id", negotiation.ID.String()),
	)

	return &domain.ConcludeResponse{
		Negotiation: negotiationDTO,
		Message:     messageDTO,
	}, nil
}

// ExportSummary renders the settlement summary document for a negotiation
// to w and returns the suggested download filename
func (s *NegotiationService) ExportSummary(ctx context.Context, link string, w io.Writer) (string, error) {
	negotiation, err := s.negotiationRepo.GetByLink(ctx, link)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNegotiationNotFound
		}
		return "", fmt.Errorf("failed to get negotiation: %w", err)
	}

	if err := export.Render(w, negotiation); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return export.Filename(negotiation), nil
}

// Typing relays a typing indicator to the negotiation's room. Nothing is
// persisted.
func (s *NegotiationService) Typing(ctx context.Context, link string, req *domain.TypingRequest) error {
	negotiation, err := s.negotiationRepo.GetByLink(ctx, link)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNegotiationNotFound
		}
		return fmt.Errorf("failed to get negotiation: %w", err)
	}

	s.hub.Publish(realtime.Room(negotiation.ID), realtime.Event{
		Name: realtime.EventUserTyping,
		Data: domain.TypingEvent{User: req.User, IsTyping: req.IsTyping},
	})
	return nil
}

// ResetAll deletes every negotiation and all dependent data
func (s *NegotiationService) ResetAll(ctx context.Context) error {
	if err := s.negotiationRepo.ResetAll(ctx); err != nil {
		return fmt.Errorf("failed to reset data: %w", err)
	}
	s.logger.Warn("all negotiation data wiped")
	return nil
}

// itemTerms expands the opening term values of an item into term rows.
// Empty fields create no row.
func itemTerms(negotiationID, itemID uuid.UUID, req domain.ItemTermsRequest) []domain.Term {
	fields := []struct {
		termType domain.TermType
		value    string
	}{
		{domain.TermTypePrice, req.Price},
		{domain.TermTypeQuotedPrice, req.QuotedPrice},
		{domain.TermTypePaymentTerms, req.PaymentTerms},
		{domain.TermTypeFreight, req.Freight},
		{domain.TermTypeDeliverySchedule, req.DeliverySchedule},
		{domain.TermTypeWarranty, req.Warranty},
		{domain.TermTypeLDClause, req.LDClause},
	}

	var terms []domain.Term
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		id := itemID
		terms = append(terms, domain.Term{
			BaseModel:     domain.BaseModel{ID: uuid.New()},
			NegotiationID: negotiationID,
			ItemID:        &id,
			TermType:      f.termType,
			TargetValue:   f.value,
		})
	}
	return terms
}
