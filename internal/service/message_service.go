package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/mapper"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageService handles business logic for the negotiation message log
type MessageService struct {
	negotiationRepo *repository.NegotiationRepository
	messageRepo     *repository.MessageRepository
	hub             *realtime.Hub
	logger          *zap.Logger
}

// NewMessageService creates a new message service instance
func NewMessageService(
	negotiationRepo *repository.NegotiationRepository,
	messageRepo *repository.MessageRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		negotiationRepo: negotiationRepo,
		messageRepo:     messageRepo,
		hub:             hub,
		logger:          logger,
	}
}

// Post appends a message to an active negotiation's log and relays it.
// The SYSTEM role is reserved for the service itself and rejected here.
func (s *MessageService) Post(ctx context.Context, link string, req *domain.PostMessageRequest) (*domain.MessageDTO, error) {
	if !req.Role.IsValid() || req.Role == domain.RoleSystem {
		return nil, ErrInvalidRole
	}

	negotiation, err := s.negotiationRepo.GetByLink(ctx, link)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNegotiationNotFound
		}
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}
	if negotiation.IsConcluded() {
		return nil, ErrNegotiationConcluded
	}

	message := &domain.Message{
		NegotiationID: negotiation.ID,
		Content:       req.Content,
		Role:          req.Role,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	dto := mapper.ToMessageDTO(message)
	s.hub.Publish(realtime.Room(negotiation.ID), realtime.Event{
		Name: realtime.EventNewMessage,
		Data: dto,
	})

	s.logger.Debug("message posted",
		zap.String("negotiation_id", negotiation.ID.String()),
		zap.String("role", string(req.Role)),
	)

	return &dto, nil
}

// List returns a negotiation's full message log, oldest first
func (s *MessageService) List(ctx context.Context, link string) ([]domain.MessageDTO, error) {
	negotiation, err := s.negotiationRepo.GetByLink(ctx, link)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNegotiationNotFound
		}
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}

	messages, err := s.messageRepo.ListByNegotiation(ctx, negotiation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	dtos := make([]domain.MessageDTO, 0, len(messages))
	for i := range messages {
		dtos = append(dtos, mapper.ToMessageDTO(&messages[i]))
	}
	return dtos, nil
}
