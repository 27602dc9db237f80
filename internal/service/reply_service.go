package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/mapper"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FallbackReply is the deterministic text persisted as the AI turn whenever
// the reply generator fails or returns nothing. The endpoint never surfaces
// generator errors to the caller.
const FallbackReply = "Technical issue detected\n" +
	"• Please give me a moment to resolve\n" +
	"• I will respond to your points shortly\n" +
	"• Thank you for your patience"

// conversationWindow is how many trailing messages feed the generator
const conversationWindow = 10

// ReplyGenerator produces the buyer's next negotiation turn
type ReplyGenerator interface {
	Propose(ctx context.Context, pc domain.PromptContext) (string, error)
}

// ReplyService orchestrates AI reply generation for negotiations
type ReplyService struct {
	negotiationRepo *repository.NegotiationRepository
	messageRepo     *repository.MessageRepository
	generator       ReplyGenerator
	hub             *realtime.Hub
	logger          *zap.Logger
}

// NewReplyService creates a new reply service instance
func NewReplyService(
	negotiationRepo *repository.NegotiationRepository,
	messageRepo *repository.MessageRepository,
	generator ReplyGenerator,
	hub *realtime.Hub,
	logger *zap.Logger,
) *ReplyService {
	return &ReplyService{
		negotiationRepo: negotiationRepo,
		messageRepo:     messageRepo,
		generator:       generator,
		hub:             hub,
		logger:          logger,
	}
}

// Generate produces the next AI turn in response to a supplier message,
// persists it as an AI_BOT message, and relays it. Generator failures fall
// back to FallbackReply; the operation fails outwardly only when the
// negotiation is missing or concluded.
func (s *ReplyService) Generate(ctx context.Context, link string, req *domain.RequestReplyRequest) (*domain.MessageDTO, error) {
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

	pc, err := s.buildPromptContext(ctx, negotiation, req.Message)
	if err != nil {
		return nil, err
	}

	reply := s.propose(ctx, negotiation, pc)

	message := &domain.Message{
		NegotiationID: negotiation.ID,
		Content:       reply,
		Role:          domain.RoleAIBot,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to persist reply: %w", err)
	}

	dto := mapper.ToMessageDTO(message)
	s.hub.Publish(realtime.Room(negotiation.ID), realtime.Event{
		Name: realtime.EventNewMessage,
		Data: dto,
	})

	return &dto, nil
}

// propose calls the generator and sanitizes its output, degrading to the
// fallback text on any failure
func (s *ReplyService) propose(ctx context.Context, negotiation *domain.Negotiation, pc domain.PromptContext) string {
	raw, err := s.generator.Propose(ctx, pc)
	if err != nil {
		s.logger.Warn("reply generation failed, using fallback",
			zap.String("negotiation_id", negotiation.ID.String()),
			zap.Error(err),
		)
		return FallbackReply
	}

	reply := SanitizeReply(raw)
	if reply == "" {
		s.logger.Warn("reply generation returned empty text, using fallback",
			zap.String("negotiation_id", negotiation.ID.String()),
		)
		return FallbackReply
	}
	return reply
}

func (s *ReplyService) buildPromptContext(ctx context.Context, negotiation *domain.Negotiation, supplierMessage string) (domain.PromptContext, error) {
	recent, err := s.messageRepo.Recent(ctx, negotiation.ID, conversationWindow)
	if err != nil {
		return domain.PromptContext{}, fmt.Errorf("failed to load recent messages: %w", err)
	}
	count, err := s.messageRepo.CountByNegotiation(ctx, negotiation.ID)
	if err != nil {
		return domain.PromptContext{}, fmt.Errorf("failed to count messages: %w", err)
	}

	return domain.PromptContext{
		NegotiationName: negotiation.Name,
		BuyerName:       negotiation.BuyerName,
		CompanyName:     negotiation.CompanyName,
		Currency:        negotiation.Currency,
		Terms:           promptTerms(negotiation),
		RecentMessages:  recent,
		SupplierMessage: supplierMessage,
		MessageCount:    int(count),
	}, nil
}

// promptTerms flattens the negotiation's term ledger for the prompt,
// item-scoped terms first with their item names, then negotiation-level ones
func promptTerms(negotiation *domain.Negotiation) []domain.PromptTerm {
	var terms []domain.PromptTerm
	for i := range negotiation.Items {
		item := &negotiation.Items[i]
		for j := range item.Terms {
			terms = append(terms, promptTerm(&item.Terms[j], item.Name))
		}
	}
	for i := range negotiation.Terms {
		terms = append(terms, promptTerm(&negotiation.Terms[i], ""))
	}
	return terms
}

func promptTerm(t *domain.Term, itemName string) domain.PromptTerm {
	return domain.PromptTerm{
		Label:        termLabel(t.TermType),
		ItemName:     itemName,
		TargetValue:  t.TargetValue,
		QuotedValue:  t.QuotedValue,
		CurrentValue: t.CurrentValue,
		AgreedValue:  t.AgreedValue,
	}
}

func termLabel(t domain.TermType) string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w == "ld" {
			words[i] = "LD"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SanitizeReply strips markdown emphasis markers and surrounding whitespace
// from generated text
func SanitizeReply(reply string) string {
	return strings.TrimSpace(strings.ReplaceAll(reply, "*", ""))
}
