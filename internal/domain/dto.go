package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses

type NegotiationDTO struct {
	ID          uuid.UUID         `json:"id"`
	UniqueLink  string            `json:"uniqueLink"`
	Name        string            `json:"name"`
	BuyerName   string            `json:"buyerName"`
	CompanyName string            `json:"companyName"`
	Currency    string            `json:"currency"`
	Status      NegotiationStatus `json:"status"`
	CreatedAt   string            `json:"createdAt"` // ISO 8601
	ConcludedAt *string           `json:"concludedAt,omitempty"`
	Suppliers   []SupplierDTO     `json:"suppliers"`
	Items       []ItemDTO         `json:"items"`
	Terms       []TermDTO         `json:"terms"`
	Messages    []MessageDTO      `json:"messages"`
}

type SupplierDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Representative string    `json:"representative,omitempty"`
	CreatedAt      string    `json:"createdAt"`
}

type ItemDTO struct {
	ID           uuid.UUID `json:"id"`
	SupplierID   uuid.UUID `json:"supplierId"`
	SupplierName string    `json:"supplierName,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Quantity     string    `json:"quantity,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	Terms        []TermDTO `json:"terms"`
	CreatedAt    string    `json:"createdAt"`
}

type TermDTO struct {
	ID           uuid.UUID  `json:"id"`
	ItemID       *uuid.UUID `json:"itemId,omitempty"`
	TermType     TermType   `json:"termType"`
	TargetValue  string     `json:"targetValue"`
	QuotedValue  string     `json:"quotedValue,omitempty"`
	CurrentValue string     `json:"currentValue,omitempty"`
	AgreedValue  string     `json:"agreedValue,omitempty"`
}

type MessageDTO struct {
	ID            uuid.UUID   `json:"id"`
	NegotiationID uuid.UUID   `json:"negotiationId"`
	Content       string      `json:"content"`
	Role          MessageRole `json:"role"`
	Timestamp     string      `json:"timestamp"` // ISO 8601
}

// ConcludeResponse bundles the lifecycle transition's side effects so the
// caller can relay both to subscribers in one go
type ConcludeResponse struct {
	Negotiation NegotiationDTO `json:"negotiation"`
	Message     MessageDTO     `json:"message"`
}

// CreateNegotiationResponse is returned by POST /negotiations
type CreateNegotiationResponse struct {
	UniqueLink  string         `json:"uniqueLink"`
	Negotiation NegotiationDTO `json:"negotiation"`
}

// StatusChangedEvent is the relay payload for negotiation-status-changed
type StatusChangedEvent struct {
	NegotiationID uuid.UUID         `json:"negotiationId"`
	Status        NegotiationStatus `json:"status"`
	ConcludedAt   *string           `json:"concludedAt,omitempty"`
}

// TypingEvent is the relay payload for user-typing
type TypingEvent struct {
	User     string `json:"user"`
	IsTyping bool   `json:"isTyping"`
}

// Request types

// CreateNegotiationRequest creates a negotiation with its suppliers, items,
// and initial terms in one atomic call
type CreateNegotiationRequest struct {
	Name        string                  `json:"name" validate:"required,max=200"`
	BuyerName   string                  `json:"buyerName" validate:"required,max=200"`
	CompanyName string                  `json:"companyName" validate:"required,max=200"`
	Currency    string                  `json:"currency" validate:"omitempty,max=10"`
	Suppliers   []CreateSupplierRequest `json:"suppliers" validate:"required,min=1,dive"`
}

type CreateSupplierRequest struct {
	Name           string              `json:"name" validate:"required,max=200"`
	Email          string              `json:"email" validate:"omitempty,email"`
	Representative string              `json:"representative" validate:"omitempty,max=200"`
	Items          []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"omitempty"`
	Quantity    string           `json:"quantity" validate:"omitempty,max=50"`
	Unit        string           `json:"unit" validate:"omitempty,max=50"`
	Terms       ItemTermsRequest `json:"terms"`
}

// ItemTermsRequest carries the buyer's opening values per term type.
// Empty fields create no term row.
type ItemTermsRequest struct {
	Price            string `json:"price"`
	QuotedPrice      string `json:"quotedPrice"`
	PaymentTerms     string `json:"paymentTerms"`
	Freight          string `json:"freight"`
	DeliverySchedule string `json:"deliverySchedule"`
	Warranty         string `json:"warranty"`
	LDClause         string `json:"ldClause"`
}

type PostMessageRequest struct {
	Content string      `json:"content" validate:"required"`
	Role    MessageRole `json:"role" validate:"required,oneof=BUYER SUPPLIER AI_BOT"`
}

// RequestReplyRequest asks the reply generator for the next AI turn in
// response to the supplier's latest message
type RequestReplyRequest struct {
	Message string `json:"message" validate:"required"`
}

// UpdateTermValueRequest sets one of a term's mutable value slots
type UpdateTermValueRequest struct {
	Value string `json:"value" validate:"required,max=500"`
}

type TypingRequest struct {
	User     string `json:"user" validate:"required,max=200"`
	IsTyping bool   `json:"isTyping"`
}
