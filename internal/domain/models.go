package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID primary key when none is set.
// IDs are generated application-side so the same models work on
// both PostgreSQL and SQLite.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// NegotiationStatus represents the lifecycle state of a negotiation
type NegotiationStatus string

const (
	NegotiationStatusActive    NegotiationStatus = "ACTIVE"
	NegotiationStatusConcluded NegotiationStatus = "CONCLUDED"
)

// MessageRole identifies the speaker of a chat message
type MessageRole string

const (
	RoleBuyer    MessageRole = "BUYER"
	RoleSupplier MessageRole = "SUPPLIER"
	RoleAIBot    MessageRole = "AI_BOT"
	RoleSystem   MessageRole = "SYSTEM"
)

// IsValid checks if the MessageRole is a valid enum value
func (r MessageRole) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSupplier, RoleAIBot, RoleSystem:
		return true
	}
	return false
}

// Display returns the role with underscores replaced for human-readable output
func (r MessageRole) Display() string {
	if r == RoleAIBot {
		return "AI BOT"
	}
	return string(r)
}

// TermType enumerates the negotiable term categories
type TermType string

const (
	TermTypePrice            TermType = "PRICE"
	TermTypeQuotedPrice      TermType = "QUOTED_PRICE"
	TermTypePaymentTerms     TermType = "PAYMENT_TERMS"
	TermTypeFreight          TermType = "FREIGHT"
	TermTypeDeliverySchedule TermType = "DELIVERY_SCHEDULE"
	TermTypeWarranty         TermType = "WARRANTY"
	TermTypeLDClause         TermType = "LD_CLAUSE"
)

// IsValid checks if the TermType is a valid enum value
func (t TermType) IsValid() bool {
	switch t {
	case TermTypePrice, TermTypeQuotedPrice, TermTypePaymentTerms, TermTypeFreight,
		TermTypeDeliverySchedule, TermTypeWarranty, TermTypeLDClause:
		return true
	}
	return false
}

// Negotiation is the top-level unit of work: one buyer against one or more
// suppliers over one or more items. Access is via the unguessable UniqueLink.
type Negotiation struct {
	BaseModel
	UniqueLink  string            `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name        string            `gorm:"type:varchar(200);not null"`
	BuyerName   string            `gorm:"type:varchar(200);not null;column:buyer_name"`
	CompanyName string            `gorm:"type:varchar(200);not null;column:company_name"`
	Currency    string            `gorm:"type:varchar(10);not null;default:'USD'"`
	Status      NegotiationStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	ConcludedAt *time.Time        `gorm:"column:concluded_at"`
	Suppliers   []Supplier        `gorm:"foreignKey:NegotiationID;constraint:OnDelete:CASCADE"`
	Items       []Item            `gorm:"foreignKey:NegotiationID;constraint:OnDelete:CASCADE"`
	Terms       []Term            `gorm:"foreignKey:NegotiationID;constraint:OnDelete:CASCADE"`
	Messages    []Message         `gorm:"foreignKey:NegotiationID;constraint:OnDelete:CASCADE"`
}

// IsConcluded reports whether the negotiation has reached its terminal state
func (n *Negotiation) IsConcluded() bool {
	return n.Status == NegotiationStatusConcluded
}

// Supplier is a counterparty in exactly one negotiation
type Supplier struct {
	BaseModel
	NegotiationID  uuid.UUID `gorm:"type:uuid;not null;index;column:negotiation_id"`
	Name           string    `gorm:"type:varchar(200);not null"`
	Email          string    `gorm:"type:varchar(255)"`
	Representative string    `gorm:"type:varchar(200)"`
	Items          []Item    `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
}

// Item is a procurement line belonging to one negotiation and one supplier
type Item struct {
	BaseModel
	NegotiationID uuid.UUID `gorm:"type:uuid;not null;index;column:negotiation_id"`
	SupplierID    uuid.UUID `gorm:"type:uuid;not null;index;column:supplier_id"`
	Name          string    `gorm:"type:varchar(200);not null"`
	Description   string    `gorm:"type:text"`
	Quantity      string    `gorm:"type:varchar(50)"`
	Unit          string    `gorm:"type:varchar(50)"`
	Supplier      *Supplier `gorm:"foreignKey:SupplierID"`
	Terms         []Term    `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// Term is a single negotiable attribute. TargetValue is the buyer's ask,
// QuotedValue the supplier's ask, CurrentValue the working value, and
// AgreedValue the final value. AgreedValue is write-once.
type Term struct {
	BaseModel
	NegotiationID uuid.UUID  `gorm:"type:uuid;not null;index;column:negotiation_id"`
	ItemID        *uuid.UUID `gorm:"type:uuid;index;column:item_id"`
	TermType      TermType   `gorm:"type:varchar(50);not null;index;column:term_type"`
	TargetValue   string     `gorm:"type:varchar(500);not null;column:target_value"`
	QuotedValue   string     `gorm:"type:varchar(500);column:quoted_value"`
	CurrentValue  string     `gorm:"type:varchar(500);column:current_value"`
	AgreedValue   string     `gorm:"type:varchar(500);column:agreed_value"`
}

// Message is one chat turn in a negotiation. The log is append-only;
// messages are never edited or deleted.
type Message struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey"`
	NegotiationID uuid.UUID   `gorm:"type:uuid;not null;index;column:negotiation_id"`
	Content       string      `gorm:"type:text;not null"`
	Role          MessageRole `gorm:"type:varchar(20);not null"`
	Timestamp     time.Time   `gorm:"not null;index"`
}

// BeforeCreate assigns the ID and the persisted timestamp. Timestamps
// reflect write order, not request arrival order.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
