package mapper

import (
	"github.com/dealbridge/negotiation-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ToNegotiationDTO converts Negotiation to NegotiationDTO with its full graph
func ToNegotiationDTO(n *domain.Negotiation) domain.NegotiationDTO {
	dto := domain.NegotiationDTO{
		ID:          n.ID,
		UniqueLink:  n.UniqueLink,
		Name:        n.Name,
		BuyerName:   n.BuyerName,
		CompanyName: n.CompanyName,
		Currency:    n.Currency,
		Status:      n.Status,
		CreatedAt:   n.CreatedAt.UTC().Format(timeFormat),
		Suppliers:   make([]domain.SupplierDTO, 0, len(n.Suppliers)),
		Items:       make([]domain.ItemDTO, 0, len(n.Items)),
		Terms:       make([]domain.TermDTO, 0, len(n.Terms)),
		Messages:    make([]domain.MessageDTO, 0, len(n.Messages)),
	}

	if n.ConcludedAt != nil {
		concludedAt := n.ConcludedAt.UTC().Format(timeFormat)
		dto.ConcludedAt = &concludedAt
	}

	for i := range n.Suppliers {
		dto.Suppliers = append(dto.Suppliers, ToSupplierDTO(&n.Suppliers[i]))
	}
	for i := range n.Items {
		dto.Items = append(dto.Items, ToItemDTO(&n.Items[i]))
	}
	for i := range n.Terms {
		dto.Terms = append(dto.Terms, ToTermDTO(&n.Terms[i]))
	}
	for i := range n.Messages {
		dto.Messages = append(dto.Messages, ToMessageDTO(&n.Messages[i]))
	}

	return dto
}

// NegotiationsToDTO converts a slice of negotiations
func NegotiationsToDTO(negotiations []domain.Negotiation) []domain.NegotiationDTO {
	dtos := make([]domain.NegotiationDTO, 0, len(negotiations))
	for i := range negotiations {
		dtos = append(dtos, ToNegotiationDTO(&negotiations[i]))
	}
	return dtos
}

// ToSupplierDTO converts Supplier to SupplierDTO
func ToSupplierDTO(s *domain.Supplier) domain.SupplierDTO {
	return domain.SupplierDTO{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		Representative: s.Representative,
		CreatedAt:      s.CreatedAt.UTC().Format(timeFormat),
	}
}

// ToItemDTO converts Item to ItemDTO including its terms
func ToItemDTO(item *domain.Item) domain.ItemDTO {
	dto := domain.ItemDTO{
		ID:          item.ID,
		SupplierID:  item.SupplierID,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		Terms:       make([]domain.TermDTO, 0, len(item.Terms)),
		CreatedAt:   item.CreatedAt.UTC().Format(timeFormat),
	}

	if item.Supplier != nil {
		dto.SupplierName = item.Supplier.Name
	}

	for i := range item.Terms {
		dto.Terms = append(dto.Terms, ToTermDTO(&item.Terms[i]))
	}

	return dto
}

// ToTermDTO converts Term to TermDTO
func ToTermDTO(t *domain.Term) domain.TermDTO {
	return domain.TermDTO{
		ID:           t.ID,
		ItemID:       t.ItemID,
		TermType:     t.TermType,
		TargetValue:  t.TargetValue,
		QuotedValue:  t.QuotedValue,
		CurrentValue: t.CurrentValue,
		AgreedValue:  t.AgreedValue,
	}
}

// ToMessageDTO converts Message to MessageDTO
func ToMessageDTO(m *domain.Message) domain.MessageDTO {
	return domain.MessageDTO{
		ID:            m.ID,
		NegotiationID: m.NegotiationID,
		Content:       m.Content,
		Role:          m.Role,
		Timestamp:     m.Timestamp.UTC().Format(timeFormat),
	}
}
