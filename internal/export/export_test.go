package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/export"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNegotiation() *domain.Negotiation {
	negotiationID := uuid.New()
	supplierID := uuid.New()
	itemID := uuid.New()
	concluded := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)

	return &domain.Negotiation{
		BaseModel:   domain.BaseModel{ID: negotiationID, CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		UniqueLink:  uuid.New().String(),
		Name:        "Valve Procurement Q1",
		BuyerName:   "Dana Reyes",
		CompanyName: "Northwind Industrial",
		Currency:    "EUR",
		Status:      domain.NegotiationStatusConcluded,
		ConcludedAt: &concluded,
		Suppliers: []domain.Supplier{
			{
				BaseModel:      domain.BaseModel{ID: supplierID},
				NegotiationID:  negotiationID,
				Name:           "Apex Metals",
				Email:          "sales@apexmetals.example",
				Representative: "Kim Larsen",
			},
		},
		Items: []domain.Item{
			{
				BaseModel:     domain.BaseModel{ID: itemID},
				NegotiationID: negotiationID,
				SupplierID:    supplierID,
				Name:          "Gate valve DN100",
				Quantity:      "40",
				Unit:          "pcs",
				Terms: []domain.Term{
					{
						BaseModel:     domain.BaseModel{ID: uuid.New()},
						NegotiationID: negotiationID,
						ItemID:        &itemID,
						TermType:      domain.TermTypePrice,
						TargetValue:   "120.00",
						QuotedValue:   "135.00",
						AgreedValue:   "127.50",
					},
					{
						BaseModel:     domain.BaseModel{ID: uuid.New()},
						NegotiationID: negotiationID,
						ItemID:        &itemID,
						TermType:      domain.TermTypeLDClause,
						TargetValue:   "0.5% per week",
					},
				},
			},
		},
		Messages: []domain.Message{
			{
				ID:            uuid.New(),
				NegotiationID: negotiationID,
				Content:       "We accept 127.50 per unit.",
				Role:          domain.RoleSupplier,
				Timestamp:     time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC),
			},
			{
				ID:            uuid.New(),
				NegotiationID: negotiationID,
				Content:       "This negotiation has been concluded. Thank you for your participation.",
				Role:          domain.RoleSystem,
				Timestamp:     concluded,
			},
		},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Render(&buf, sampleNegotiation()))
	html := buf.String()

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "Valve Procurement Q1")
	assert.Contains(t, html, "Dana Reyes")
	assert.Contains(t, html, "Northwind Industrial")
	assert.Contains(t, html, "CONCLUDED")

	// price summary built from PRICE terms
	assert.Contains(t, html, "Price Summary")
	assert.Contains(t, html, "127.50")
	assert.Contains(t, html, "135.00")

	// term ledger includes the humanized type labels
	assert.Contains(t, html, "LD Clause")
	assert.Contains(t, html, "0.5% per week")

	// transcript with displayed roles
	assert.Contains(t, html, "SUPPLIER")
	assert.Contains(t, html, "We accept 127.50 per unit.")
}

func TestRender_EscapesContent(t *testing.T) {
	n := sampleNegotiation()
	n.Messages[0].Content = `<script>alert("x")</script>`

	var buf bytes.Buffer
	require.NoError(t, export.Render(&buf, n))
	html := buf.String()

	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestFilename(t *testing.T) {
	n := sampleNegotiation()
	assert.Equal(t, "valve-procurement-q1-summary.html", export.Filename(n))

	n.Name = "  !!!  "
	assert.Equal(t, "negotiation-summary.html", export.Filename(n))

	n.Name = "Deal #42 / Phase_2"
	assert.Equal(t, "deal-42--phase-2-summary.html", export.Filename(n))
}
