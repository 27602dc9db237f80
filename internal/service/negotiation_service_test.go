package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiationService_Create(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("creates the full graph atomically", func(t *testing.T) {
		resp := createTestNegotiation(t, env)

		assert.NotEmpty(t, resp.UniqueLink)
		_, err := uuid.Parse(resp.UniqueLink)
		assert.NoError(t, err, "link token should be a UUID")

		n := resp.Negotiation
		assert.Equal(t, domain.NegotiationStatusActive, n.Status)
		assert.Equal(t, "USD", n.Currency)
		assert.Nil(t, n.ConcludedAt)
		require.Len(t, n.Suppliers, 1)
		require.Len(t, n.Items, 1)
		assert.Equal(t, "Apex Metals", n.Items[0].SupplierName)
		// three non-empty term fields, all item-scoped
		assert.Len(t, n.Items[0].Terms, 3)
		assert.Empty(t, n.Terms)
		assert.Empty(t, n.Messages)
	})

	t.Run("keeps explicit currency", func(t *testing.T) {
		req := testCreateRequest()
		req.Currency = "EUR"
		resp, err := env.negotiations.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "EUR", resp.Negotiation.Currency)
	})

	t.Run("term rows carry target values only", func(t *testing.T) {
		resp := createTestNegotiation(t, env)
		for _, term := range resp.Negotiation.Items[0].Terms {
			assert.NotEmpty(t, term.TargetValue)
			assert.Empty(t, term.QuotedValue)
			assert.Empty(t, term.AgreedValue)
			require.NotNil(t, term.ItemID)
			assert.Equal(t, resp.Negotiation.Items[0].ID, *term.ItemID)
		}
	})
}

func TestNegotiationService_GetByLink(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("returns the negotiation", func(t *testing.T) {
		created := createTestNegotiation(t, env)
		got, err := env.negotiations.GetByLink(ctx, created.UniqueLink)
		require.NoError(t, err)
		assert.Equal(t, created.Negotiation.ID, got.ID)
	})

	t.Run("unknown link is not found", func(t *testing.T) {
		_, err := env.negotiations.GetByLink(ctx, uuid.New().String())
		assert.ErrorIs(t, err, service.ErrNegotiationNotFound)
	})
}

func TestNegotiationService_List(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	first := createTestNegotiation(t, env)
	second := createTestNegotiation(t, env)

	list, err := env.negotiations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	ids := []uuid.UUID{list[0].ID, list[1].ID}
	assert.Contains(t, ids, first.Negotiation.ID)
	assert.Contains(t, ids, second.Negotiation.ID)
}

func TestNegotiationService_Conclude(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("transitions and appends the terminal message", func(t *testing.T) {
		created := createTestNegotiation(t, env)

		sub := env.hub.Subscribe(realtime.Room(created.Negotiation.ID))
		defer env.hub.Unsubscribe(sub)

		resp, err := env.negotiations.Conclude(ctx, created.UniqueLink)
		require.NoError(t, err)

		assert.Equal(t, domain.NegotiationStatusConcluded, resp.Negotiation.Status)
		require.NotNil(t, resp.Negotiation.ConcludedAt)
		assert.Equal(t, domain.RoleSystem, resp.Message.Role)
		assert.Equal(t, service.ConcludedSystemMessage, resp.Message.Content)
		require.Len(t, resp.Negotiation.Messages, 1)

		// both relay events must have been published
		names := []string{(<-sub.C).Name, (<-sub.C).Name}
		assert.Contains(t, names, realtime.EventNewMessage)
		assert.Contains(t, names, realtime.EventStatusChanged)
	})

	t.Run("concluding twice is a conflict", func(t *testing.T) {
		created := createTestNegotiation(t, env)
		_, err := env.negotiations.Conclude(ctx, created.UniqueLink)
		require.NoError(t, err)

		_, err = env.negotiations.Conclude(ctx, created.UniqueLink)
		assert.ErrorIs(t, err, service.ErrAlreadyConcluded)
	})

	t.Run("unknown link is not found", func(t *testing.T) {
		_, err := env.negotiations.Conclude(ctx, "no-such-link")
		assert.ErrorIs(t, err, service.ErrNegotiationNotFound)
	})
}

func TestNegotiationService_ExportSummary(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("renders the settlement document", func(t *testing.T) {
		created := createTestNegotiation(t, env)

		_, err := env.messages.Post(ctx, created.UniqueLink, &domain.PostMessageRequest{
			Content: "We can offer 45.00 per meter.",
			Role:    domain.RoleSupplier,
		})
		require.NoError(t, err)

		var buf bytes.Buffer
		filename, err := env.negotiations.ExportSummary(ctx, created.UniqueLink, &buf)
		require.NoError(t, err)

		assert.Equal(t, "steel-pipe-procurement-summary.html", filename)
		html := buf.String()
		assert.Contains(t, html, "Steel Pipe Procurement")
		assert.Contains(t, html, "Apex Metals")
		assert.Contains(t, html, "Price Summary")
		assert.Contains(t, html, "We can offer 45.00 per meter.")
		assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	})

	t.Run("unknown link is not found", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := env.negotiations.ExportSummary(ctx, "missing", &buf)
		assert.ErrorIs(t, err, service.ErrNegotiationNotFound)
	})
}

func TestNegotiationService_Typing(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created := createTestNegotiation(t, env)
	sub := env.hub.Subscribe(realtime.Room(created.Negotiation.ID))
	defer env.hub.Unsubscribe(sub)

	err := env.negotiations.Typing(ctx, created.UniqueLink, &domain.TypingRequest{
		User:     "Kim Larsen",
		IsTyping: true,
	})
	require.NoError(t, err)

	event := <-sub.C
	assert.Equal(t, realtime.EventUserTyping, event.Name)
	payload, ok := event.Data.(domain.TypingEvent)
	require.True(t, ok)
	assert.Equal(t, "Kim Larsen", payload.User)
	assert.True(t, payload.IsTyping)
}

func TestNegotiationService_ResetAll(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created := createTestNegotiation(t, env)
	_, err := env.messages.Post(ctx, created.UniqueLink, &domain.PostMessageRequest{
		Content: "hello",
		Role:    domain.RoleBuyer,
	})
	require.NoError(t, err)

	require.NoError(t, env.negotiations.ResetAll(ctx))

	list, err := env.negotiations.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, model := range []interface{}{
		&domain.Supplier{}, &domain.Item{}, &domain.Term{}, &domain.Message{},
	} {
		var count int64
		require.NoError(t, env.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}
