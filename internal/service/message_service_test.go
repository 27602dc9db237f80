package service_test

import (
	"context"
	"testing"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_Post(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("appends and relays", func(t *testing.T) {
		created := createTestNegotiation(t, env)
		sub := env.hub.Subscribe(realtime.Room(created.Negotiation.ID))
		defer env.hub.Unsubscribe(sub)

		msg, err := env.messages.Post(ctx, created.UniqueLink, &domain.PostMessageRequest{
			Content: "Our target is 42.50 per meter.",
			Role:    domain.RoleBuyer,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleBuyer, msg.Role)
		assert.Equal(t, created.Negotiation.ID, msg.NegotiationID)
		assert.NotEmpty(t, msg.Timestamp)

		event := <-sub.C
		assert.Equal(t, realtime.EventNewMessage, event.Name)
		relayed, ok := event.Data.(domain.MessageDTO)
		require.True(t, ok)
		assert.Equal(t, msg.ID, relayed.ID)
	})

	t.Run("system role is reserved", func(t *testing.T) {
		created := createTestNegotiation(t, env)
		_, err := env.messages.Post(ctx, created.UniqueLink, &domain.PostMessageRequest{
			Content: "fake terminal message",
			Role:    domain.RoleSystem,
		})
		assert.ErrorIs(t, err, service.ErrInvalidRole)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		created := createTestNegotiation(t, env)
		_, err := env.messages.Post(ctx, created.UniqueLink, &domain.PostMessageRequest{
			Content: "hello",
			Role:    domain.MessageRole("OBSERVER"),
		})
		assert.ErrorIs(t, err, service.ErrInvalidRole)
	})

	t.Run("concluded negotiation rejects messages", func(t *testing.T) {
		created := createTestNegotiation(t, env)
		_, err := env.negotiations.Conclude(ctx, created.UniqueLink)
		require.NoError(t, err)

		_, err = env.messages.Post(ctx, created.UniqueLink, &domain.PostMessageRequest{
			Content: "one more thing",
			Role:    domain.RoleSupplier,
		})
		assert.ErrorIs(t, err, service.ErrNegotiationConcluded)
	})

	t.Run("unknown link is not found", func(t *testing.T) {
		_, err := env.messages.Post(ctx, "missing", &domain.PostMessageRequest{
			Content: "hello",
			Role:    domain.RoleBuyer,
		})
		assert.ErrorIs(t, err, service.ErrNegotiationNotFound)
	})
}

func TestMessageService_List(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created := createTestNegotiation(t, env)
	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		_, err := env.messages.Post(ctx, created.UniqueLink, &domain.PostMessageRequest{
			Content: c,
			Role:    domain.RoleBuyer,
		})
		require.NoError(t, err)
	}

	messages, err := env.messages.List(ctx, created.UniqueLink)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, c := range contents {
		assert.Equal(t, c, messages[i].Content, "log must stay in append order")
	}
}
