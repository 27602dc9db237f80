package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/repository"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGenerator scripts the reply generator and records the prompt context
// it was handed
type stubGenerator struct {
	reply string
	err   error
	seen  []domain.PromptContext
}

func (g *stubGenerator) Propose(ctx context.Context, pc domain.PromptContext) (string, error) {
	g.seen = append(g.seen, pc)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func newReplyService(env *testEnv, gen service.ReplyGenerator) *service.ReplyService {
	return service.NewReplyService(
		repository.NewNegotiationRepository(env.db),
		repository.NewMessageRepository(env.db),
		gen,
		env.hub,
		zap.NewNop(),
	)
}

func TestReplyService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and relays the generated reply", func(t *testing.T) {
		env := setupEnv(t)
		created := createTestNegotiation(t, env)
		gen := &stubGenerator{reply: "We hold at 42.50 with Net 45 payment."}
		svc := newReplyService(env, gen)

		sub := env.hub.Subscribe(realtime.Room(created.Negotiation.ID))
		defer env.hub.Unsubscribe(sub)

		msg, err := svc.Generate(ctx, created.UniqueLink, &domain.RequestReplyRequest{
			Message: "Can you move on price?",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAIBot, msg.Role)
		assert.Equal(t, "We hold at 42.50 with Net 45 payment.", msg.Content)

		event := <-sub.C
		assert.Equal(t, realtime.EventNewMessage, event.Name)
	})

	t.Run("strips markdown emphasis from replies", func(t *testing.T) {
		env := setupEnv(t)
		created := createTestNegotiation(t, env)
		gen := &stubGenerator{reply: "  **Final offer**: *42.50* per meter. "}
		svc := newReplyService(env, gen)

		msg, err := svc.Generate(ctx, created.UniqueLink, &domain.RequestReplyRequest{Message: "price?"})
		require.NoError(t, err)
		assert.Equal(t, "Final offer: 42.50 per meter.", msg.Content)
	})

	t.Run("generator failure degrades to the fallback", func(t *testing.T) {
		env := setupEnv(t)
		created := createTestNegotiation(t, env)
		gen := &stubGenerator{err: errors.New("rate limited")}
		svc := newReplyService(env, gen)

		msg, err := svc.Generate(ctx, created.UniqueLink, &domain.RequestReplyRequest{Message: "price?"})
		require.NoError(t, err, "generator failures must not surface")
		assert.Equal(t, service.FallbackReply, msg.Content)
		assert.Equal(t, domain.RoleAIBot, msg.Role)
	})

	t.Run("blank generator output degrades to the fallback", func(t *testing.T) {
		env := setupEnv(t)
		created := createTestNegotiation(t, env)
		gen := &stubGenerator{reply: "  ***  "}
		svc := newReplyService(env, gen)

		msg, err := svc.Generate(ctx, created.UniqueLink, &domain.RequestReplyRequest{Message: "price?"})
		require.NoError(t, err)
		assert.Equal(t, service.FallbackReply, msg.Content)
	})

	t.Run("concluded negotiation rejects reply requests", func(t *testing.T) {
		env := setupEnv(t)
		created := createTestNegotiation(t, env)
		_, err := env.negotiations.Conclude(ctx, created.UniqueLink)
		require.NoError(t, err)

		svc := newReplyService(env, &stubGenerator{reply: "hi"})
		_, err = svc.Generate(ctx, created.UniqueLink, &domain.RequestReplyRequest{Message: "hello?"})
		assert.ErrorIs(t, err, service.ErrNegotiationConcluded)
	})

	t.Run("unknown link is not found", func(t *testing.T) {
		env := setupEnv(t)
		svc := newReplyService(env, &stubGenerator{reply: "hi"})
		_, err := svc.Generate(ctx, "missing", &domain.RequestReplyRequest{Message: "hello?"})
		assert.ErrorIs(t, err, service.ErrNegotiationNotFound)
	})
}

func TestReplyService_PromptContext(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	created := createTestNegotiation(t, env)
	gen := &stubGenerator{reply: "noted"}
	svc := newReplyService(env, gen)

	// seed a conversation longer than the context window
	for i := 0; i < 12; i++ {
		_, err := env.messages.Post(ctx, created.UniqueLink, &domain.PostMessageRequest{
			Content: fmt.Sprintf("turn %d", i),
			Role:    domain.RoleSupplier,
		})
		require.NoError(t, err)
	}

	_, err := svc.Generate(ctx, created.UniqueLink, &domain.RequestReplyRequest{
		Message: "latest supplier position",
	})
	require.NoError(t, err)

	require.Len(t, gen.seen, 1)
	pc := gen.seen[0]

	assert.Equal(t, "Steel Pipe Procurement", pc.NegotiationName)
	assert.Equal(t, "Dana Reyes", pc.BuyerName)
	assert.Equal(t, "Northwind Industrial", pc.CompanyName)
	assert.Equal(t, "USD", pc.Currency)
	assert.Equal(t, "latest supplier position", pc.SupplierMessage)
	assert.Len(t, pc.Terms, 3)

	// window is capped at the last ten messages, in chronological order
	require.Len(t, pc.RecentMessages, 10)
	assert.Equal(t, "turn 2", pc.RecentMessages[0].Content)
	assert.Equal(t, "turn 11", pc.RecentMessages[9].Content)

	assert.Equal(t, 12, pc.MessageCount)
	assert.False(t, pc.EarlyStage())
}

func TestPromptContext_EarlyStage(t *testing.T) {
	pc := domain.PromptContext{MessageCount: 6}
	assert.True(t, pc.EarlyStage())
	pc.MessageCount = 7
	assert.False(t, pc.EarlyStage())
}

func TestSanitizeReply(t *testing.T) {
	assert.Equal(t, "hold firm", service.SanitizeReply("**hold firm**"))
	assert.Equal(t, "", service.SanitizeReply("  **  "))
	assert.Equal(t, "a b", service.SanitizeReply("\n*a* *b*\t"))
}
