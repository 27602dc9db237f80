package service_test

import (
	"context"
	"testing"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstTerm(t *testing.T, resp *domain.CreateNegotiationResponse) domain.TermDTO {
	t.Helper()
	require.NotEmpty(t, resp.Negotiation.Items)
	require.NotEmpty(t, resp.Negotiation.Items[0].Terms)
	return resp.Negotiation.Items[0].Terms[0]
}

func TestTermService_UpdateQuoted(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created := createTestNegotiation(t, env)
	term := firstTerm(t, created)

	updated, err := env.terms.UpdateQuoted(ctx, term.ID, "47.00")
	require.NoError(t, err)
	assert.Equal(t, "47.00", updated.QuotedValue)
	assert.Equal(t, term.TargetValue, updated.TargetValue, "target must not move")

	// quoted values may be revised
	updated, err = env.terms.UpdateQuoted(ctx, term.ID, "45.00")
	require.NoError(t, err)
	assert.Equal(t, "45.00", updated.QuotedValue)
}

func TestTermService_UpdateCurrent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created := createTestNegotiation(t, env)
	term := firstTerm(t, created)

	updated, err := env.terms.UpdateCurrent(ctx, term.ID, "44.25")
	require.NoError(t, err)
	assert.Equal(t, "44.25", updated.CurrentValue)
}

func TestTermService_UpdateAgreed(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("first write sticks", func(t *testing.T) {
		created := createTestNegotiation(t, env)
		term := firstTerm(t, created)

		updated, err := env.terms.UpdateAgreed(ctx, term.ID, "43.00")
		require.NoError(t, err)
		assert.Equal(t, "43.00", updated.AgreedValue)
	})

	t.Run("second write is a conflict", func(t *testing.T) {
		created := createTestNegotiation(t, env)
		term := firstTerm(t, created)

		_, err := env.terms.UpdateAgreed(ctx, term.ID, "43.00")
		require.NoError(t, err)

		_, err = env.terms.UpdateAgreed(ctx, term.ID, "40.00")
		assert.ErrorIs(t, err, service.ErrAgreedValueSet)

		// the original agreement survives
		got, err := env.negotiations.GetByLink(ctx, created.UniqueLink)
		require.NoError(t, err)
		assert.Equal(t, "43.00", got.Items[0].Terms[0].AgreedValue)
	})
}

func TestTermService_ConcludedNegotiationLocksTerms(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created := createTestNegotiation(t, env)
	term := firstTerm(t, created)

	_, err := env.negotiations.Conclude(ctx, created.UniqueLink)
	require.NoError(t, err)

	_, err = env.terms.UpdateQuoted(ctx, term.ID, "50.00")
	assert.ErrorIs(t, err, service.ErrNegotiationConcluded)

	_, err = env.terms.UpdateCurrent(ctx, term.ID, "50.00")
	assert.ErrorIs(t, err, service.ErrNegotiationConcluded)

	_, err = env.terms.UpdateAgreed(ctx, term.ID, "50.00")
	assert.ErrorIs(t, err, service.ErrNegotiationConcluded)
}

func TestTermService_NotFound(t *testing.T) {
	env := setupEnv(t)
	_, err := env.terms.UpdateQuoted(context.Background(), uuid.New(), "1")
	assert.ErrorIs(t, err, service.ErrTermNotFound)
}
