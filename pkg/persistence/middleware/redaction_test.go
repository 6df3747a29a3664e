package middleware_test

import (
	"context"
	"testing"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_MasksOnLoad(t *testing.T) {
	underlyingStore := NewMockStore()
	mw, err := middleware.NewRedactionMiddleware([]string{middleware.DigitsPattern})
	require.NoError(t, err)
	store := mw(underlyingStore)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s", domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "unos 45.000 km, del 2020"}))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "unos *** km, del ***", loaded[0].Text)

	// Data at rest is untouched.
	raw, err := underlyingStore.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "unos 45.000 km, del 2020", raw[0].Text)
}

func TestRedactionMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewRedactionMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	underlyingStore := NewMockStore()
	redact, err := middleware.NewRedactionMiddleware([]string{middleware.DigitsPattern})
	require.NoError(t, err)
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlyingStore, redact, encrypt)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "s", domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "25"}))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded[0].Text)
	assert.Equal(t, domain.RoleSealed, underlyingStore.data["s"][0].Role)
}
