package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/memory"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/persistence/middleware"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.TranscriptStore, active []byte, fallback ...[]byte) ports.TranscriptStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunTranscriptStoreContract(t, encrypted(t, memory.NewStore(), generateKey(t)))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := encrypted(t, underlyingStore, generateKey(t))

	ctx := context.Background()
	sessionID := "test-session"
	at := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, secureStore.Append(ctx, sessionID, domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "tengo 25 años", At: at}))

	// At rest only the envelope is visible.
	stored, err := underlyingStore.Load(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.RoleSealed, stored[0].Role)
	assert.Equal(t, 1, stored[0].Seq)
	assert.True(t, at.Equal(stored[0].At))
	assert.NotContains(t, stored[0].Text, "25")

	loaded, err := secureStore.Load(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, domain.RoleUser, loaded[0].Role)
	assert.Equal(t, "tengo 25 años", loaded[0].Text)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()
	sessionID := "rotation-session"

	secureStoreOld := encrypted(t, underlyingStore, oldKey)
	require.NoError(t, secureStoreOld.Append(ctx, sessionID, domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "old"}))

	secureStoreNew := encrypted(t, underlyingStore, newKey, oldKey)
	loaded, err := secureStoreNew.Load(ctx, sessionID)
	require.NoError(t, err, "Load with rotated key failed")
	assert.Equal(t, "old", loaded[0].Text)

	require.NoError(t, secureStoreNew.Append(ctx, sessionID, domain.Turn{Seq: 2, Role: domain.RoleAssistant, Text: "new"}))

	_, err = secureStoreOld.Load(ctx, sessionID)
	assert.Error(t, err, "Expected failure when loading new-key encryption with old-key middleware")
}

func TestEncryptionMiddleware_BindsSlot(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := encrypted(t, underlyingStore, generateKey(t))
	ctx := context.Background()

	require.NoError(t, secureStore.Append(ctx, "a", domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "25"}))
	require.NoError(t, secureStore.Append(ctx, "a", domain.Turn{Seq: 2, Role: domain.RoleUser, Text: "2020"}))

	t.Run("swapped seq", func(t *testing.T) {
		turns := underlyingStore.data["a"]
		swapped := []domain.Turn{turns[1], turns[0]}
		swapped[0].Seq, swapped[1].Seq = 1, 2
		underlyingStore.data["b"] = swapped

		_, err := secureStore.Load(ctx, "b")
		assert.Error(t, err)
	})

	t.Run("moved to other session", func(t *testing.T) {
		underlyingStore.data["c"] = underlyingStore.data["a"]
		_, err := secureStore.Load(ctx, "c")
		assert.Error(t, err)
	})
}

func TestEncryptionMiddleware_FailsSecureOnPlaintext(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := encrypted(t, underlyingStore, generateKey(t))
	ctx := context.Background()

	require.NoError(t, underlyingStore.Append(ctx, "plain", domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "25"}))

	_, err := secureStore.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_TamperedCiphertext(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := encrypted(t, underlyingStore, generateKey(t))
	ctx := context.Background()

	require.NoError(t, secureStore.Append(ctx, "s", domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "25"}))
	underlyingStore.data["s"][0].Text = "!!" + strings.Repeat("A", 10)

	_, err := secureStore.Load(ctx, "s")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_NotFoundPassesThrough(t *testing.T) {
	secureStore := encrypted(t, NewMockStore(), generateKey(t))
	_, err := secureStore.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}
