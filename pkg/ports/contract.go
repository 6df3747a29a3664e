package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTranscriptStoreContract runs a suite of tests to verify that a TranscriptStore
// implementation adheres to the defined interface contract.
func RunTranscriptStoreContract(t *testing.T, store TranscriptStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405.000000000")

	t.Run("Append and Load", func(t *testing.T) {
		base := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
		want := make([]domain.Turn, 0, 6)
		for i := 1; i <= 6; i++ {
			role := domain.RoleAssistant
			if i%2 == 0 {
				role = domain.RoleUser
			}
			turn := domain.Turn{
				Seq:  i,
				Role: role,
				Text: fmt.Sprintf("turn %d: ¿cuántos kilómetros? 45.000 km", i),
				At:   base.Add(time.Duration(i) * time.Second),
			}
			require.NoError(t, store.Append(ctx, sessionID, turn), "Append should not return error")
			want = append(want, turn)
		}

		got, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Seq, got[i].Seq)
			assert.Equal(t, want[i].Role, got[i].Role)
			assert.Equal(t, want[i].Text, got[i].Text)
			assert.True(t, want[i].At.Equal(got[i].At), "timestamp of turn %d", want[i].Seq)
		}
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Sessions Are Isolated", func(t *testing.T) {
		other := sessionID + "-other"
		require.NoError(t, store.Append(ctx, other, domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "solo", At: time.Now().UTC()}))

		got, err := store.Load(ctx, other)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "solo", got[0].Text)

		first, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, first, 6)
	})

	t.Run("List", func(t *testing.T) {
		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, sessionID)
		assert.Contains(t, sessions, sessionID+"-other")
	})
}
