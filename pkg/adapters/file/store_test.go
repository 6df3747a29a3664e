package file_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/file"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunTranscriptStoreContract(t, store)
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "transcripts")
	store := file.New(dir)

	err := store.Append(context.Background(), "s1", domain.Turn{Seq: 1, Role: domain.RoleUser, Text: "hola", At: time.Now()})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "s1.json"))
	assert.NoError(t, err)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Append(ctx, "s1", domain.Turn{Seq: i, Role: domain.RoleUser, Text: "x"}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1.json", entries[0].Name())
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		err := store.Append(ctx, id, domain.Turn{Seq: 1})
		assert.ErrorIs(t, err, file.ErrInvalidSessionID, "id %q", id)
	}
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			assert.NoError(t, store.Append(ctx, "shared", domain.Turn{Seq: seq, Role: domain.RoleUser, Text: "x"}))
		}(i)
	}
	wg.Wait()

	turns, err := store.Load(ctx, "shared")
	require.NoError(t, err)
	require.Len(t, turns, 10)
	for i, turn := range turns {
		assert.Equal(t, i+1, turn.Seq)
	}
}

func TestFileStore_ListEmptyDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	sessions, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
