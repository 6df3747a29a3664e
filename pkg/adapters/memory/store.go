package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// Store implements ports.TranscriptStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]domain.Turn
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]domain.Turn),
	}
}

// Append adds a turn to the session transcript.
func (s *Store) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = append(s.data[sessionID], turn)
	return nil
}

// Load returns a copy of the transcript so callers can't mutate store state.
func (s *Store) Load(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	ret := slices.Clone(turns)
	slices.SortStableFunc(ret, func(a, b domain.Turn) int { return cmp.Compare(a.Seq, b.Seq) })
	return ret, nil
}

// List returns stored sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.data)), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
