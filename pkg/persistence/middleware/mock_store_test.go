package middleware_test

import (
	"context"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It exposes its data so tests can inspect and tamper with what is at rest.
type MockStore struct {
	data map[string][]domain.Turn
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]domain.Turn),
	}
}

func (s *MockStore) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	s.data[sessionID] = append(s.data[sessionID], turn)
	return nil
}

func (s *MockStore) Load(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	turns, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MockStore) Close() error {
	return nil
}

var _ ports.TranscriptStore = (*MockStore)(nil)
