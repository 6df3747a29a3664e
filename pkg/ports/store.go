package ports

import (
	"context"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// TranscriptStore persists session transcripts.
// Append is the only mutation: turns are never edited or deleted through this interface.
type TranscriptStore interface {
	// Append adds a turn to the transcript of sessionID.
	Append(ctx context.Context, sessionID string, turn domain.Turn) error

	// Load returns the transcript of sessionID ordered by Seq.
	// Returns domain.ErrSessionNotFound if the session has no turns.
	Load(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// List returns the ids of all stored sessions.
	List(ctx context.Context) ([]string, error)

	// Close releases resources held by the store.
	Close() error
}
