package runner

import (
	"context"
	"errors"
	"fmt"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// SessionManager decides between resuming a stored session and starting a new one.
type SessionManager struct {
	Bot Conversation
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(bot Conversation) *SessionManager {
	return &SessionManager{Bot: bot}
}

// LoadOrStart resumes sessionID when it has a stored transcript, otherwise starts it.
// An empty id always starts a new session with a generated id.
// The boolean reports whether the session was resumed.
func (sm *SessionManager) LoadOrStart(ctx context.Context, sessionID string) (*domain.Session, chatbot.Reply, bool, error) {
	if sessionID != "" {
		s, reply, err := sm.Bot.Resume(ctx, sessionID)
		if err == nil {
			return s, reply, true, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, chatbot.Reply{}, false, fmt.Errorf("failed to resume session %s: %w", sessionID, err)
		}
	}

	s, reply, err := sm.Bot.Start(ctx, sessionID)
	if err != nil {
		return nil, chatbot.Reply{}, false, err
	}
	return s, reply, false, nil
}
