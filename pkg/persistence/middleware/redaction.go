package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
)

// DigitsPattern matches every run of digits, optionally grouped with '.' or ','.
const DigitsPattern = `\d+(?:[.,]\d+)*`

const mask = "***"

type redactionMiddleware struct {
	next     ports.TranscriptStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks text matching the patterns
// in loaded transcripts. Stored data is never modified.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	return m.next.Append(ctx, sessionID, turn)
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	turns, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	masked := make([]domain.Turn, len(turns))
	for i, turn := range turns {
		for _, p := range m.patterns {
			turn.Text = p.ReplaceAllString(turn.Text, mask)
		}
		masked[i] = turn
	}
	return masked, nil
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) Close() error {
	return m.next.Close()
}
