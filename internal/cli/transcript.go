package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/internal/config"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/persistence/keyring"
	"github.com/MatiasV55/eligibility-chatbot/pkg/persistence/middleware"
)

// TranscriptOptions contains the flag values of the transcript commands.
type TranscriptOptions struct {
	Redact bool
	JSON   bool
}

// ListTranscripts prints the stored session ids, one per line.
func ListTranscripts(ctx context.Context, cfg config.Config, w io.Writer) error {
	logger := createLogger(cfg, false)
	backend, err := openBackend(cfg.Store)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
	defer cancel()
	ids, err := backend.List(ctx)
	if err != nil {
		return fmt.Errorf("list transcripts: %w", err)
	}
	logger.Debug("transcripts listed", "count", len(ids))

	if len(ids) == 0 {
		fmt.Fprintln(w, "No hay conversaciones guardadas.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

// ShowTranscript decrypts and prints one transcript.
func ShowTranscript(ctx context.Context, cfg config.Config, w io.Writer, sessionID string, opts TranscriptOptions) error {
	logger := createLogger(cfg, false)

	var extra []middleware.Middleware
	if opts.Redact {
		redact, err := middleware.NewRedactionMiddleware([]string{middleware.DigitsPattern})
		if err != nil {
			return err
		}
		extra = append(extra, redact)
	}

	p, err := setupPersistence(ctx, cfg.Store, logger, persistenceOptions{readOnly: true, extra: extra})
	if err != nil {
		if errors.Is(err, keyring.ErrKeyMissing) {
			return fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionNotFound)
		}
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
	defer cancel()
	turns, err := p.Store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(turns)
	}
	for _, t := range turns {
		fmt.Fprintf(w, "%3d  %s  %-9s  %s\n", t.Seq, t.At.Local().Format(time.DateTime), t.Role, t.Text)
	}
	return nil
}
