package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
	"github.com/MatiasV55/eligibility-chatbot/internal/logging"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// DefaultExitText is sent on behalf of the user when input ends.
const DefaultExitText = "salir"

// Conversation is the subset of chatbot.Bot the runner drives.
type Conversation interface {
	Start(ctx context.Context, sessionID string) (*domain.Session, chatbot.Reply, error)
	Resume(ctx context.Context, sessionID string) (*domain.Session, chatbot.Reply, error)
	Send(ctx context.Context, s *domain.Session, text string) (chatbot.Reply, error)
}

// Runner handles the conversation loop using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Renderer is applied by the default TextHandler.
	Renderer ContentRenderer

	// ExitText is sent when the handler reports io.EOF.
	ExitText string
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:   logging.NewNop(),
		ExitText: DefaultExitText,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run shows opening and then reads, sends and prints until a final reply.
// End of input is treated as the user typing the exit word.
// Invariant errors from the conversation are returned unchanged.
func (r *Runner) Run(ctx context.Context, bot Conversation, s *domain.Session, opening chatbot.Reply) error {
	handler := r.resolveHandler()

	if err := handler.Output(ctx, opening); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	if opening.Final() {
		return nil
	}

	for {
		text, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.Logger.Debug("input closed, ending session", "session_id", s.ID)
				text = r.ExitText
			} else if ctx.Err() != nil {
				return ctx.Err()
			} else {
				return fmt.Errorf("input error: %w", err)
			}
		}

		reply, err := bot.Send(ctx, s, text)
		if err != nil {
			return err
		}
		r.Logger.Debug("turn processed", "session_id", s.ID, "kind", reply.Outcome.Kind, "state", s.State())

		if err := handler.Output(ctx, reply); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
		if reply.Final() {
			return nil
		}
	}
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	var opts []TextHandlerOption
	if r.Renderer != nil {
		opts = append(opts, WithTextHandlerRenderer(r.Renderer))
	}
	r.Handler = NewTextHandler(os.Stdin, os.Stdout, opts...)
	return r.Handler
}
