package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/MatiasV55/eligibility-chatbot/internal/config"
	"github.com/MatiasV55/eligibility-chatbot/internal/logging"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// --debug wins over LOG_LEVEL. Output goes to Stderr so it never mixes with the conversation.
func createLogger(cfg config.Config, debug bool) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level, cfg.LogFormat)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.Debug("Transition", "session_id", e.SessionID, "from", e.From, "to", e.To)
		},
		OnClarify: func(ctx context.Context, e *domain.ClarifyEvent) {
			logger.Debug("Clarify", "session_id", e.SessionID, "fact", e.Fact, "reason", e.Reason)
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			logger.Debug("Verdict", "session_id", e.SessionID, "eligible", e.Verdict.Eligible, "reasons", e.Verdict.Reasons)
		},
		OnPersistFailure: func(ctx context.Context, e *domain.FailureEvent) {
			logger.Debug("Persist Failure", "session_id", e.SessionID, "err", e.Err)
		},
		OnRenderFallback: func(ctx context.Context, e *domain.FailureEvent) {
			logger.Debug("Render Fallback", "session_id", e.SessionID, "err", e.Err)
		},
	}
}

// isTerminal reports whether f is attached to a TTY.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(w io.Writer, sessionID string, err error, sig os.Signal) {
	if !isInterrupted(err) {
		return
	}
	// Aesthetic: the prompt is usually active, so append to it.
	if sig == os.Interrupt {
		fmt.Fprintf(w, "[CTRL+C]\n")
	} else {
		fmt.Fprintf(w, "\n")
	}
	printSystemMessage(w, "Conversación '%s' interrumpida. Puedes retomarla con --session %s", sessionID, sessionID)
}
