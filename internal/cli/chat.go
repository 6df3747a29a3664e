package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
	"github.com/MatiasV55/eligibility-chatbot/internal/config"
	"github.com/MatiasV55/eligibility-chatbot/internal/presentation/tui"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/observability"
	"github.com/MatiasV55/eligibility-chatbot/pkg/runner"
)

// ErrConversationFailed is returned after an unrecoverable error so the process exits non-zero.
var ErrConversationFailed = errors.New("conversation ended unexpectedly")

// apology replaces raw errors on the user's screen.
const apology = "Lo siento, ocurrió un error inesperado y la conversación terminó. Por favor, inténtalo más tarde."

// ChatOptions contains the flag values of the chat command.
type ChatOptions struct {
	SessionID string
	Debug     bool
	Plain     bool
	JSON      bool
	Quiet     bool

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o *ChatOptions) defaults() {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// RunChat runs one conversation until the verdict, an exit command or a signal.
func RunChat(ctx context.Context, cfg config.Config, opts ChatOptions) error {
	opts.defaults()
	logger := createLogger(cfg, opts.Debug)

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	p, err := setupPersistence(sigCtx, cfg.Store, logger, persistenceOptions{})
	if err != nil {
		return fmt.Errorf("failed to init persistence: %w", err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("failed to close persistence", "error", err)
		}
	}()

	metrics := observability.NewMetrics()
	hooks := metrics.Hooks()
	if opts.Debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}

	renderer, warning, err := buildRenderer(sigCtx, cfg, hooks, logger)
	if err != nil {
		return err
	}

	bot, err := chatbot.New(
		chatbot.WithStore(p.Store),
		chatbot.WithRenderer(renderer),
		chatbot.WithLifecycleHooks(hooks),
		chatbot.WithLogger(logger),
		chatbot.WithStoreTimeout(cfg.Store.Timeout),
	)
	if err != nil {
		return err
	}

	handler := createHandler(opts)
	if !opts.JSON && !opts.Quiet {
		tui.PrintBanner(opts.Stdout, chatbot.Version)
	}
	if warning != "" {
		_ = handler.SystemOutput(sigCtx, warning)
	}

	s, opening, loaded, err := runner.NewSessionManager(bot).LoadOrStart(sigCtx, opts.SessionID)
	if err != nil {
		logger.Error("failed to init session", "session_id", opts.SessionID, "error", err)
		return fmt.Errorf("failed to init session: %w", err)
	}
	if loaded && !opts.Quiet {
		_ = handler.SystemOutput(sigCtx, fmt.Sprintf("Retomando la conversación '%s'.", s.ID))
	}

	r := runner.NewRunner(runner.WithInputHandler(handler), runner.WithLogger(logger))

	srvCtx, stopServer := context.WithCancel(sigCtx)
	defer stopServer()
	g, gctx := errgroup.WithContext(srvCtx)
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			logger.Info("metrics server listening", "addr", cfg.MetricsAddr)
			return observability.Serve(gctx, cfg.MetricsAddr, observability.NewRouter(metrics))
		})
	}
	g.Go(func() error {
		defer stopServer()
		return r.Run(gctx, bot, s, opening)
	})
	runErr := g.Wait()

	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	switch {
	case runErr == nil:
		logger.Info("session finished", "session_id", s.ID, "state", s.State())
	case isInterrupted(runErr):
		if !opts.JSON {
			logCompletion(opts.Stdout, s.ID, runErr, sigCtx.Signal())
		}
	default:
		logger.Error("conversation failed", "session_id", s.ID, "invariant", errors.Is(runErr, domain.ErrInvariantViolation), "error", runErr)
		fmt.Fprintln(opts.Stdout, apology)
		return ErrConversationFailed
	}

	return handleExecutionError(runErr)
}

func createHandler(opts ChatOptions) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	}
	handlerOpts := []runner.TextHandlerOption{runner.WithNoticeWriter(opts.Stderr)}
	if f, ok := opts.Stdout.(*os.File); ok && !opts.Plain && isTerminal(f) {
		handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
	}
	return runner.NewTextHandler(opts.Stdin, opts.Stdout, handlerOpts...)
}
