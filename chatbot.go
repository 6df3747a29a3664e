package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/internal/logging"
	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/memory"
	"github.com/MatiasV55/eligibility-chatbot/pkg/dialogue"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/extract"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
	"github.com/MatiasV55/eligibility-chatbot/pkg/render"
	"github.com/google/uuid"
)

// DefaultStoreTimeout bounds a single transcript write.
const DefaultStoreTimeout = 3 * time.Second

// ErrTranscriptWrite marks a reply warning for a turn that could not be persisted.
var ErrTranscriptWrite = errors.New("transcript write failed")

// ErrTranscriptGap is returned by Resume when stored turns are not contiguous.
var ErrTranscriptGap = errors.New("transcript has missing turns")

// unrenderable is shown when the renderer itself fails.
const unrenderable = "Lo siento, tuve un problema para responder. ¿Podrías intentarlo de nuevo?"

// Reply is the result of one conversational turn.
type Reply struct {
	// Outcome is the structured result of the step.
	Outcome domain.Outcome
	// Text is the rendered assistant message.
	Text string
	// Warnings lists non-fatal failures. Each matches ErrTranscriptWrite or render errors.
	Warnings []error
}

// Final reports whether the conversation accepts no further facts.
func (r Reply) Final() bool {
	return r.Outcome.Final()
}

// Bot wires the dialogue machine, a renderer and a transcript store.
// It keeps no per-session state, so one Bot may serve many sessions sequentially.
type Bot struct {
	machine      *dialogue.Machine
	replay       *dialogue.Machine
	machineOpts  []dialogue.Option
	renderer     ports.Renderer
	store        ports.TranscriptStore
	storeTimeout time.Duration
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithStore sets the transcript store. Defaults to an in-memory store.
func WithStore(store ports.TranscriptStore) Option {
	return func(b *Bot) {
		b.store = store
	}
}

// WithRenderer sets the response renderer. Defaults to the built-in templates.
func WithRenderer(r ports.Renderer) Option {
	return func(b *Bot) {
		b.renderer = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithStoreTimeout bounds each transcript write.
func WithStoreTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.storeTimeout = d
	}
}

// WithClock sets the time source for turns, events and vehicle year bounds.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(b *Bot) {
		b.newID = fn
	}
}

// WithMachineOptions passes options to the dialogue machine (e.g. a custom extractor).
func WithMachineOptions(opts ...dialogue.Option) Option {
	return func(b *Bot) {
		b.machineOpts = append(b.machineOpts, opts...)
	}
}

// New creates a Bot.
func New(opts ...Option) (*Bot, error) {
	b := &Bot{
		storeTimeout: DefaultStoreTimeout,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.store == nil {
		b.store = memory.NewStore()
	}
	if b.renderer == nil {
		tmpl, err := render.NewTemplates(nil, render.WithClock(b.now))
		if err != nil {
			return nil, fmt.Errorf("default templates: %w", err)
		}
		b.renderer = tmpl
	}

	base := []dialogue.Option{
		dialogue.WithLogger(b.logger),
		dialogue.WithClock(b.now),
		dialogue.WithExtractor(extract.New(extract.WithClock(b.now))),
	}
	base = append(base, b.machineOpts...)

	// Replayed turns rebuild state without firing hooks a second time.
	b.replay = dialogue.NewMachine(base...)
	b.machine = dialogue.NewMachine(append(base, dialogue.WithLifecycleHooks(b.hooks))...)

	return b, nil
}

// Start opens a new session and returns the greeting. An empty id generates one.
func (b *Bot) Start(ctx context.Context, sessionID string) (*domain.Session, Reply, error) {
	if sessionID == "" {
		sessionID = b.newID()
	}
	s := domain.NewSession(sessionID, b.now())

	out, err := b.machine.Begin(ctx, s)
	if err != nil {
		return nil, Reply{}, err
	}
	b.logger.Info("session started", "session_id", s.ID)

	reply := b.respond(ctx, s, out)
	return s, reply, nil
}

// Send processes one user utterance.
// Extraction failures come back as a Clarify outcome. Store and renderer failures come
// back as warnings. An error is returned only for invariant violations, after which the
// session is aborted.
func (b *Bot) Send(ctx context.Context, s *domain.Session, text string) (Reply, error) {
	userTurn := s.AppendTurn(domain.RoleUser, text, b.now())

	out, err := b.machine.Step(ctx, s, text)
	if err != nil {
		b.logger.Error("dialogue invariant violated", "session_id", s.ID, "state", s.State(), "error", err)
		from := s.State()
		s.Transition(domain.StateAborted)
		if b.hooks.OnTransition != nil {
			b.hooks.OnTransition(ctx, &domain.TransitionEvent{
				EventBase: b.event(domain.EventTransition, s.ID),
				From:      from,
				To:        domain.StateAborted,
			})
		}
		b.persist(ctx, s.ID, userTurn)
		return Reply{}, err
	}

	warnings := b.persist(ctx, s.ID, userTurn)
	reply := b.respond(ctx, s, out)
	reply.Warnings = append(warnings, reply.Warnings...)
	return reply, nil
}

// respond renders out, records the assistant turn and persists it.
func (b *Bot) respond(ctx context.Context, s *domain.Session, out domain.Outcome) Reply {
	var warnings []error

	text, err := b.renderer.Render(ctx, out)
	if err != nil {
		b.logger.Error("render failed", "session_id", s.ID, "kind", out.Kind, "error", err)
		warnings = append(warnings, fmt.Errorf("render %s: %w", out.Kind, err))
		text = unrenderable
	}

	turn := s.AppendTurn(domain.RoleAssistant, text, b.now())
	warnings = append(warnings, b.persist(ctx, s.ID, turn)...)

	return Reply{Outcome: out, Text: text, Warnings: warnings}
}

// persist writes turns with a bounded timeout each. Failures are logged and returned, never fatal.
func (b *Bot) persist(ctx context.Context, sessionID string, turns ...domain.Turn) []error {
	var warnings []error
	for _, turn := range turns {
		writeCtx, cancel := context.WithTimeout(ctx, b.storeTimeout)
		err := b.store.Append(writeCtx, sessionID, turn)
		cancel()
		if err == nil {
			continue
		}

		b.logger.Warn("transcript write failed", "session_id", sessionID, "seq", turn.Seq, "error", err)
		if b.hooks.OnPersistFailure != nil {
			b.hooks.OnPersistFailure(ctx, &domain.FailureEvent{
				EventBase: b.event(domain.EventPersistFailure, sessionID),
				Err:       err,
			})
		}
		warnings = append(warnings, fmt.Errorf("%w: turn %d: %w", ErrTranscriptWrite, turn.Seq, err))
	}
	return warnings
}

// Resume rebuilds a stored session by replaying its user turns through the machine.
// Nothing is written to the store; the reply repeats the pending question.
func (b *Bot) Resume(ctx context.Context, sessionID string) (*domain.Session, Reply, error) {
	turns, err := b.Transcript(ctx, sessionID)
	if err != nil {
		return nil, Reply{}, err
	}

	createdAt := b.now()
	if len(turns) > 0 {
		createdAt = turns[0].At
	}
	s := domain.NewSession(sessionID, createdAt)

	out, err := b.replay.Begin(ctx, s)
	if err != nil {
		return nil, Reply{}, err
	}
	for _, turn := range turns {
		if err := s.RestoreTurn(turn); err != nil {
			return nil, Reply{}, fmt.Errorf("%w: %v", ErrTranscriptGap, err)
		}
		if turn.Role != domain.RoleUser {
			continue
		}
		if out, err = b.replay.Step(ctx, s, turn.Text); err != nil {
			return nil, Reply{}, fmt.Errorf("replay turn %d: %w", turn.Seq, err)
		}
	}

	pending := resumeOutcome(s, out)
	text, err := b.renderer.Render(ctx, pending)
	if err != nil {
		return nil, Reply{}, fmt.Errorf("render resumed session: %w", err)
	}

	b.logger.Info("session resumed", "session_id", s.ID, "state", s.State(), "turns", len(turns))
	return s, Reply{Outcome: pending, Text: text}, nil
}

// resumeOutcome maps the state reached by replay to what the user should see next.
func resumeOutcome(s *domain.Session, last domain.Outcome) domain.Outcome {
	switch s.State() {
	case domain.StateDone:
		return domain.Ended(domain.EndCompleted)
	case domain.StateAborted:
		return domain.Ended(domain.EndAborted)
	}
	if fact, ok := s.State().PendingFact(); ok {
		return domain.AskFact(fact)
	}
	return last
}

// Transcript loads the stored turns of a session.
func (b *Bot) Transcript(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	ctx, cancel := context.WithTimeout(ctx, b.storeTimeout)
	defer cancel()
	return b.store.Load(ctx, sessionID)
}

// Sessions lists stored session ids.
func (b *Bot) Sessions(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.storeTimeout)
	defer cancel()
	return b.store.List(ctx)
}

func (b *Bot) event(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{Timestamp: b.now(), Type: t, SessionID: sessionID}
}
