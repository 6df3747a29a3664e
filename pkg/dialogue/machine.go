// Package dialogue implements the finite-state controller that collects the
// eligibility facts and produces one structured Outcome per user turn.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/internal/logging"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/eligibility"
	"github.com/MatiasV55/eligibility-chatbot/pkg/extract"
)

// Extractor reads a typed fact from free text.
type Extractor interface {
	Extract(fact domain.FactName, text string) (int, error)
}

// EvaluateFunc computes a verdict from a complete fact set.
type EvaluateFunc func(domain.Facts) (domain.Verdict, error)

// Machine is the dialogue state machine.
// It holds no per-session state; everything lives in the domain.Session passed to each call.
type Machine struct {
	extractor Extractor
	evaluate  EvaluateFunc
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures the Machine.
type Option func(*Machine)

// WithExtractor replaces the default fact extractor.
func WithExtractor(e Extractor) Option {
	return func(m *Machine) {
		m.extractor = e
	}
}

// WithEvaluator replaces the default rule evaluator.
func WithEvaluator(fn EvaluateFunc) Option {
	return func(m *Machine) {
		m.evaluate = fn
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// NewMachine creates a Machine with the default extractor and evaluator.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		extractor: extract.New(),
		evaluate:  eligibility.EvaluateFacts,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin opens the conversation: it leaves the greeting state and asks for the first fact.
func (m *Machine) Begin(ctx context.Context, s *domain.Session) (domain.Outcome, error) {
	if s.State() != domain.StateGreeting {
		return domain.Outcome{}, fmt.Errorf("%w: begin in state %s", domain.ErrInvariantViolation, s.State())
	}
	return m.greet(ctx, s)
}

// Step processes one user utterance and returns the resulting outcome.
// Unrecognized answers are reported as a Clarify outcome, never as an error.
// An error is returned only for invariant violations, which wrap domain.ErrInvariantViolation.
func (m *Machine) Step(ctx context.Context, s *domain.Session, text string) (domain.Outcome, error) {
	state := s.State()

	switch {
	case state == domain.StateAborted:
		return domain.Ended(domain.EndAborted), nil
	case state == domain.StateDone:
		return domain.Ended(domain.EndCompleted), nil
	case IsExitCommand(text):
		m.transition(ctx, s, domain.StateAborted)
		return domain.Ended(domain.EndAborted), nil
	case state == domain.StateGreeting:
		return m.greet(ctx, s)
	case state == domain.StateEvaluating:
		return m.conclude(ctx, s)
	}

	fact, ok := state.PendingFact()
	if !ok {
		return domain.Outcome{}, fmt.Errorf("%w: unknown state %q", domain.ErrInvariantViolation, state)
	}
	facts := s.Facts()
	if facts.Complete() || facts.Has(fact) {
		return domain.Outcome{}, fmt.Errorf("%w: state %s but %s already collected", domain.ErrInvariantViolation, state, fact)
	}

	value, err := m.extractor.Extract(fact, text)
	if err != nil {
		if !errors.Is(err, extract.ErrUnrecognized) {
			m.logger.Warn("extractor failed", "session_id", s.ID, "fact", fact, "err", err)
		}
		reason := extract.ReasonOf(err)
		m.logger.Debug("answer not recognized", "session_id", s.ID, "fact", fact, "reason", reason)
		if m.hooks.OnClarify != nil {
			m.hooks.OnClarify(ctx, &domain.ClarifyEvent{
				EventBase: m.event(domain.EventClarify, s),
				Fact:      fact,
				Reason:    reason,
			})
		}
		return domain.Clarify(fact, reason), nil
	}

	if err := s.SetFact(fact, value); err != nil {
		return domain.Outcome{}, fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}
	m.logger.Debug("fact collected", "session_id", s.ID, "fact", fact)

	next, more := s.Facts().NextMissing()
	if more {
		m.transition(ctx, s, domain.AskState(next))
		return domain.AskFact(next), nil
	}

	m.transition(ctx, s, domain.StateEvaluating)
	return m.conclude(ctx, s)
}

func (m *Machine) greet(ctx context.Context, s *domain.Session) (domain.Outcome, error) {
	first, ok := s.Facts().NextMissing()
	if !ok {
		return domain.Outcome{}, fmt.Errorf("%w: greeting with complete facts", domain.ErrInvariantViolation)
	}
	m.transition(ctx, s, domain.AskState(first))
	out := domain.AskFact(first)
	out.First = true
	return out, nil
}

// conclude runs the evaluator once and moves the session to done.
func (m *Machine) conclude(ctx context.Context, s *domain.Session) (domain.Outcome, error) {
	if _, done := s.Verdict(); done {
		return domain.Outcome{}, fmt.Errorf("%w: session already evaluated", domain.ErrInvariantViolation)
	}
	verdict, err := m.evaluate(s.Facts())
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}
	s.SetVerdict(verdict)
	m.transition(ctx, s, domain.StateDone)

	m.logger.Info("verdict computed", "session_id", s.ID, "eligible", verdict.Eligible, "reasons", verdict.Reasons)
	if m.hooks.OnVerdict != nil {
		m.hooks.OnVerdict(ctx, &domain.VerdictEvent{
			EventBase: m.event(domain.EventVerdict, s),
			Verdict:   verdict,
		})
	}
	return domain.VerdictOutcome(verdict), nil
}

func (m *Machine) transition(ctx context.Context, s *domain.Session, to domain.State) {
	from := s.State()
	s.Transition(to)
	m.logger.Debug("transition", "session_id", s.ID, "from", from, "to", to)
	if m.hooks.OnTransition != nil {
		m.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: m.event(domain.EventTransition, s),
			From:      from,
			To:        to,
		})
	}
}

func (m *Machine) event(t domain.EventType, s *domain.Session) domain.EventBase {
	return domain.EventBase{Timestamp: m.now(), Type: t, SessionID: s.ID}
}
