package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition     EventType = "transition"
	EventClarify        EventType = "clarify"
	EventVerdict        EventType = "verdict"
	EventPersistFailure EventType = "persist_failure"
	EventRenderFallback EventType = "render_fallback"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// TransitionEvent is emitted when a session changes state.
type TransitionEvent struct {
	EventBase
	From State `json:"from"`
	To   State `json:"to"`
}

// ClarifyEvent is emitted when an answer is not recognized.
type ClarifyEvent struct {
	EventBase
	Fact   FactName      `json:"fact"`
	Reason Clarification `json:"reason"`
}

// VerdictEvent is emitted once per session when the verdict is computed.
type VerdictEvent struct {
	EventBase
	Verdict Verdict `json:"verdict"`
}

// FailureEvent is emitted when an external collaborator degrades (store write, LLM call).
type FailureEvent struct {
	EventBase
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for observability. Nil hooks are skipped.
type LifecycleHooks struct {
	OnTransition     func(context.Context, *TransitionEvent)
	OnClarify        func(context.Context, *ClarifyEvent)
	OnVerdict        func(context.Context, *VerdictEvent)
	OnPersistFailure func(context.Context, *FailureEvent)
	OnRenderFallback func(context.Context, *FailureEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition:     chain(h.OnTransition, other.OnTransition),
		OnClarify:        chain(h.OnClarify, other.OnClarify),
		OnVerdict:        chain(h.OnVerdict, other.OnVerdict),
		OnPersistFailure: chain(h.OnPersistFailure, other.OnPersistFailure),
		OnRenderFallback: chain(h.OnRenderFallback, other.OnRenderFallback),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
