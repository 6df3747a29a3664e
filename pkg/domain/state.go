package domain

import (
	"fmt"
	"time"
)

// State tags the position of a session in the dialogue.
type State string

const (
	StateGreeting       State = "greeting"
	StateAskAge         State = "ask_age"
	StateAskVehicleYear State = "ask_vehicle_year"
	StateAskMileage     State = "ask_mileage"
	StateEvaluating     State = "evaluating"
	StateDone           State = "done"
	StateAborted        State = "aborted"
)

// AskState returns the state that collects fact.
func AskState(fact FactName) State {
	switch fact {
	case FactAge:
		return StateAskAge
	case FactVehicleYear:
		return StateAskVehicleYear
	case FactMileage:
		return StateAskMileage
	}
	return ""
}

// PendingFact returns the fact collected in s, if s is an ask state.
func (s State) PendingFact() (FactName, bool) {
	switch s {
	case StateAskAge:
		return FactAge, true
	case StateAskVehicleYear:
		return FactVehicleYear, true
	case StateAskMileage:
		return FactMileage, true
	}
	return "", false
}

// Terminal reports whether s accepts no further fact-collecting input.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// Session is the per-conversation state.
// Facts and the state tag are mutated by the dialogue machine only.
type Session struct {
	ID        string
	CreatedAt time.Time

	state   State
	facts   Facts
	turns   []Turn
	verdict *Verdict
}

// NewSession creates a session in the greeting state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		state:     StateGreeting,
	}
}

// State returns the current state tag.
func (s *Session) State() State {
	return s.state
}

// Facts returns a copy of the collected facts.
func (s *Session) Facts() Facts {
	return Facts{values: s.facts.Snapshot()}
}

// Turns returns a copy of the transcript in order.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Verdict returns the verdict if the session has been evaluated.
func (s *Session) Verdict() (Verdict, bool) {
	if s.verdict == nil {
		return Verdict{}, false
	}
	return *s.verdict, true
}

// AppendTurn appends a new turn and returns it with its assigned sequence number.
func (s *Session) AppendTurn(role Role, text string, at time.Time) Turn {
	t := Turn{
		Seq:  len(s.turns) + 1,
		Role: role,
		Text: text,
		At:   at,
	}
	s.turns = append(s.turns, t)
	return t
}

// RestoreTurn appends a turn loaded from a transcript. Its Seq must follow the last turn.
func (s *Session) RestoreTurn(t Turn) error {
	if want := len(s.turns) + 1; t.Seq != want {
		return fmt.Errorf("restore turn: seq %d out of order, want %d", t.Seq, want)
	}
	s.turns = append(s.turns, t)
	return nil
}

// Transition moves the session to a new state tag.
func (s *Session) Transition(to State) {
	s.state = to
}

// SetFact stores a collected fact. It fails with ErrFactAlreadySet instead of overwriting.
func (s *Session) SetFact(name FactName, value int) error {
	return s.facts.set(name, value)
}

// SetVerdict stores the evaluation result.
func (s *Session) SetVerdict(v Verdict) {
	s.verdict = &v
}
