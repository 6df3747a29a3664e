package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// Domain ranges. Values outside them are parse failures, not eligibility failures.
const (
	MinAge     = 0
	MaxAge     = 130
	MinMileage = 0
	MaxMileage = 2_000_000
	MinYear    = 1900
)

// ErrUnrecognized is matched by every extraction failure.
var ErrUnrecognized = errors.New("answer not recognized")

// UnrecognizedError describes why an answer could not be read as a fact.
type UnrecognizedError struct {
	Fact   domain.FactName
	Reason domain.Clarification
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrUnrecognized, e.Fact, e.Reason)
}

// Is makes errors.Is(err, ErrUnrecognized) hold.
func (e *UnrecognizedError) Is(target error) bool {
	return target == ErrUnrecognized
}

// ReasonOf returns the clarification carried by err, or ClarifyNotNumeric if err carries none.
func ReasonOf(err error) domain.Clarification {
	var ue *UnrecognizedError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return domain.ClarifyNotNumeric
}

// Extractor parses answers for pending facts.
type Extractor struct {
	now func() time.Time
}

// Option configures the Extractor.
type Option func(*Extractor)

// WithClock sets the time source used to bound vehicle years.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an Extractor. By default it uses time.Now.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxYear is the latest accepted vehicle model year (next year's models are on sale).
func (e *Extractor) MaxYear() int {
	return e.now().Year() + 1
}

// Extract reads the value of fact from text.
func (e *Extractor) Extract(fact domain.FactName, text string) (int, error) {
	fail := func(reason domain.Clarification) (int, error) {
		return 0, &UnrecognizedError{Fact: fact, Reason: reason}
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return fail(domain.ClarifyEmpty)
	}

	tokens := scan(normalized)
	if len(tokens) == 0 {
		return fail(domain.ClarifyNotNumeric)
	}
	for _, t := range tokens {
		if t.malformed {
			return fail(domain.ClarifyAmbiguous)
		}
	}
	for _, t := range tokens {
		if t.mult == multUnsupported || (fact == domain.FactMileage && t.miles) {
			return fail(domain.ClarifyInvalidFormat)
		}
	}
	if len(tokens) > 1 && !sameValue(tokens) {
		return fail(domain.ClarifyAmbiguous)
	}
	tok := tokens[0]

	switch fact {
	case domain.FactAge:
		if tok.mult != multNone {
			return fail(domain.ClarifyInvalidFormat)
		}
		return e.bounded(fact, tok, MinAge, MaxAge)

	case domain.FactMileage:
		return e.bounded(fact, tok, MinMileage, MaxMileage)

	case domain.FactVehicleYear:
		if tok.grouped() || tok.mult != multNone || len(tok.groups[0]) != 4 {
			return fail(domain.ClarifyInvalidFormat)
		}
		return e.bounded(fact, tok, MinYear, e.MaxYear())
	}

	return 0, fmt.Errorf("unknown fact %q", fact)
}

func (e *Extractor) bounded(fact domain.FactName, tok token, min, max int) (int, error) {
	if tok.negative {
		return 0, &UnrecognizedError{Fact: fact, Reason: domain.ClarifyOutOfRange}
	}
	v, ok := value(tok)
	if !ok || v < min || v > max {
		return 0, &UnrecognizedError{Fact: fact, Reason: domain.ClarifyOutOfRange}
	}
	return v, nil
}

// value returns the integer a token denotes. ok is false on overflow.
func value(t token) (int, bool) {
	digits := strings.TrimLeft(t.digits(), "0")
	if digits == "" {
		return 0, true
	}
	if len(digits) > 12 {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	if t.mult == multThousand {
		v *= 1000
	}
	return v, true
}

func sameValue(tokens []token) bool {
	first, ok := value(tokens[0])
	if !ok {
		return false
	}
	for _, t := range tokens[1:] {
		v, ok := value(t)
		if !ok || v != first || t.negative != tokens[0].negative {
			return false
		}
	}
	return true
}
