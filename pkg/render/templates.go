package render

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/eligibility"
	"github.com/MatiasV55/eligibility-chatbot/pkg/extract"
)

// Templates renders outcomes from a catalog of canned responses.
type Templates struct {
	tmpl *compiled
	now  func() time.Time
}

// TemplatesOption configures Templates.
type TemplatesOption func(*Templates)

// WithClock sets the time source used for the upper bound of vehicle years.
func WithClock(now func() time.Time) TemplatesOption {
	return func(t *Templates) {
		t.now = now
	}
}

// NewTemplates compiles the catalog. A nil catalog selects the default one.
func NewTemplates(c *Catalog, opts ...TemplatesOption) (*Templates, error) {
	if c == nil {
		var err error
		if c, err = DefaultCatalog(); err != nil {
			return nil, err
		}
	}
	tmpl, err := c.compile()
	if err != nil {
		return nil, err
	}
	t := &Templates{tmpl: tmpl, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// clarifyData feeds clarify templates.
type clarifyData struct {
	Fact domain.FactName
	Min  int
	Max  int
}

// reasonData feeds verdict reason templates.
type reasonData struct {
	Value     int
	Threshold int
}

// verdictData feeds verdict templates.
type verdictData struct {
	Reasons []string
	Facts   map[domain.FactName]int
}

// Render implements ports.Renderer.
func (t *Templates) Render(_ context.Context, out domain.Outcome) (string, error) {
	switch out.Kind {
	case domain.OutcomeAskFact:
		tmpl, ok := t.tmpl.ask[out.Fact]
		if !ok {
			return "", fmt.Errorf("render: no question for fact %q", out.Fact)
		}
		text, err := execute(tmpl, nil)
		if err != nil || !out.First {
			return text, err
		}
		greeting, err := execute(t.tmpl.greeting, nil)
		if err != nil {
			return "", err
		}
		return greeting + "\n" + text, nil

	case domain.OutcomeClarify:
		reasons, ok := t.tmpl.clarify[out.Fact]
		if !ok {
			return "", fmt.Errorf("render: no clarification for fact %q", out.Fact)
		}
		tmpl, ok := reasons[string(out.Clarification)]
		if !ok {
			tmpl = reasons[defaultKey]
		}
		lo, hi := t.bounds(out.Fact)
		return execute(tmpl, clarifyData{Fact: out.Fact, Min: lo, Max: hi})

	case domain.OutcomeVerdict:
		if out.Verdict == nil {
			return "", fmt.Errorf("render: verdict outcome without verdict")
		}
		return t.verdict(*out.Verdict)

	case domain.OutcomeEnded:
		tmpl, ok := t.tmpl.ended[out.EndReason]
		if !ok {
			return "", fmt.Errorf("render: no text for end reason %q", out.EndReason)
		}
		return execute(tmpl, nil)
	}

	return "", fmt.Errorf("render: unknown outcome kind %q", out.Kind)
}

func (t *Templates) verdict(v domain.Verdict) (string, error) {
	if v.Eligible {
		return execute(t.tmpl.eligible, verdictData{Facts: v.Facts})
	}

	lines := make([]string, 0, len(v.Reasons))
	for _, reason := range v.Reasons {
		line, err := t.Reason(reason, v.Facts)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return execute(t.tmpl.notEligible, verdictData{Reasons: lines, Facts: v.Facts})
}

// Reason describes a failed rule with the offending value.
func (t *Templates) Reason(reason domain.Reason, facts map[domain.FactName]int) (string, error) {
	tmpl, ok := t.tmpl.reasons[reason]
	if !ok {
		return "", fmt.Errorf("render: no text for reason %q", reason)
	}
	rule, ok := eligibility.RuleFor(reason)
	if !ok {
		return "", fmt.Errorf("render: unknown reason %q", reason)
	}
	return execute(tmpl, reasonData{Value: facts[rule.Fact], Threshold: rule.Threshold})
}

func (t *Templates) bounds(fact domain.FactName) (int, int) {
	switch fact {
	case domain.FactAge:
		return extract.MinAge, extract.MaxAge
	case domain.FactVehicleYear:
		return extract.MinYear, t.now().Year() + 1
	case domain.FactMileage:
		return extract.MinMileage, extract.MaxMileage
	}
	return 0, 0
}

func execute(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// FormatThousands formats n with '.' as the thousands separator (45000 -> "45.000").
func FormatThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	head := len(s) % 3
	if head > 0 {
		sb.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if sb.Len() > 0 && !(neg && sb.Len() == 1) {
			sb.WriteByte('.')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}
