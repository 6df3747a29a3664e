package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/es.yaml
var defaultCatalog []byte

// defaultKey selects the clarification used when no specific reason is listed.
const defaultKey = "default"

// Catalog is the set of response templates, keyed by outcome.
type Catalog struct {
	Greeting string                                `yaml:"greeting"`
	Ask      map[domain.FactName]string            `yaml:"ask"`
	Clarify  map[domain.FactName]map[string]string `yaml:"clarify"`
	Verdict  VerdictCatalog                        `yaml:"verdict"`
	Ended    map[domain.EndReason]string           `yaml:"ended"`
}

// VerdictCatalog holds the verdict templates.
type VerdictCatalog struct {
	Eligible    string                   `yaml:"eligible"`
	NotEligible string                   `yaml:"not_eligible"`
	Reasons     map[domain.Reason]string `yaml:"reasons"`
}

// DefaultCatalog returns the built-in Spanish catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(bytes.NewReader(defaultCatalog))
}

// ParseCatalog decodes a catalog without validating completeness.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// LoadCatalog reads an override file and layers it over the default catalog.
// Entries absent from the file keep their default text.
func LoadCatalog(path string) (*Catalog, error) {
	base, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	override, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base.merge(override)
	return base, nil
}

func (c *Catalog) merge(o *Catalog) {
	if o.Greeting != "" {
		c.Greeting = o.Greeting
	}
	mergeMap(&c.Ask, o.Ask)
	for fact, reasons := range o.Clarify {
		if c.Clarify == nil {
			c.Clarify = make(map[domain.FactName]map[string]string)
		}
		inner := c.Clarify[fact]
		mergeMap(&inner, reasons)
		c.Clarify[fact] = inner
	}
	if o.Verdict.Eligible != "" {
		c.Verdict.Eligible = o.Verdict.Eligible
	}
	if o.Verdict.NotEligible != "" {
		c.Verdict.NotEligible = o.Verdict.NotEligible
	}
	mergeMap(&c.Verdict.Reasons, o.Verdict.Reasons)
	mergeMap(&c.Ended, o.Ended)
}

func mergeMap[K comparable](dst *map[K]string, src map[K]string) {
	for k, v := range src {
		if v == "" {
			continue
		}
		if *dst == nil {
			*dst = make(map[K]string, len(src))
		}
		(*dst)[k] = v
	}
}

// compiled is a catalog with every template parsed.
type compiled struct {
	greeting    *template.Template
	ask         map[domain.FactName]*template.Template
	clarify     map[domain.FactName]map[string]*template.Template
	eligible    *template.Template
	notEligible *template.Template
	reasons     map[domain.Reason]*template.Template
	ended       map[domain.EndReason]*template.Template
}

// compile parses all templates and checks that every outcome has text.
func (c *Catalog) compile() (*compiled, error) {
	out := &compiled{
		ask:     make(map[domain.FactName]*template.Template),
		clarify: make(map[domain.FactName]map[string]*template.Template),
		reasons: make(map[domain.Reason]*template.Template),
		ended:   make(map[domain.EndReason]*template.Template),
	}

	var err error
	if out.greeting, err = parse("greeting", c.Greeting); err != nil {
		return nil, err
	}
	if out.eligible, err = parse("verdict.eligible", c.Verdict.Eligible); err != nil {
		return nil, err
	}
	if out.notEligible, err = parse("verdict.not_eligible", c.Verdict.NotEligible); err != nil {
		return nil, err
	}

	for _, fact := range domain.FactOrder {
		name := "ask." + string(fact)
		if out.ask[fact], err = parse(name, c.Ask[fact]); err != nil {
			return nil, err
		}

		reasons := c.Clarify[fact]
		if reasons[defaultKey] == "" {
			return nil, fmt.Errorf("catalog: clarify.%s.%s is required", fact, defaultKey)
		}
		out.clarify[fact] = make(map[string]*template.Template, len(reasons))
		for key, text := range reasons {
			if out.clarify[fact][key], err = parse("clarify."+string(fact)+"."+key, text); err != nil {
				return nil, err
			}
		}
	}

	for _, reason := range []domain.Reason{domain.ReasonAge, domain.ReasonVehicleYear, domain.ReasonMileage} {
		if out.reasons[reason], err = parse("verdict.reasons."+string(reason), c.Verdict.Reasons[reason]); err != nil {
			return nil, err
		}
	}

	for _, reason := range []domain.EndReason{domain.EndCompleted, domain.EndAborted} {
		if out.ended[reason], err = parse("ended."+string(reason), c.Ended[reason]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func parse(name, text string) (*template.Template, error) {
	if text == "" {
		return nil, fmt.Errorf("catalog: %s is required", name)
	}
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return tmpl, nil
}

var funcs = template.FuncMap{
	"km": FormatThousands,
}
