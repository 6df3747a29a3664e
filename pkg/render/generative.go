package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/internal/logging"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
)

// ErrEmptyGeneration is reported when the model returns only whitespace.
var ErrEmptyGeneration = errors.New("model returned an empty response")

// DefaultTimeout bounds a single generation.
const DefaultTimeout = 15 * time.Second

const promptTemplate = `Eres un asistente virtual amable de KoolKars que ayuda a validar la elegibilidad de autos.
Genera una respuesta natural y amigable basada en el siguiente contexto:

%s

Mensaje de referencia (conserva su significado y sus datos):
%s

IMPORTANTE: Mantén la respuesta breve, amigable y profesional. No agregues información extra.

Respuesta:`

// Generative phrases outcomes with a language model, falling back to Templates.
type Generative struct {
	gen      ports.TextGenerator
	fallback *Templates
	timeout  time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// GenerativeOption configures Generative.
type GenerativeOption func(*Generative)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) GenerativeOption {
	return func(g *Generative) {
		g.timeout = d
	}
}

// WithLifecycleHooks registers the render fallback hook.
func WithLifecycleHooks(hooks domain.LifecycleHooks) GenerativeOption {
	return func(g *Generative) {
		g.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) GenerativeOption {
	return func(g *Generative) {
		g.logger = logger
	}
}

// NewGenerative creates a renderer backed by gen.
func NewGenerative(gen ports.TextGenerator, fallback *Templates, opts ...GenerativeOption) *Generative {
	g := &Generative{
		gen:      gen,
		fallback: fallback,
		timeout:  DefaultTimeout,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render implements ports.Renderer. Model failures never surface as errors.
func (g *Generative) Render(ctx context.Context, out domain.Outcome) (string, error) {
	reference, err := g.fallback.Render(ctx, out)
	if err != nil {
		return "", err
	}

	text, err := g.generate(ctx, out, reference)
	if err != nil {
		g.logger.Warn("model unavailable, using template", "kind", out.Kind, "error", err)
		if g.hooks.OnRenderFallback != nil {
			g.hooks.OnRenderFallback(ctx, &domain.FailureEvent{
				EventBase: domain.EventBase{
					Timestamp: time.Now(),
					Type:      domain.EventRenderFallback,
				},
				Err: err,
			})
		}
		return reference, nil
	}
	return text, nil
}

func (g *Generative) generate(ctx context.Context, out domain.Outcome, reference string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.gen.Generate(ctx, Prompt(out, reference))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyGeneration
	}
	return text, nil
}

// Prompt builds the model prompt for an outcome.
func Prompt(out domain.Outcome, reference string) string {
	return fmt.Sprintf(promptTemplate, describe(out), reference)
}

var factNames = map[domain.FactName]string{
	domain.FactAge:         "su edad en años",
	domain.FactVehicleYear: "el año de su vehículo",
	domain.FactMileage:     "el kilometraje de su vehículo",
}

// describe states the situation for the model, without personal values beyond the verdict.
func describe(out domain.Outcome) string {
	switch out.Kind {
	case domain.OutcomeAskFact:
		if out.First {
			return "El usuario acaba de iniciar la conversación. Debes saludarlo, presentarte como asistente de KoolKars, " +
				"explicar que ayudarás a validar la elegibilidad de su auto, y preguntarle " + factNames[out.Fact] + "."
		}
		return "Debes pedirle al usuario " + factNames[out.Fact] + "."
	case domain.OutcomeClarify:
		return "No pudiste entender la respuesta del usuario. Pídele de nuevo " + factNames[out.Fact] + "."
	case domain.OutcomeVerdict:
		if out.Verdict != nil && out.Verdict.Eligible {
			return "El usuario ES ELEGIBLE para el producto. Dale las buenas noticias de forma entusiasta."
		}
		return "El usuario NO ES ELEGIBLE. Informa de forma empática, listando cada razón del mensaje de referencia."
	case domain.OutcomeEnded:
		return "La conversación terminó. Despídete del usuario."
	}
	return ""
}
