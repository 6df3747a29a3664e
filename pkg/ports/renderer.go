package ports

import (
	"context"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// Renderer turns an outcome into the text shown to the user.
// Implementations must be interchangeable and free of side effects visible to the core.
type Renderer interface {
	Render(ctx context.Context, out domain.Outcome) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, out domain.Outcome) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, out domain.Outcome) (string, error) {
	return f(ctx, out)
}

// TextGenerator produces text for a prompt, or fails.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
