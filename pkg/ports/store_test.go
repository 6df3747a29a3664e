package ports_test

import (
	"context"
	"testing"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestRendererFunc(t *testing.T) {
	var r ports.Renderer = ports.RendererFunc(func(_ context.Context, out domain.Outcome) (string, error) {
		return string(out.Kind) + ":" + string(out.Fact), nil
	})

	text, err := r.Render(context.Background(), domain.AskFact(domain.FactMileage))
	assert.NoError(t, err)
	assert.Equal(t, "ask_fact:mileage", text)
}
