package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/internal/config"
	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/ollama"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
	"github.com/MatiasV55/eligibility-chatbot/pkg/render"
)

// pingTimeout bounds the startup check of the model server.
const pingTimeout = 2 * time.Second

// buildRenderer selects the renderer once at startup.
// When the model server does not answer, a warning is returned and the
// generative renderer is still used; it falls back to templates per reply.
func buildRenderer(ctx context.Context, cfg config.Config, hooks domain.LifecycleHooks, logger *slog.Logger) (ports.Renderer, string, error) {
	var catalog *render.Catalog
	if cfg.TemplatesPath != "" {
		c, err := render.LoadCatalog(cfg.TemplatesPath)
		if err != nil {
			return nil, "", fmt.Errorf("load templates: %w", err)
		}
		catalog = c
	}

	templates, err := render.NewTemplates(catalog)
	if err != nil {
		return nil, "", err
	}
	if !cfg.UseLLM {
		return templates, "", nil
	}

	client := ollama.New(cfg.Ollama.BaseURL, cfg.Ollama.Model)

	var warning string
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		logger.Warn("language model unavailable, replies will use templates", "base_url", cfg.Ollama.BaseURL, "error", err)
		warning = fmt.Sprintf("No se pudo contactar al modelo en %s; se usarán respuestas predefinidas.", cfg.Ollama.BaseURL)
	}

	return render.NewGenerative(client, templates,
		render.WithTimeout(cfg.Ollama.Timeout),
		render.WithLifecycleHooks(hooks),
		render.WithLogger(logger),
	), warning, nil
}
