package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
	"github.com/MatiasV55/eligibility-chatbot/internal/config"
	"github.com/MatiasV55/eligibility-chatbot/internal/logging"
	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/render"
	"github.com/MatiasV55/eligibility-chatbot/pkg/runner"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "conversations.db")
	if backend == config.BackendFile {
		path = filepath.Join(dir, "transcripts")
	}
	return config.Config{
		Ollama: config.Ollama{
			BaseURL: config.DefaultOllamaBaseURL,
			Model:   config.DefaultOllamaModel,
			Timeout: time.Second,
		},
		Store: config.Store{
			Backend: backend,
			Path:    path,
			KeyPath: filepath.Join(dir, "encryption.key"),
			Timeout: time.Second,
		},
		LogLevel:  "error",
		LogFormat: logging.FormatText,
	}
}

func runChat(t *testing.T, cfg config.Config, sessionID, input string) string {
	t.Helper()
	var out bytes.Buffer
	err := RunChat(context.Background(), cfg, ChatOptions{
		SessionID: sessionID,
		Quiet:     true,
		Plain:     true,
		Stdin:     strings.NewReader(input),
		Stdout:    &out,
		Stderr:    &bytes.Buffer{},
	})
	require.NoError(t, err)
	return out.String()
}

// seedSession stores an unfinished conversation, as left behind by an interrupted run.
func seedSession(t *testing.T, cfg config.Config, sessionID string, answers ...string) {
	t.Helper()
	ctx := context.Background()
	p, err := setupPersistence(ctx, cfg.Store, logging.NewNop(), persistenceOptions{})
	require.NoError(t, err)
	defer p.Close()

	bot, err := chatbot.New(chatbot.WithStore(p.Store))
	require.NoError(t, err)
	s, _, err := bot.Start(ctx, sessionID)
	require.NoError(t, err)
	for _, a := range answers {
		reply, err := bot.Send(ctx, s, a)
		require.NoError(t, err)
		require.Empty(t, reply.Warnings)
	}
}

func TestRunChat_EligibleConversation(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)

	out := runChat(t, cfg, "", "25\n2020\n45000\n")
	assert.Contains(t, out, "KoolKars")
	assert.Contains(t, out, runner.Prompt)
}

func TestRunChat_PersistsAndResumes(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)

	seedSession(t, cfg, "abc", "30")
	_, err := os.Stat(cfg.Store.KeyPath)
	require.NoError(t, err, "key is created on first use")

	var list bytes.Buffer
	require.NoError(t, ListTranscripts(context.Background(), cfg, &list))
	assert.Equal(t, "abc\n", list.String())

	out := runChat(t, cfg, "abc", "2020\n45000\n")
	assert.NotContains(t, out, "Soy el asistente virtual", "resumed sessions skip the greeting")

	var show bytes.Buffer
	require.NoError(t, ShowTranscript(context.Background(), cfg, &show, "abc", TranscriptOptions{}))
	assert.Contains(t, show.String(), "30")
	assert.Contains(t, show.String(), "45000")

	var redacted bytes.Buffer
	require.NoError(t, ShowTranscript(context.Background(), cfg, &redacted, "abc", TranscriptOptions{Redact: true}))
	assert.NotContains(t, redacted.String(), "45000")
	assert.Contains(t, redacted.String(), "***")
}

func TestShowTranscript_NotFound(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)

	err := ShowTranscript(context.Background(), cfg, &bytes.Buffer{}, "missing", TranscriptOptions{})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, statErr := os.Stat(cfg.Store.KeyPath)
	assert.True(t, os.IsNotExist(statErr), "read-only commands never create a key")
}

func TestSetupPersistence_RefusesLostKey(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)
	seedSession(t, cfg, "abc", "30")

	require.NoError(t, os.Remove(cfg.Store.KeyPath))

	_, err := setupPersistence(context.Background(), cfg.Store, logging.NewNop(), persistenceOptions{})
	assert.ErrorIs(t, err, ErrKeyLost)
}

func TestSetupPersistence_EncryptsAtRest(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	seedSession(t, cfg, "secret", "47")

	raw, err := os.ReadFile(filepath.Join(cfg.Store.Path, "secret.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"47"`)
	assert.Contains(t, string(raw), string(domain.RoleSealed))
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, err := openBackend(config.Store{Backend: "postgres"})
	assert.Error(t, err)
}

func TestBuildRenderer(t *testing.T) {
	t.Run("templates by default", func(t *testing.T) {
		r, warning, err := buildRenderer(context.Background(), testConfig(t, config.BackendMemory), domain.LifecycleHooks{}, logging.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &render.Templates{}, r)
		assert.Empty(t, warning)
	})

	t.Run("generative warns when model is down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		cfg := testConfig(t, config.BackendMemory)
		cfg.UseLLM = true
		cfg.Ollama.BaseURL = srv.URL

		r, warning, err := buildRenderer(context.Background(), cfg, domain.LifecycleHooks{}, logging.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &render.Generative{}, r)
		assert.Contains(t, warning, srv.URL)
	})

	t.Run("bad templates path", func(t *testing.T) {
		cfg := testConfig(t, config.BackendMemory)
		cfg.TemplatesPath = filepath.Join(t.TempDir(), "missing.yaml")
		_, _, err := buildRenderer(context.Background(), cfg, domain.LifecycleHooks{}, logging.NewNop())
		assert.Error(t, err)
	})
}
