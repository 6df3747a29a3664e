package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatiasV55/eligibility-chatbot/internal/logging"
)

var allKeys = []string{
	"CHATBOT_ENV", "OLLAMA_BASE_URL", "OLLAMA_MODEL", "LLM_TIMEOUT", "USE_LLM_RESPONSES",
	"STORE_BACKEND", "DB_PATH", "KEY_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"STORE_TIMEOUT", "TEMPLATES_PATH", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR",
}

// clearEnv blanks every variable so the developer's shell does not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultOllamaBaseURL, cfg.Ollama.BaseURL)
	assert.Equal(t, DefaultOllamaModel, cfg.Ollama.Model)
	assert.Equal(t, 15*time.Second, cfg.Ollama.Timeout)
	assert.False(t, cfg.UseLLM)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, DefaultDBPath, cfg.Store.Path)
	assert.Equal(t, filepath.Join("data", "encryption.key"), cfg.Store.KeyPath)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, logging.FormatText, cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("LLM_TIMEOUT", "2s")
	t.Setenv("USE_LLM_RESPONSES", "true")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("DB_PATH", "/var/lib/bot/bot.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_ADDR", ":9090")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.Ollama.Model)
	assert.Equal(t, 2*time.Second, cfg.Ollama.Timeout)
	assert.True(t, cfg.UseLLM)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/bot/encryption.key", cfg.Store.KeyPath)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, logging.FormatJSON, cfg.LogFormat)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_MalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_TIMEOUT", "soon")
	t.Setenv("USE_LLM_RESPONSES", "maybe")
	t.Setenv("REDIS_DB", "one")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_TIMEOUT")
	assert.Contains(t, err.Error(), "USE_LLM_RESPONSES")
	assert.Contains(t, err.Error(), "REDIS_DB")
}

func TestLoad_DotenvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that exist, even when blank.
	require.NoError(t, os.Unsetenv("OLLAMA_MODEL"))
	require.NoError(t, os.Unsetenv("STORE_BACKEND"))
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OLLAMA_MODEL=phi3\nSTORE_BACKEND=memory\n"), 0o600))
	t.Setenv("CHATBOT_ENV", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "phi3", cfg.Ollama.Model)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
}

func TestLoad_MissingDotenvIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATBOT_ENV", filepath.Join(t.TempDir(), "absent.env"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
}

func TestLoad_MalformedDotenv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "broken.env")
	require.NoError(t, os.WriteFile(path, []byte("OLLAMA_MODEL=\"phi3\n"), 0o600))
	t.Setenv("CHATBOT_ENV", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base, err := FromEnv()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }, "unknown store backend"},
		{"redis without addr", func(c *Config) { c.Store.Backend = BackendRedis }, "REDIS_ADDR"},
		{"empty path", func(c *Config) { c.Store.Path = "" }, "store path"},
		{"zero store timeout", func(c *Config) { c.Store.Timeout = 0 }, "store timeout"},
		{"llm without url", func(c *Config) { c.UseLLM = true; c.Ollama.BaseURL = "" }, "OLLAMA_BASE_URL"},
		{"negative llm timeout", func(c *Config) { c.Ollama.Timeout = -time.Second }, "llm timeout"},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }, "log level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
