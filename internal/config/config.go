// Package config builds the application configuration from a dotenv file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/MatiasV55/eligibility-chatbot/internal/logging"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Defaults applied when the variable is unset or blank.
const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "llama3.2"
	DefaultLLMTimeout    = 15 * time.Second
	DefaultDBPath        = "./data/conversations.db"
	DefaultStoreTimeout  = 3 * time.Second
	DefaultLogLevel      = "warn"
)

// Ollama configures the language model server.
type Ollama struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Store configures transcript persistence.
type Store struct {
	Backend string
	// Path is the sqlite database file, or the directory for the file backend.
	Path          string
	KeyPath       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Timeout       time.Duration
}

// Config is built once at startup and passed down.
type Config struct {
	Ollama        Ollama
	UseLLM        bool
	Store         Store
	TemplatesPath string
	LogLevel      string
	LogFormat     logging.Format
	MetricsAddr   string
}

// Load reads the dotenv file named by CHATBOT_ENV (or .env by default), then the environment.
// A missing dotenv file is ignored. Malformed values are errors.
func Load() (Config, error) {
	envFile := os.Getenv("CHATBOT_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Ollama: Ollama{
			BaseURL: envString("OLLAMA_BASE_URL", DefaultOllamaBaseURL),
			Model:   envString("OLLAMA_MODEL", DefaultOllamaModel),
			Timeout: envDuration("LLM_TIMEOUT", DefaultLLMTimeout, &errs),
		},
		UseLLM: envBool("USE_LLM_RESPONSES", false, &errs),
		Store: Store{
			Backend:       envString("STORE_BACKEND", BackendSQLite),
			Path:          envString("DB_PATH", DefaultDBPath),
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       envInt("REDIS_DB", 0, &errs),
			Timeout:       envDuration("STORE_TIMEOUT", DefaultStoreTimeout, &errs),
		},
		TemplatesPath: os.Getenv("TEMPLATES_PATH"),
		LogLevel:      envString("LOG_LEVEL", DefaultLogLevel),
		LogFormat:     logging.Format(envString("LOG_FORMAT", string(logging.FormatText))),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
	}
	cfg.Store.KeyPath = envString("KEY_PATH", DefaultKeyPath(cfg.Store.Path))

	return cfg, errors.Join(errs...)
}

// DefaultKeyPath places the key file next to the database.
func DefaultKeyPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "encryption.key")
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendSQLite, BackendFile:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store path is required for backend %q", c.Store.Backend))
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.Backend != BackendMemory && c.Store.KeyPath == "" {
		errs = append(errs, errors.New("key path is required"))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("store timeout must be positive, got %s", c.Store.Timeout))
	}

	if c.UseLLM {
		if c.Ollama.BaseURL == "" {
			errs = append(errs, errors.New("OLLAMA_BASE_URL is required when LLM responses are enabled"))
		}
		if c.Ollama.Model == "" {
			errs = append(errs, errors.New("OLLAMA_MODEL is required when LLM responses are enabled"))
		}
	}
	if c.Ollama.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm timeout must be positive, got %s", c.Ollama.Timeout))
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func envBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func envInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}
