package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MatiasV55/eligibility-chatbot/internal/config"
	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/file"
	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/memory"
	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/redis"
	"github.com/MatiasV55/eligibility-chatbot/pkg/adapters/sqlite"
	"github.com/MatiasV55/eligibility-chatbot/pkg/persistence/keyring"
	"github.com/MatiasV55/eligibility-chatbot/pkg/persistence/middleware"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
)

// ErrKeyLost is returned when transcripts exist but their key file does not.
var ErrKeyLost = errors.New("stored transcripts found but the encryption key is missing")

// Persistence bundles the transcript store with the keyring protecting it.
type Persistence struct {
	Store   ports.TranscriptStore
	keyring *keyring.Keyring
}

// Close closes the store and wipes the key material.
func (p *Persistence) Close() error {
	var errs []error
	if p.Store != nil {
		errs = append(errs, p.Store.Close())
	}
	if p.keyring != nil {
		errs = append(errs, p.keyring.Close())
	}
	return errors.Join(errs...)
}

// persistenceOptions tunes setupPersistence for the calling command.
type persistenceOptions struct {
	// readOnly never creates a key file.
	readOnly bool
	// extra wraps the store outside the encryption layer.
	extra []middleware.Middleware
}

func openBackend(cfg config.Store) (ports.TranscriptStore, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendFile:
		return file.New(cfg.Path), nil
	case config.BackendRedis:
		return redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	case config.BackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// setupPersistence opens the configured backend and wraps it with encryption.
// A key is generated only while the store is still empty; an existing store
// without its key is refused so transcripts are never silently orphaned.
// The memory backend keeps nothing on disk and is used unencrypted.
func setupPersistence(ctx context.Context, cfg config.Store, logger *slog.Logger, opts persistenceOptions) (*Persistence, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	p := &Persistence{Store: backend}

	if cfg.Backend == config.BackendMemory {
		p.Store = middleware.Chain(backend, opts.extra...)
		return p, nil
	}

	listCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	ids, err := backend.List(listCtx)
	cancel()
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("list %s store: %w", cfg.Backend, err)
	}

	kr, err := keyring.Open(cfg.KeyPath, keyring.Options{Create: len(ids) == 0 && !opts.readOnly})
	if err != nil {
		_ = backend.Close()
		if errors.Is(err, keyring.ErrKeyMissing) && len(ids) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrKeyLost, cfg.KeyPath)
		}
		return nil, err
	}
	p.keyring = kr
	if kr.Created() {
		logger.Info("encryption key created", "path", kr.Path())
	}

	dataKey, err := kr.DataKey()
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: dataKey})
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	p.Store = middleware.Chain(backend, append(opts.extra, encrypt)...)
	logger.Debug("persistence ready", "backend", cfg.Backend, "sessions", len(ids))
	return p, nil
}
