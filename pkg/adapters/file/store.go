package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
)

// ErrInvalidSessionID is returned for ids that are empty or would escape the base directory.
var ErrInvalidSessionID = errors.New("invalid session id")

// Store implements ports.TranscriptStore using the local filesystem.
// Each session transcript is a JSON array in <BasePath>/<sessionID>.json,
// rewritten atomically on every append.
type Store struct {
	BasePath string

	mu sync.Mutex
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "data/transcripts".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join("data", "transcripts")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) (string, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+".json"), nil
}

// Append adds a turn to the session file.
func (s *Store) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	destPath, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.read(destPath)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	turns = append(turns, turn)

	if err := os.MkdirAll(s.BasePath, 0o700); err != nil {
		return fmt.Errorf("failed to ensure transcript directory: %w", err)
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	return writeAtomic(s.BasePath, destPath, sessionID, data)
}

// writeAtomic writes data to a temp file in dir, fsyncs it and renames it over destPath.
// The temp file lives in the same directory so the rename stays on one filesystem.
func writeAtomic(dir, destPath, sessionID string, data []byte) error {
	tmpFile, err := os.CreateTemp(dir, "tmp-"+sessionID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing transcript for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to transcript: %w", err)
	}

	return nil
}

// Load retrieves the session transcript ordered by Seq.
func (s *Store) Load(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	filePath, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.read(filePath)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Seq < turns[j].Seq })
	return turns, nil
}

func (s *Store) read(filePath string) ([]domain.Turn, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var turns []domain.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return turns, nil
}

// List returns all stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ".json"))
	}

	return sessions, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
