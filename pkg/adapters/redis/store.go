package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "eligibility:"

// farFuture is the index score used for sessions without expiration (2100-01-01).
const farFuture = 4102444800

// Store implements ports.TranscriptStore using Redis.
// Each transcript is a list of JSON turns; a sorted set indexes sessions by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for transcripts. Each append refreshes it.
// By default transcripts never expire; an expired session can no longer be resumed.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for transcripts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Ping checks connectivity to the server.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Append pushes the turn onto the session list and refreshes the index.
func (s *Store) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key(sessionID), data)

	score := float64(farFuture)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(sessionID), s.ttl)
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: sessionID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}

	return nil
}

// Load retrieves the transcript ordered by Seq.
func (s *Store) Load(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	vals, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}
	if len(vals) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	turns := make([]domain.Turn, 0, len(vals))
	for _, val := range vals {
		var turn domain.Turn
		if err := json.Unmarshal([]byte(val), &turn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		turns = append(turns, turn)
	}
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Seq < turns[j].Seq })

	return turns, nil
}

// List returns stored sessions, pruning index entries whose transcript has expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
