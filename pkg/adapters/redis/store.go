// Package redis implements ports.ConfigStore over a single Redis key. The
// whole document is stored as one YAML blob, so a flush is a single SET and
// therefore atomic. Useful when the wizard runs remotely from the rig that
// consumes the calibration.
package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// DefaultKey is the Redis key holding the config document unless WithKey
// overrides it.
const DefaultKey = "spherecal:config"

// Store implements ports.ConfigStore using Redis.
type Store struct {
	client *backend.Client
	key    string
	ttl    time.Duration

	doc    map[string]any
	staged map[string]any
}

type Option func(*Store)

// WithKey overrides the Redis key holding the document.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithTTL sets an expiration for the document. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a Redis-backed store with options.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		key:    DefaultKey,
		doc:    make(map[string]any),
		staged: make(map[string]any),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Load fetches and parses the document. An absent key is a normal first run;
// unreachable Redis or an unparsable blob leaves the store empty and returns
// the cause.
func (s *Store) Load(ctx context.Context) error {
	s.doc = make(map[string]any)

	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == backend.Nil {
			return nil
		}
		return fmt.Errorf("reading config from redis: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(val), &doc); err != nil {
		return fmt.Errorf("parsing config at %s: %w", s.key, err)
	}
	if doc != nil {
		s.doc = doc
	}
	return nil
}

// Get returns the value for key, staged values first.
func (s *Store) Get(key string) (any, bool) {
	if v, ok := s.staged[key]; ok {
		return v, true
	}
	v, ok := s.doc[key]
	return v, ok
}

// Add stages a value for the next Write.
func (s *Store) Add(key string, value any) {
	s.staged[key] = value
}

// Write folds the staged values into the document and replaces the blob with
// one SET. Staged values survive a failed write so a retry can flush them.
func (s *Store) Write(ctx context.Context) error {
	merged := make(map[string]any, len(s.doc)+len(s.staged))
	for k, v := range s.doc {
		merged[k] = v
	}
	for k, v := range s.staged {
		merged[k] = v
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing config to redis: %w", err)
	}

	s.doc = merged
	s.staged = make(map[string]any)
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
