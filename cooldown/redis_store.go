package cooldown

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisStore implements the Store interface using a single Redis hash.
// Each field is a group id, each value the JSON encoded Record.
type redisStore struct {
	client redis.Cmdable // Use Cmdable for compatibility with ClusterClient, SentinelClient, etc.
	key    string
}

// NewRedisStore creates a new Redis cooldown store holding its state under key.
// It expects a pre-configured redis.Cmdable (e.g., redis.Client or redis.ClusterClient).
func NewRedisStore(client redis.Cmdable, key string) Store {
	if key == "" {
		key = DefaultRedisKey
	}
	return &redisStore{
		client: client,
		key:    key,
	}
}

// Load implements the Store interface for Redis storage.
// A missing hash is an empty state.
func (s *redisStore) Load(ctx context.Context) (State, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("redis hgetall failed")
		return nil, fmt.Errorf("%w: redis key %s: %w", ErrLoad, s.key, err)
	}

	state := make(State, len(fields))
	for group, raw := range fields {
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			log.Error().Err(err).Str("key", s.key).Str("group_id", group).Msg("redis cooldown record is malformed")
			return nil, fmt.Errorf("%w: %w: redis key %s field %s: %w", ErrLoad, ErrMalformedStore, s.key, group, err)
		}
		state[group] = rec
	}

	log.Debug().Str("key", s.key).Int("groups", len(state)).Msg("redis store loaded")
	return state, nil
}

// Save implements the Store interface for Redis storage.
// The hash is dropped and rewritten inside MULTI/EXEC so readers never see a partial state.
func (s *redisStore) Save(ctx context.Context, state State) error {
	values := make(map[string]any, len(state))
	for group, rec := range state {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: encode group %s: %w", ErrWrite, group, err)
		}
		values[group] = string(raw)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("redis cooldown state write failed")
		return fmt.Errorf("%w: redis key %s: %w", ErrWrite, s.key, err)
	}

	log.Trace().Str("key", s.key).Int("groups", len(state)).Msg("redis store saved")
	return nil
}
