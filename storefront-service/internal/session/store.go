package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 14 * 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps each session as a JSON object under session:<id>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &Session{id: id, values: values}, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	pipe := r.client.TxPipeline()
	if s.staleID != "" {
		pipe.Del(ctx, sessionKey(s.staleID))
	}
	if s.destroyed {
		pipe.Del(ctx, sessionKey(s.id))
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}

	pipe.Set(ctx, sessionKey(s.id), data, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	s.staleID = ""
	s.isNew = false
	s.modified = false
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}
