package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps handoffs in Redis so they survive a full page navigation
// and server restarts, but expire with the session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(cfg Config) (*RedisStore, error) {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Minute
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: rdb, ttl: cfg.TTL}, nil
}

func key(sessionID string, screeningID int64) string {
	return fmt.Sprintf("handoff:%s:%d", sessionID, screeningID)
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal handoff: %w", err)
	}

	if err := s.client.Set(ctx, key(sessionID, rec.ScreeningID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save handoff: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string, screeningID int64) (*Record, error) {
	payload, err := s.client.Get(ctx, key(sessionID, screeningID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoHandoff
		}
		return nil, fmt.Errorf("failed to load handoff: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		// Corrupt entries count as absent
		return nil, ErrNoHandoff
	}
	if len(rec.Seats) == 0 {
		return nil, ErrNoHandoff
	}

	return &rec, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string, screeningID int64) error {
	if err := s.client.Del(ctx, key(sessionID, screeningID)).Err(); err != nil {
		return fmt.Errorf("failed to clear handoff: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
