package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sweetpotato0/gov-allin/config"
	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/history"
)

var _ history.Store = (*Store)(nil)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Capacity int
}

// DefaultConfig returns a local configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:     "localhost:6379",
		Key:      "gov-allin:evaluations",
		Capacity: history.DefaultCapacity,
	}
}

// Store keeps evaluations as JSON in a Redis list, newest at the head.
type Store struct {
	client   *redis.Client
	key      string
	capacity int
}

// New creates a Store and checks the connection.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := config.ValidateRedisConfig(cfg.Addr, cfg.DB, cfg.Key, cfg.Capacity); err != nil {
		return nil, fmt.Errorf("invalid Redis configuration: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return &Store{client: client, key: cfg.Key, capacity: cfg.Capacity}, nil
}

// Append pushes rec and trims the list to capacity in one transaction.
func (s *Store) Append(ctx context.Context, rec governance.EvaluationResult) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, data)
		pipe.LTrim(ctx, s.key, 0, int64(s.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store evaluation in Redis: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, n int) ([]governance.EvaluationResult, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	items, err := s.client.LRange(ctx, s.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluations: %w", err)
	}
	out := make([]governance.EvaluationResult, 0, len(items))
	for _, item := range items {
		var rec governance.EvaluationResult
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}
	return int(n), nil
}

// Clear deletes the list.
func (s *Store) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
