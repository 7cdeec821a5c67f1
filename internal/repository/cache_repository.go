package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

const scanBatch = 100

// CacheRepository stores raw response bodies in Redis. A nil client behaves as an
// always-empty cache.
type CacheRepository struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client redis.UniversalClient, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// Get returns the stored body for key or appErrors.ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set stores value under key with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPrefix unlinks every key starting with prefix and returns how many were removed.
func (r *CacheRepository) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	if r.client == nil {
		return 0, nil
	}

	removed := 0
	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	iter := r.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan %s*: %w", prefix, err)
	}
	if err := flush(); err != nil {
		return removed, err
	}

	r.logger.Debug("cache prefix cleared", zap.String("prefix", prefix), zap.Int("removed", removed))
	return removed, nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
