package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

// CacheRepository persists raw response bodies.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// CacheService wraps a CacheRepository with metrics. Repository failures never reach
// callers; they are logged and treated as misses.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get returns the cached body for key and whether it was a hit.
func (s *CacheService) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	raw, err := s.repo.Get(ctx, key)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return json.RawMessage(raw), true
}

// Set stores body under key. A non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, body json.RawMessage, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, body, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every entry under prefix.
func (s *CacheService) Invalidate(ctx context.Context, prefix string) {
	if !s.Enabled() {
		return
	}
	removed, err := s.repo.DeleteByPrefix(ctx, prefix)
	if err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Debug("cache invalidated", zap.String("prefix", prefix), zap.Int("removed", removed))
	}
}
