package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
)

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// gridCacheKey names the cached weekly grid of a class.
func gridCacheKey(classID string) string {
	return fmt.Sprintf("timetable:grid:%s", classID)
}

// gridCachePattern matches every cached grid variant of a class.
func gridCachePattern(classID string) string {
	return gridCacheKey(classID) + "*"
}

// CacheService wraps the cache repository with metrics and a kill switch.
type CacheService struct {
	store   cacheStore
	metrics *MetricsService
	enabled bool
	logger  *zap.Logger
}

// NewCacheService instantiates CacheService. A nil store disables caching.
func NewCacheService(store cacheStore, metrics *MetricsService, enabled bool, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, enabled: enabled && store != nil, logger: logger}
}

// Enabled reports whether lookups will hit Redis.
func (s *CacheService) Enabled() bool {
	return s.enabled
}

// Get loads a cached value, recording hit/miss metrics. Returns ErrCacheMiss
// when disabled or absent.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if !s.enabled {
		return appErrors.ErrCacheMiss
	}

	err := s.store.Get(ctx, key, dest)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordCacheHit()
	}
	return nil
}

// Set stores a value with TTL. Failures are logged, never propagated; a cold
// cache only costs a database round trip.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.enabled {
		return
	}
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes every key matching the pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.enabled {
		return nil
	}
	return s.store.DeleteByPattern(ctx, pattern)
}
