// Package cache provides a Redis-backed read-through cache for the
// stats overview. Cache failures are non-fatal: callers fall back to
// the database.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/domain"
)

const statsKey = "leads:stats:overview"

// StatsCache stores the aggregate overview with a short TTL.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsCache builds the cache. A nil client or non-positive TTL
// disables caching.
func NewStatsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &StatsCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached stats, or false on miss or error.
func (s *StatsCache) Get(ctx context.Context) (*domain.LeadStats, bool) {
	if s == nil {
		return nil, false
	}
	raw, err := s.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var stats domain.LeadStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// Set stores the stats snapshot.
func (s *StatsCache) Set(ctx context.Context, stats *domain.LeadStats) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, statsKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached snapshot after a mutation.
func (s *StatsCache) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	if err := s.client.Del(ctx, statsKey).Err(); err != nil {
		s.logger.Warn("stats cache invalidate failed", zap.Error(err))
	}
}
