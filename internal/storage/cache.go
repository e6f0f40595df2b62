package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	statsCacheKey = "stats:complaints"
	statsCacheTTL = time.Minute
)

func (s *Service) cachedStats(ctx context.Context) (*models.ComplaintStats, bool) {
	if s.Redis == nil {
		return nil, false
	}
	raw, err := s.Redis.Get(ctx, statsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.Logger.WithError(err).Warn("stats cache read failed")
		return nil, false
	}
	var stats models.ComplaintStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (s *Service) storeStats(ctx context.Context, stats *models.ComplaintStats) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
		s.Logger.WithError(err).Warn("stats cache write failed")
	}
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, statsCacheKey).Err(); err != nil {
		s.Logger.WithError(err).Warn("stats cache invalidation failed")
	}
}
