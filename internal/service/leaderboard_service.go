package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/career-readiness-api/internal/models"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

const maxLeaderboardLimit = 100

type leaderboardRepository interface {
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// LeaderboardConfig governs default size and caching.
type LeaderboardConfig struct {
	DefaultLimit int
	CacheTTL     time.Duration
}

// LeaderboardService ranks active students by readiness.
type LeaderboardService struct {
	repo   leaderboardRepository
	cache  *CacheService
	logger *zap.Logger
	cfg    LeaderboardConfig
}

// NewLeaderboardService constructs a LeaderboardService.
func NewLeaderboardService(repo leaderboardRepository, cache *CacheService, logger *zap.Logger, cfg LeaderboardConfig) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	return &LeaderboardService{repo: repo, cache: cache, logger: logger, cfg: cfg}
}

// Top returns up to limit students ordered by readiness score, streak and id.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	key := fmt.Sprintf("leaderboard:%d", limit)
	var cached []models.LeaderboardEntry
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	entries, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaderboard")
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	_ = s.cache.Set(ctx, key, entries, s.cfg.CacheTTL)
	return entries, nil
}
