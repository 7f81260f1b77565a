package threats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/cache"
)

// DashboardCacheTTL bounds how stale a cached dashboard document may be.
const DashboardCacheTTL = 300 * time.Second

// DashboardCacheKey returns the cache key for one lookback window.
func DashboardCacheKey(tr threatdesk.TimeRange) string {
	return "dashboard:summary:" + string(tr)
}

func NewCachingService(logger *zap.Logger, provider cache.Provider, underlying threatdesk.ThreatService) *cachingService {
	return &cachingService{
		logger:     logger,
		provider:   provider,
		underlying: underlying,
	}
}

// cachingService guards the dashboard aggregate behind a cache-aside
// layer. Every other operation passes straight through. Cache failures
// are logged and absorbed; correctness never depends on the cache.
type cachingService struct {
	logger     *zap.Logger
	provider   cache.Provider
	underlying threatdesk.ThreatService
}

var _ threatdesk.ThreatService = (*cachingService)(nil)

func (c cachingService) FindIndicatorByID(ctx context.Context, id string) (*threatdesk.IndicatorDetail, error) {
	return c.underlying.FindIndicatorByID(ctx, id)
}

func (c cachingService) FindIndicators(ctx context.Context, filter threatdesk.IndicatorFilter, page threatdesk.PageRequest) (*threatdesk.IndicatorPage, error) {
	return c.underlying.FindIndicators(ctx, filter, page)
}

func (c cachingService) CampaignTimeline(ctx context.Context, id string, filter threatdesk.TimelineFilter) (*threatdesk.CampaignTimeline, error) {
	return c.underlying.CampaignTimeline(ctx, id, filter)
}

func (c cachingService) DashboardSummary(ctx context.Context, tr threatdesk.TimeRange) (*threatdesk.DashboardSummary, error) {
	if err := tr.Valid(); err != nil {
		return nil, err
	}

	key := DashboardCacheKey(tr)

	data, err := c.provider.Get(ctx, key)
	if err == nil {
		var summary threatdesk.DashboardSummary
		uerr := json.Unmarshal(data, &summary)
		if uerr == nil {
			summary.CacheHit = true
			return &summary, nil
		}
		c.logger.Warn("discarding undecodable cached dashboard summary", zap.String("key", key), zap.Error(uerr))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	}

	summary, err := c.underlying.DashboardSummary(ctx, tr)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := c.provider.Set(ctx, key, data, DashboardCacheTTL); err != nil {
			c.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return summary, nil
}
