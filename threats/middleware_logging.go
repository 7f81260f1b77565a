package threats

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/threatdesk/threatdesk"
)

func NewLoggingService(logger *zap.Logger, underlying threatdesk.ThreatService) *loggingService {
	return &loggingService{
		logger:     logger,
		underlying: underlying,
	}
}

type loggingService struct {
	logger     *zap.Logger
	underlying threatdesk.ThreatService
}

var _ threatdesk.ThreatService = (*loggingService)(nil)

func (l loggingService) FindIndicatorByID(ctx context.Context, id string) (d *threatdesk.IndicatorDetail, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find indicator by ID", zap.Error(err), dur)
			return
		}
		l.logger.Debug("indicator find by ID", dur)
	}(time.Now())
	return l.underlying.FindIndicatorByID(ctx, id)
}

func (l loggingService) FindIndicators(ctx context.Context, filter threatdesk.IndicatorFilter, page threatdesk.PageRequest) (p *threatdesk.IndicatorPage, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find indicators", zap.Error(err), dur)
			return
		}
		l.logger.Debug("indicators find", dur)
	}(time.Now())
	return l.underlying.FindIndicators(ctx, filter, page)
}

func (l loggingService) CampaignTimeline(ctx context.Context, id string, filter threatdesk.TimelineFilter) (t *threatdesk.CampaignTimeline, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to build campaign timeline", zap.Error(err), dur)
			return
		}
		l.logger.Debug("campaign timeline", dur)
	}(time.Now())
	return l.underlying.CampaignTimeline(ctx, id, filter)
}

func (l loggingService) DashboardSummary(ctx context.Context, tr threatdesk.TimeRange) (s *threatdesk.DashboardSummary, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to build dashboard summary", zap.Error(err), dur)
			return
		}
		l.logger.Debug("dashboard summary", dur)
	}(time.Now())
	return l.underlying.DashboardSummary(ctx, tr)
}
