package threats

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/kit/tracing"
)

type observationRow struct {
	ID         string                   `db:"id"`
	Type       threatdesk.IndicatorType `db:"type"`
	ObservedAt time.Time                `db:"observed_at"`
}

// CampaignTimeline groups a campaign's observations into calendar-date
// or Monday-anchored week buckets. The date filter is inclusive on both
// ends and applies to the observation's UTC calendar date.
func (s *Service) CampaignTimeline(ctx context.Context, id string, filter threatdesk.TimelineFilter) (*threatdesk.CampaignTimeline, error) {
	if err := filter.GroupBy.Valid(); err != nil {
		return nil, err
	}

	span, ctx := tracing.StartSpanFromContext(ctx, "threats.CampaignTimeline")
	defer span.Finish()

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	query, args, err := sq.Select("id", "name", "description", "first_seen", "last_seen", "status").
		From("campaigns").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var campaign threatdesk.Campaign
	if err := s.store.DB.GetContext(ctx, &campaign, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, threatdesk.ErrCampaignNotFound(id)
		}
		return nil, tracing.LogError(span, err)
	}

	query, args, err = sq.Select("ci.indicator_id AS id", "i.type", "ci.observed_at").
		From("campaign_indicators ci").
		Join("indicators i ON i.id = ci.indicator_id").
		Where(sq.Eq{"ci.campaign_id": id}).
		OrderBy("ci.observed_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var observations []observationRow
	if err := s.store.DB.SelectContext(ctx, &observations, query, args...); err != nil {
		return nil, tracing.LogError(span, err)
	}

	anchor := threatdesk.DateOf
	if filter.GroupBy == threatdesk.GroupByWeek {
		anchor = threatdesk.WeekOf
	}

	timeline := []threatdesk.TimelineBucket{}
	summary := threatdesk.TimelineSummary{
		Duration: int(campaign.LastSeen.Sub(campaign.FirstSeen) / (24 * time.Hour)),
	}
	buckets := map[string]int{}

	for _, obs := range observations {
		date := threatdesk.DateOf(obs.ObservedAt)
		if filter.StartDate != nil && date.Before(threatdesk.DateOf(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && date.After(threatdesk.DateOf(*filter.EndDate)) {
			continue
		}

		summary.TotalIndicators++
		switch obs.Type {
		case threatdesk.IndicatorTypeIP:
			summary.UniqueIPs++
		case threatdesk.IndicatorTypeDomain:
			summary.UniqueDomains++
		}

		// observations arrive in ascending order, so new bucket keys
		// always append in ascending order too
		key := threatdesk.FormatDate(anchor(obs.ObservedAt))
		idx, ok := buckets[key]
		if !ok {
			idx = len(timeline)
			buckets[key] = idx
			timeline = append(timeline, threatdesk.TimelineBucket{Date: key})
		}
		timeline[idx].Indicators = append(timeline[idx].Indicators, threatdesk.ObservedIndicator{
			ID:   obs.ID,
			Type: obs.Type,
		})
		timeline[idx].Counts.Inc(obs.Type)
	}

	return &threatdesk.CampaignTimeline{
		Campaign: campaign,
		Timeline: timeline,
		Summary:  summary,
	}, nil
}
