package threats

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/kit/tracing"
)

type typeCountRow struct {
	Type threatdesk.IndicatorType `db:"type"`
	N    int                      `db:"n"`
}

// DashboardSummary computes the aggregate document for the given
// lookback window. The cutoff is derived from the service clock so
// tests can pin it.
func (s *Service) DashboardSummary(ctx context.Context, tr threatdesk.TimeRange) (*threatdesk.DashboardSummary, error) {
	if err := tr.Valid(); err != nil {
		return nil, err
	}

	span, ctx := tracing.StartSpanFromContext(ctx, "threats.DashboardSummary")
	defer span.Finish()

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	cutoff := s.now().UTC().Add(-tr.Duration())

	newIndicators, err := s.typeCounts(ctx, &cutoff)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}

	distribution, err := s.typeCounts(ctx, nil)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}

	active, err := s.activeCampaigns(ctx, cutoff)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}

	topActors, err := s.topThreatActors(ctx)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}

	return &threatdesk.DashboardSummary{
		TimeRange:             tr,
		NewIndicators:         newIndicators,
		ActiveCampaigns:       active,
		TopThreatActors:       topActors,
		IndicatorDistribution: distribution,
	}, nil
}

// typeCounts tallies indicators per type, optionally scoped to those
// first seen at or after the cutoff. Types with no rows stay zero.
func (s *Service) typeCounts(ctx context.Context, firstSeenAfter *time.Time) (threatdesk.TypeCounts, error) {
	q := sq.Select("type", "COUNT(*) AS n").From("indicators").GroupBy("type")
	if firstSeenAfter != nil {
		q = q.Where(sq.GtOrEq{"first_seen": *firstSeenAfter})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return threatdesk.TypeCounts{}, err
	}

	var rows []typeCountRow
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return threatdesk.TypeCounts{}, err
	}

	var counts threatdesk.TypeCounts
	for _, row := range rows {
		counts.Add(row.Type, row.N)
	}
	return counts, nil
}

func (s *Service) activeCampaigns(ctx context.Context, cutoff time.Time) (int, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("campaigns").
		Where(sq.Eq{"status": threatdesk.CampaignStatusActive}).
		Where(sq.GtOrEq{"last_seen": cutoff}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.store.DB.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// topThreatActors ranks actors by the number of distinct indicators
// reachable through their campaigns, capped at TopThreatActorLimit.
// Ties order arbitrarily.
func (s *Service) topThreatActors(ctx context.Context) ([]threatdesk.TopThreatActor, error) {
	query, args, err := sq.Select("ta.id", "ta.name", "COUNT(DISTINCT ci.indicator_id) AS indicator_count").
		From("threat_actors ta").
		Join("actor_campaigns ac ON ac.threat_actor_id = ta.id").
		Join("campaign_indicators ci ON ci.campaign_id = ac.campaign_id").
		GroupBy("ta.id").
		OrderBy("indicator_count DESC").
		Limit(threatdesk.TopThreatActorLimit).
		ToSql()
	if err != nil {
		return nil, err
	}

	actors := []threatdesk.TopThreatActor{}
	if err := s.store.DB.SelectContext(ctx, &actors, query, args...); err != nil {
		return nil, err
	}
	return actors, nil
}
