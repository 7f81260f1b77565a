package threats

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/kit/tracing"
)

var indicatorColumns = []string{"id", "type", "value", "confidence", "first_seen", "last_seen", "tags"}

// FindIndicatorByID assembles the nested detail document for one
// indicator: the indicator's own fields, the threat actors reachable
// through its campaigns, the campaigns it was observed in, and up to
// five related indicators.
func (s *Service) FindIndicatorByID(ctx context.Context, id string) (*threatdesk.IndicatorDetail, error) {
	span, ctx := tracing.StartSpanFromContext(ctx, "threats.FindIndicatorByID")
	defer span.Finish()

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	query, args, err := sq.Select(indicatorColumns...).
		From("indicators").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ind threatdesk.Indicator
	if err := s.store.DB.GetContext(ctx, &ind, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, threatdesk.ErrIndicatorNotFound(id)
		}
		return nil, tracing.LogError(span, err)
	}

	actors, err := s.indicatorThreatActors(ctx, id)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}

	campaigns, err := s.indicatorCampaigns(ctx, id)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}

	related, err := s.relatedIndicators(ctx, id)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}

	return &threatdesk.IndicatorDetail{
		Indicator:         ind,
		ThreatActors:      actors,
		Campaigns:         campaigns,
		RelatedIndicators: related,
	}, nil
}

// indicatorThreatActors returns the distinct (actor, confidence) pairs
// linked to the indicator via any campaign, strongest link first. An
// actor linked through campaigns with differing confidences yields one
// row per confidence.
func (s *Service) indicatorThreatActors(ctx context.Context, id string) ([]threatdesk.ActorLink, error) {
	query, args, err := sq.Select("ta.id", "ta.name", "ac.confidence").
		Distinct().
		From("threat_actors ta").
		Join("actor_campaigns ac ON ac.threat_actor_id = ta.id").
		Join("campaign_indicators ci ON ci.campaign_id = ac.campaign_id").
		Where(sq.Eq{"ci.indicator_id": id}).
		OrderBy("ac.confidence DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	actors := []threatdesk.ActorLink{}
	if err := s.store.DB.SelectContext(ctx, &actors, query, args...); err != nil {
		return nil, err
	}

	return actors, nil
}

type linkedCampaignRow struct {
	threatdesk.Campaign
	// aggregate column, so the driver returns text rather than a time
	LastObserved string `db:"last_observed"`
}

// indicatorCampaigns returns every campaign the indicator was observed
// in, most recently observed first, with the derived active flag.
func (s *Service) indicatorCampaigns(ctx context.Context, id string) ([]threatdesk.LinkedCampaign, error) {
	query, args, err := sq.Select(
		"c.id", "c.name", "c.description", "c.first_seen", "c.last_seen", "c.status",
		"MAX(ci.observed_at) AS last_observed").
		From("campaigns c").
		Join("campaign_indicators ci ON ci.campaign_id = c.id").
		Where(sq.Eq{"ci.indicator_id": id}).
		GroupBy("c.id").
		OrderBy("last_observed DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []linkedCampaignRow
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	campaigns := make([]threatdesk.LinkedCampaign, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, threatdesk.LinkedCampaign{
			Campaign: row.Campaign,
			Active:   row.Status == threatdesk.CampaignStatusActive,
		})
	}

	return campaigns, nil
}

// relatedIndicators returns the most recently observed outgoing
// relationship edges, capped at MaxRelatedIndicators.
func (s *Service) relatedIndicators(ctx context.Context, id string) ([]threatdesk.RelatedIndicator, error) {
	query, args, err := sq.Select(
		"i.id", "i.type", "i.value", "i.confidence",
		"r.relationship_type", "r.first_observed").
		From("indicator_relationships r").
		Join("indicators i ON i.id = r.target_indicator_id").
		Where(sq.Eq{"r.source_indicator_id": id}).
		OrderBy("r.first_observed DESC").
		Limit(threatdesk.MaxRelatedIndicators).
		ToSql()
	if err != nil {
		return nil, err
	}

	related := []threatdesk.RelatedIndicator{}
	if err := s.store.DB.SelectContext(ctx, &related, query, args...); err != nil {
		return nil, err
	}

	return related, nil
}

// FindIndicators returns one page of indicators matching the
// conjunction of the supplied filters, most recently seen first, with
// the total filtered count and per-row derived counts.
func (s *Service) FindIndicators(ctx context.Context, filter threatdesk.IndicatorFilter, page threatdesk.PageRequest) (*threatdesk.IndicatorPage, error) {
	// validation happens before any store access
	if err := page.Validate(); err != nil {
		return nil, err
	}
	page = page.Clamp()

	span, ctx := tracing.StartSpanFromContext(ctx, "threats.FindIndicators")
	defer span.Finish()

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	cols := make([]string, 0, len(indicatorColumns))
	for _, c := range indicatorColumns {
		cols = append(cols, "i."+c)
	}

	query, args, err := applyIndicatorFilter(sq.Select(cols...).Distinct().From("indicators i"), filter).
		OrderBy("i.last_seen DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, err
	}

	var indicators []threatdesk.Indicator
	if err := s.store.DB.SelectContext(ctx, &indicators, query, args...); err != nil {
		return nil, tracing.LogError(span, err)
	}

	query, args, err = applyIndicatorFilter(sq.Select("COUNT(DISTINCT i.id)").From("indicators i"), filter).ToSql()
	if err != nil {
		return nil, err
	}

	var total int
	if err := s.store.DB.GetContext(ctx, &total, query, args...); err != nil {
		return nil, tracing.LogError(span, err)
	}

	ids := make([]string, 0, len(indicators))
	for _, ind := range indicators {
		ids = append(ids, ind.ID)
	}

	// the derived counts are two batched lookups scoped to the page's
	// ids, merged back by id, never one query per row
	campaignCounts, err := s.campaignCounts(ctx, ids)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}
	actorCounts, err := s.threatActorCounts(ctx, ids)
	if err != nil {
		return nil, tracing.LogError(span, err)
	}

	data := make([]threatdesk.IndicatorSummary, 0, len(indicators))
	for _, ind := range indicators {
		data = append(data, threatdesk.IndicatorSummary{
			Indicator:        ind,
			CampaignCount:    campaignCounts[ind.ID],
			ThreatActorCount: actorCounts[ind.ID],
		})
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + page.Limit - 1) / page.Limit
	}

	return &threatdesk.IndicatorPage{
		Data:       data,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: totalPages,
	}, nil
}

// applyIndicatorFilter adds the conjunctive search conditions, joining
// through the junction tables only when an actor or campaign filter
// requires it.
func applyIndicatorFilter(q sq.SelectBuilder, filter threatdesk.IndicatorFilter) sq.SelectBuilder {
	if filter.CampaignID != "" || filter.ThreatActorID != "" {
		q = q.Join("campaign_indicators ci ON ci.indicator_id = i.id")
	}
	if filter.ThreatActorID != "" {
		q = q.Join("actor_campaigns ac ON ac.campaign_id = ci.campaign_id").
			Where(sq.Eq{"ac.threat_actor_id": filter.ThreatActorID})
	}
	if filter.CampaignID != "" {
		q = q.Where(sq.Eq{"ci.campaign_id": filter.CampaignID})
	}
	if filter.Type != "" {
		q = q.Where(sq.Eq{"i.type": filter.Type})
	}
	if filter.Value != "" {
		q = q.Where(sq.Like{"i.value": "%" + filter.Value + "%"})
	}
	if filter.FirstSeenAfter != nil {
		q = q.Where(sq.GtOrEq{"i.first_seen": filter.FirstSeenAfter.UTC()})
	}
	if filter.LastSeenBefore != nil {
		q = q.Where(sq.LtOrEq{"i.last_seen": filter.LastSeenBefore.UTC()})
	}
	return q
}

type indicatorCountRow struct {
	IndicatorID string `db:"indicator_id"`
	N           int    `db:"n"`
}

// campaignCounts returns the number of distinct campaigns each of the
// given indicators appears in.
func (s *Service) campaignCounts(ctx context.Context, ids []string) (map[string]int, error) {
	if len(ids) == 0 {
		return map[string]int{}, nil
	}

	query, args, err := sq.Select("indicator_id", "COUNT(DISTINCT campaign_id) AS n").
		From("campaign_indicators").
		Where(sq.Eq{"indicator_id": ids}).
		GroupBy("indicator_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []indicatorCountRow
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return countsByID(rows), nil
}

// threatActorCounts returns the number of distinct threat actors linked
// to each of the given indicators through any campaign.
func (s *Service) threatActorCounts(ctx context.Context, ids []string) (map[string]int, error) {
	if len(ids) == 0 {
		return map[string]int{}, nil
	}

	query, args, err := sq.Select("ci.indicator_id", "COUNT(DISTINCT ac.threat_actor_id) AS n").
		From("campaign_indicators ci").
		Join("actor_campaigns ac ON ac.campaign_id = ci.campaign_id").
		Where(sq.Eq{"ci.indicator_id": ids}).
		GroupBy("ci.indicator_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []indicatorCountRow
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return countsByID(rows), nil
}

func countsByID(rows []indicatorCountRow) map[string]int {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.IndicatorID] = row.N
	}
	return counts
}
