package threatdesk

import (
	"context"
	"fmt"
	"time"

	"github.com/threatdesk/threatdesk/kit/platform/errors"
)

// TimeRange is the lookback window for the dashboard summary.
type TimeRange string

const (
	TimeRange24h TimeRange = "24h"
	TimeRange7d  TimeRange = "7d"
	TimeRange30d TimeRange = "30d"

	// DefaultTimeRange applies when a dashboard request omits the
	// time_range parameter.
	DefaultTimeRange = TimeRange7d
)

// TimeRanges lists the valid dashboard ranges in a stable order.
var TimeRanges = []TimeRange{TimeRange24h, TimeRange7d, TimeRange30d}

// Valid rejects any range outside the fixed enum, naming all valid
// values in the message.
func (tr TimeRange) Valid() error {
	switch tr {
	case TimeRange24h, TimeRange7d, TimeRange30d:
		return nil
	default:
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("time_range must be one of %q, %q or %q", TimeRange24h, TimeRange7d, TimeRange30d),
			Details: map[string]interface{}{
				"time_range": string(tr),
			},
		}
	}
}

// Duration converts the range to its hour equivalent.
func (tr TimeRange) Duration() time.Duration {
	switch tr {
	case TimeRange24h:
		return 24 * time.Hour
	case TimeRange30d:
		return 720 * time.Hour
	default:
		return 168 * time.Hour
	}
}

// DashboardSummary is the aggregate document behind /dashboard/summary.
// NewIndicators is scoped to the cutoff; IndicatorDistribution is a
// global snapshot of the whole indicator table.
type DashboardSummary struct {
	TimeRange             TimeRange        `json:"time_range"`
	NewIndicators         TypeCounts       `json:"new_indicators"`
	ActiveCampaigns       int              `json:"active_campaigns"`
	TopThreatActors       []TopThreatActor `json:"top_threat_actors"`
	IndicatorDistribution TypeCounts       `json:"indicator_distribution"`

	// CacheHit marks a document served from the cache-aside layer. It
	// never appears on the wire body so cached responses stay
	// byte-identical to fresh ones.
	CacheHit bool `json:"-"`
}

// IndicatorService finds single indicators and searches across them.
type IndicatorService interface {
	// FindIndicatorByID returns the nested detail document for one
	// indicator, or an ENotFound error carrying the id.
	FindIndicatorByID(ctx context.Context, id string) (*IndicatorDetail, error)

	// FindIndicators returns one page of indicators matching the
	// conjunction of the supplied filters, with derived per-row counts.
	FindIndicators(ctx context.Context, filter IndicatorFilter, page PageRequest) (*IndicatorPage, error)
}

// CampaignService builds observation timelines for campaigns.
type CampaignService interface {
	// CampaignTimeline groups a campaign's date-filtered observations
	// into day or week buckets, or returns ENotFound for an unknown id.
	CampaignTimeline(ctx context.Context, id string, filter TimelineFilter) (*CampaignTimeline, error)
}

// DashboardService computes the dashboard summary aggregate.
type DashboardService interface {
	DashboardSummary(ctx context.Context, tr TimeRange) (*DashboardSummary, error)
}

// ThreatService is the full query surface of the service. Decorators
// (logging, caching) wrap this interface.
type ThreatService interface {
	IndicatorService
	CampaignService
	DashboardService
}
