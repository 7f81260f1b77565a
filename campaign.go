package threatdesk

import (
	"fmt"
	"strings"
	"time"

	"github.com/threatdesk/threatdesk/kit/platform/errors"
)

// CampaignStatus is the lifecycle state of a campaign as recorded by
// the ingestion pipeline.
type CampaignStatus string

// CampaignStatusActive is the only status this service derives behavior
// from; other values pass through untouched.
const CampaignStatusActive CampaignStatus = "active"

// Campaign is a named, time-bounded collection of observed indicators.
type Campaign struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	FirstSeen   time.Time      `db:"first_seen" json:"first_seen"`
	LastSeen    time.Time      `db:"last_seen" json:"last_seen"`
	Status      CampaignStatus `db:"status" json:"status"`
}

// LinkedCampaign is a campaign on the indicator detail document,
// carrying the derived active flag.
type LinkedCampaign struct {
	Campaign
	Active bool `json:"active"`
}

// GroupBy selects the timeline bucketing granularity.
type GroupBy string

const (
	GroupByDay  GroupBy = "day"
	GroupByWeek GroupBy = "week"
)

// Valid rejects anything but day/week grouping.
func (g GroupBy) Valid() error {
	switch g {
	case GroupByDay, GroupByWeek:
		return nil
	default:
		return &errors.Error{
			Code:    errors.EInvalid,
			Msg:     fmt.Sprintf("group_by must be one of %q or %q", GroupByDay, GroupByWeek),
			Details: map[string]interface{}{"group_by": string(g)},
		}
	}
}

// TimelineFilter restricts a campaign timeline to observations whose
// calendar date falls between StartDate and EndDate inclusive. A nil
// bound means no restriction on that side.
type TimelineFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	GroupBy   GroupBy
}

// ObservedIndicator identifies an indicator inside a timeline bucket.
type ObservedIndicator struct {
	ID   string        `db:"id" json:"id"`
	Type IndicatorType `db:"type" json:"type"`
}

// TypeCounts holds one counter per indicator type. All four types are
// always serialized, defaulting to zero.
type TypeCounts struct {
	IP     int `json:"ip"`
	Domain int `json:"domain"`
	URL    int `json:"url"`
	Hash   int `json:"hash"`
}

// Inc bumps the counter for the given type. Unknown types are ignored
// rather than rejected; the schema constrains the column.
func (c *TypeCounts) Inc(t IndicatorType) {
	c.Add(t, 1)
}

// Add adds n to the counter for the given type.
func (c *TypeCounts) Add(t IndicatorType, n int) {
	switch t {
	case IndicatorTypeIP:
		c.IP += n
	case IndicatorTypeDomain:
		c.Domain += n
	case IndicatorTypeURL:
		c.URL += n
	case IndicatorTypeHash:
		c.Hash += n
	}
}

// Get returns the counter for the given type.
func (c TypeCounts) Get(t IndicatorType) int {
	switch t {
	case IndicatorTypeIP:
		return c.IP
	case IndicatorTypeDomain:
		return c.Domain
	case IndicatorTypeURL:
		return c.URL
	case IndicatorTypeHash:
		return c.Hash
	default:
		return 0
	}
}

// TimelineBucket is one day or one Monday-anchored week of observations.
type TimelineBucket struct {
	Date       string              `json:"date"`
	Indicators []ObservedIndicator `json:"indicators"`
	Counts     TypeCounts          `json:"counts"`
}

// TimelineSummary aggregates the date-filtered observation set.
// UniqueIPs and UniqueDomains count observations of the matching type;
// Duration spans the campaign's own first_seen..last_seen in whole days
// regardless of the requested date range.
type TimelineSummary struct {
	TotalIndicators int `json:"total_indicators"`
	UniqueIPs       int `json:"unique_ips"`
	UniqueDomains   int `json:"unique_domains"`
	Duration        int `json:"duration"`
}

// CampaignTimeline is the timeline document for one campaign.
type CampaignTimeline struct {
	Campaign Campaign         `json:"campaign"`
	Timeline []TimelineBucket `json:"timeline"`
	Summary  TimelineSummary  `json:"summary"`
}

// ErrCampaignNotFound builds the not-found error for a campaign id.
func ErrCampaignNotFound(id string) *errors.Error {
	return &errors.Error{
		Code:    errors.ENotFound,
		Msg:     fmt.Sprintf("campaign %q not found", id),
		Details: map[string]interface{}{"id": id},
	}
}

// ErrBadDate builds the validation error for an unparseable date
// parameter.
func ErrBadDate(field, value string) *errors.Error {
	return &errors.Error{
		Code:    errors.EInvalid,
		Msg:     fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field),
		Details: map[string]interface{}{field: value},
	}
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekOf returns the most recent Monday on or before the timestamp's
// UTC calendar date, the anchor used for week bucketing.
func WeekOf(t time.Time) time.Time {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// FormatDate renders a bucket key the way timeline documents carry it.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD query parameter, trimming surrounding
// whitespace.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
