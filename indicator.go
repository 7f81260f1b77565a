package threatdesk

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/threatdesk/threatdesk/kit/platform/errors"
)

// IndicatorType enumerates the kinds of atomic threat data the service
// indexes.
type IndicatorType string

const (
	IndicatorTypeIP     IndicatorType = "ip"
	IndicatorTypeDomain IndicatorType = "domain"
	IndicatorTypeURL    IndicatorType = "url"
	IndicatorTypeHash   IndicatorType = "hash"
)

// IndicatorTypes lists all valid indicator types in a stable order.
var IndicatorTypes = []IndicatorType{
	IndicatorTypeIP,
	IndicatorTypeDomain,
	IndicatorTypeURL,
	IndicatorTypeHash,
}

// Tags is a list of free-form labels, stored as a JSON array in a single
// text column.
type Tags []string

var _ driver.Valuer = Tags{}

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}

	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), t)
	case []byte:
		return json.Unmarshal(v, t)
	default:
		return fmt.Errorf("cannot scan %T into Tags", value)
	}
}

// Indicator is an atomic piece of threat data. The dataset is populated
// by an external ingestion pipeline; this service never mutates it.
type Indicator struct {
	ID         string        `db:"id" json:"id"`
	Type       IndicatorType `db:"type" json:"type"`
	Value      string        `db:"value" json:"value"`
	Confidence float64       `db:"confidence" json:"confidence"`
	FirstSeen  time.Time     `db:"first_seen" json:"first_seen"`
	LastSeen   time.Time     `db:"last_seen" json:"last_seen"`
	Tags       Tags          `db:"tags" json:"tags"`
}

// ActorLink is a threat actor annotated with the confidence of the
// actor-campaign relationship through which the link to an indicator
// exists. An actor linked through multiple campaigns with differing
// confidences appears once per distinct (actor, confidence) pair.
type ActorLink struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Confidence float64 `db:"confidence" json:"confidence"`
}

// RelatedIndicator is the target of an outgoing relationship edge,
// annotated with the edge's type and first observation time.
type RelatedIndicator struct {
	ID               string        `db:"id" json:"id"`
	Type             IndicatorType `db:"type" json:"type"`
	Value            string        `db:"value" json:"value"`
	Confidence       float64       `db:"confidence" json:"confidence"`
	RelationshipType string        `db:"relationship_type" json:"relationship_type"`
	FirstObserved    time.Time     `db:"first_observed" json:"first_observed"`
}

// MaxRelatedIndicators bounds the related_indicators list on the
// indicator detail document.
const MaxRelatedIndicators = 5

// IndicatorDetail is the nested document returned for a single
// indicator lookup.
type IndicatorDetail struct {
	Indicator
	ThreatActors      []ActorLink        `json:"threat_actors"`
	Campaigns         []LinkedCampaign   `json:"campaigns"`
	RelatedIndicators []RelatedIndicator `json:"related_indicators"`
}

// IndicatorFilter holds the optional, conjunctive search filters. Zero
// values mean "no restriction".
type IndicatorFilter struct {
	Type           IndicatorType
	Value          string
	ThreatActorID  string
	CampaignID     string
	FirstSeenAfter *time.Time
	LastSeenBefore *time.Time
}

const (
	// DefaultPageLimit is used when a search request does not specify
	// a limit.
	DefaultPageLimit = 20

	// MaxPageLimit is the hard ceiling on the search page size.
	// Requested limits above it are clamped, not rejected.
	MaxPageLimit = 100
)

// PageRequest is 1-based pagination for the search endpoint.
type PageRequest struct {
	Page  int
	Limit int
}

// Validate rejects out-of-range pagination before any store access.
func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return &errors.Error{
			Code:    errors.EInvalid,
			Msg:     "page must be a positive integer",
			Details: map[string]interface{}{"page": p.Page},
		}
	}
	if p.Limit < 1 {
		return &errors.Error{
			Code:    errors.EInvalid,
			Msg:     "limit must be a positive integer",
			Details: map[string]interface{}{"limit": p.Limit},
		}
	}
	return nil
}

// Clamp caps the limit at MaxPageLimit.
func (p PageRequest) Clamp() PageRequest {
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// IndicatorSummary is a search result row with its derived counts.
type IndicatorSummary struct {
	Indicator
	CampaignCount    int `json:"campaign_count"`
	ThreatActorCount int `json:"threat_actor_count"`
}

// IndicatorPage is one page of search results. Total reflects the
// filtered count before pagination, not len(Data).
type IndicatorPage struct {
	Data       []IndicatorSummary `json:"data"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// ErrIndicatorNotFound builds the not-found error for an indicator id.
func ErrIndicatorNotFound(id string) *errors.Error {
	return &errors.Error{
		Code:    errors.ENotFound,
		Msg:     fmt.Sprintf("indicator %q not found", id),
		Details: map[string]interface{}{"id": id},
	}
}
