package threats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/sqlite"
)

// testNow pins the service clock; the fixture below is laid out around
// this instant.
var testNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()

	store := sqlite.NewTestStore(t)
	seedFixture(t, store)

	svc := NewService(zaptest.NewLogger(t), store)
	svc.now = func() time.Time { return testNow }
	return svc
}

func ts(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// seedFixture loads a small dataset spanning January 2024:
//
//	ind-1 (ip) is observed in all three campaigns and has six outgoing
//	relationship edges; camp-1 runs the whole month with observations in
//	four distinct Monday-anchored weeks; actor-1 is linked to camp-1 and
//	camp-2 with different confidences.
func seedFixture(t *testing.T, store *sqlite.SqlStore) {
	t.Helper()

	indicators := []struct {
		id         string
		typ        threatdesk.IndicatorType
		value      string
		confidence float64
		firstSeen  time.Time
		lastSeen   time.Time
		tags       threatdesk.Tags
	}{
		{"ind-1", threatdesk.IndicatorTypeIP, "203.0.113.7", 0.95, ts(2024, 1, 2, 0, 0), ts(2024, 1, 30, 0, 0), threatdesk.Tags{"botnet", "c2"}},
		{"ind-2", threatdesk.IndicatorTypeDomain, "evil.example.com", 0.8, ts(2024, 1, 5, 0, 0), ts(2024, 1, 28, 0, 0), threatdesk.Tags{}},
		{"ind-3", threatdesk.IndicatorTypeURL, "http://evil.example.com/payload", 0.7, ts(2024, 1, 8, 0, 0), ts(2024, 1, 25, 0, 0), threatdesk.Tags{}},
		{"ind-4", threatdesk.IndicatorTypeHash, "d41d8cd98f00b204e9800998ecf8427e", 0.6, ts(2024, 1, 10, 0, 0), ts(2024, 1, 20, 0, 0), threatdesk.Tags{"stage2"}},
		{"ind-5", threatdesk.IndicatorTypeIP, "198.51.100.23", 0.5, ts(2023, 12, 1, 0, 0), ts(2023, 12, 15, 0, 0), threatdesk.Tags{}},
		{"ind-6", threatdesk.IndicatorTypeDomain, "phish.example.net", 0.4, ts(2024, 1, 15, 0, 0), ts(2024, 1, 31, 0, 0), threatdesk.Tags{}},
		{"ind-7", threatdesk.IndicatorTypeIP, "192.0.2.99", 0.3, ts(2024, 2, 1, 0, 0), ts(2024, 2, 1, 6, 0), threatdesk.Tags{}},
	}
	for _, i := range indicators {
		_, err := store.DB.Exec(
			`INSERT INTO indicators (id, type, value, confidence, first_seen, last_seen, tags) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i.id, i.typ, i.value, i.confidence, i.firstSeen, i.lastSeen, i.tags)
		require.NoError(t, err)
	}

	campaigns := []struct {
		id, name, description string
		firstSeen, lastSeen   time.Time
		status                threatdesk.CampaignStatus
	}{
		{"camp-1", "Operation Dust", "credential harvesting wave", ts(2024, 1, 1, 0, 0), ts(2024, 1, 31, 0, 0), threatdesk.CampaignStatusActive},
		{"camp-2", "Winter Siphon", "", ts(2023, 11, 1, 0, 0), ts(2023, 12, 10, 0, 0), "concluded"},
		{"camp-3", "Quiet Relay", "", ts(2024, 1, 12, 0, 0), ts(2024, 1, 20, 0, 0), threatdesk.CampaignStatusActive},
	}
	for _, c := range campaigns {
		_, err := store.DB.Exec(
			`INSERT INTO campaigns (id, name, description, first_seen, last_seen, status) VALUES (?, ?, ?, ?, ?, ?)`,
			c.id, c.name, c.description, c.firstSeen, c.lastSeen, c.status)
		require.NoError(t, err)
	}

	actors := [][2]string{
		{"actor-1", "Crimson Bear"},
		{"actor-2", "Silent Lynx"},
		{"actor-3", "Static Panda"},
	}
	for _, a := range actors {
		_, err := store.DB.Exec(`INSERT INTO threat_actors (id, name) VALUES (?, ?)`, a[0], a[1])
		require.NoError(t, err)
	}

	observations := []struct {
		campaignID, indicatorID string
		observedAt              time.Time
	}{
		{"camp-1", "ind-1", ts(2024, 1, 2, 10, 0)},
		{"camp-1", "ind-2", ts(2024, 1, 3, 9, 0)},
		{"camp-1", "ind-1", ts(2024, 1, 8, 8, 0)},
		{"camp-1", "ind-3", ts(2024, 1, 10, 14, 0)},
		{"camp-1", "ind-4", ts(2024, 1, 14, 23, 0)},
		{"camp-1", "ind-6", ts(2024, 1, 15, 0, 0)},
		{"camp-1", "ind-1", ts(2024, 1, 30, 18, 0)},
		{"camp-2", "ind-5", ts(2023, 12, 1, 0, 0)},
		{"camp-2", "ind-1", ts(2023, 12, 5, 12, 0)},
		{"camp-3", "ind-6", ts(2024, 1, 18, 9, 0)},
		{"camp-3", "ind-1", ts(2024, 1, 20, 10, 0)},
	}
	for _, o := range observations {
		_, err := store.DB.Exec(
			`INSERT INTO campaign_indicators (campaign_id, indicator_id, observed_at) VALUES (?, ?, ?)`,
			o.campaignID, o.indicatorID, o.observedAt)
		require.NoError(t, err)
	}

	links := []struct {
		actorID, campaignID string
		confidence          float64
	}{
		{"actor-1", "camp-1", 0.9},
		{"actor-2", "camp-1", 0.6},
		{"actor-1", "camp-2", 0.75},
		{"actor-3", "camp-3", 0.5},
	}
	for _, l := range links {
		_, err := store.DB.Exec(
			`INSERT INTO actor_campaigns (threat_actor_id, campaign_id, confidence) VALUES (?, ?, ?)`,
			l.actorID, l.campaignID, l.confidence)
		require.NoError(t, err)
	}

	// six outgoing edges from ind-1 so the detail document has to cap
	// the related list
	relationships := []struct {
		target, typ   string
		firstObserved time.Time
	}{
		{"ind-2", "resolves_to", ts(2024, 1, 20, 0, 0)},
		{"ind-3", "hosts", ts(2024, 1, 18, 0, 0)},
		{"ind-4", "dropped", ts(2024, 1, 16, 0, 0)},
		{"ind-5", "communicates_with", ts(2024, 1, 14, 0, 0)},
		{"ind-6", "resolves_to", ts(2024, 1, 12, 0, 0)},
		{"ind-7", "communicates_with", ts(2024, 1, 10, 0, 0)},
	}
	for _, r := range relationships {
		_, err := store.DB.Exec(
			`INSERT INTO indicator_relationships (source_indicator_id, target_indicator_id, relationship_type, first_observed) VALUES (?, ?, ?, ?)`,
			"ind-1", r.target, r.typ, r.firstObserved)
		require.NoError(t, err)
	}
}
