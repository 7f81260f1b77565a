package threats

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/kit/platform/errors"
)

func TestCampaignTimeline_ByDay(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	got, err := svc.CampaignTimeline(context.Background(), "camp-1", threatdesk.TimelineFilter{GroupBy: threatdesk.GroupByDay})
	require.NoError(t, err)

	require.Equal(t, "camp-1", got.Campaign.ID)
	require.Equal(t, threatdesk.CampaignStatusActive, got.Campaign.Status)

	dates := bucketDates(got.Timeline)
	require.Equal(t, []string{
		"2024-01-02", "2024-01-03", "2024-01-08", "2024-01-10",
		"2024-01-14", "2024-01-15", "2024-01-30",
	}, dates)

	first := got.Timeline[0]
	require.Equal(t, []threatdesk.ObservedIndicator{
		{ID: "ind-1", Type: threatdesk.IndicatorTypeIP},
	}, first.Indicators)
	require.Equal(t, threatdesk.TypeCounts{IP: 1}, first.Counts)

	require.Equal(t, threatdesk.TimelineSummary{
		TotalIndicators: 7,
		UniqueIPs:       3,
		UniqueDomains:   2,
		Duration:        30,
	}, got.Summary)
}

func TestCampaignTimeline_ByWeek(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	got, err := svc.CampaignTimeline(context.Background(), "camp-1", threatdesk.TimelineFilter{GroupBy: threatdesk.GroupByWeek})
	require.NoError(t, err)

	for _, bucket := range got.Timeline {
		day, err := threatdesk.ParseDate(bucket.Date)
		require.NoError(t, err)
		require.Equal(t, time.Monday, day.Weekday())
	}

	// every bucket anchors on a Monday; Jan 8 collects Jan 8-14
	want := []threatdesk.TimelineBucket{
		{
			Date: "2024-01-01",
			Indicators: []threatdesk.ObservedIndicator{
				{ID: "ind-1", Type: threatdesk.IndicatorTypeIP},
				{ID: "ind-2", Type: threatdesk.IndicatorTypeDomain},
			},
			Counts: threatdesk.TypeCounts{IP: 1, Domain: 1},
		},
		{
			Date: "2024-01-08",
			Indicators: []threatdesk.ObservedIndicator{
				{ID: "ind-1", Type: threatdesk.IndicatorTypeIP},
				{ID: "ind-3", Type: threatdesk.IndicatorTypeURL},
				{ID: "ind-4", Type: threatdesk.IndicatorTypeHash},
			},
			Counts: threatdesk.TypeCounts{IP: 1, URL: 1, Hash: 1},
		},
		{
			Date: "2024-01-15",
			Indicators: []threatdesk.ObservedIndicator{
				{ID: "ind-6", Type: threatdesk.IndicatorTypeDomain},
			},
			Counts: threatdesk.TypeCounts{Domain: 1},
		},
		{
			Date: "2024-01-29",
			Indicators: []threatdesk.ObservedIndicator{
				{ID: "ind-1", Type: threatdesk.IndicatorTypeIP},
			},
			Counts: threatdesk.TypeCounts{IP: 1},
		},
	}
	if diff := cmp.Diff(want, got.Timeline); diff != "" {
		t.Fatalf("unexpected timeline (-want +got):\n%s", diff)
	}
}

func TestCampaignTimeline_DateRange(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	got, err := svc.CampaignTimeline(context.Background(), "camp-1", threatdesk.TimelineFilter{
		StartDate: &start,
		EndDate:   &end,
		GroupBy:   threatdesk.GroupByDay,
	})
	require.NoError(t, err)

	// both ends inclusive: Jan 8 and Jan 15 observations stay
	require.Equal(t, []string{
		"2024-01-08", "2024-01-10", "2024-01-14", "2024-01-15",
	}, bucketDates(got.Timeline))
	require.Equal(t, 4, got.Summary.TotalIndicators)

	// the duration ignores the requested range
	require.Equal(t, 30, got.Summary.Duration)
}

func TestCampaignTimeline_EmptyRange(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	got, err := svc.CampaignTimeline(context.Background(), "camp-1", threatdesk.TimelineFilter{
		StartDate: &start,
		GroupBy:   threatdesk.GroupByDay,
	})
	require.NoError(t, err)

	require.NotNil(t, got.Timeline)
	require.Empty(t, got.Timeline)
	require.Zero(t, got.Summary.TotalIndicators)
	require.Zero(t, got.Summary.UniqueIPs)
	require.Zero(t, got.Summary.UniqueDomains)
	require.Equal(t, 30, got.Summary.Duration)
}

func TestCampaignTimeline_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.CampaignTimeline(context.Background(), "camp-nope", threatdesk.TimelineFilter{GroupBy: threatdesk.GroupByDay})
	require.Error(t, err)
	require.Equal(t, errors.ENotFound, errors.ErrorCode(err))
	require.Equal(t, map[string]interface{}{"id": "camp-nope"}, errors.ErrorDetails(err))
}

func TestCampaignTimeline_InvalidGroupBy(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.CampaignTimeline(context.Background(), "camp-1", threatdesk.TimelineFilter{GroupBy: "month"})
	require.Error(t, err)
	require.Equal(t, errors.EInvalid, errors.ErrorCode(err))
}

func TestWeekOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		day  string
		want string
	}{
		{"2024-01-01", "2024-01-01"}, // a Monday anchors itself
		{"2024-01-07", "2024-01-01"}, // Sunday belongs to the prior Monday
		{"2024-01-08", "2024-01-08"},
		{"2024-01-14", "2024-01-08"},
		{"2024-01-31", "2024-01-29"},
	}

	for _, tt := range tests {
		day, err := threatdesk.ParseDate(tt.day)
		require.NoError(t, err)
		require.Equal(t, tt.want, threatdesk.FormatDate(threatdesk.WeekOf(day)), "week of %s", tt.day)
	}
}

func bucketDates(timeline []threatdesk.TimelineBucket) []string {
	dates := make([]string, 0, len(timeline))
	for _, b := range timeline {
		dates = append(dates, b.Date)
	}
	return dates
}
