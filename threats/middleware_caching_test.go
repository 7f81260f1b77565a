package threats

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/cache"
	platerrors "github.com/threatdesk/threatdesk/kit/platform/errors"
	"github.com/threatdesk/threatdesk/mock"
)

type fakeProvider struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		data: map[string][]byte{},
		ttls: map[string]time.Duration{},
	}
}

func (p *fakeProvider) Get(_ context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, p.getErr
	}
	data, ok := p.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return data, nil
}

func (p *fakeProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.setErr != nil {
		return p.setErr
	}
	p.data[key] = value
	p.ttls[key] = ttl
	return nil
}

func (p *fakeProvider) Close() error { return nil }

func testSummary() *threatdesk.DashboardSummary {
	return &threatdesk.DashboardSummary{
		TimeRange:             threatdesk.TimeRange7d,
		NewIndicators:         threatdesk.TypeCounts{IP: 2, Domain: 1},
		ActiveCampaigns:       3,
		TopThreatActors:       []threatdesk.TopThreatActor{{ID: "actor-1", Name: "Crimson Bear", IndicatorCount: 6}},
		IndicatorDistribution: threatdesk.TypeCounts{IP: 4, Domain: 2, URL: 1, Hash: 1},
	}
}

func TestCachingService_DashboardSummary(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	underlying := mock.NewMockThreatService(ctrl)
	provider := newFakeProvider()
	svc := NewCachingService(zaptest.NewLogger(t), provider, underlying)

	// the underlying service must only be hit once
	underlying.EXPECT().
		DashboardSummary(gomock.Any(), threatdesk.TimeRange7d).
		Return(testSummary(), nil).
		Times(1)

	ctx := context.Background()

	fresh, err := svc.DashboardSummary(ctx, threatdesk.TimeRange7d)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Equal(t, DashboardCacheTTL, provider.ttls[DashboardCacheKey(threatdesk.TimeRange7d)])

	cached, err := svc.DashboardSummary(ctx, threatdesk.TimeRange7d)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)

	// cached and fresh documents are byte-identical on the wire
	freshBody, err := json.Marshal(fresh)
	require.NoError(t, err)
	cachedBody, err := json.Marshal(cached)
	require.NoError(t, err)
	require.Equal(t, freshBody, cachedBody)
}

func TestCachingService_GetFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	underlying := mock.NewMockThreatService(ctrl)
	provider := newFakeProvider()
	provider.getErr = errors.New("connection refused")
	svc := NewCachingService(zaptest.NewLogger(t), provider, underlying)

	underlying.EXPECT().
		DashboardSummary(gomock.Any(), threatdesk.TimeRange24h).
		Return(testSummary(), nil).
		Times(2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		got, err := svc.DashboardSummary(ctx, threatdesk.TimeRange24h)
		require.NoError(t, err)
		require.False(t, got.CacheHit)
		require.Equal(t, 3, got.ActiveCampaigns)
	}
}

func TestCachingService_SetFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	underlying := mock.NewMockThreatService(ctrl)
	provider := newFakeProvider()
	provider.setErr = errors.New("OOM command not allowed")
	svc := NewCachingService(zaptest.NewLogger(t), provider, underlying)

	underlying.EXPECT().
		DashboardSummary(gomock.Any(), threatdesk.TimeRange30d).
		Return(testSummary(), nil).
		Times(1)

	got, err := svc.DashboardSummary(context.Background(), threatdesk.TimeRange30d)
	require.NoError(t, err)
	require.False(t, got.CacheHit)
}

func TestCachingService_UndecodableEntry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	underlying := mock.NewMockThreatService(ctrl)
	provider := newFakeProvider()
	provider.data[DashboardCacheKey(threatdesk.TimeRange7d)] = []byte("{not json")
	svc := NewCachingService(zaptest.NewLogger(t), provider, underlying)

	underlying.EXPECT().
		DashboardSummary(gomock.Any(), threatdesk.TimeRange7d).
		Return(testSummary(), nil).
		Times(1)

	got, err := svc.DashboardSummary(context.Background(), threatdesk.TimeRange7d)
	require.NoError(t, err)
	require.False(t, got.CacheHit)
}

func TestCachingService_InvalidTimeRange(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	underlying := mock.NewMockThreatService(ctrl)
	svc := NewCachingService(zaptest.NewLogger(t), newFakeProvider(), underlying)

	_, err := svc.DashboardSummary(context.Background(), "1y")
	require.Error(t, err)
	require.Equal(t, platerrors.EInvalid, platerrors.ErrorCode(err))
}

func TestCachingService_Passthrough(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	underlying := mock.NewMockThreatService(ctrl)
	provider := newFakeProvider()
	svc := NewCachingService(zaptest.NewLogger(t), provider, underlying)

	detail := &threatdesk.IndicatorDetail{Indicator: threatdesk.Indicator{ID: "ind-1"}}
	underlying.EXPECT().
		FindIndicatorByID(gomock.Any(), "ind-1").
		Return(detail, nil)

	got, err := svc.FindIndicatorByID(context.Background(), "ind-1")
	require.NoError(t, err)
	require.Equal(t, detail, got)
	require.Empty(t, provider.data)
}
