// Package transport exposes the threat query service over HTTP.
package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/kit/platform/errors"
	kithttp "github.com/threatdesk/threatdesk/kit/transport/http"
)

// CacheHeader marks whether a dashboard summary was served from the
// cache.
const CacheHeader = "X-Cache"

// ThreatHandler is the handler for the threat query service.
type ThreatHandler struct {
	chi.Router

	api *kithttp.API
	log *zap.Logger

	threatService threatdesk.ThreatService
}

func NewThreatHandler(log *zap.Logger, threatService threatdesk.ThreatService) *ThreatHandler {
	h := &ThreatHandler{
		log:           log,
		api:           kithttp.NewAPI(kithttp.WithLog(log)),
		threatService: threatService,
	}

	r := chi.NewRouter()

	r.Route("/indicators", func(r chi.Router) {
		// static route, takes precedence over the id match
		r.Get("/search", h.handleSearchIndicators)
		r.Get("/{id}", h.handleGetIndicator)
	})

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/{id}/indicators", h.handleCampaignTimeline)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/summary", h.handleDashboardSummary)
	})

	h.Router = r

	return h
}

func (h *ThreatHandler) handleGetIndicator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.threatService.FindIndicatorByID(r.Context(), id)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, detail)
}

func (h *ThreatHandler) handleSearchIndicators(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeIndicatorFilter(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	page, err := decodePageRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	results, err := h.threatService.FindIndicators(r.Context(), filter, page)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, results)
}

func (h *ThreatHandler) handleCampaignTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	filter, err := decodeTimelineFilter(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	timeline, err := h.threatService.CampaignTimeline(r.Context(), id, filter)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, timeline)
}

func (h *ThreatHandler) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	tr := threatdesk.DefaultTimeRange
	if v := r.URL.Query().Get("time_range"); v != "" {
		tr = threatdesk.TimeRange(v)
	}

	summary, err := h.threatService.DashboardSummary(r.Context(), tr)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if summary.CacheHit {
		w.Header().Set(CacheHeader, "HIT")
	} else {
		w.Header().Set(CacheHeader, "MISS")
	}

	h.api.Respond(w, r, http.StatusOK, summary)
}

func decodeIndicatorFilter(r *http.Request) (threatdesk.IndicatorFilter, error) {
	q := r.URL.Query()

	filter := threatdesk.IndicatorFilter{
		Type:          threatdesk.IndicatorType(q.Get("type")),
		Value:         q.Get("value"),
		ThreatActorID: q.Get("threat_actor"),
		CampaignID:    q.Get("campaign"),
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"first_seen_after", &filter.FirstSeenAfter},
		{"last_seen_before", &filter.LastSeenBefore},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := threatdesk.ParseDate(v)
		if err != nil {
			return threatdesk.IndicatorFilter{}, threatdesk.ErrBadDate(p.name, v)
		}
		*p.dst = &t
	}

	return filter, nil
}

func decodePageRequest(r *http.Request) (threatdesk.PageRequest, error) {
	q := r.URL.Query()

	page := threatdesk.PageRequest{
		Page:  1,
		Limit: threatdesk.DefaultPageLimit,
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &page.Page},
		{"limit", &page.Limit},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return threatdesk.PageRequest{}, &errors.Error{
				Code:    errors.EInvalid,
				Msg:     fmt.Sprintf("%s must be an integer", p.name),
				Details: map[string]interface{}{p.name: v},
			}
		}
		*p.dst = n
	}

	return page, nil
}

func decodeTimelineFilter(r *http.Request) (threatdesk.TimelineFilter, error) {
	q := r.URL.Query()

	filter := threatdesk.TimelineFilter{
		GroupBy: threatdesk.GroupByDay,
	}
	if v := q.Get("group_by"); v != "" {
		filter.GroupBy = threatdesk.GroupBy(v)
	}
	if err := filter.GroupBy.Valid(); err != nil {
		return threatdesk.TimelineFilter{}, err
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &filter.StartDate},
		{"end_date", &filter.EndDate},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := threatdesk.ParseDate(v)
		if err != nil {
			return threatdesk.TimelineFilter{}, threatdesk.ErrBadDate(p.name, v)
		}
		*p.dst = &t
	}

	return filter, nil
}
