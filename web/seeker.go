package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"log/slog"

	"github.com/gophora/portal/internal/browse"
	"github.com/gophora/portal/internal/dashboard"
	"github.com/gophora/portal/internal/models"
	"github.com/gophora/portal/internal/session"
	"github.com/gophora/portal/pkg/gophora"
)

type SeekerHandler struct {
	api    *gophora.Client
	values *session.Store
	stats  *dashboard.Aggregator
}

func NewSeekerHandler(api *gophora.Client, values *session.Store, stats *dashboard.Aggregator) *SeekerHandler {
	return &SeekerHandler{api: api, values: values, stats: stats}
}

func (h *SeekerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p := newPage(r, "Seeker Dashboard")
	stats, err := h.stats.Seeker(r.Context(), sidFrom(r), sessionFrom(r))
	if err != nil {
		p.Error = errText(err)
	}
	p.Data = stats
	render(w, http.StatusOK, "seeker_dashboard", p)
}

type seekerRow struct {
	Opportunity models.Opportunity
	TagList     string
	Applied     bool
}

type seekerBrowseData struct {
	Query     string
	Category  string
	Location  string
	Types     []string
	Locations []string
	Rows      []seekerRow
}

// browseData assembles the filtered listing view. Filtering happens here,
// not on the backend; the backend returns the full open listing.
func (h *SeekerHandler) browseData(r *http.Request, query, category, location string) (seekerBrowseData, error) {
	data := seekerBrowseData{
		Query:    query,
		Category: category,
		Location: location,
		Types:    models.OpportunityTypes,
	}

	ops, err := h.api.Opportunities(r.Context())
	if err != nil {
		return data, err
	}

	data.Locations = browse.LocationOptions(ops, category)

	applied, err := h.values.AppliedIDs(r.Context(), sidFrom(r))
	if err != nil {
		logger.Warn("applied id read failed", slog.Any("err", err))
		applied = map[int64]bool{}
	}

	for _, op := range browse.FilterSeeker(ops, query, category, location) {
		data.Rows = append(data.Rows, seekerRow{
			Opportunity: op,
			TagList:     strings.Join(op.Tags, ", "),
			Applied:     applied[op.ID],
		})
	}
	return data, nil
}

func (h *SeekerHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := newPage(r, "Browse Opportunities")
	data, err := h.browseData(r, q.Get("q"), q.Get("category"), q.Get("location"))
	if err != nil {
		p.Error = errText(err)
	}
	p.Data = data
	render(w, http.StatusOK, "seeker_opportunities", p)
}

// Apply submits an application. A second apply for the same id is a no-op
// handled entirely from session state, without a backend call.
func (h *SeekerHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sid := sidFrom(r)
	query := r.PostFormValue("q")
	category := r.PostFormValue("category")
	location := r.PostFormValue("location")
	back := "/seeker/opportunities"
	if qs := listingQuery(query, category, location); qs != "" {
		back += "?" + qs
	}

	applied, err := h.values.AppliedIDs(r.Context(), sid)
	if err == nil && applied[id] {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if _, err := h.api.Apply(r.Context(), sessionFrom(r).Token, id); err != nil {
		p := newPage(r, "Browse Opportunities")
		p.Error = errText(err)
		data, derr := h.browseData(r, query, category, location)
		if derr != nil {
			logger.Warn("listing reload failed", slog.Any("err", derr))
		}
		p.Data = data
		render(w, http.StatusOK, "seeker_opportunities", p)
		return
	}

	// bookkeeping failures degrade counters, they never fail the apply
	if err := h.values.AddAppliedID(r.Context(), sid, id); err != nil {
		logger.Warn("applied id write failed", slog.Any("err", err))
	}
	if err := h.values.Increment(r.Context(), sid, session.KeyApplicationsSentDelta); err != nil {
		logger.Warn("delta increment failed", slog.Any("err", err))
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

func listingQuery(query, category, location string) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if category != "" {
		v.Set("category", category)
	}
	if location != "" {
		v.Set("location", location)
	}
	return v.Encode()
}

type applicationsData struct {
	Applications []models.Application
}

func (h *SeekerHandler) Applications(w http.ResponseWriter, r *http.Request) {
	p := newPage(r, "My Applications")
	data := applicationsData{}

	apps, err := h.api.MyApplications(r.Context(), sessionFrom(r).Token)
	if err != nil {
		p.Error = errText(err)
	} else {
		data.Applications = apps
	}

	p.Data = data
	render(w, http.StatusOK, "seeker_applications", p)
}

func (h *SeekerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	renderProfile(w, r, h.api, "/seeker/profile", "")
}

func (h *SeekerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	saveProfile(w, r, h.api, "/seeker/profile")
}
