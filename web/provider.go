package web

import (
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/gorilla/mux"

	"github.com/gophora/portal/internal/browse"
	"github.com/gophora/portal/internal/dashboard"
	"github.com/gophora/portal/internal/models"
	"github.com/gophora/portal/pkg/gophora"
)

type ProviderHandler struct {
	api   *gophora.Client
	stats *dashboard.Aggregator
}

func NewProviderHandler(api *gophora.Client, stats *dashboard.Aggregator) *ProviderHandler {
	return &ProviderHandler{api: api, stats: stats}
}

func (h *ProviderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p := newPage(r, "Provider Dashboard")
	stats, err := h.stats.Provider(r.Context(), sessionFrom(r).Token)
	if err != nil {
		p.Error = errText(err)
	}
	p.Data = stats
	render(w, http.StatusOK, "provider_dashboard", p)
}

// opportunityFormView binds the posting form fields.
type opportunityFormView struct {
	Title       string
	Type        string
	Description string
	Location    string
	Tags        string
	Types       []string
}

func formViewOf(op models.Opportunity) opportunityFormView {
	return opportunityFormView{
		Title:       op.Title,
		Type:        op.Type,
		Description: op.Description,
		Location:    op.Location,
		Tags:        strings.Join(op.Tags, ", "),
		Types:       models.OpportunityTypes,
	}
}

type providerRow struct {
	Opportunity models.Opportunity
	TagList     string
	Editing     bool
	Form        opportunityFormView
}

type providerListData struct {
	Query      string
	TypeFilter string
	Types      []string
	Rows       []providerRow
}

// listing assembles the provider's own postings, filtered, with at most
// one row open for inline editing.
func (h *ProviderHandler) listing(r *http.Request, query, typeFilter string, editID int64) (providerListData, error) {
	if typeFilter == "" {
		typeFilter = browse.TypeAll
	}
	data := providerListData{
		Query:      query,
		TypeFilter: typeFilter,
		Types:      models.OpportunityTypes,
	}

	ops, err := h.api.MyOpportunities(r.Context(), sessionFrom(r).Token)
	if err != nil {
		return data, err
	}

	for _, op := range browse.FilterProvider(ops, query, typeFilter) {
		row := providerRow{
			Opportunity: op,
			TagList:     strings.Join(op.Tags, ", "),
		}
		if op.ID == editID {
			row.Editing = true
			row.Form = formViewOf(op)
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

func (h *ProviderHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	editID, _ := strconv.ParseInt(q.Get("edit"), 10, 64)

	p := newPage(r, "My Opportunities")
	data, err := h.listing(r, q.Get("q"), q.Get("type"), editID)
	if err != nil {
		p.Error = errText(err)
	}
	p.Data = data
	render(w, http.StatusOK, "provider_opportunities", p)
}

func opportunityForm(r *http.Request) gophora.OpportunityForm {
	return gophora.OpportunityForm{
		Title:       r.PostFormValue("title"),
		Type:        r.PostFormValue("type"),
		Description: r.PostFormValue("description"),
		Location:    r.PostFormValue("location"),
		Tags:        r.PostFormValue("tags"),
		Status:      r.PostFormValue("status"),
	}
}

func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if _, err := h.api.UpdateOpportunity(r.Context(), sessionFrom(r).Token, id, opportunityForm(r)); err != nil {
		p := newPage(r, "My Opportunities")
		p.Error = errText(err)
		data, derr := h.listing(r, "", "", id)
		if derr != nil {
			logger.Warn("listing reload failed", slog.Any("err", derr))
		}
		p.Data = data
		render(w, http.StatusOK, "provider_opportunities", p)
		return
	}
	http.Redirect(w, r, "/provider/opportunities", http.StatusSeeOther)
}

// ownOpportunity resolves id against the provider's own postings, so a
// screen is never rendered for somebody else's record.
func (h *ProviderHandler) ownOpportunity(r *http.Request, id int64) (models.Opportunity, bool, error) {
	ops, err := h.api.MyOpportunities(r.Context(), sessionFrom(r).Token)
	if err != nil {
		return models.Opportunity{}, false, err
	}
	for _, op := range ops {
		if op.ID == id {
			return op, true, nil
		}
	}
	return models.Opportunity{}, false, nil
}

// ConfirmDelete shows the confirmation screen. The record must be one of
// the provider's own postings.
func (h *ProviderHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	op, found, err := h.ownOpportunity(r, id)
	if err != nil {
		p := newPage(r, "My Opportunities")
		p.Error = errText(err)
		p.Data = providerListData{TypeFilter: browse.TypeAll, Types: models.OpportunityTypes}
		render(w, http.StatusOK, "provider_opportunities", p)
		return
	}
	if !found {
		NotFound(w, r)
		return
	}

	p := newPage(r, "Delete Opportunity")
	p.Data = struct{ Opportunity models.Opportunity }{op}
	render(w, http.StatusOK, "provider_delete", p)
}

type providerApplicationsData struct {
	Opportunity  models.Opportunity
	Applications []models.Application
}

// Applications lists the applications one of the provider's postings has
// received.
func (h *ProviderHandler) Applications(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	op, found, err := h.ownOpportunity(r, id)
	if err != nil {
		p := newPage(r, "My Opportunities")
		p.Error = errText(err)
		p.Data = providerListData{TypeFilter: browse.TypeAll, Types: models.OpportunityTypes}
		render(w, http.StatusOK, "provider_opportunities", p)
		return
	}
	if !found {
		NotFound(w, r)
		return
	}

	p := newPage(r, "Applications")
	data := providerApplicationsData{Opportunity: op}
	apps, err := h.api.OpportunityApplications(r.Context(), sessionFrom(r).Token, id)
	if err != nil {
		p.Error = errText(err)
	} else {
		data.Applications = apps
	}
	p.Data = data
	render(w, http.StatusOK, "provider_applications", p)
}

func (h *ProviderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.api.DeleteOpportunity(r.Context(), sessionFrom(r).Token, id); err != nil {
		p := newPage(r, "My Opportunities")
		p.Error = errText(err)
		data, derr := h.listing(r, "", "", 0)
		if derr != nil {
			logger.Warn("listing reload failed", slog.Any("err", derr))
		}
		p.Data = data
		render(w, http.StatusOK, "provider_opportunities", p)
		return
	}
	http.Redirect(w, r, "/provider/opportunities", http.StatusSeeOther)
}

type createData struct {
	Form opportunityFormView
}

func (h *ProviderHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	p := newPage(r, "Post Opportunity")
	p.Data = createData{Form: opportunityFormView{Types: models.OpportunityTypes}}
	render(w, http.StatusOK, "provider_create", p)
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := opportunityForm(r)
	if _, err := h.api.CreateOpportunity(r.Context(), sessionFrom(r).Token, form); err != nil {
		p := newPage(r, "Post Opportunity")
		p.Error = errText(err)
		p.Data = createData{Form: opportunityFormView{
			Title:       form.Title,
			Type:        form.Type,
			Description: form.Description,
			Location:    form.Location,
			Tags:        form.Tags,
			Types:       models.OpportunityTypes,
		}}
		render(w, http.StatusOK, "provider_create", p)
		return
	}
	http.Redirect(w, r, "/provider/opportunities", http.StatusSeeOther)
}

func (h *ProviderHandler) Profile(w http.ResponseWriter, r *http.Request) {
	renderProfile(w, r, h.api, "/provider/profile", "")
}

func (h *ProviderHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	saveProfile(w, r, h.api, "/provider/profile")
}

// verifyPlatforms lists the selectable social platforms for verification.
var verifyPlatforms = []string{"linkedin", "twitter", "github", "facebook"}

type verifyData struct {
	WebsiteURL  string
	Platform    string
	ProfileURL  string
	Description string
	Platforms   []string
	Result      *models.VerificationResult
}

func (h *ProviderHandler) VerifyForm(w http.ResponseWriter, r *http.Request) {
	p := newPage(r, "Verification")
	p.Data = verifyData{Platforms: verifyPlatforms}
	render(w, http.StatusOK, "provider_verify", p)
}

func (h *ProviderHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data := verifyData{
		WebsiteURL:  r.PostFormValue("websiteUrl"),
		Platform:    r.PostFormValue("platform"),
		ProfileURL:  r.PostFormValue("profileUrl"),
		Description: r.PostFormValue("description"),
		Platforms:   verifyPlatforms,
	}
	p := newPage(r, "Verification")

	token := sessionFrom(r).Token
	name := "our organization"
	if prof, err := h.api.MyProfile(r.Context(), token); err == nil && prof.CompanyName != "" {
		name = prof.CompanyName
	}

	req := gophora.VerificationRequest{
		ProviderName: name,
		ProviderType: "organization",
		DataSources: gophora.VerificationSources{
			WebsiteURL:      data.WebsiteURL,
			UserDescription: data.Description,
			SocialProfiles:  []gophora.SocialProfile{},
		},
	}
	if data.ProfileURL != "" {
		req.DataSources.SocialProfiles = append(req.DataSources.SocialProfiles,
			gophora.SocialProfile{Platform: data.Platform, URL: data.ProfileURL})
	}

	result, err := h.api.Verify(r.Context(), token, req)
	if err != nil {
		p.Error = errText(err)
	} else {
		data.Result = result
	}

	p.Data = data
	render(w, http.StatusOK, "provider_verify", p)
}
