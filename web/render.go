package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gophora/portal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists every renderable screen; each parses together with the
// shared layout and partials.
var pageNames = []string{
	"landing",
	"login",
	"register",
	"chat",
	"notfound",
	"seeker_dashboard",
	"seeker_opportunities",
	"seeker_applications",
	"profile",
	"provider_dashboard",
	"provider_opportunities",
	"provider_applications",
	"provider_create",
	"provider_delete",
	"provider_verify",
}

var templates = func() map[string]*template.Template {
	m := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		m[name] = template.Must(template.ParseFS(templateFS,
			"templates/layout.html",
			"templates/opportunity_fields.html",
			"templates/"+name+".html",
		))
	}
	return m
}()

type navLink struct {
	Label string
	Href  string
}

var (
	publicNav = []navLink{
		{Label: "Home", Href: "/"},
		{Label: "Login", Href: "/login"},
		{Label: "Register", Href: "/register"},
		{Label: "Chat", Href: "/chat"},
	}
	seekerNav = []navLink{
		{Label: "Dashboard", Href: "/seeker/dashboard"},
		{Label: "Opportunities", Href: "/seeker/opportunities"},
		{Label: "My Applications", Href: "/seeker/applications"},
		{Label: "Profile", Href: "/seeker/profile"},
	}
	providerNav = []navLink{
		{Label: "Dashboard", Href: "/provider/dashboard"},
		{Label: "My Opportunities", Href: "/provider/opportunities"},
		{Label: "Post Opportunity", Href: "/provider/create-opportunity"},
		{Label: "Verification", Href: "/provider/verification"},
		{Label: "Profile", Href: "/provider/profile"},
	}
)

// navFor picks the chrome for the session's role.
func navFor(sess models.Session) []navLink {
	if !sess.LoggedIn() {
		return publicNav
	}
	switch sess.Role {
	case models.RoleSeeker:
		return seekerNav
	case models.RoleProvider:
		return providerNav
	default:
		return publicNav
	}
}

// page is the data every template receives. Error and Notice feed the
// inline banner; Data carries the screen-specific view model.
type page struct {
	Title   string
	Error   string
	Notice  string
	Session models.Session
	Nav     []navLink
	Data    any
}

func newPage(r *http.Request, title string) page {
	sess := sessionFrom(r)
	return page{Title: title, Session: sess, Nav: navFor(sess)}
}

func render(w http.ResponseWriter, status int, name string, p page) {
	t, ok := templates[name]
	if !ok {
		logger.Error("unknown template", slog.String("name", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", p); err != nil {
		logger.Error("render failed", slog.String("template", name), slog.Any("err", err))
	}
}
