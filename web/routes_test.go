package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"log/slog"

	embedded "github.com/gophora/portal/db"
	"github.com/gophora/portal/internal/config"
	"github.com/gophora/portal/internal/db"
	"github.com/gophora/portal/internal/models"
	"github.com/gophora/portal/internal/session"
	"github.com/gophora/portal/pkg/geo"
	"github.com/gophora/portal/pkg/gophora"
	"github.com/gophora/portal/web"
)

const testToken = "test-bearer-token"

// fakeBackend emulates the Gophora REST API with canned data.
type fakeBackend struct {
	mu sync.Mutex

	loginFail       bool
	userRole        models.Role
	opportunities   []models.Opportunity
	myOpportunities []models.Opportunity
	applications    []models.Application

	loginCalls    int
	applyCalls    int
	deleteCalls   int
	registerCalls int
	lastRegister  map[string]any
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			panic(err)
		}
	}

	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/login":
		f.loginCalls++
		if f.loginFail {
			writeJSON(http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(http.StatusOK, map[string]string{"access_token": testToken, "token_type": "bearer"})
	case "POST /api/auth/register":
		f.registerCalls++
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
			return
		}
		f.lastRegister = req
		writeJSON(http.StatusCreated, map[string]any{"id": 1, "email": req["email"]})
	case "GET /api/users/me":
		writeJSON(http.StatusOK, models.User{ID: 1, Email: "user@example.com", FullName: "Test User", Role: f.userRole})
	case "GET /api/opportunities":
		writeJSON(http.StatusOK, f.opportunities)
	case "GET /api/opportunities/me":
		writeJSON(http.StatusOK, f.myOpportunities)
	case "GET /api/opportunities/recommend":
		writeJSON(http.StatusOK, f.opportunities)
	case "GET /api/applications/me":
		writeJSON(http.StatusOK, f.applications)
	case "POST /api/applications/apply":
		f.applyCalls++
		writeJSON(http.StatusOK, models.Application{ID: 1, Status: "Pending"})
	case "GET /api/profiles/me":
		writeJSON(http.StatusOK, models.Profile{UserID: 1, CompanyName: "Acme", Country: "Pakistan", City: "Karachi"})
	default:
		if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/opportunities/") && strings.HasSuffix(r.URL.Path, "/applications") {
			writeJSON(http.StatusOK, []models.Application{{ID: 11, Status: "Pending", CoverLetter: "Hi"}})
			return
		}
		if r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/opportunities/") {
			f.deleteCalls++
			writeJSON(http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
		writeJSON(http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (f *fakeBackend) counts() (login, apply int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.applyCalls
}

func fakeGeo() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"error":false,"msg":"ok","data":[{"country":"Pakistan","cities":["Karachi","Lahore"]}]}`)
	})
}

type portal struct {
	ts      *httptest.Server
	backend *fakeBackend
	client  *http.Client
}

func newPortal(t *testing.T, backend *fakeBackend) *portal {
	t.Helper()
	ctx := context.Background()

	bs := httptest.NewServer(backend)
	t.Cleanup(bs.Close)
	gs := httptest.NewServer(fakeGeo())
	t.Cleanup(gs.Close)

	conn, err := db.New(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open session db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(ctx, conn, embedded.Migrations); err != nil {
		t.Fatalf("migrate session db: %v", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewStore(conn, quiet)
	sessions := session.NewManager(store, []byte("0123456789abcdef0123456789abcdef"), "gophora_session")

	api, err := gophora.NewClient(gophora.Config{BaseURL: bs.URL, Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}
	t.Cleanup(func() { api.Close() })
	geoClient, err := geo.NewClient(geo.Config{BaseURL: gs.URL, Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("geo client: %v", err)
	}

	cfg := &config.Config{Addr: ":0", BackendURL: bs.URL, GeoURL: gs.URL, APITimeout: 5 * time.Second}
	ts := httptest.NewServer(web.SetupRoutes(cfg, "test", "now", api, geoClient, sessions))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	t.Cleanup(client.CloseIdleConnections)

	return &portal{ts: ts, backend: backend, client: client}
}

func (p *portal) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := p.client.Get(p.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func (p *portal) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := p.client.PostForm(p.ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func (p *portal) login(t *testing.T, role models.Role) {
	t.Helper()
	p.backend.mu.Lock()
	p.backend.userRole = role
	p.backend.mu.Unlock()

	resp, _ := p.postForm(t, "/login", url.Values{
		"role":     {string(role)},
		"email":    {"user@example.com"},
		"password": {"pw"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
}

func TestGuardRedirects(t *testing.T) {
	p := newPortal(t, &fakeBackend{})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantLoc    string
	}{
		{"Anonymous_SeekerDashboard", "/seeker/dashboard", http.StatusSeeOther, "/login"},
		{"Anonymous_SeekerOpportunities", "/seeker/opportunities", http.StatusSeeOther, "/login"},
		{"Anonymous_ProviderDashboard", "/provider/dashboard", http.StatusSeeOther, "/login"},
		{"Anonymous_Landing", "/", http.StatusOK, ""},
		{"Anonymous_Login", "/login", http.StatusOK, ""},
		{"Anonymous_Chat", "/chat", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := p.get(t, tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantLoc != "" {
				if loc := resp.Header.Get("Location"); loc != tt.wantLoc {
					t.Fatalf("location = %q, want %q", loc, tt.wantLoc)
				}
			}
		})
	}
}

func TestLoginFlow(t *testing.T) {
	p := newPortal(t, &fakeBackend{})

	p.backend.mu.Lock()
	p.backend.userRole = models.RoleSeeker
	p.backend.mu.Unlock()

	resp, _ := p.postForm(t, "/login", url.Values{
		"role":     {"seeker"},
		"email":    {"user@example.com"},
		"password": {"pw"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/seeker/dashboard" {
		t.Fatalf("location = %q, want /seeker/dashboard", loc)
	}

	resp, body := p.get(t, "/seeker/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Seeker Dashboard") {
		t.Fatalf("dashboard body missing heading")
	}
}

func TestLoginValidation(t *testing.T) {
	t.Run("MissingRole", func(t *testing.T) {
		p := newPortal(t, &fakeBackend{})
		resp, body := p.postForm(t, "/login", url.Values{
			"email":    {"user@example.com"},
			"password": {"pw"},
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if !strings.Contains(body, "Please select a role before logging in.") {
			t.Fatalf("missing role banner not rendered")
		}
		if login, _ := p.backend.counts(); login != 0 {
			t.Fatalf("backend login called %d times, want 0", login)
		}
	})

	t.Run("BadCredentials", func(t *testing.T) {
		p := newPortal(t, &fakeBackend{loginFail: true})
		_, body := p.postForm(t, "/login", url.Values{
			"role":     {"seeker"},
			"email":    {"user@example.com"},
			"password": {"wrong"},
		})
		if !strings.Contains(body, "Incorrect email or password") {
			t.Fatalf("backend detail not rendered verbatim")
		}
	})

	t.Run("RoleMismatch", func(t *testing.T) {
		p := newPortal(t, &fakeBackend{userRole: models.RoleSeeker})
		_, body := p.postForm(t, "/login", url.Values{
			"role":     {"provider"},
			"email":    {"user@example.com"},
			"password": {"pw"},
		})
		if !strings.Contains(body, "You are not authorized to log in as a provider.") {
			t.Fatalf("role mismatch banner not rendered")
		}
	})
}

func TestWrongRoleBounced(t *testing.T) {
	p := newPortal(t, &fakeBackend{})
	p.login(t, models.RoleSeeker)

	resp, _ := p.get(t, "/provider/dashboard")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/seeker/dashboard" {
		t.Fatalf("location = %q, want /seeker/dashboard", loc)
	}
}

func TestApplyTwiceSkipsBackend(t *testing.T) {
	backend := &fakeBackend{
		opportunities: []models.Opportunity{
			{ID: 42, Title: "Go Developer", Type: "job", Location: "Karachi", Status: models.StatusOpen},
		},
	}
	p := newPortal(t, backend)
	p.login(t, models.RoleSeeker)

	resp, _ := p.postForm(t, "/seeker/opportunities/apply", url.Values{"id": {"42"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("first apply status = %d", resp.StatusCode)
	}
	if _, apply := backend.counts(); apply != 1 {
		t.Fatalf("apply calls = %d, want 1", apply)
	}

	resp, _ = p.postForm(t, "/seeker/opportunities/apply", url.Values{"id": {"42"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("second apply status = %d", resp.StatusCode)
	}
	if _, apply := backend.counts(); apply != 1 {
		t.Fatalf("apply calls after duplicate = %d, want 1", apply)
	}

	_, body := p.get(t, "/seeker/opportunities")
	if !strings.Contains(body, ">Applied</button>") {
		t.Fatalf("listing does not show the applied state")
	}
}

func TestSeekerDashboardConsumesDelta(t *testing.T) {
	backend := &fakeBackend{
		applications: []models.Application{
			{ID: 1, Status: "Pending"},
			{ID: 2, Status: "Accepted"},
		},
		opportunities: []models.Opportunity{
			{ID: 5, Title: "Intern", Type: "internship", Status: models.StatusOpen},
		},
	}
	p := newPortal(t, backend)
	p.login(t, models.RoleSeeker)

	// one local apply bumps the pending delta to 1
	if resp, _ := p.postForm(t, "/seeker/opportunities/apply", url.Values{"id": {"5"}}); resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("apply status = %d", resp.StatusCode)
	}

	_, body := p.get(t, "/seeker/dashboard")
	if !strings.Contains(body, `<p class="stat-value">3</p>`) {
		t.Fatalf("dashboard does not show applicationsSent=3:\n%s", body)
	}

	// the delta is gone, so a reload shows the backend count alone
	_, body = p.get(t, "/seeker/dashboard")
	if strings.Contains(body, `<p class="stat-value">3</p>`) {
		t.Fatalf("delta was double-counted on reload")
	}
	if !strings.Contains(body, `<p class="stat-value">2</p>`) {
		t.Fatalf("dashboard does not show applicationsSent=2 after consume")
	}
}

func TestProviderEditRoundTrip(t *testing.T) {
	backend := &fakeBackend{
		myOpportunities: []models.Opportunity{
			{
				ID:          9,
				Title:       "Go Developer",
				Type:        "job",
				Description: "Build backend services",
				Location:    "Karachi",
				Tags:        []string{"go", "backend"},
				Status:      models.StatusOpen,
			},
		},
	}
	p := newPortal(t, backend)
	p.login(t, models.RoleProvider)

	_, body := p.get(t, "/provider/opportunities?edit=9")
	for _, want := range []string{
		`value="Go Developer"`,
		`Build backend services`,
		`value="Karachi"`,
		`value="go, backend"`,
		`<option value="job" selected>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("edit form missing %q:\n%s", want, body)
		}
	}
}

func TestProviderDeleteFlow(t *testing.T) {
	backend := &fakeBackend{
		myOpportunities: []models.Opportunity{
			{ID: 9, Title: "Go Developer", Type: "job", Status: models.StatusOpen},
		},
	}
	p := newPortal(t, backend)
	p.login(t, models.RoleProvider)

	// the confirmation screen alone must not delete anything
	resp, body := p.get(t, "/provider/opportunities/9/delete")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Are you sure you want to delete") {
		t.Fatalf("confirmation prompt not rendered")
	}
	backend.mu.Lock()
	deletes := backend.deleteCalls
	backend.mu.Unlock()
	if deletes != 0 {
		t.Fatalf("delete called before confirmation")
	}

	resp, _ = p.postForm(t, "/provider/opportunities/9/delete", url.Values{})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	backend.mu.Lock()
	deletes = backend.deleteCalls
	backend.mu.Unlock()
	if deletes != 1 {
		t.Fatalf("delete calls = %d, want 1", deletes)
	}

	// an unknown record renders the not-found page
	resp, _ = p.get(t, "/provider/opportunities/404/delete")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown record status = %d, want 404", resp.StatusCode)
	}
}

func TestProviderApplicationsView(t *testing.T) {
	backend := &fakeBackend{
		myOpportunities: []models.Opportunity{
			{ID: 9, Title: "Go Developer", Type: "job", Status: models.StatusOpen},
		},
	}
	p := newPortal(t, backend)
	p.login(t, models.RoleProvider)

	resp, body := p.get(t, "/provider/opportunities/9/applications")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `Applications for "Go Developer"`) {
		t.Fatalf("heading not rendered")
	}
	if !strings.Contains(body, "Pending") {
		t.Fatalf("application row not rendered")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	p := newPortal(t, &fakeBackend{})
	p.login(t, models.RoleSeeker)

	resp, _ := p.postForm(t, "/logout", url.Values{})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp, _ = p.get(t, "/seeker/dashboard")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("post-logout status = %d, want redirect", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("location = %q, want /login", loc)
	}
}

func TestRegister(t *testing.T) {
	t.Run("PasswordMismatch", func(t *testing.T) {
		p := newPortal(t, &fakeBackend{})
		_, body := p.postForm(t, "/register", url.Values{
			"role":            {"seeker"},
			"name":            {"Test"},
			"email":           {"user@example.com"},
			"password":        {"one"},
			"confirmPassword": {"two"},
			"country":         {"Pakistan"},
			"city":            {"Karachi"},
		})
		if !strings.Contains(body, "Passwords do not match.") {
			t.Fatalf("mismatch banner not rendered")
		}
		p.backend.mu.Lock()
		registers := p.backend.registerCalls
		p.backend.mu.Unlock()
		if registers != 0 {
			t.Fatalf("backend register called %d times on mismatch, want 0", registers)
		}
	})

	t.Run("Success", func(t *testing.T) {
		p := newPortal(t, &fakeBackend{})
		resp, _ := p.postForm(t, "/register", url.Values{
			"role":            {"seeker"},
			"name":            {"Test"},
			"email":           {"user@example.com"},
			"password":        {"pw"},
			"confirmPassword": {"pw"},
			"country":         {"Pakistan"},
			"city":            {"Karachi"},
			"skills":          {"go, sql"},
		})
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Fatalf("location = %q, want /login", loc)
		}

		p.backend.mu.Lock()
		req := p.backend.lastRegister
		p.backend.mu.Unlock()
		if req == nil {
			t.Fatalf("backend register was never called")
		}
		if req["role"] != "seeker" || req["skills"] != "go, sql" || req["city"] != "Karachi" {
			t.Fatalf("unexpected register payload: %v", req)
		}

		_, body := p.get(t, "/login")
		if !strings.Contains(body, "Registration successful. Please log in.") {
			t.Fatalf("flash notice not rendered on login screen")
		}
	})

	t.Run("CountryCascade", func(t *testing.T) {
		p := newPortal(t, &fakeBackend{})
		_, body := p.get(t, "/register?role=seeker&country=Pakistan")
		if !strings.Contains(body, `<option value="Karachi"`) {
			t.Fatalf("city options not populated for selected country")
		}
	})
}

func TestChatReplies(t *testing.T) {
	p := newPortal(t, &fakeBackend{})

	_, body := p.postForm(t, "/chat", url.Values{"message": {"any ai roles?"}})
	if !strings.Contains(body, "Here are some AI opportunities for you!") {
		t.Fatalf("ai keyword reply not rendered")
	}

	// the transcript survives a plain reload
	_, body = p.get(t, "/chat")
	if !strings.Contains(body, "any ai roles?") {
		t.Fatalf("transcript not persisted in the session")
	}
}

func TestNotFound(t *testing.T) {
	p := newPortal(t, &fakeBackend{})

	resp, body := p.get(t, "/definitely-not-a-page")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if !strings.Contains(body, "Page Not Found") {
		t.Fatalf("not-found page not rendered")
	}
}

func TestHealthAndVersion(t *testing.T) {
	p := newPortal(t, &fakeBackend{})

	resp, body := p.get(t, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"status":"ok"`) {
		t.Fatalf("unexpected health body: %s", body)
	}

	_, body = p.get(t, "/version")
	if !strings.Contains(body, `"version":"test"`) {
		t.Fatalf("unexpected version body: %s", body)
	}
}
