package guard_test

import (
	"testing"

	"github.com/gophora/portal/internal/guard"
	"github.com/gophora/portal/internal/models"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		sess         models.Session
		wantAllow    bool
		wantRedirect string
	}{
		{
			name:      "public path anonymous",
			path:      "/login",
			sess:      models.Session{},
			wantAllow: true,
		},
		{
			name:      "landing page anonymous",
			path:      "/",
			sess:      models.Session{},
			wantAllow: true,
		},
		{
			name:      "chat is public",
			path:      "/chat",
			sess:      models.Session{},
			wantAllow: true,
		},
		{
			name:         "seeker path without token",
			path:         "/seeker/dashboard",
			sess:         models.Session{},
			wantRedirect: "/login",
		},
		{
			name:         "provider path without token",
			path:         "/provider/opportunities",
			sess:         models.Session{},
			wantRedirect: "/login",
		},
		{
			name:         "role without token is logged out",
			path:         "/seeker/dashboard",
			sess:         models.Session{Role: models.RoleSeeker},
			wantRedirect: "/login",
		},
		{
			name:      "seeker on own path",
			path:      "/seeker/opportunities",
			sess:      models.Session{Token: "t", Role: models.RoleSeeker},
			wantAllow: true,
		},
		{
			name:         "seeker on provider path bounces home",
			path:         "/provider/dashboard",
			sess:         models.Session{Token: "t", Role: models.RoleSeeker},
			wantRedirect: "/seeker/dashboard",
		},
		{
			name:         "provider on seeker path bounces home",
			path:         "/seeker/applications",
			sess:         models.Session{Token: "t", Role: models.RoleProvider},
			wantRedirect: "/provider/dashboard",
		},
		{
			name:         "token with empty role goes to login, not /null/dashboard",
			path:         "/provider/dashboard",
			sess:         models.Session{Token: "t"},
			wantRedirect: "/login",
		},
		{
			name:         "token with unknown role goes to login",
			path:         "/seeker/dashboard",
			sess:         models.Session{Token: "t", Role: "admin"},
			wantRedirect: "/login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := guard.Authorize(tt.path, tt.sess)
			if d.Allow != tt.wantAllow {
				t.Fatalf("Allow = %v, want %v", d.Allow, tt.wantAllow)
			}
			if d.Redirect != tt.wantRedirect {
				t.Fatalf("Redirect = %q, want %q", d.Redirect, tt.wantRedirect)
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	if got := guard.Dashboard(models.RoleSeeker); got != "/seeker/dashboard" {
		t.Fatalf("seeker dashboard = %q", got)
	}
	if got := guard.Dashboard(models.RoleProvider); got != "/provider/dashboard" {
		t.Fatalf("provider dashboard = %q", got)
	}
	if got := guard.Dashboard(""); got != "/login" {
		t.Fatalf("empty role must fall back to login, got %q", got)
	}
	if got := guard.Dashboard("null"); got != "/login" {
		t.Fatalf("unknown role must fall back to login, got %q", got)
	}
}
