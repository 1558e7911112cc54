package gophora

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gophora/portal/internal/models"
)

// Apply submits an application for the signed-in seeker. The backend
// rejects duplicates with a 400; callers are expected to dedup first, and
// render the 400 detail when they lose that race.
func (c *Client) Apply(ctx context.Context, token string, opportunityID int64) (*models.Application, error) {
	q := url.Values{"opportunity_id": []string{strconv.FormatInt(opportunityID, 10)}}
	var app models.Application
	if err := c.do(ctx, http.MethodPost, "/api/applications/apply", q, token, nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// MyApplications lists the signed-in seeker's applications, each joined
// with its opportunity.
func (c *Client) MyApplications(ctx context.Context, token string) ([]models.Application, error) {
	var apps []models.Application
	if err := c.do(ctx, http.MethodGet, "/api/applications/me", nil, token, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}
