package gophora

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gophora/portal/internal/models"
)

// OpportunityForm is the writable subset of an opportunity. Tags travel as
// a comma-separated string; the backend splits them.
type OpportunityForm struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Tags        string `json:"tags"`
	Status      string `json:"status,omitempty"`
}

// Opportunities returns the public listing. No auth required.
func (c *Client) Opportunities(ctx context.Context) ([]models.Opportunity, error) {
	var ops []models.Opportunity
	if err := c.do(ctx, http.MethodGet, "/api/opportunities", nil, "", nil, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// MyOpportunities returns the signed-in provider's own postings.
func (c *Client) MyOpportunities(ctx context.Context, token string) ([]models.Opportunity, error) {
	var ops []models.Opportunity
	if err := c.do(ctx, http.MethodGet, "/api/opportunities/me", nil, token, nil, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// Recommend returns the personalized listing for the signed-in seeker.
func (c *Client) Recommend(ctx context.Context, token string) ([]models.Opportunity, error) {
	var ops []models.Opportunity
	if err := c.do(ctx, http.MethodGet, "/api/opportunities/recommend", nil, token, nil, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// Opportunity returns one record by id.
func (c *Client) Opportunity(ctx context.Context, id int64) (*models.Opportunity, error) {
	var op models.Opportunity
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/opportunities/%d", id), nil, "", nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// CreateOpportunity posts a new opportunity for the signed-in provider.
func (c *Client) CreateOpportunity(ctx context.Context, token string, form OpportunityForm) (*models.Opportunity, error) {
	var op models.Opportunity
	if err := c.do(ctx, http.MethodPost, "/api/opportunities", nil, token, form, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// UpdateOpportunity replaces the writable fields of an existing record.
func (c *Client) UpdateOpportunity(ctx context.Context, token string, id int64, form OpportunityForm) (*models.Opportunity, error) {
	var op models.Opportunity
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/opportunities/%d", id), nil, token, form, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// DeleteOpportunity removes a posting. The caller is responsible for
// confirming with the user first.
func (c *Client) DeleteOpportunity(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/opportunities/%d", id), nil, token, nil, nil)
}

// OpportunityApplications lists the applications received by one of the
// provider's postings.
func (c *Client) OpportunityApplications(ctx context.Context, token string, id int64) ([]models.Application, error) {
	var apps []models.Application
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/opportunities/%d/applications", id), nil, token, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}
