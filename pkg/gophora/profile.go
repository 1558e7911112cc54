package gophora

import (
	"context"
	"net/http"

	"github.com/gophora/portal/internal/models"
)

// MyProfile returns the signed-in user's profile record.
func (c *Client) MyProfile(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles/me", nil, token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile saves the editable profile fields. Email is part of the
// user record and cannot change here.
func (c *Client) UpdateProfile(ctx context.Context, token string, p models.Profile) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, http.MethodPut, "/api/profiles/me", nil, token, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
