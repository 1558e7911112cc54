package gophora

import (
	"context"
	"net/http"

	"github.com/gophora/portal/internal/models"
)

// SocialProfile is one linked social account in a verification request.
type SocialProfile struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// VerificationSources collects the evidence a provider submits for the
// trust assessment. Empty fields are omitted.
type VerificationSources struct {
	WebsiteURL      string          `json:"website_url,omitempty"`
	Email           string          `json:"email,omitempty"`
	DomainAge       string          `json:"domain_age,omitempty"`
	SocialProfiles  []SocialProfile `json:"social_profiles"`
	VideoIntroURL   string          `json:"video_intro_url,omitempty"`
	UserDescription string          `json:"user_description,omitempty"`
}

// VerificationRequest asks the backend for a trust score. The scoring is
// mocked server-side; the client just renders the result.
type VerificationRequest struct {
	ProviderName string              `json:"provider_name"`
	ProviderType string              `json:"provider_type"`
	DataSources  VerificationSources `json:"data_sources"`
}

// Verify submits a provider verification request.
func (c *Client) Verify(ctx context.Context, token string, req VerificationRequest) (*models.VerificationResult, error) {
	var res models.VerificationResult
	if err := c.do(ctx, http.MethodPost, "/api/verification/gemini", nil, token, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
