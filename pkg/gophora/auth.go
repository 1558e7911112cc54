package gophora

import (
	"context"
	"net/http"

	"github.com/gophora/portal/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The token is returned as
// an opaque string; role checks happen on the backend and surface as 403s.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, "", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// RegisterRequest carries the registration form. Seeker accounts fill
// Skills; provider accounts fill OrganizationName and Website.
type RegisterRequest struct {
	Email            string      `json:"email"`
	Password         string      `json:"password"`
	FullName         string      `json:"full_name"`
	Role             models.Role `json:"role"`
	Country          string      `json:"country"`
	City             string      `json:"city"`
	Skills           string      `json:"skills,omitempty"`
	OrganizationName string      `json:"organizationName,omitempty"`
	Website          string      `json:"website,omitempty"`
}

// Register creates an account. The caller logs in separately afterwards.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", nil, "", req, nil)
}

// Me returns the signed-in user's account record.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
