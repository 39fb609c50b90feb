package api

import (
	"context"

	"findash/internal/core"
)

// TokenGrant is the backend's response to login, register, and refresh.
type TokenGrant struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        core.User `json:"user"`
}

// LoginRequest is the credential-exchange payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload. Numeric coercion of age and
// income happens in the form layer before this struct is built.
type RegisterRequest struct {
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	ConfirmPassword string     `json:"confirm_password"`
	Age             int        `json:"age"`
	AnnualIncome    core.Money `json:"annual_income"`
}

// HealthStatus is the backend liveness report.
type HealthStatus struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Login exchanges credentials for a token grant.
func (c *Client) Login(ctx context.Context, email, password string) (TokenGrant, error) {
	var grant TokenGrant
	err := c.post(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, &grant)
	return grant, err
}

// Register creates an account and returns its first token grant.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (TokenGrant, error) {
	var grant TokenGrant
	err := c.post(ctx, "/auth/register", req, &grant)
	return grant, err
}

// Me verifies the stored token and returns the authenticated user.
func (c *Client) Me(ctx context.Context) (core.User, error) {
	var user core.User
	err := c.get(ctx, "/auth/me", nil, &user)
	return user, err
}

// RefreshToken performs a silent token renewal.
func (c *Client) RefreshToken(ctx context.Context) (TokenGrant, error) {
	var grant TokenGrant
	err := c.post(ctx, "/auth/refresh-token", nil, &grant)
	return grant, err
}

// Logout tells the backend to discard the session. Local state is cleared by
// the session manager regardless of the outcome here.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	err := c.get(ctx, "/health", nil, &status)
	return status, err
}
