package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"findash/internal/core"
)

// ListUsers returns active users, paginated.
func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]core.User, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var users []core.User
	err := c.get(ctx, "/users/", q, &users)
	return users, err
}

// GetUser returns one user by id.
func (c *Client) GetUser(ctx context.Context, userID int64) (core.User, error) {
	var user core.User
	err := c.get(ctx, fmt.Sprintf("/users/%d", userID), nil, &user)
	return user, err
}

// CreateUserRequest is the unauthenticated user-creation payload.
type CreateUserRequest struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Age          int        `json:"age"`
	AnnualIncome core.Money `json:"annual_income"`
}

// CreateUser creates a user without credentials (admin/bootstrap path).
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (core.User, error) {
	var user core.User
	err := c.post(ctx, "/users/", req, &user)
	return user, err
}
