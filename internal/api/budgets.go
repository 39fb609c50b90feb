package api

import (
	"context"
	"fmt"

	"findash/internal/core"
)

// ListBudgets returns a user's active budgets.
func (c *Client) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	var budgets []core.Budget
	err := c.get(ctx, fmt.Sprintf("/users/%d/budgets/", userID), nil, &budgets)
	return budgets, err
}

// PutBudget creates or updates the budget for a category. The backend
// upserts on (user, category).
func (c *Client) PutBudget(ctx context.Context, userID int64, b core.Budget) (core.Budget, error) {
	var saved core.Budget
	err := c.post(ctx, fmt.Sprintf("/users/%d/budgets/", userID), b, &saved)
	return saved, err
}

// DeleteBudget removes a budget.
func (c *Client) DeleteBudget(ctx context.Context, userID, budgetID int64) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d/budgets/%d", userID, budgetID), nil)
}
