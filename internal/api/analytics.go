package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"findash/internal/core"
)

// SpendingAnalysis fetches the server-computed spending aggregate over the
// last months (backend default when months <= 0).
func (c *Client) SpendingAnalysis(ctx context.Context, userID int64, months int) (core.SpendingAnalysis, error) {
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	var analysis core.SpendingAnalysis
	if err := c.get(ctx, fmt.Sprintf("/users/%d/spending-analysis/", userID), q, &analysis); err != nil {
		return core.SpendingAnalysis{}, err
	}
	// This endpoint reports savings_rate as a 0-1 fraction; the health score
	// endpoint reports it 0-100. Normalize to 0-100 here so callers render
	// both the same way.
	analysis.SavingsRate *= 100
	return analysis, nil
}

// BudgetAlerts returns current-month budget alerts, most-consumed first.
func (c *Client) BudgetAlerts(ctx context.Context, userID int64) ([]core.BudgetAlert, error) {
	var alerts []core.BudgetAlert
	err := c.get(ctx, fmt.Sprintf("/users/%d/budget-alerts/", userID), nil, &alerts)
	return alerts, err
}

// FinancialHealth returns the backend's 0-100 health score.
func (c *Client) FinancialHealth(ctx context.Context, userID int64) (core.HealthScore, error) {
	var score core.HealthScore
	err := c.get(ctx, fmt.Sprintf("/users/%d/financial-health-score/", userID), nil, &score)
	return score, err
}
