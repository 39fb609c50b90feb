package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"findash/internal/core"
)

// ListOptions paginate transaction listings.
type ListOptions struct {
	Skip  int
	Limit int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Skip > 0 {
		q.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

// ListTransactions returns a user's transactions, newest first.
func (c *Client) ListTransactions(ctx context.Context, userID int64, opts ListOptions) ([]core.Transaction, error) {
	var txs []core.Transaction
	path := fmt.Sprintf("/users/%d/transactions/", userID)
	err := c.get(ctx, path, opts.values(), &txs)
	return txs, err
}

// TransactionsByCategory returns a user's transactions for one category.
func (c *Client) TransactionsByCategory(ctx context.Context, userID int64, category string) ([]core.Transaction, error) {
	var txs []core.Transaction
	path := fmt.Sprintf("/users/%d/transactions/category/%s", userID, url.PathEscape(category))
	err := c.get(ctx, path, nil, &txs)
	return txs, err
}

// CreateTransaction records a new transaction and returns the stored copy.
func (c *Client) CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	var created core.Transaction
	path := fmt.Sprintf("/users/%d/transactions/", userID)
	err := c.post(ctx, path, tx, &created)
	return created, err
}

// UpdateTransaction replaces an existing transaction.
func (c *Client) UpdateTransaction(ctx context.Context, userID, txID int64, tx core.Transaction) (core.Transaction, error) {
	var updated core.Transaction
	path := fmt.Sprintf("/users/%d/transactions/%d", userID, txID)
	err := c.put(ctx, path, tx, &updated)
	return updated, err
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, userID, txID int64) error {
	path := fmt.Sprintf("/users/%d/transactions/%d", userID, txID)
	return c.delete(ctx, path, nil)
}
