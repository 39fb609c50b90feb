// Package dashboard aggregates backend data for the view layer: one
// fan-out fetch per dashboard load, a small per-user cache, and an offline
// snapshot fallback for when the backend is unreachable.
package dashboard

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"findash/internal/api"
	"findash/internal/cache"
	"findash/internal/core"
	"findash/internal/log"
	"findash/internal/storage"
)

// Backend is the slice of the API client the dashboard needs.
type Backend interface {
	ListTransactions(ctx context.Context, userID int64, opts api.ListOptions) ([]core.Transaction, error)
	SpendingAnalysis(ctx context.Context, userID int64, months int) (core.SpendingAnalysis, error)
	BudgetAlerts(ctx context.Context, userID int64) ([]core.BudgetAlert, error)
	FinancialHealth(ctx context.Context, userID int64) (core.HealthScore, error)

	CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, txID int64, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID int64) error

	ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
	PutBudget(ctx context.Context, userID int64, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID int64) error
}

// Snapshots persists the last good overview per user. *storage.SnapshotStore
// satisfies it.
type Snapshots interface {
	Save(ctx context.Context, userID int64, payload any) error
	Load(ctx context.Context, userID int64, out any) (time.Time, error)
	Delete(ctx context.Context, userID int64) error
}

// Overview is everything one dashboard render needs. Stale marks a copy
// served from the local snapshot because the backend was unreachable.
type Overview struct {
	Transactions []core.Transaction    `json:"transactions"`
	Analysis     core.SpendingAnalysis `json:"analysis"`
	Alerts       []core.BudgetAlert    `json:"alerts"`
	Health       core.HealthScore      `json:"health"`
	FetchedAt    time.Time             `json:"fetched_at"`
	Stale        bool                  `json:"-"`
}

// Options tunes the service.
type Options struct {
	// Months of history requested from the spending analysis.
	Months int
	// TxLimit caps the transaction list on the dashboard.
	TxLimit int
	CacheSize int
	CacheTTL  time.Duration
}

// Service coordinates fetches and enforces full-refresh-on-write: any
// transaction mutation drops the cached overview so the next read re-fetches
// both the list and the derived analytics together.
type Service struct {
	backend   Backend
	snapshots Snapshots
	cache     *cache.LRUCache[Overview]
	cleanup   *cache.Manager
	opts      Options
	logger    *log.Logger
}

func New(backend Backend, snapshots Snapshots, logger *log.Logger, opts Options) *Service {
	if opts.Months <= 0 {
		opts.Months = 6
	}
	if opts.TxLimit <= 0 {
		opts.TxLimit = 50
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Service{
		backend:   backend,
		snapshots: snapshots,
		cache:     cache.NewLRUCache[Overview](opts.CacheSize, opts.CacheTTL),
		cleanup:   cache.NewManager(),
		opts:      opts,
		logger:    logger.WithComponent(log.ComponentDashboard),
	}
	s.cleanup.Register(s.cache)
	s.cleanup.StartCleanup(10 * time.Minute)
	return s
}

// Close stops the background cache cleanup.
func (s *Service) Close() {
	s.cleanup.Stop()
}

func cacheKey(userID int64) string {
	return "overview:" + strconv.FormatInt(userID, 10)
}

// Overview returns the dashboard data for a user, from cache when fresh.
// On a transport failure the last snapshot is served marked stale; auth and
// rejection failures propagate untouched.
func (s *Service) Overview(ctx context.Context, userID int64) (Overview, error) {
	if ov, ok := s.cache.Get(cacheKey(userID)); ok {
		return ov, nil
	}
	return s.fetch(ctx, userID)
}

// Refresh drops the cached overview and re-fetches. This backs the
// user-initiated "retry connection" action; nothing retries automatically.
func (s *Service) Refresh(ctx context.Context, userID int64) (Overview, error) {
	s.cache.Delete(cacheKey(userID))
	return s.fetch(ctx, userID)
}

func (s *Service) fetch(ctx context.Context, userID int64) (Overview, error) {
	var ov Overview

	// Fan-out: the four fetches run together and each fills its own slot,
	// so concurrent completion cannot clobber sibling state.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.backend.ListTransactions(gctx, userID, api.ListOptions{Limit: s.opts.TxLimit})
		ov.Transactions = txs
		return err
	})
	g.Go(func() error {
		analysis, err := s.backend.SpendingAnalysis(gctx, userID, s.opts.Months)
		ov.Analysis = analysis
		return err
	})
	g.Go(func() error {
		alerts, err := s.backend.BudgetAlerts(gctx, userID)
		ov.Alerts = alerts
		return err
	})
	g.Go(func() error {
		health, err := s.backend.FinancialHealth(gctx, userID)
		ov.Health = health
		return err
	})

	if err := g.Wait(); err != nil {
		if api.IsTransport(err) {
			if stale, ok := s.loadSnapshot(ctx, userID); ok {
				s.logger.WarnContext(ctx, "Backend unreachable, serving snapshot",
					log.FieldUserID, userID,
					log.FieldError, err.Error())
				return stale, nil
			}
		}
		return Overview{}, err
	}

	ov.FetchedAt = time.Now()
	s.cache.Set(cacheKey(userID), ov)
	s.saveSnapshot(ctx, userID, ov)
	return ov, nil
}

func (s *Service) loadSnapshot(ctx context.Context, userID int64) (Overview, bool) {
	if s.snapshots == nil {
		return Overview{}, false
	}
	var ov Overview
	fetchedAt, err := s.snapshots.Load(ctx, userID, &ov)
	if err != nil {
		if !errors.Is(err, storage.ErrNoSnapshot) {
			s.logger.WarnContext(ctx, "Snapshot load failed", log.FieldError, err.Error())
		}
		return Overview{}, false
	}
	ov.FetchedAt = fetchedAt
	ov.Stale = true
	return ov, true
}

func (s *Service) saveSnapshot(ctx context.Context, userID int64, ov Overview) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, userID, ov); err != nil {
		// The dashboard already has live data; losing the snapshot only
		// hurts the next offline render.
		s.logger.WarnContext(ctx, "Snapshot save failed", log.FieldError, err.Error())
	}
}

// Forget drops a user's cached overview and deletes their on-disk snapshot.
// Called on logout so no financial data outlives the session locally.
func (s *Service) Forget(ctx context.Context, userID int64) {
	s.cache.Delete(cacheKey(userID))
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Delete(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "Snapshot delete failed",
			log.FieldUserID, userID, log.FieldError, err.Error())
	}
}

// CreateTransaction records a transaction and invalidates the overview so
// list and analytics are re-fetched together before the next render.
func (s *Service) CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	created, err := s.backend.CreateTransaction(ctx, userID, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	s.invalidate(ctx, userID, log.OpCreate, created.ID)
	return created, nil
}

// UpdateTransaction replaces a transaction and invalidates the overview.
func (s *Service) UpdateTransaction(ctx context.Context, userID, txID int64, tx core.Transaction) (core.Transaction, error) {
	updated, err := s.backend.UpdateTransaction(ctx, userID, txID, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	s.invalidate(ctx, userID, log.OpUpdate, txID)
	return updated, nil
}

// DeleteTransaction removes a transaction and invalidates the overview.
func (s *Service) DeleteTransaction(ctx context.Context, userID, txID int64) error {
	if err := s.backend.DeleteTransaction(ctx, userID, txID); err != nil {
		return err
	}
	s.invalidate(ctx, userID, log.OpDelete, txID)
	return nil
}

// Budgets proxies the budget list (not part of the cached overview).
func (s *Service) Budgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.backend.ListBudgets(ctx, userID)
}

// SaveBudget upserts a budget; budget limits feed the alert projection, so
// the overview is invalidated too.
func (s *Service) SaveBudget(ctx context.Context, userID int64, b core.Budget) (core.Budget, error) {
	saved, err := s.backend.PutBudget(ctx, userID, b)
	if err != nil {
		return core.Budget{}, err
	}
	s.invalidate(ctx, userID, log.OpUpdate, saved.ID)
	return saved, nil
}

// DeleteBudget removes a budget and invalidates the overview.
func (s *Service) DeleteBudget(ctx context.Context, userID, budgetID int64) error {
	if err := s.backend.DeleteBudget(ctx, userID, budgetID); err != nil {
		return err
	}
	s.invalidate(ctx, userID, log.OpDelete, budgetID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID int64, op string, id int64) {
	s.cache.Delete(cacheKey(userID))
	s.logger.DebugContext(ctx, "Overview invalidated after write",
		log.FieldUserID, userID,
		log.FieldOperation, op,
		log.FieldTxID, id)
}

// CacheSize exposes the overview cache size for readiness reporting.
func (s *Service) CacheSize() int {
	return s.cache.Size()
}
