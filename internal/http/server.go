// Package http is the server-rendered view layer: login and registration
// forms, the dashboard overview, and transaction and budget management, all
// backed by the session manager and the dashboard service.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"findash/internal/api"
	"findash/internal/auth"
	"findash/internal/core"
	"findash/internal/dashboard"
	"findash/internal/log"
	"findash/internal/middleware/ratelimit"
	"findash/internal/middleware/security"
	"findash/internal/middleware/trace"
	appweb "findash/web"
)

// Sessions is the slice of the session manager the handlers need.
// *auth.Manager satisfies it.
type Sessions interface {
	Current() (auth.Session, auth.State)
	Authenticated() bool
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, req api.RegisterRequest) error
	Logout(ctx context.Context)
	Invalidate()
}

// Dashboard is the slice of the dashboard service the handlers need.
// *dashboard.Service satisfies it.
type Dashboard interface {
	Overview(ctx context.Context, userID int64) (dashboard.Overview, error)
	Refresh(ctx context.Context, userID int64) (dashboard.Overview, error)
	Forget(ctx context.Context, userID int64)
	CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, txID int64, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID int64) error
	Budgets(ctx context.Context, userID int64) ([]core.Budget, error)
	SaveBudget(ctx context.Context, userID int64, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID int64) error
}

// HealthChecker reports backend liveness for the readiness probe.
// *api.Client satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) (api.HealthStatus, error)
}

type Server struct {
	http.Server
	templates *template.Template
	sessions  Sessions
	dash      Dashboard
	health    HealthChecker
	limiter   *ratelimit.Limiter
	logger    *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware, and templates, returning a
// ready-to-run server.
func NewServer(addr string, sessions Sessions, dash Dashboard, health HealthChecker, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		sessions: sessions,
		dash:     dash,
		health:   health,
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logger:   logger.WithComponent(log.ComponentHTTP),
	}

	t, err := template.New("").Funcs(template.FuncMap{
		"dollars": formatDollars,
		"percent": formatPercent,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /dashboard", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("POST /dashboard/refresh", s.requireAuth(s.handleDashboardRefresh))

	mux.HandleFunc("GET /transactions/new", s.requireAuth(s.handleTransactionForm))
	mux.HandleFunc("POST /transactions", s.requireAuth(s.handleTransactionCreate))
	mux.HandleFunc("GET /transactions/{id}/edit", s.requireAuth(s.handleTransactionEditForm))
	mux.HandleFunc("POST /transactions/{id}", s.requireAuth(s.handleTransactionUpdate))
	mux.HandleFunc("POST /transactions/{id}/delete", s.requireAuth(s.handleTransactionDelete))

	mux.HandleFunc("GET /budgets", s.requireAuth(s.handleBudgets))
	mux.HandleFunc("POST /budgets", s.requireAuth(s.handleBudgetSave))
	mux.HandleFunc("POST /budgets/{id}/delete", s.requireAuth(s.handleBudgetDelete))

	ipExtractor := security.NewClientIPExtractor()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(ipExtractor.Extract)
	limited := s.limiter.Middleware(ipExtractor.Extract, http.MethodPost)

	s.Server = http.Server{
		Addr:    addr,
		Handler: tracer.Middleware(headers.Middleware(limited(mux))),
	}
	return s
}

// Shutdown stops the server and its background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// requireAuth is the route guard: unauthenticated requests are sent to the
// login page instead of the protected view.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, auth.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, state := s.sessions.Current()
		if state != auth.StateAuthenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, session)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz proxies the backend liveness check so the probe reflects the
// whole chain, not just this process.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, err := s.health.Health(ctx)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Backend health check failed", log.FieldError, err.Error())
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("backend unreachable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready (backend: " + status.Status + ")"))
}
