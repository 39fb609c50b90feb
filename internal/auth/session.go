package auth

import (
	"context"
	"fmt"
	"sync"

	"findash/internal/api"
	"findash/internal/core"
	"findash/internal/log"
)

// State is the session lifecycle state.
type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is the authenticated identity exposed to the view layer.
type Session struct {
	UserID int64
	Name   string
	Email  string
	Token  string
}

// Backend is the slice of the API client the session manager needs.
// *api.Client satisfies it; tests substitute a fake.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.TokenGrant, error)
	Register(ctx context.Context, req api.RegisterRequest) (api.TokenGrant, error)
	Me(ctx context.Context) (core.User, error)
	RefreshToken(ctx context.Context) (api.TokenGrant, error)
	Logout(ctx context.Context) error
}

// Manager owns the current-user state. All transitions go through it:
// restore-on-startup, login, register, logout, refresh, and the forced
// invalidation that follows a 401 anywhere in the client.
//
// Invariant: StateAuthenticated implies the store holds a non-empty token
// for the session's user.
type Manager struct {
	mu      sync.Mutex
	state   State
	session Session

	store   Store
	backend Backend
	logger  *log.Logger
}

// NewManager wires a session manager. Both collaborators are injected so
// tests can substitute fakes.
func NewManager(store Store, backend Backend, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Manager{
		state:   StateUnauthenticated,
		store:   store,
		backend: backend,
		logger:  logger.WithComponent(log.ComponentSession),
	}
}

// Current returns the session and state. The session is only meaningful in
// StateAuthenticated.
func (m *Manager) Current() (Session, State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.state
}

// Authenticated reports whether a session is established.
func (m *Manager) Authenticated() bool {
	_, state := m.Current()
	return state == StateAuthenticated
}

// Restore verifies persisted credentials on startup. With no stored token it
// stays Unauthenticated; otherwise it enters Loading, verifies the token
// against /auth/me, and either establishes the session or clears the store.
func (m *Manager) Restore(ctx context.Context) error {
	creds, ok, err := m.store.Load()
	if err != nil {
		m.logger.WarnContext(ctx, "Could not read stored credentials", log.FieldError, err.Error())
		m.toUnauthenticated()
		return nil
	}
	if !ok {
		m.toUnauthenticated()
		return nil
	}

	m.mu.Lock()
	m.state = StateLoading
	m.mu.Unlock()

	user, err := m.backend.Me(ctx)
	if err != nil {
		m.logger.InfoContext(ctx, "Stored token rejected, clearing session", log.FieldError, err.Error())
		m.invalidate()
		return nil
	}

	// Re-save with the fresh profile; the token is unchanged.
	if err := m.store.Save(Credentials{Token: creds.Token, User: user}); err != nil {
		m.invalidate()
		return fmt.Errorf("persist restored session: %w", err)
	}
	m.establish(creds.Token, user)
	m.logger.InfoContext(ctx, "Session restored", log.FieldUserID, user.ID)
	return nil
}

// Login exchanges credentials for a session. On failure the state remains
// Unauthenticated and the failure is returned, never panicked.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	grant, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.logger.InfoContext(ctx, "Login rejected", log.FieldError, err.Error())
		return err
	}
	return m.adopt(ctx, grant)
}

// Register creates an account and establishes its session. No local
// validation happens here; the form layer has already done it.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) error {
	grant, err := m.backend.Register(ctx, req)
	if err != nil {
		m.logger.InfoContext(ctx, "Registration rejected", log.FieldError, err.Error())
		return err
	}
	return m.adopt(ctx, grant)
}

// Refresh silently renews the token. Failure clears the store and drops to
// Unauthenticated.
func (m *Manager) Refresh(ctx context.Context) error {
	grant, err := m.backend.RefreshToken(ctx)
	if err != nil {
		m.logger.InfoContext(ctx, "Token refresh failed, clearing session", log.FieldError, err.Error())
		m.invalidate()
		return err
	}
	return m.adopt(ctx, grant)
}

// Logout is synchronous and unconditional: the backend is told to discard
// the session while the token still works, then local state is dropped. It
// never fails; backend and store errors are logged and the state still
// transitions.
func (m *Manager) Logout(ctx context.Context) {
	if _, state := m.Current(); state == StateAuthenticated {
		if err := m.backend.Logout(ctx); err != nil {
			m.logger.InfoContext(ctx, "Backend logout failed, clearing local session anyway", log.FieldError, err.Error())
		}
	}
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("Failed to clear credential store on logout", log.FieldError, err.Error())
	}
	m.toUnauthenticated()
	m.logger.InfoContext(ctx, "Logged out")
}

// Invalidate handles the central AuthExpired path: any 401 already cleared
// the token store inside the API client; this drops the in-memory session to
// match. Idempotent.
func (m *Manager) Invalidate() {
	m.invalidate()
}

// adopt persists a token grant and transitions to Authenticated. The store
// write is sequenced before the state change so the invariant holds.
func (m *Manager) adopt(ctx context.Context, grant api.TokenGrant) error {
	if grant.AccessToken == "" {
		m.toUnauthenticated()
		return fmt.Errorf("backend returned empty access token")
	}
	if err := m.store.Save(Credentials{Token: grant.AccessToken, User: grant.User}); err != nil {
		m.toUnauthenticated()
		return fmt.Errorf("persist session: %w", err)
	}
	m.establish(grant.AccessToken, grant.User)
	m.logger.InfoContext(ctx, "Session established", log.FieldUserID, grant.User.ID)
	return nil
}

func (m *Manager) establish(token string, user core.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAuthenticated
	m.session = Session{UserID: user.ID, Name: user.Name, Email: user.Email, Token: token}
}

func (m *Manager) toUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateUnauthenticated
	m.session = Session{}
}

func (m *Manager) invalidate() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("Failed to clear credential store", log.FieldError, err.Error())
	}
	m.toUnauthenticated()
}
