// Package session decides whether the dashboard is reachable. It wraps the
// backend's cookie session in a small state machine: checking on startup,
// then unauthenticated or authenticated, with login, logout and the
// two-step password reset flowing through it.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nravi/leadgrid/internal/api"
)

// State is the gate's position.
type State int

const (
	StateChecking State = iota
	StateUnauthenticated
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Backend is the slice of the API client the gate needs.
type Backend interface {
	CheckAuth(ctx context.Context) (api.User, bool, error)
	Login(ctx context.Context, username, password string) (api.User, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) (message, resetToken string, err error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	ClearSession()
}

// CacheStore wipes locally cached user data on logout.
type CacheStore interface {
	Clear() error
}

// Gate guards the authenticated surface.
type Gate struct {
	backend Backend
	cache   CacheStore
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	user       api.User
	checked    bool
	resetToken string
}

// New returns a gate in the checking state.
func New(backend Backend, cache CacheStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		backend: backend,
		cache:   cache,
		logger:  logger,
		state:   StateChecking,
	}
}

// State returns the gate's current position.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// User returns the authenticated account; the zero value outside
// StateAuthenticated.
func (g *Gate) User() api.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Check verifies the existing session with the backend. It runs the network
// probe at most once per gate; later calls return the settled state. Any
// probe failure settles on unauthenticated rather than surfacing the error,
// so an unreachable backend degrades to the login prompt.
func (g *Gate) Check(ctx context.Context) State {
	g.mu.Lock()
	if g.checked {
		defer g.mu.Unlock()
		return g.state
	}
	g.checked = true
	g.mu.Unlock()

	user, ok, err := g.backend.CheckAuth(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.logger.Warn("session check failed", "error", err)
		g.state = StateUnauthenticated
		return g.state
	}
	if ok {
		g.user = user
		g.state = StateAuthenticated
	} else {
		g.state = StateUnauthenticated
	}
	return g.state
}

// Login authenticates. On failure the gate stays at authenticating so the
// caller can retry, and the backend's message is returned verbatim.
func (g *Gate) Login(ctx context.Context, username, password string) error {
	g.mu.Lock()
	g.state = StateAuthenticating
	g.mu.Unlock()

	user, err := g.backend.Login(ctx, username, password)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		return err
	}
	g.user = user
	g.state = StateAuthenticated
	return nil
}

// Logout always succeeds locally. The backend call is best-effort: a dead
// backend cannot keep the user logged in. Cached data is cleared either way.
func (g *Gate) Logout(ctx context.Context) {
	if err := g.backend.Logout(ctx); err != nil {
		g.logger.Warn("backend logout failed, clearing local session anyway", "error", err)
	}
	g.backend.ClearSession()
	if g.cache != nil {
		if err := g.cache.Clear(); err != nil {
			g.logger.Warn("clearing local cache failed", "error", err)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = api.User{}
	g.state = StateUnauthenticated
}

// RequestReset starts the password reset flow and holds the returned token
// for CompleteReset.
func (g *Gate) RequestReset(ctx context.Context, email string) (string, error) {
	msg, token, err := g.backend.ForgotPassword(ctx, email)
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	g.resetToken = token
	g.mu.Unlock()
	return msg, nil
}

// CompleteReset finishes the flow using the token from RequestReset. It
// refuses to run before RequestReset has produced a token.
func (g *Gate) CompleteReset(ctx context.Context, newPassword string) error {
	g.mu.Lock()
	token := g.resetToken
	g.mu.Unlock()
	if token == "" {
		return &api.ValidationError{Msg: "request a password reset first"}
	}
	if err := g.backend.ResetPassword(ctx, token, newPassword); err != nil {
		return err
	}
	g.mu.Lock()
	g.resetToken = ""
	g.mu.Unlock()
	return nil
}
