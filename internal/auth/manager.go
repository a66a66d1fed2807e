package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"runlog/internal/store"
)

// RefreshBuffer is how close to expiry a token may get before it is refreshed
const RefreshBuffer = 5 * time.Minute

// ErrInteractiveDisabled is returned when a full authorization is required
// but the manager has no way to reach a browser.
var ErrInteractiveDisabled = errors.New("no stored token; run `runlog auth login`")

// TokenStore persists the singleton token record
type TokenStore interface {
	GetAuth(ctx context.Context) (*store.Auth, error)
	SaveAuth(ctx context.Context, auth *store.Auth) error
}

// Authorizer runs an interactive authorization-code flow
type Authorizer interface {
	Authorize(ctx context.Context) (*AuthResult, error)
}

// State is the token lifecycle stage
type State int

const (
	StateNoToken State = iota
	StateAuthorizing
	StateValid
	StateExpiring
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "no_token"
	case StateAuthorizing:
		return "authorizing"
	case StateValid:
		return "valid"
	case StateExpiring:
		return "expiring"
	case StateRefreshing:
		return "refreshing"
	}
	return "unknown"
}

// Status describes the stored token for introspection endpoints
type Status struct {
	State         State
	HasToken      bool
	HasReadScope  bool
	HasWriteScope bool
	Scopes        []string
	ExpiresAt     time.Time
}

// Manager owns the access token. It loads the stored record lazily, refreshes
// it ahead of expiry and falls back to interactive authorization when no
// usable token exists. Grants are serialized by mu.
type Manager struct {
	mu sync.Mutex

	oauth      *oauth2.Config
	store      TokenStore
	authorizer Authorizer
	logger     *log.Logger

	// bootstrapRefresh is a pre-provisioned refresh token used when the
	// store is empty.
	bootstrapRefresh string

	cached *store.Auth
	state  State
	now    func() time.Time
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithAuthorizer enables interactive authorization
func WithAuthorizer(a Authorizer) ManagerOption {
	return func(m *Manager) { m.authorizer = a }
}

// WithBootstrapRefreshToken seeds an empty store through a refresh grant
func WithBootstrapRefreshToken(token string) ManagerOption {
	return func(m *Manager) { m.bootstrapRefresh = token }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a token manager backed by store
func NewManager(cfg *oauth2.Config, s TokenStore, logger *log.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		oauth:  cfg,
		store:  s,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AccessToken returns a token that stays valid for at least RefreshBuffer
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.load(ctx); err != nil {
		return "", err
	}

	switch m.state {
	case StateNoToken:
		if m.bootstrapRefresh != "" {
			m.logger.Info("bootstrapping token from configured refresh token")
			if err := m.refresh(ctx, m.bootstrapRefresh); err != nil {
				return "", err
			}
			return m.cached.AccessToken, nil
		}
		if err := m.authorize(ctx); err != nil {
			return "", err
		}
	case StateExpiring:
		m.logger.Debug("token near expiry, refreshing", "expires_at", m.cached.ExpiresAt)
		if err := m.refresh(ctx, m.cached.RefreshToken); err != nil {
			return "", err
		}
	}
	return m.cached.AccessToken, nil
}

// Refresh forces a refresh-token grant
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.load(ctx); err != nil {
		return "", err
	}
	rt := m.bootstrapRefresh
	if m.cached != nil {
		rt = m.cached.RefreshToken
	}
	if rt == "" {
		if err := m.authorize(ctx); err != nil {
			return "", err
		}
		return m.cached.AccessToken, nil
	}
	if err := m.refresh(ctx, rt); err != nil {
		return "", err
	}
	return m.cached.AccessToken, nil
}

// Reauthorize runs the interactive flow again, e.g. to add scopes
func (m *Manager) Reauthorize(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.authorize(ctx); err != nil {
		return "", err
	}
	return m.cached.AccessToken, nil
}

// Status reports the stored token without refreshing it
func (m *Manager) Status(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.load(ctx); err != nil {
		return Status{}, err
	}
	st := Status{State: m.state}
	if m.cached == nil {
		return st, nil
	}

	scopes := SplitScopes(m.cached.Scope)
	st.HasToken = true
	st.Scopes = scopes
	st.HasReadScope = slices.Contains(scopes, ScopeActivityAll) || slices.Contains(scopes, ScopeActivityRead)
	st.HasWriteScope = slices.Contains(scopes, ScopeActivityWrite)
	st.ExpiresAt = m.cached.ExpiresAt
	return st, nil
}

// load reads the stored token on first use and recomputes state.
// Callers must hold mu.
func (m *Manager) load(ctx context.Context) error {
	if m.cached == nil {
		a, err := m.store.GetAuth(ctx)
		switch {
		case errors.Is(err, store.ErrNoAuth):
		case err != nil:
			return fmt.Errorf("loading stored token: %w", err)
		default:
			m.cached = a
		}
	}

	switch {
	case m.cached == nil:
		m.state = StateNoToken
	case !m.now().Add(RefreshBuffer).Before(m.cached.ExpiresAt):
		m.state = StateExpiring
	default:
		m.state = StateValid
	}
	return nil
}

// refresh runs a refresh-token grant and persists the result.
// Callers must hold mu.
func (m *Manager) refresh(ctx context.Context, refreshToken string) error {
	prev := m.state
	m.state = StateRefreshing

	tok, err := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		m.state = prev
		return fmt.Errorf("refreshing token: %w", err)
	}

	next := &store.Auth{
		AthleteID:    ExtractAthleteID(tok),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = refreshToken
	}
	// Refresh responses carry neither scope nor athlete; keep what we had
	if m.cached != nil {
		next.Scope = m.cached.Scope
		if next.AthleteID == 0 {
			next.AthleteID = m.cached.AthleteID
		}
	}

	if err := m.save(ctx, next); err != nil {
		m.state = prev
		return err
	}
	m.logger.Info("token refreshed", "expires_at", next.ExpiresAt.Format(time.RFC3339))
	return nil
}

// authorize runs the interactive flow and persists the result.
// Callers must hold mu.
func (m *Manager) authorize(ctx context.Context) error {
	if m.authorizer == nil {
		return ErrInteractiveDisabled
	}

	prev := m.state
	m.state = StateAuthorizing

	res, err := m.authorizer.Authorize(ctx)
	if err != nil {
		m.state = prev
		return fmt.Errorf("authorizing: %w", err)
	}

	next := &store.Auth{
		AthleteID:    res.AthleteID,
		AccessToken:  res.Token.AccessToken,
		RefreshToken: res.Token.RefreshToken,
		ExpiresAt:    res.Token.Expiry,
		Scope:        res.Scope,
	}
	if err := m.save(ctx, next); err != nil {
		m.state = prev
		return err
	}
	m.logger.Info("authorized with Strava", "athlete_id", next.AthleteID, "scope", next.Scope)
	return nil
}

func (m *Manager) save(ctx context.Context, a *store.Auth) error {
	if err := m.store.SaveAuth(ctx, a); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	m.cached = a
	m.state = StateValid
	return nil
}
