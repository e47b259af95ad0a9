package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/repositories"
	"github.com/cantus/hymnal/internal/services"
	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenTTL matches the backend's default access token lifetime,
// used when a token response omits `expires` and the token carries no
// readable exp claim.
const defaultTokenTTL = 15 * time.Minute

// Manager owns the current session and user, mirroring every mutation to
// the local store. In-memory state always reflects the last persisted
// write.
type Manager struct {
	api      services.AuthAPI
	sessions *repositories.SessionRepository
	users    *repositories.UserRepository
	logger   *log.Logger
	observer *InvalidationHandler

	// staticToken bypasses the whole token lifecycle (debug/kiosk mode)
	staticToken string

	now func() time.Time

	mu      sync.Mutex
	session *models.Session
	user    *models.User
}

// ManagerOpts configures a [Manager].
type ManagerOpts struct {
	API         services.AuthAPI
	Sessions    *repositories.SessionRepository
	Users       *repositories.UserRepository
	Logger      *log.Logger
	Observer    *InvalidationHandler
	StaticToken string

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewManager creates a session manager with the provided dependencies.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		api:         opts.API,
		sessions:    opts.Sessions,
		users:       opts.Users,
		logger:      opts.Logger,
		observer:    opts.Observer,
		staticToken: opts.StaticToken,
		now:         opts.Now,
	}
}

// Load hydrates in-memory state from the local store. A missing session or
// user is not an error; partial state from an interrupted login must not
// prevent startup.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.sessions.Get()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	user, err := m.users.Get()
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	m.session = session
	m.user = user
	return nil
}

// User returns the current profile, or nil when logged out.
func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsLoggedIn reports whether a profile is present locally.
func (m *Manager) IsLoggedIn() bool {
	return m.User() != nil
}

// SkipAuth reports whether the static-token debug mode is active.
func (m *Manager) SkipAuth() bool {
	if m.staticToken != "" {
		return true
	}
	u := m.User()
	return u != nil && u.SkipAuth
}

// CurrentToken returns a usable access token.
//
// A present token outside the expiry buffer is returned as-is. Inside the
// buffer (or past expiry) exactly one refresh attempt is made first; if it
// fails the caller gets "" and must fall back to re-login. Implements
// [services.TokenSource].
func (m *Manager) CurrentToken(ctx context.Context) (string, error) {
	if m.staticToken != "" {
		return m.staticToken, nil
	}

	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	if session == nil {
		return "", nil
	}

	if !session.IsExpired(m.now()) {
		return session.AccessToken, nil
	}

	if session.RefreshToken == "" {
		return "", nil
	}

	if !m.Refresh(ctx) {
		return "", nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return "", nil
	}
	return m.session.AccessToken, nil
}

// Refresh exchanges the stored refresh token for a new pair.
//
// Returns false on any failure, leaving the existing tokens untouched so
// the caller can degrade to re-login. Implements [services.TokenSource].
func (m *Manager) Refresh(ctx context.Context) bool {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	if session == nil || session.RefreshToken == "" {
		return false
	}

	tokens, err := m.api.Refresh(ctx, session.RefreshToken)
	if err != nil {
		m.logger.Warn("token refresh failed", "error", err)
		if m.observer != nil {
			m.observer.Observe(ctx, err)
		}
		return false
	}

	if err := m.saveTokens(tokens); err != nil {
		m.logger.Error("failed to persist refreshed tokens", "error", err)
		return false
	}

	return true
}

// Login authenticates, fetches the profile, and persists user then
// session. Failures come back as typed errors, never panics.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	tokens, err := m.api.Login(ctx, email, password)
	if err != nil {
		if m.observer != nil {
			m.observer.Observe(ctx, err)
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	profile, err := m.api.Me(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	user := models.User{
		ID:        profile.ID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Role:      profile.Role,
		Activated: profile.Role == "activated",
	}

	// user first, then session: an interruption between the two leaves a
	// profile without tokens, which later reads treat as logged-out
	if err := m.users.Save(user); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}
	if err := m.saveTokens(tokens); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()

	m.logger.Info("logged in", "user", user.Email)
	return &user, nil
}

// Logout terminates the remote session best-effort, then unconditionally
// deletes the local session and user.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	if session != nil && session.RefreshToken != "" {
		if err := m.api.Logout(ctx, session.RefreshToken); err != nil {
			m.logger.Warn("remote logout failed, continuing with local logout", "error", err)
		}
	}

	if err := m.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := m.users.Clear(); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}

	m.mu.Lock()
	m.session = nil
	m.user = nil
	m.mu.Unlock()

	return nil
}

// Register creates an account through the activation-code endpoint, then
// logs straight in.
func (m *Manager) Register(ctx context.Context, req services.RegisterRequest) (*models.User, error) {
	if err := m.api.Register(ctx, req); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return m.Login(ctx, req.Email, req.Password)
}

// RequestPasswordReset asks the backend to mail a reset link.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	if err := m.api.RequestPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("password reset request failed: %w", err)
	}
	return nil
}

// ResetPassword completes a password reset with the mailed token.
func (m *Manager) ResetPassword(ctx context.Context, token, password string) error {
	if err := m.api.ResetPassword(ctx, token, password); err != nil {
		return fmt.Errorf("password reset failed: %w", err)
	}
	return nil
}

// RefreshProfile re-fetches the remote profile and updates the stored
// role and activation state. Account activation happens server-side, so
// this is how the app notices it without a fresh login.
func (m *Manager) RefreshProfile(ctx context.Context) (*models.User, error) {
	token, err := m.CurrentToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("no usable access token")
	}

	profile, err := m.api.Me(ctx, token)
	if err != nil {
		if m.observer != nil {
			m.observer.Observe(ctx, err)
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user := models.User{
		ID:        profile.ID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Role:      profile.Role,
		Activated: profile.Role == "activated",
	}
	if m.user != nil {
		user.SkipAuth = m.user.SkipAuth
	}

	if err := m.users.Save(user); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}

	m.user = &user
	return &user, nil
}

// SetSkipAuth toggles the skip-auth flag, creating a guest profile when
// nobody is logged in.
func (m *Manager) SetSkipAuth(skip bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var user models.User
	if m.user != nil {
		user = *m.user
		user.SkipAuth = skip
	} else {
		user = models.User{
			ID:       "guest",
			Email:    "guest@local",
			Role:     "guest",
			SkipAuth: skip,
		}
	}

	if err := m.users.Save(user); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}

	m.user = &user
	return nil
}

// saveTokens persists a token pair and mirrors it in memory.
func (m *Manager) saveTokens(tokens *services.AuthTokens) error {
	session := models.Session{
		ID:           models.SessionKey,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    m.tokenExpiry(tokens),
	}

	if err := m.sessions.Save(session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.session = &session
	m.mu.Unlock()

	return nil
}

// tokenExpiry derives the absolute expiry of an access token: the
// response's millisecond lifetime when present, else the JWT exp claim,
// else the backend default.
func (m *Manager) tokenExpiry(tokens *services.AuthTokens) time.Time {
	if tokens.Expires > 0 {
		return m.now().Add(time.Duration(tokens.Expires) * time.Millisecond)
	}

	parser := jwt.NewParser()
	if parsed, _, err := parser.ParseUnverified(tokens.AccessToken, jwt.MapClaims{}); err == nil {
		if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}

	return m.now().Add(defaultTokenTTL)
}
