package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/nhatro/ownerportal/pkg/authsdk"
	"github.com/nhatro/ownerportal/pkg/cryptox"
	"github.com/nhatro/ownerportal/pkg/jwtx"
	"github.com/nhatro/ownerportal/pkg/slogx"
)

// Backend exchanges credentials for tokens. *authsdk.SDKClient implements it.
type Backend interface {
	Login(ctx context.Context, req authsdk.LoginRequest) (*authsdk.LoginResult, error)
}

// Gate owns the process-wide session. It is the only writer of session
// state, in memory and in the store.
type Gate struct {
	store   store.Store
	backend Backend
	now     func() time.Time

	// opMu serialises Restore, Login, Logout and invalidation.
	opMu sync.Mutex

	mu           sync.RWMutex
	state        State
	user         *UserIdentity
	accessToken  string
	refreshToken string

	restoreOnce sync.Once
	restored    chan struct{}
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate returns a Gate in StateUninitialized. Call Restore once the process
// is ready to read persisted storage.
func NewGate(st store.Store, backend Backend, opts ...Option) *Gate {
	g := &Gate{
		store:    st,
		backend:  backend,
		now:      time.Now,
		state:    StateUninitialized,
		restored: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Restore resumes a persisted session. Only the first call does any work;
// every call blocks until that work has finished and returns the state.
// Failures are never returned: they resolve to StateUnauthenticated.
//
// The work is detached from ctx cancellation: it runs once per process, so
// an abandoned request must not decide the outcome for every later one.
func (g *Gate) Restore(ctx context.Context) State {
	g.restoreOnce.Do(func() {
		g.opMu.Lock()
		defer g.opMu.Unlock()
		defer close(g.restored)

		g.setState(StateRestoring, nil, "", "")
		g.restore(context.WithoutCancel(ctx))
	})
	return g.State()
}

// Restored is closed once Restore has resolved.
func (g *Gate) Restored() <-chan struct{} {
	return g.restored
}

func (g *Gate) restore(ctx context.Context) {
	log := slogx.FromContext(ctx)
	values := g.store.Values()

	token, err := values.Get(ctx, store.KeyAccessToken)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("session restore: reading access token failed", slog.Any("error", err))
		}
		g.setState(StateUnauthenticated, nil, "", "")
		return
	}

	claims, err := jwtx.Decode(token)
	if err != nil {
		log.Debug("session restore: stored token rejected", slog.Any("error", err))
		g.purge(ctx)
		return
	}
	if jwtx.IsExpired(claims, g.now()) {
		log.Debug("session restore: stored token expired",
			slog.String("token_fp", cryptox.FingerprintToken(token)),
			slog.Time("expires_at", claims.ExpiresAt.Time),
		)
		g.purge(ctx)
		return
	}
	if !jwtx.RoleDenotesOwner(claims.Role) {
		log.Debug("session restore: stored token role is not owner", slog.String("role", claims.Role))
		g.purge(ctx)
		return
	}

	user := identityFromClaims(claims)
	if raw, err := values.Get(ctx, store.KeyUserInfo); err == nil {
		var cached UserIdentity
		if err := json.Unmarshal([]byte(raw), &cached); err != nil || cached.Email == "" {
			log.Debug("session restore: cached identity unreadable, using token claims")
		} else if !cached.HasOwnerRole() {
			log.Debug("session restore: cached identity role is not owner", slog.String("role", cached.Role))
			g.purge(ctx)
			return
		} else {
			user = cached
		}
	}

	refresh, err := values.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		refresh = ""
	}

	g.setState(StateAuthenticated, &user, token, refresh)
	log.Info("session restored",
		slog.String("email", user.Email),
		slog.String("token_fp", cryptox.FingerprintToken(token)),
	)
}

// Login exchanges credentials with the backend and, if the account is an
// owner, persists and activates the session. Every error is a *LoginError.
//
// Input validation failures leave the session untouched. Any failure after
// that leaves the gate Unauthenticated with storage cleared.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	req := authsdk.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if fields := req.Validate(); fields != nil {
		return &LoginError{Kind: ErrInvalidInput, Message: MessageInvalidInput, Fields: fields}
	}

	g.Restore(ctx)

	g.opMu.Lock()
	defer g.opMu.Unlock()

	log := slogx.FromContext(ctx)

	user, access, refresh, lerr := g.exchange(ctx, req)
	if lerr == nil {
		lerr = g.persist(ctx, user, access, refresh)
	}
	if lerr != nil {
		log.Info("login failed",
			slog.String("email", req.Email),
			slog.String("reason", lerr.Kind.Error()),
			slog.Any("error", lerr.Err),
		)
		g.purge(ctx)
		return lerr
	}

	g.setState(StateAuthenticated, &user, access, refresh)
	log.Info("login succeeded",
		slog.String("email", user.Email),
		slog.Int64("user_id", user.ID),
		slog.String("token_fp", cryptox.FingerprintToken(access)),
	)
	return nil
}

// exchange runs the backend call and every check on its answer. It does not
// touch state.
func (g *Gate) exchange(ctx context.Context, req authsdk.LoginRequest) (UserIdentity, string, string, *LoginError) {
	res, err := g.backend.Login(ctx, req)
	if err != nil {
		return UserIdentity{}, "", "", classifyBackendError(err)
	}

	if res.AccessToken == "" {
		return UserIdentity{}, "", "", loginError(ErrInvalidServerResponse, MessageNoToken, nil)
	}
	if !strings.Contains(res.AccessToken, ".") {
		return UserIdentity{}, "", "", loginError(ErrInvalidServerResponse, MessageMalformedToken, nil)
	}

	claims, err := jwtx.Decode(res.AccessToken)
	if err != nil {
		return UserIdentity{}, "", "", loginError(ErrInvalidToken, MessageInvalidToken, err)
	}
	if jwtx.IsExpired(claims, g.now()) {
		return UserIdentity{}, "", "", loginError(ErrInvalidToken, MessageInvalidToken, errors.New("token already expired"))
	}

	if !jwtx.RoleDenotesOwner(claims.Role) || !jwtx.RoleDenotesOwner(res.Role) {
		return UserIdentity{}, "", "", loginError(ErrNotAuthorizedRole, MessageNotAuthorizedRole, nil)
	}

	user := UserIdentity{
		ID:       res.UserID,
		Email:    res.Email,
		Role:     res.Role,
		FullName: res.FullName,
	}
	return user, res.AccessToken, res.RefreshToken, nil
}

func classifyBackendError(err error) *LoginError {
	if errors.Is(err, authsdk.ErrInvalidServerResponse) {
		return loginError(ErrInvalidServerResponse, MessageNoToken, err)
	}

	message := MessageLoginFailed
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	return loginError(ErrTransport, message, err)
}

// persist replaces whatever was stored with the new session in one transaction.
func (g *Gate) persist(ctx context.Context, user UserIdentity, access, refresh string) *LoginError {
	info, err := json.Marshal(user)
	if err != nil {
		return loginError(ErrStorage, MessageLoginFailed, err)
	}

	err = g.store.WithTx(ctx, func(tx store.Tx) error {
		values := tx.Values()
		if err := values.Delete(ctx, store.SessionKeys...); err != nil {
			return err
		}
		if err := values.Put(ctx, store.KeyAccessToken, access); err != nil {
			return err
		}
		if refresh != "" {
			if err := values.Put(ctx, store.KeyRefreshToken, refresh); err != nil {
				return err
			}
		}
		return values.Put(ctx, store.KeyUserInfo, string(info))
	})
	if err != nil {
		return loginError(ErrStorage, MessageLoginFailed, err)
	}
	return nil
}

// Logout clears the session in memory and in storage. It is idempotent and
// never fails; a storage error is logged.
func (g *Gate) Logout(ctx context.Context) {
	g.Restore(ctx)

	g.opMu.Lock()
	defer g.opMu.Unlock()

	g.purge(ctx)
	slogx.FromContext(ctx).Info("logged out")
}

// HandleUnauthorized is the authsdk.UnauthorizedFunc for the gate. The session
// is dropped only if the rejected token is still the active one, so a late
// 401 for a replaced session is ignored.
func (g *Gate) HandleUnauthorized(ctx context.Context, rejected string) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if g.AccessToken() != rejected {
		return
	}

	g.purge(ctx)
	slogx.FromContext(ctx).Info("session invalidated by backend",
		slog.String("token_fp", cryptox.FingerprintToken(rejected)),
	)
}

// purge clears storage atomically and moves to StateUnauthenticated. Callers
// hold opMu.
func (g *Gate) purge(ctx context.Context) {
	if err := store.ClearSession(context.WithoutCancel(ctx), g.store); err != nil {
		slogx.FromContext(ctx).Error("clearing persisted session failed", slog.Any("error", err))
	}
	g.setState(StateUnauthenticated, nil, "", "")
}

func (g *Gate) setState(state State, user *UserIdentity, access, refresh string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = state
	g.user = user
	g.accessToken = access
	g.refreshToken = refresh
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Snapshot returns the state and user read together.
func (g *Gate) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := Snapshot{State: g.state}
	if g.user != nil {
		u := *g.user
		snap.User = &u
	}
	return snap
}

// CurrentUser returns the signed-in operator.
func (g *Gate) CurrentUser() (UserIdentity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return UserIdentity{}, false
	}
	return *g.user, true
}

// HasOwnerRole is false when nobody is signed in.
func (g *Gate) HasOwnerRole() bool {
	return g.Snapshot().HasOwnerRole()
}

// AccessToken implements authsdk.TokenSource. It is empty unless authenticated.
func (g *Gate) AccessToken() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.accessToken
}

// RefreshToken is the refresh token saved at login, if the backend sent one.
func (g *Gate) RefreshToken() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.refreshToken
}
