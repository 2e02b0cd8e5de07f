// Package session implements the authentication session store: token
// lifecycle, optimistic local caching of the user identity, and the
// logout-on-failure rules around re-validation.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/api"
	"github.com/dmitrijs2005/shopkeeper/internal/client/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// State is the session lifecycle phase.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// ErrSuperseded is returned when an authentication attempt finished after
// the session generation had already moved on (a logout or a newer login).
// The late result is discarded, never applied.
var ErrSuperseded = errors.New("session superseded")

// Store holds the authenticated identity and credential for the current
// session.
//
// Invariant: user and token are set together or cleared together. The
// durable writes go through kv.SetMany/DeleteMany so the persisted pair can
// never diverge either.
//
// The identity is two-phase: CachedUser is restored from the durable store
// before any round trip and must be treated as untrusted display data;
// ConfirmedUser is set only after a successful /auth/me (or a login, whose
// response arrived together with the token).
type Store struct {
	mu    sync.Mutex
	api   api.Client
	store kv.Store
	log   logging.Logger

	state         State
	token         string
	cachedUser    *models.User
	confirmedUser *models.User
	lastErr       string

	// gen is bumped on every logout and successful login. Async completions
	// compare the generation captured at request start and discard
	// themselves when it has moved: a later Logout always wins over a
	// late-arriving CheckAuth success.
	gen uint64
}

func NewStore(client api.Client, store kv.Store, log logging.Logger) *Store {
	return &Store{
		api:   client,
		store: store,
		log:   log.With("store", "session"),
		state: StateAnonymous,
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CachedUser is the immediately-available identity restored from the durable
// store. Untrusted: render it, never authorize with it.
func (s *Store) CachedUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedUser
}

// ConfirmedUser is the identity confirmed by the server this session, or nil.
func (s *Store) ConfirmedUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmedUser
}

// CurrentUser prefers the confirmed identity and falls back to the cached
// one, for callers that only display.
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmedUser != nil {
		return s.confirmedUser
	}
	return s.cachedUser
}

// LastError is the message recorded by the most recent failed operation.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// LoginWithTelegram forwards the opaque widget payload (plus an optional
// referral code) to the server. The payload is not validated client-side.
func (s *Store) LoginWithTelegram(ctx context.Context, payload api.TelegramPayload, referralCode string) (*models.User, error) {
	return s.login(ctx, func(ctx context.Context) (*api.AuthResult, error) {
		return s.api.TelegramLogin(ctx, api.TelegramLoginRequest{
			TelegramPayload: payload,
			ReferralCode:    referralCode,
		})
	})
}

// LoginWithCredentials authenticates with username and password.
func (s *Store) LoginWithCredentials(ctx context.Context, creds api.Credentials) (*models.User, error) {
	return s.login(ctx, func(ctx context.Context) (*api.AuthResult, error) {
		return s.api.Login(ctx, creds)
	})
}

// Register creates an account and starts a session from the returned pair.
func (s *Store) Register(ctx context.Context, reg api.Registration) (*models.User, error) {
	return s.login(ctx, func(ctx context.Context) (*api.AuthResult, error) {
		return s.api.Register(ctx, reg)
	})
}

// login runs one authentication attempt. On success it stores and persists
// {user, token} together and transitions to Authenticated. On failure the
// previous state is restored and the error message recorded; the error is
// returned, never panicked.
func (s *Store) login(ctx context.Context, call func(ctx context.Context) (*api.AuthResult, error)) (*models.User, error) {
	s.mu.Lock()
	prev := s.state
	s.state = StateAuthenticating
	s.lastErr = ""
	gen := s.gen
	s.mu.Unlock()

	res, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return nil, ErrSuperseded
	}

	if err == nil && (res == nil || res.User == nil || res.Token == "") {
		err = common.ErrInternal
	}
	if err != nil {
		s.state = prev
		s.lastErr = err.Error()
		return nil, err
	}

	s.gen++
	s.state = StateAuthenticated
	s.token = res.Token
	s.cachedUser = res.User
	s.confirmedUser = res.User
	s.persistLocked(ctx)

	return res.User, nil
}

// CheckAuth re-validates the session. Safe to call at any time: with no
// token anywhere it is a no-op. With a token it first restores the cached
// user so the caller can render immediately, then confirms against
// /auth/me; any failure of that round trip ends the session.
func (s *Store) CheckAuth(ctx context.Context) error {
	s.mu.Lock()

	if s.token == "" {
		if b, err := s.store.Get(ctx, common.KeyAuthToken); err == nil && len(b) > 0 {
			s.token = string(b)
		}
	}
	if s.token == "" {
		s.mu.Unlock()
		return nil
	}

	// optimistic restore: cached identity is shown before the server confirms
	if s.cachedUser == nil {
		if b, err := s.store.Get(ctx, common.KeyUserData); err == nil && len(b) > 0 {
			var u models.User
			if err := json.Unmarshal(b, &u); err == nil {
				s.cachedUser = &u
			}
		}
	}
	s.state = StateAuthenticated
	gen := s.gen
	s.mu.Unlock()

	user, err := s.api.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		// a logout or a newer login already won; drop this result
		return nil
	}

	if err != nil || user == nil {
		s.logoutLocked(ctx)
		if err == nil {
			err = common.ErrInternal
		}
		return err
	}

	s.cachedUser = user
	s.confirmedUser = user
	s.state = StateAuthenticated
	s.persistLocked(ctx)
	return nil
}

// Logout clears token, user and error state, in memory and in the durable
// store. Idempotent.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(ctx)
}

// TokenExpiresAt peeks at the token's exp claim without verifying the
// signature. Advisory only: the CLI shows it in the status line. Returns
// the zero time when the token is absent or not a JWT.
func (s *Store) TokenExpiresAt() time.Time {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (s *Store) logoutLocked(ctx context.Context) {
	s.gen++
	s.state = StateAnonymous
	s.token = ""
	s.cachedUser = nil
	s.confirmedUser = nil
	s.lastErr = ""

	if err := s.store.DeleteMany(ctx, common.KeyAuthToken, common.KeyUserData); err != nil {
		s.log.Warn(ctx, "failed to clear persisted session", "error", err)
	}
}

// persistLocked writes token and user atomically. Best-effort: a failed
// write keeps the in-memory session authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.confirmedUser)
	if err != nil {
		s.log.Warn(ctx, "failed to marshal user", "error", err)
		return
	}
	pairs := map[string][]byte{
		common.KeyAuthToken: []byte(s.token),
		common.KeyUserData:  data,
	}
	if err := s.store.SetMany(ctx, pairs); err != nil {
		s.log.Warn(ctx, "failed to persist session", "error", err)
	}
}
