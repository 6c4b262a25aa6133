// Package session is the single source of truth for "who is logged in" and
// the credential used to authorize API calls. All transitions are atomic:
// after every one of them IsAuthenticated == (Token != "").
package session

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mvoronkov/recipeshelf/internal/client/api"
	"github.com/mvoronkov/recipeshelf/internal/client/models"
	"github.com/mvoronkov/recipeshelf/internal/logging"
)

// API is the slice of the remote collaborator the session store needs.
type API interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, data api.RegisterData) (*api.AuthResponse, error)
	Profile(ctx context.Context) (*models.User, error)
}

// State is an immutable snapshot of the session.
type State struct {
	User             *models.User
	Token            string
	IsAuthenticated  bool
	IsLoading        bool
	Error            string
	FieldErrors      map[string]string
	LoginAttempts    int
	LastLoginAttempt time.Time
}

// NeedsProfile reports the level-triggered condition under which the
// composing application should hydrate the profile: a credential exists but
// the user is not loaded and no request is in flight. It must be re-checked
// on every state change, not just once.
func (s State) NeedsProfile() bool {
	return s.Token != "" && s.User == nil && !s.IsLoading
}

// Store holds the session state and drives the auth lifecycle.
type Store struct {
	mu      sync.Mutex
	state   State
	api     API
	storage TokenStorage
	log     logging.Logger
	now     func() time.Time

	loginHooks  []func(ctx context.Context)
	subscribers []func(State)
}

// New builds a Store and rehydrates it from durable storage: if a token is
// present (and its JWT expiry, when readable, has not passed) the session
// starts authenticated with a nil user.
func New(apiClient API, storage TokenStorage, log logging.Logger) *Store {
	s := &Store{
		api:     apiClient,
		storage: storage,
		log:     log,
		now:     time.Now,
	}

	token, err := storage.Load()
	if err != nil {
		log.Warn(context.Background(), "token rehydration failed", "error", err)
		return s
	}
	if token == "" {
		return s
	}
	if tokenExpired(token, s.now()) {
		log.Info(context.Background(), "stored token expired, discarding")
		_ = storage.Clear()
		return s
	}

	s.state.Token = token
	s.state.IsAuthenticated = true
	return s
}

// tokenExpired inspects the JWT exp claim without verifying the signature.
// An unreadable token or a token without exp is kept; the server rejects it
// with 401 if it is actually unusable, and the 401 path clears it.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// Token implements api.TokenProvider.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	snap.FieldErrors = maps.Clone(s.state.FieldErrors)
	return snap
}

// Subscribe registers fn to run after every state transition with the new
// snapshot. Subscribers run synchronously on the mutating goroutine and may
// call back into the store.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// OnLogin registers a post-login hook, run after every successful login
// transition. Unlike Subscribe observers, hooks receive the login call's
// context, so they suit follow-up requests tied to that call.
func (s *Store) OnLogin(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginHooks = append(s.loginHooks, fn)
}

// transition runs mutate under the lock, then notifies subscribers with the
// resulting snapshot outside of it.
func (s *Store) transition(mutate func(st *State)) State {
	s.mu.Lock()
	mutate(&s.state)
	snap := s.snapshotLocked()
	subs := s.subscribers
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// Login authenticates against the collaborator. On success the token is
// persisted, attempt counters reset, and post-login hooks run. On failure
// the attempt counter is incremented and the error taxonomy applied.
func (s *Store) Login(ctx context.Context, creds api.Credentials) error {
	s.transition(func(st *State) {
		st.IsLoading = true
		st.Error = ""
		st.FieldErrors = nil
	})

	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		unauthorized := errors.Is(err, api.ErrUnauthorized)
		s.transition(func(st *State) {
			st.IsLoading = false
			st.LoginAttempts++
			st.LastLoginAttempt = s.now()
			if unauthorized {
				// Authentication-failure signal invalidates any token,
				// including one rehydrated from storage.
				st.Token = ""
				st.User = nil
			}
			st.IsAuthenticated = st.Token != ""
			applyAuthError(st, err, "Login failed")
		})
		if unauthorized {
			_ = s.storage.Clear()
		}
		return err
	}

	if err := s.storage.Save(resp.AccessToken); err != nil {
		s.log.Warn(ctx, "persisting token failed", "error", err)
	}

	s.transition(func(st *State) {
		st.IsLoading = false
		st.Token = resp.AccessToken
		st.IsAuthenticated = true
		st.User = resp.User
		st.Error = ""
		st.FieldErrors = nil
		st.LoginAttempts = 0
		st.LastLoginAttempt = time.Time{}
	})

	s.mu.Lock()
	hooks := s.loginHooks
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
	return nil
}

// Register creates an account. The endpoint is inconsistent about its
// response shape; the canonical behavior here is: a token-bearing response
// authenticates immediately (same transition as login, without the login
// hooks), a confirmation-only response leaves the session unauthenticated.
// The response is returned so callers can surface the confirmation message.
func (s *Store) Register(ctx context.Context, data api.RegisterData) (*api.AuthResponse, error) {
	s.transition(func(st *State) {
		st.IsLoading = true
		st.Error = ""
		st.FieldErrors = nil
	})

	resp, err := s.api.Register(ctx, data)
	if err != nil {
		s.transition(func(st *State) {
			st.IsLoading = false
			applyAuthError(st, err, "Registration failed")
		})
		return nil, err
	}

	if resp.HasToken() {
		if err := s.storage.Save(resp.AccessToken); err != nil {
			s.log.Warn(ctx, "persisting token failed", "error", err)
		}
	}

	s.transition(func(st *State) {
		st.IsLoading = false
		if resp.HasToken() {
			st.Token = resp.AccessToken
			st.IsAuthenticated = true
			st.User = resp.User
			st.LoginAttempts = 0
			st.LastLoginAttempt = time.Time{}
		}
	})
	return resp, nil
}

// FetchProfile hydrates the user behind the current token. A failure that
// carries the unauthorized signal forces a full logout, durable token
// included.
func (s *Store) FetchProfile(ctx context.Context) error {
	if s.Token() == "" {
		return api.ErrUnauthorized
	}

	s.transition(func(st *State) {
		st.IsLoading = true
	})

	user, err := s.api.Profile(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.log.Info(ctx, "profile fetch unauthorized, forcing logout")
			s.forceLogout(err)
			return err
		}
		s.transition(func(st *State) {
			st.IsLoading = false
			applyAuthError(st, err, "Failed to fetch profile")
		})
		return err
	}

	s.transition(func(st *State) {
		st.IsLoading = false
		st.User = user
	})
	return nil
}

// Logout unconditionally clears the session and the durable token. It
// always succeeds.
func (s *Store) Logout() {
	_ = s.storage.Clear()
	s.transition(func(st *State) {
		*st = State{}
	})
}

func (s *Store) forceLogout(cause error) {
	_ = s.storage.Clear()
	s.transition(func(st *State) {
		msg := errorMessage(cause, "Unauthorized")
		*st = State{Error: msg}
	})
}

// ClearError drops the surfaced error and field errors.
func (s *Store) ClearError() {
	s.transition(func(st *State) {
		st.Error = ""
		st.FieldErrors = nil
	})
}

// applyAuthError folds a collaborator failure into the state per the error
// taxonomy: field-validation errors populate FieldErrors, everything else a
// single message with the operation-specific fallback.
func applyAuthError(st *State, err error, fallback string) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		st.Error = apiErr.Message
		if len(apiErr.FieldErrors) > 0 {
			st.FieldErrors = maps.Clone(apiErr.FieldErrors)
		}
		return
	}
	st.Error = fallback
}

func errorMessage(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
