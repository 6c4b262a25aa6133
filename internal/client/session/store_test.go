package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvoronkov/recipeshelf/internal/client/api"
	"github.com/mvoronkov/recipeshelf/internal/client/models"
	"github.com/mvoronkov/recipeshelf/internal/logging"
)

// ---- fake collaborator ----

type fakeAPI struct {
	LoginResp *api.AuthResponse
	LoginErr  error

	RegisterResp *api.AuthResponse
	RegisterErr  error

	ProfileResp *models.User
	ProfileErr  error

	LastLoginCreds   api.Credentials
	LastRegisterData api.RegisterData
	ProfileCalls     int
}

func (f *fakeAPI) Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error) {
	f.LastLoginCreds = creds
	return f.LoginResp, f.LoginErr
}

func (f *fakeAPI) Register(ctx context.Context, data api.RegisterData) (*api.AuthResponse, error) {
	f.LastRegisterData = data
	return f.RegisterResp, f.RegisterErr
}

func (f *fakeAPI) Profile(ctx context.Context) (*models.User, error) {
	f.ProfileCalls++
	return f.ProfileResp, f.ProfileErr
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// assertCoherent checks the session invariant that must hold after every
// transition: IsAuthenticated iff a token is present.
func assertCoherent(t *testing.T, s *Store) {
	t.Helper()
	st := s.State()
	assert.Equal(t, st.Token != "", st.IsAuthenticated, "IsAuthenticated must equal (Token != \"\")")
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// ---- tests ----

func TestLogin_Success(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.c", Username: "ann"}
	fc := &fakeAPI{LoginResp: &api.AuthResponse{AccessToken: "tok", User: user}}
	storage := NewMemoryStorage("")
	s := New(fc, storage, testLogger())

	hookCalls := 0
	s.OnLogin(func(ctx context.Context) { hookCalls++ })

	err := s.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	st := s.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "tok", st.Token)
	assert.Equal(t, "ann", st.User.Username)
	assert.Zero(t, st.LoginAttempts)
	assert.True(t, st.LastLoginAttempt.IsZero())
	assert.Equal(t, 1, hookCalls)
	assertCoherent(t, s)

	stored, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", stored)
}

func TestLogin_FailureWithMessage(t *testing.T) {
	fc := &fakeAPI{LoginErr: &api.APIError{Status: http.StatusUnauthorized, Message: "Bad credentials"}}
	s := New(fc, NewMemoryStorage(""), testLogger())

	err := s.Login(context.Background(), api.Credentials{})
	require.Error(t, err)

	st := s.State()
	assert.Equal(t, "Bad credentials", st.Error)
	assert.Empty(t, st.FieldErrors)
	assert.Equal(t, 1, st.LoginAttempts)
	assert.False(t, st.LastLoginAttempt.IsZero())
	assert.False(t, st.IsAuthenticated)
	assertCoherent(t, s)
}

func TestLogin_FailureWithFieldErrors(t *testing.T) {
	fc := &fakeAPI{LoginErr: &api.APIError{
		Status:      http.StatusBadRequest,
		Message:     "Validation failed",
		FieldErrors: map[string]string{"email": "invalid email"},
	}}
	s := New(fc, NewMemoryStorage(""), testLogger())

	require.Error(t, s.Login(context.Background(), api.Credentials{}))

	st := s.State()
	assert.Equal(t, "Validation failed", st.Error)
	assert.Equal(t, map[string]string{"email": "invalid email"}, st.FieldErrors)
	assertCoherent(t, s)
}

func TestLogin_UnauthorizedOverRehydratedSessionClearsToken(t *testing.T) {
	fc := &fakeAPI{LoginErr: &api.APIError{Status: http.StatusUnauthorized, Message: "Bad credentials"}}
	storage := NewMemoryStorage(signedToken(t, time.Now().Add(time.Hour)))
	s := New(fc, storage, testLogger())
	require.True(t, s.State().IsAuthenticated)

	require.Error(t, s.Login(context.Background(), api.Credentials{}))

	st := s.State()
	assert.Empty(t, st.Token)
	assert.Nil(t, st.User)
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, 1, st.LoginAttempts)
	assertCoherent(t, s)

	stored, err := storage.Load()
	require.NoError(t, err)
	assert.Empty(t, stored, "durable token must be cleared with the in-memory one")
}

func TestLogin_TransportFailureKeepsRehydratedSession(t *testing.T) {
	fc := &fakeAPI{LoginErr: &api.APIError{Status: 0, Message: "Login failed"}}
	storage := NewMemoryStorage(signedToken(t, time.Now().Add(time.Hour)))
	s := New(fc, storage, testLogger())

	require.Error(t, s.Login(context.Background(), api.Credentials{}))

	st := s.State()
	assert.NotEmpty(t, st.Token)
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, 1, st.LoginAttempts)
	assertCoherent(t, s)
}

func TestLogin_TransportFailureUsesFallback(t *testing.T) {
	fc := &fakeAPI{LoginErr: &api.APIError{Status: 0, Message: "Login failed"}}
	s := New(fc, NewMemoryStorage(""), testLogger())

	require.Error(t, s.Login(context.Background(), api.Credentials{}))
	assert.Equal(t, "Login failed", s.State().Error)
}

func TestLogin_AttemptsAccumulateAcrossFailures(t *testing.T) {
	fc := &fakeAPI{LoginErr: &api.APIError{Status: http.StatusUnauthorized, Message: "nope"}}
	s := New(fc, NewMemoryStorage(""), testLogger())

	_ = s.Login(context.Background(), api.Credentials{})
	_ = s.Login(context.Background(), api.Credentials{})
	assert.Equal(t, 2, s.State().LoginAttempts)

	fc.LoginErr = nil
	fc.LoginResp = &api.AuthResponse{AccessToken: "tok"}
	require.NoError(t, s.Login(context.Background(), api.Credentials{}))
	assert.Zero(t, s.State().LoginAttempts)
}

func TestRegister_TokenBearingResponseAuthenticates(t *testing.T) {
	fc := &fakeAPI{RegisterResp: &api.AuthResponse{
		AccessToken: "tok",
		User:        &models.User{ID: 2, Username: "bob"},
	}}
	storage := NewMemoryStorage("")
	s := New(fc, storage, testLogger())

	resp, err := s.Register(context.Background(), api.RegisterData{Email: "b@b.c", Username: "bob"})
	require.NoError(t, err)
	assert.True(t, resp.HasToken())

	st := s.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "bob", st.User.Username)
	assertCoherent(t, s)

	stored, _ := storage.Load()
	assert.Equal(t, "tok", stored)
}

func TestRegister_MessageOnlyResponseStaysUnauthenticated(t *testing.T) {
	fc := &fakeAPI{RegisterResp: &api.AuthResponse{Message: "Check your inbox"}}
	s := New(fc, NewMemoryStorage(""), testLogger())

	resp, err := s.Register(context.Background(), api.RegisterData{})
	require.NoError(t, err)
	assert.False(t, resp.HasToken())
	assert.Equal(t, "Check your inbox", resp.Message)

	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Token)
	assertCoherent(t, s)
}

func TestRegister_FailureDoesNotTouchLoginAttempts(t *testing.T) {
	fc := &fakeAPI{RegisterErr: &api.APIError{
		Status:      http.StatusBadRequest,
		Message:     "Validation failed",
		FieldErrors: map[string]string{"username": "taken"},
	}}
	s := New(fc, NewMemoryStorage(""), testLogger())

	_, err := s.Register(context.Background(), api.RegisterData{})
	require.Error(t, err)

	st := s.State()
	assert.Zero(t, st.LoginAttempts)
	assert.Equal(t, map[string]string{"username": "taken"}, st.FieldErrors)
}

func TestFetchProfile_PopulatesUser(t *testing.T) {
	fc := &fakeAPI{ProfileResp: &models.User{ID: 1, Username: "ann"}}
	s := New(fc, NewMemoryStorage(signedToken(t, time.Now().Add(time.Hour))), testLogger())

	require.True(t, s.State().NeedsProfile())
	require.NoError(t, s.FetchProfile(context.Background()))

	st := s.State()
	assert.Equal(t, "ann", st.User.Username)
	assert.False(t, st.NeedsProfile())
	assertCoherent(t, s)
}

func TestFetchProfile_UnauthorizedForcesFullLogout(t *testing.T) {
	fc := &fakeAPI{ProfileErr: &api.APIError{Status: http.StatusUnauthorized, Message: "Unauthorized"}}
	storage := NewMemoryStorage(signedToken(t, time.Now().Add(time.Hour)))
	s := New(fc, storage, testLogger())
	require.True(t, s.State().IsAuthenticated)

	err := s.FetchProfile(context.Background())
	require.Error(t, err)

	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Token)
	assert.Nil(t, st.User)
	assertCoherent(t, s)

	stored, _ := storage.Load()
	assert.Empty(t, stored, "durable token must be dropped on 401")
}

func TestFetchProfile_WithoutTokenIsRejectedLocally(t *testing.T) {
	fc := &fakeAPI{}
	s := New(fc, NewMemoryStorage(""), testLogger())

	err := s.FetchProfile(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Zero(t, fc.ProfileCalls)
}

func TestRehydration_ValidTokenStartsAuthenticatedWithoutUser(t *testing.T) {
	s := New(&fakeAPI{}, NewMemoryStorage(signedToken(t, time.Now().Add(time.Hour))), testLogger())

	st := s.State()
	assert.True(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.True(t, st.NeedsProfile())
	assertCoherent(t, s)
}

func TestRehydration_ExpiredTokenIsDiscarded(t *testing.T) {
	storage := NewMemoryStorage(signedToken(t, time.Now().Add(-time.Hour)))
	s := New(&fakeAPI{}, storage, testLogger())

	assert.False(t, s.State().IsAuthenticated)
	stored, _ := storage.Load()
	assert.Empty(t, stored)
	assertCoherent(t, s)
}

func TestRehydration_OpaqueTokenIsKept(t *testing.T) {
	s := New(&fakeAPI{}, NewMemoryStorage("not-a-jwt"), testLogger())
	assert.True(t, s.State().IsAuthenticated)
	assertCoherent(t, s)
}

func TestLogout_ClearsEverything(t *testing.T) {
	fc := &fakeAPI{LoginResp: &api.AuthResponse{AccessToken: "tok", User: &models.User{ID: 1}}}
	storage := NewMemoryStorage("")
	s := New(fc, storage, testLogger())
	require.NoError(t, s.Login(context.Background(), api.Credentials{}))

	s.Logout()

	st := s.State()
	assert.Equal(t, State{}, st)
	assertCoherent(t, s)

	stored, _ := storage.Load()
	assert.Empty(t, stored)
}

func TestSubscribe_NotifiedOnEveryTransition(t *testing.T) {
	fc := &fakeAPI{LoginResp: &api.AuthResponse{AccessToken: "tok"}}
	s := New(fc, NewMemoryStorage(""), testLogger())

	var snapshots []State
	s.Subscribe(func(st State) { snapshots = append(snapshots, st) })

	require.NoError(t, s.Login(context.Background(), api.Credentials{}))

	// One loading transition, one success transition.
	require.Len(t, snapshots, 2)
	assert.True(t, snapshots[0].IsLoading)
	assert.True(t, snapshots[1].IsAuthenticated)
}

func TestClearError(t *testing.T) {
	fc := &fakeAPI{LoginErr: &api.APIError{Status: http.StatusUnauthorized, Message: "Bad credentials"}}
	s := New(fc, NewMemoryStorage(""), testLogger())
	_ = s.Login(context.Background(), api.Credentials{})
	require.NotEmpty(t, s.State().Error)

	s.ClearError()
	st := s.State()
	assert.Empty(t, st.Error)
	assert.Empty(t, st.FieldErrors)
}
