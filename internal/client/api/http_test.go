package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvoronkov/recipeshelf/internal/logging"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second, staticTokens(token), discardLogger())
}

func TestHTTPClient_Login_SendsBodyAndDecodesToken(t *testing.T) {
	var gotBody Credentials

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok123","user":{"id":1,"email":"a@b.c","username":"ann"}}`))
	}, "")

	resp, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, Credentials{Email: "a@b.c", Password: "pw"}, gotBody)
	assert.True(t, resp.HasToken())
	assert.Equal(t, "tok123", resp.AccessToken)
	assert.Equal(t, "ann", resp.User.Username)
}

func TestHTTPClient_BearerTokenAttached(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":1,"email":"a@b.c","username":"ann","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}`))
	}, "secret")

	user, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
}

func TestHTTPClient_ListRecipes_QueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "12", q.Get("limit"))
		assert.Equal(t, "soup", q.Get("search"))
		assert.False(t, q.Has("cuisine"))
		_, _ = w.Write([]byte(`{"data":[],"pagination":{"page":2,"limit":12,"total":0,"totalPages":0}}`))
	}, "")

	page, err := c.ListRecipes(context.Background(), ListParams{Page: 2, Limit: 12, Search: "soup"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Page)
}

func TestHTTPClient_DecodesValidationErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Validation failed","errors":[{"path":["email"],"message":"invalid email"},{"path":"password","message":"too short"}]}`))
	}, "")

	_, err := c.Login(context.Background(), Credentials{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Equal(t, map[string]string{
		"email":    "invalid email",
		"password": "too short",
	}, apiErr.FieldErrors)
}

func TestHTTPClient_401MapsToUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
	}, "stale")

	_, err := c.Profile(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestHTTPClient_UnparseableBodyUsesFallbackMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>boom</html>`))
	}, "")

	_, err := c.ListRecipes(context.Background(), ListParams{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to fetch recipes", apiErr.Message)
}

func TestHTTPClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewHTTPClient(srv.URL, time.Second, staticTokens(""), discardLogger())
	_, err := c.GetRecipe(context.Background(), 1)

	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestHTTPClient_DeleteSendsNoBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/recipes/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}, "tok")

	require.NoError(t, c.DeleteRecipe(context.Background(), 42))
}

func TestHTTPClient_RateRecipe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/7/rate", r.URL.Path)
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 5, body["rating"])
		_, _ = w.Write([]byte(`{"averageRating":4.2,"ratingsCount":10}`))
	}, "tok")

	result, err := c.RateRecipe(context.Background(), 7, 5)
	require.NoError(t, err)
	assert.Equal(t, 4.2, result.AverageRating)
	assert.Equal(t, 10, result.RatingsCount)
}
