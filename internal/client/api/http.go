package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mvoronkov/recipeshelf/internal/client/models"
	"github.com/mvoronkov/recipeshelf/internal/logging"
)

// TokenProvider supplies the current bearer token. An empty string means
// "no credential"; the Authorization header is omitted in that case.
type TokenProvider interface {
	Token() string
}

// HTTPClient is the Client implementation over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	log     logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenProvider, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// do performs one JSON round trip. fallback is the operation-specific
// message used when the failure carries no structured payload.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any, fallback string) error {

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return &APIError{Status: 0, Message: fallback}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(ctx, resp, fallback, requestID)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) decodeError(ctx context.Context, resp *http.Response, fallback, requestID string) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: fallback}

	var body errorBody
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		}
		apiErr.FieldErrors = FoldFieldErrors(body.Errors)
	}

	c.log.Debug(ctx, "api error", "status", resp.StatusCode, "message", apiErr.Message, "request_id", requestID)
	return apiErr
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Cuisine != "" {
		q.Set("cuisine", p.Cuisine)
	}
	return q
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp, "Login failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, data RegisterData) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, data, &resp, "Registration failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &user, "Failed to fetch profile"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ListRecipes(ctx context.Context, params ListParams) (*RecipesPage, error) {
	var page RecipesPage
	if err := c.do(ctx, http.MethodGet, "/recipes", params.query(), nil, &page, "Failed to fetch recipes"); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) ListMyRecipes(ctx context.Context, params ListParams) (*RecipesPage, error) {
	var page RecipesPage
	if err := c.do(ctx, http.MethodGet, "/recipes/my-recipes", params.query(), nil, &page, "Failed to fetch my recipes"); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	path := "/recipes/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &recipe, "Failed to fetch recipe"); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *HTTPClient) CreateRecipe(ctx context.Context, data models.RecipeData) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := c.do(ctx, http.MethodPost, "/recipes", nil, data, &recipe, "Failed to create recipe"); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *HTTPClient) UpdateRecipe(ctx context.Context, id int64, patch models.RecipeUpdate) (*models.Recipe, error) {
	var recipe models.Recipe
	path := "/recipes/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPatch, path, nil, patch, &recipe, "Failed to update recipe"); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *HTTPClient) DeleteRecipe(ctx context.Context, id int64) error {
	path := "/recipes/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, "Failed to delete recipe")
}

func (c *HTTPClient) RateRecipe(ctx context.Context, id int64, rating int) (*RatingResult, error) {
	var result RatingResult
	path := "/recipes/" + strconv.FormatInt(id, 10) + "/rate"
	body := map[string]int{"rating": rating}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &result, "Failed to rate recipe"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) AddNote(ctx context.Context, id int64, content string) (*models.Note, error) {
	var note models.Note
	path := "/recipes/" + strconv.FormatInt(id, 10) + "/notes"
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &note, "Failed to add note"); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context, id int64) ([]models.Note, error) {
	var notes []models.Note
	path := "/recipes/" + strconv.FormatInt(id, 10) + "/notes"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &notes, "Failed to fetch notes"); err != nil {
		return nil, err
	}
	return notes, nil
}
