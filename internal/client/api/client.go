// Package api implements the HTTP client for the recipe REST API: JSON
// bodies, bearer-token authorization, and normalization of failure payloads
// into the client error taxonomy.
package api

import (
	"context"

	"github.com/mvoronkov/recipeshelf/internal/client/models"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData is the registration request body.
type RegisterData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// AuthResponse covers both response shapes the auth endpoints produce:
// token-bearing ({access_token, user}) and confirmation-only ({message}).
// Exactly one of AccessToken/Message is expected to be set; callers branch
// on HasToken.
type AuthResponse struct {
	AccessToken string       `json:"access_token,omitempty"`
	User        *models.User `json:"user,omitempty"`
	Message     string       `json:"message,omitempty"`
}

func (r *AuthResponse) HasToken() bool {
	return r != nil && r.AccessToken != ""
}

// ListParams are the query parameters for recipe list endpoints.
// Zero values are omitted from the query string.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Cuisine string
}

// RecipesPage is one page of a recipe collection.
type RecipesPage struct {
	Data       []models.Recipe   `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// RatingResult is the server-computed aggregate returned by the rate
// endpoint. The client never computes these values locally.
type RatingResult struct {
	AverageRating float64 `json:"averageRating"`
	RatingsCount  int     `json:"ratingsCount"`
}

// Client is the remote API collaborator. All methods honor context
// cancellation; in-flight requests are never cancelled by the core itself.
type Client interface {
	Login(ctx context.Context, creds Credentials) (*AuthResponse, error)
	Register(ctx context.Context, data RegisterData) (*AuthResponse, error)
	Profile(ctx context.Context) (*models.User, error)

	ListRecipes(ctx context.Context, params ListParams) (*RecipesPage, error)
	ListMyRecipes(ctx context.Context, params ListParams) (*RecipesPage, error)
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, data models.RecipeData) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, patch models.RecipeUpdate) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
	RateRecipe(ctx context.Context, id int64, rating int) (*RatingResult, error)

	AddNote(ctx context.Context, id int64, content string) (*models.Note, error)
	ListNotes(ctx context.Context, id int64) ([]models.Note, error)
}
