package httpapi

import (
	"time"

	"github.com/mvoronkov/recipeshelf/internal/server/models"
)

// Wire DTOs. Field names follow the JSON contract consumed by the web and
// terminal clients (camelCase, author as an embedded object).

type userJSON struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type authorJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type recipeJSON struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Instructions  string     `json:"instructions"`
	CookTime      int        `json:"cookTime,omitempty"`
	Cuisine       string     `json:"cuisine,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	Ingredients   []string   `json:"ingredients"`
	AuthorID      int64      `json:"authorId"`
	Author        authorJSON `json:"author"`
	AverageRating float64    `json:"averageRating"`
	RatingsCount  int        `json:"ratingsCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type noteJSON struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	RecipeID  int64     `json:"recipeId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type paginationJSON struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type recipesPageJSON struct {
	Data       []recipeJSON   `json:"data"`
	Pagination paginationJSON `json:"pagination"`
}

type authResponseJSON struct {
	AccessToken string   `json:"access_token"`
	User        userJSON `json:"user"`
}

type ratingJSON struct {
	AverageRating float64 `json:"averageRating"`
	RatingsCount  int     `json:"ratingsCount"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toRecipeJSON(r *models.Recipe) recipeJSON {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return recipeJSON{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Instructions:  r.Instructions,
		CookTime:      r.CookTime,
		Cuisine:       r.Cuisine,
		ImageURL:      r.ImageURL,
		Ingredients:   ingredients,
		AuthorID:      r.AuthorID,
		Author:        authorJSON{ID: r.AuthorID, Username: r.Author},
		AverageRating: r.AverageRating,
		RatingsCount:  r.RatingsCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toNoteJSON(n *models.Note) noteJSON {
	return noteJSON{
		ID:        n.ID,
		Content:   n.Content,
		RecipeID:  n.RecipeID,
		UserID:    n.UserID,
		CreatedAt: n.CreatedAt,
	}
}

func toRecipesPageJSON(items []models.Recipe, page, limit, total int) recipesPageJSON {
	data := make([]recipeJSON, 0, len(items))
	for i := range items {
		data = append(data, toRecipeJSON(&items[i]))
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return recipesPageJSON{
		Data: data,
		Pagination: paginationJSON{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}
