package models

import "time"

// Recipe is a stored recipe. Ingredients keep the submitted order;
// Instructions is the raw multi-line text the author entered.
type Recipe struct {
	ID           int64
	Title        string
	Description  string
	Instructions string
	CookTime     int
	Cuisine      string
	ImageURL     string
	Ingredients  []string
	AuthorID     int64
	Author       string

	AverageRating float64
	RatingsCount  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipePatch carries the changed fields of an update; nil pointers mean
// "keep the stored value".
type RecipePatch struct {
	Title        *string
	Description  *string
	Instructions *string
	CookTime     *int
	Cuisine      *string
	ImageURL     *string
	Ingredients  *[]string
}

// Rating is one user's 1..5 score for a recipe. A user has at most one
// rating per recipe.
type Rating struct {
	ID        int64
	RecipeID  int64
	UserID    int64
	Value     int
	CreatedAt time.Time
}

// RatingSummary is the recomputed aggregate returned after a rating write.
type RatingSummary struct {
	AverageRating float64
	RatingsCount  int
}

// Note is a private annotation a user keeps on a recipe.
type Note struct {
	ID        int64
	RecipeID  int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}
