package models

import "time"

// Note is a personal annotation attached to a recipe. Notes are not part of
// the cross-collection reconciliation invariant.
type Note struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	RecipeID  int64     `json:"recipeId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
