package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rating is a single user's rating of a recipe.
type Rating struct {
	ID     int64 `json:"id"`
	Rating int   `json:"rating"`
	UserID int64 `json:"userId"`
}

// Recipe is the central domain entity. Instances are created from server
// responses, mutated in place through cache reconciliation, and removed from
// all collections on delete.
type Recipe struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Instructions  Steps        `json:"instructions"`
	CookTime      int          `json:"cookTime,omitempty"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	Ingredients   []Ingredient `json:"ingredients"`
	AuthorID      int64        `json:"authorId"`
	Author        Author       `json:"author"`
	Ratings       []Rating     `json:"ratings,omitempty"`
	AverageRating float64      `json:"averageRating,omitempty"`
	RatingsCount  int          `json:"ratingsCount,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Steps holds recipe instructions. The API is inconsistent about the wire
// shape: some payloads carry a single string, others an array of strings.
// Both unmarshal into the normalized slice form; a plain string is split on
// newlines with blank lines dropped.
type Steps []string

func (s *Steps) UnmarshalJSON(b []byte) error {
	var plain string
	if err := json.Unmarshal(b, &plain); err == nil {
		var steps []string
		for _, line := range strings.Split(plain, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				steps = append(steps, line)
			}
		}
		*s = steps
		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("instructions must be a string or a string array: %w", err)
	}
	*s = list
	return nil
}

// Ingredient is a tagged variant: the API serves either a bare string
// ("2 cups flour") or a structured object
// {id, quantity, unit, ingredient:{name}}. Plain is set for the former,
// Name for the latter.
type Ingredient struct {
	Plain    string
	ID       int64
	Quantity float64
	Unit     string
	Name     string
}

// structuredIngredient matches the structured wire shape.
type structuredIngredient struct {
	ID         int64   `json:"id"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Ingredient struct {
		Name string `json:"name"`
	} `json:"ingredient"`
}

func (i Ingredient) IsStructured() bool {
	return i.Name != ""
}

// Display renders either variant as a single human-readable line.
func (i Ingredient) Display() string {
	if !i.IsStructured() {
		return i.Plain
	}
	qty := strconv.FormatFloat(i.Quantity, 'f', -1, 64)
	if i.Unit != "" {
		return fmt.Sprintf("%s %s %s", qty, i.Unit, i.Name)
	}
	return fmt.Sprintf("%s %s", qty, i.Name)
}

func (i *Ingredient) UnmarshalJSON(b []byte) error {
	var plain string
	if err := json.Unmarshal(b, &plain); err == nil {
		*i = Ingredient{Plain: plain}
		return nil
	}

	var s structuredIngredient
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("ingredient must be a string or a structured object: %w", err)
	}
	*i = Ingredient{ID: s.ID, Quantity: s.Quantity, Unit: s.Unit, Name: s.Ingredient.Name}
	return nil
}

func (i Ingredient) MarshalJSON() ([]byte, error) {
	if !i.IsStructured() {
		return json.Marshal(i.Plain)
	}
	var s structuredIngredient
	s.ID = i.ID
	s.Quantity = i.Quantity
	s.Unit = i.Unit
	s.Ingredient.Name = i.Name
	return json.Marshal(s)
}

// RecipeData is the payload for creating a recipe.
type RecipeData struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Instructions string   `json:"instructions"`
	CookTime     int      `json:"cookTime,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Ingredients  []string `json:"ingredients"`
}

// RecipeUpdate is a partial RecipeData for PATCH requests; nil fields are
// omitted from the body and left untouched by the server.
type RecipeUpdate struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Instructions *string   `json:"instructions,omitempty"`
	CookTime     *int      `json:"cookTime,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	Ingredients  *[]string `json:"ingredients,omitempty"`
}
