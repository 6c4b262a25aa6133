// Package dispatch wraps every write operation against the recipe API with
// the same contract: one call to the collaborator, on success exactly one
// reconciliation of the collection cache, on failure no cache mutation at
// all.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mvoronkov/recipeshelf/internal/client/api"
	"github.com/mvoronkov/recipeshelf/internal/client/models"
	"github.com/mvoronkov/recipeshelf/internal/client/recipes"
	"github.com/mvoronkov/recipeshelf/internal/logging"
)

// API is the slice of the remote collaborator the dispatcher needs.
type API interface {
	CreateRecipe(ctx context.Context, data models.RecipeData) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, patch models.RecipeUpdate) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
	RateRecipe(ctx context.Context, id int64, rating int) (*api.RatingResult, error)
	AddNote(ctx context.Context, id int64, content string) (*models.Note, error)
	ListNotes(ctx context.Context, id int64) ([]models.Note, error)
}

var (
	// ErrRatingOutOfRange rejects ratings outside [1,5] before any network
	// call is made.
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

	// ErrRatingInFlight rejects a second rating submission for a recipe
	// while one is still unresolved, so two concurrent writes cannot land
	// their aggregates out of order.
	ErrRatingInFlight = errors.New("a rating for this recipe is already being submitted")

	// ErrEmptyNote rejects notes that are empty after trimming.
	ErrEmptyNote = errors.New("note content must not be empty")
)

// ValidationError is a client-side validation failure: it never reaches the
// collaborator and carries the same field-keyed map shape as server-side
// validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%d fields)", len(e.Fields))
}

// Dispatcher orchestrates mutations against the API and the cache.
type Dispatcher struct {
	api   API
	cache *recipes.Store
	log   logging.Logger

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func New(apiClient API, cache *recipes.Store, log logging.Logger) *Dispatcher {
	return &Dispatcher{
		api:      apiClient,
		cache:    cache,
		log:      log,
		inflight: make(map[int64]struct{}),
	}
}

// Create validates the payload, creates the recipe, and prepends the result
// to both list collections (a freshly created recipe is immediately visible
// community-wide).
func (d *Dispatcher) Create(ctx context.Context, data models.RecipeData) (*models.Recipe, error) {
	if err := validateRecipeData(data); err != nil {
		return nil, err
	}

	created, err := d.api.CreateRecipe(ctx, data)
	if err != nil {
		return nil, err
	}

	d.cache.Prepend(*created)
	d.log.Info(ctx, "recipe created", "id", created.ID)
	return created, nil
}

// Update patches the recipe and replaces it by id in every collection that
// holds it, the detail view included.
func (d *Dispatcher) Update(ctx context.Context, id int64, patch models.RecipeUpdate) (*models.Recipe, error) {
	updated, err := d.api.UpdateRecipe(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	d.cache.ReplaceByID(*updated)
	return updated, nil
}

// Delete removes the recipe server-side and then from every collection,
// clearing the detail view if it was showing the deleted id.
func (d *Dispatcher) Delete(ctx context.Context, id int64) error {
	if err := d.api.DeleteRecipe(ctx, id); err != nil {
		return err
	}

	d.cache.RemoveByID(id)
	d.log.Info(ctx, "recipe deleted", "id", id)
	return nil
}

// Rate submits a rating and fans the server-returned aggregate out to every
// cached copy. The aggregate is applied as-is: repeating the same rating
// converges on whatever the server last answered, with no client-side
// accumulation.
func (d *Dispatcher) Rate(ctx context.Context, id int64, rating int) (*api.RatingResult, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrRatingOutOfRange
	}

	if !d.acquireRating(id) {
		return nil, ErrRatingInFlight
	}
	defer d.releaseRating(id)

	result, err := d.api.RateRecipe(ctx, id, rating)
	if err != nil {
		return nil, err
	}

	d.cache.ApplyRating(id, result.AverageRating, result.RatingsCount)
	return result, nil
}

// AddNote attaches a personal note to the recipe. Notes are not cached
// across collections; they are outside the reconciliation invariant.
func (d *Dispatcher) AddNote(ctx context.Context, id int64, content string) (*models.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyNote
	}
	return d.api.AddNote(ctx, id, content)
}

// Notes lists the notes for a recipe.
func (d *Dispatcher) Notes(ctx context.Context, id int64) ([]models.Note, error) {
	return d.api.ListNotes(ctx, id)
}

func (d *Dispatcher) acquireRating(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[id]; busy {
		return false
	}
	d.inflight[id] = struct{}{}
	return true
}

func (d *Dispatcher) releaseRating(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, id)
}

func validateRecipeData(data models.RecipeData) error {
	fields := make(map[string]string)

	if strings.TrimSpace(data.Title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(data.Instructions) == "" {
		fields["instructions"] = "Instructions are required"
	}
	nonEmpty := 0
	for _, ing := range data.Ingredients {
		if strings.TrimSpace(ing) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		fields["ingredients"] = "At least one ingredient is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
