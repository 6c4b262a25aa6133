package recipes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mvoronkov/recipeshelf/internal/common"
	"github.com/mvoronkov/recipeshelf/internal/server/models"
)

// MemoryRepository is a map-backed Repository used for development without a
// database and in tests. Semantics match the postgres implementation.
type MemoryRepository struct {
	mu         sync.Mutex
	nextID     int64
	nextNoteID int64
	recipes    map[int64]models.Recipe
	ratings    map[int64]map[int64]int // recipe id -> user id -> value
	notes      []models.Note
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:     1,
		nextNoteID: 1,
		recipes:    make(map[int64]models.Recipe),
		ratings:    make(map[int64]map[int64]int),
	}
}

func (r *MemoryRepository) List(_ context.Context, f ListFilter) ([]models.Recipe, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]models.Recipe, 0)
	for _, rec := range r.recipes {
		if f.AuthorID != 0 && rec.AuthorID != f.AuthorID {
			continue
		}
		if f.Cuisine != "" && rec.Cuisine != f.Cuisine {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(rec.Title), needle) &&
				!strings.Contains(strings.ToLower(rec.Description), needle) {
				continue
			}
		}
		matched = append(matched, r.withAggregatesLocked(rec))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	offset := f.Offset()
	if offset >= total {
		return []models.Recipe{}, total, nil
	}
	end := offset + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recipes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := r.withAggregatesLocked(rec)
	return &out, nil
}

func (r *MemoryRepository) Create(_ context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := *recipe
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.nextID++
	r.recipes[stored.ID] = stored

	out := r.withAggregatesLocked(stored)
	return &out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id int64, patch models.RecipePatch) (*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recipes[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	if patch.Instructions != nil {
		rec.Instructions = *patch.Instructions
	}
	if patch.CookTime != nil {
		rec.CookTime = *patch.CookTime
	}
	if patch.Cuisine != nil {
		rec.Cuisine = *patch.Cuisine
	}
	if patch.ImageURL != nil {
		rec.ImageURL = *patch.ImageURL
	}
	if patch.Ingredients != nil {
		rec.Ingredients = append([]string(nil), (*patch.Ingredients)...)
	}
	rec.UpdatedAt = time.Now().UTC()
	r.recipes[id] = rec

	out := r.withAggregatesLocked(rec)
	return &out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recipes[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.recipes, id)
	delete(r.ratings, id)

	kept := r.notes[:0]
	for _, n := range r.notes {
		if n.RecipeID != id {
			kept = append(kept, n)
		}
	}
	r.notes = kept
	return nil
}

func (r *MemoryRepository) UpsertRating(_ context.Context, recipeID, userID int64, value int) (*models.RatingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recipes[recipeID]; !ok {
		return nil, common.ErrNotFound
	}

	byUser, ok := r.ratings[recipeID]
	if !ok {
		byUser = make(map[int64]int)
		r.ratings[recipeID] = byUser
	}
	byUser[userID] = value

	avg, count := r.aggregateLocked(recipeID)
	return &models.RatingSummary{AverageRating: avg, RatingsCount: count}, nil
}

func (r *MemoryRepository) AddNote(_ context.Context, note *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recipes[note.RecipeID]; !ok {
		return nil, common.ErrNotFound
	}

	stored := *note
	stored.ID = r.nextNoteID
	stored.CreatedAt = time.Now().UTC()
	r.nextNoteID++
	r.notes = append(r.notes, stored)

	out := stored
	return &out, nil
}

func (r *MemoryRepository) ListNotes(_ context.Context, recipeID, userID int64) ([]models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Note, 0)
	for i := len(r.notes) - 1; i >= 0; i-- {
		n := r.notes[i]
		if n.RecipeID == recipeID && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *MemoryRepository) withAggregatesLocked(rec models.Recipe) models.Recipe {
	rec.AverageRating, rec.RatingsCount = r.aggregateLocked(rec.ID)
	rec.Ingredients = append([]string(nil), rec.Ingredients...)
	return rec
}

func (r *MemoryRepository) aggregateLocked(recipeID int64) (float64, int) {
	byUser := r.ratings[recipeID]
	if len(byUser) == 0 {
		return 0, 0
	}
	sum := 0
	for _, v := range byUser {
		sum += v
	}
	return float64(sum) / float64(len(byUser)), len(byUser)
}
