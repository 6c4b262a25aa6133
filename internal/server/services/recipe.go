package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mvoronkov/recipeshelf/internal/common"
	"github.com/mvoronkov/recipeshelf/internal/dbx"
	"github.com/mvoronkov/recipeshelf/internal/server/models"
	"github.com/mvoronkov/recipeshelf/internal/server/repositories/recipes"
	"github.com/mvoronkov/recipeshelf/internal/server/repositories/repomanager"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
)

// RecipeService implements recipe listings, CRUD with ownership checks,
// ratings and private notes.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager) *RecipeService {
	return &RecipeService{db: db, repomanager: m}
}

// List returns a page of recipes plus the total match count. Page and limit
// are clamped to sane values so clients cannot request unbounded result sets.
func (s *RecipeService) List(ctx context.Context, f recipes.ListFilter) ([]models.Recipe, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}

	items, total, err := s.repomanager.Recipes(s.db).List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing recipes: %w", err)
	}
	return items, total, nil
}

func (s *RecipeService) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	recipe, err := s.repomanager.Recipes(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return recipe, nil
}

// Create validates the payload and stores a new recipe owned by the caller.
func (s *RecipeService) Create(ctx context.Context, userID int64, recipe *models.Recipe) (*models.Recipe, error) {
	v := &validator{}
	recipe.Title = strings.TrimSpace(recipe.Title)
	if recipe.Title == "" {
		v.add("title", "Title is required")
	}
	if strings.TrimSpace(recipe.Instructions) == "" {
		v.add("instructions", "Instructions are required")
	}
	if len(recipe.Ingredients) == 0 {
		v.add("ingredients", "At least one ingredient is required")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	author, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}

	recipe.AuthorID = userID
	recipe.Author = author.Username
	created, err := s.repomanager.Recipes(s.db).Create(ctx, recipe)
	if err != nil {
		return nil, fmt.Errorf("error creating recipe: %w", err)
	}
	return created, nil
}

// Update applies a partial patch to a recipe the caller owns. Non-owners get
// ErrForbidden regardless of the patch contents.
func (s *RecipeService) Update(ctx context.Context, userID, id int64, patch models.RecipePatch) (*models.Recipe, error) {
	repo := s.repomanager.Recipes(s.db)

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	if existing.AuthorID != userID {
		return nil, common.ErrForbidden
	}

	v := &validator{}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		v.add("title", "Title is required")
	}
	if patch.Instructions != nil && strings.TrimSpace(*patch.Instructions) == "" {
		v.add("instructions", "Instructions are required")
	}
	if patch.Ingredients != nil && len(*patch.Ingredients) == 0 {
		v.add("ingredients", "At least one ingredient is required")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	updated, err := repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error updating recipe: %w", err)
	}
	return updated, nil
}

// Delete removes a recipe the caller owns along with its ratings and notes.
func (s *RecipeService) Delete(ctx context.Context, userID, id int64) error {
	repo := s.repomanager.Recipes(s.db)

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	if existing.AuthorID != userID {
		return common.ErrForbidden
	}

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting recipe: %w", err)
	}
	return nil
}

// Rate records the caller's rating for a recipe, replacing any earlier one,
// and returns the recomputed aggregate. The upsert and the aggregate read run
// in one transaction so concurrent raters never observe a torn summary.
func (s *RecipeService) Rate(ctx context.Context, userID, id int64, value int) (*models.RatingSummary, error) {
	if value < 1 || value > 5 {
		return nil, &ValidationError{Fields: []FieldError{{Path: "value", Message: "Rating must be between 1 and 5"}}}
	}

	var summary *models.RatingSummary
	run := func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		summary, err = s.repomanager.Recipes(tx).UpsertRating(ctx, id, userID, value)
		return err
	}

	var err error
	if s.db != nil {
		err = dbx.WithTx(ctx, s.db, nil, run)
	} else {
		err = run(ctx, nil)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error rating recipe: %w", err)
	}
	return summary, nil
}

// AddNote stores a private note on a recipe for the caller.
func (s *RecipeService) AddNote(ctx context.Context, userID, recipeID int64, content string) (*models.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Fields: []FieldError{{Path: "content", Message: "Note content is required"}}}
	}

	note, err := s.repomanager.Recipes(s.db).AddNote(ctx, &models.Note{
		RecipeID: recipeID,
		UserID:   userID,
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error adding note: %w", err)
	}
	return note, nil
}

// Notes returns the caller's notes for a recipe, newest first.
func (s *RecipeService) Notes(ctx context.Context, userID, recipeID int64) ([]models.Note, error) {
	notes, err := s.repomanager.Recipes(s.db).ListNotes(ctx, recipeID, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return notes, nil
}
