package recipes

import (
	"context"

	"github.com/mvoronkov/recipeshelf/internal/server/models"
)

// ListFilter narrows a recipe listing. Zero values mean "no filter";
// AuthorID 0 lists everyone's recipes.
type ListFilter struct {
	Page     int
	Limit    int
	Search   string
	Cuisine  string
	AuthorID int64
}

// Offset returns the row offset for the filter's page.
func (f ListFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]models.Recipe, int, error)
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Update(ctx context.Context, id int64, patch models.RecipePatch) (*models.Recipe, error)
	Delete(ctx context.Context, id int64) error

	UpsertRating(ctx context.Context, recipeID, userID int64, value int) (*models.RatingSummary, error)

	AddNote(ctx context.Context, note *models.Note) (*models.Note, error)
	ListNotes(ctx context.Context, recipeID, userID int64) ([]models.Note, error)
}
