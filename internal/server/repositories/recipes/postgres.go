package recipes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mvoronkov/recipeshelf/internal/common"
	"github.com/mvoronkov/recipeshelf/internal/dbx"
	"github.com/mvoronkov/recipeshelf/internal/server/models"
)

// PostgresRepository stores recipes, their ratings and notes. Ingredients
// are kept as a jsonb array to preserve input order.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recipeColumns = `r.id, r.title, r.description, r.instructions, r.cook_time,
		r.cuisine, r.image_url, r.ingredients, r.author_id, u.username,
		COALESCE(AVG(rt.value), 0), COUNT(rt.id), r.created_at, r.updated_at`

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]models.Recipe, int, error) {
	query := `SELECT ` + recipeColumns + `
		 FROM recipes r
		 JOIN users u ON u.id = r.author_id
		 LEFT JOIN ratings rt ON rt.recipe_id = r.id
		 WHERE ($1 = '' OR r.title ILIKE '%' || $1 || '%' OR r.description ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR r.cuisine = $2)
		   AND ($3 = 0 OR r.author_id = $3)
		 GROUP BY r.id, u.username
		 ORDER BY r.created_at DESC, r.id DESC
		 LIMIT $4 OFFSET $5
		 `

	rows, err := r.db.QueryContext(ctx, query, f.Search, f.Cuisine, f.AuthorID, f.Limit, f.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]models.Recipe, 0)
	for rows.Next() {
		recipe, err := scanRecipe(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	countQuery := `SELECT COUNT(*)
		 FROM recipes r
		 WHERE ($1 = '' OR r.title ILIKE '%' || $1 || '%' OR r.description ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR r.cuisine = $2)
		   AND ($3 = 0 OR r.author_id = $3)
		 `

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, f.Search, f.Cuisine, f.AuthorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return items, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
		 FROM recipes r
		 JOIN users u ON u.id = r.author_id
		 LEFT JOIN ratings rt ON rt.recipe_id = r.id
		 WHERE r.id = $1
		 GROUP BY r.id, u.username
		 `

	row := r.db.QueryRowContext(ctx, query, id)
	recipe, err := scanRecipe(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}

	query :=
		`INSERT INTO recipes (title, description, instructions, cook_time, cuisine, image_url, ingredients, author_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		recipe.Title, recipe.Description, recipe.Instructions, recipe.CookTime,
		recipe.Cuisine, recipe.ImageURL, ingredients, recipe.AuthorID).
		Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return recipe, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, patch models.RecipePatch) (*models.Recipe, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 8)

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Instructions != nil {
		add("instructions", *patch.Instructions)
	}
	if patch.CookTime != nil {
		add("cook_time", *patch.CookTime)
	}
	if patch.Cuisine != nil {
		add("cuisine", *patch.Cuisine)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.Ingredients != nil {
		encoded, err := json.Marshal(*patch.Ingredients)
		if err != nil {
			return nil, fmt.Errorf("encode ingredients: %w", err)
		}
		add("ingredients", encoded)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = now()")
		args = append(args, id)
		query := fmt.Sprintf(`UPDATE recipes SET %s WHERE id = $%d`,
			strings.Join(sets, ", "), len(args))

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, common.ErrNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpsertRating(ctx context.Context, recipeID, userID int64, value int) (*models.RatingSummary, error) {
	query :=
		`INSERT INTO ratings (recipe_id, user_id, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (recipe_id, user_id) DO UPDATE SET value = EXCLUDED.value
		 `

	if _, err := r.db.ExecContext(ctx, query, recipeID, userID, value); err != nil {
		if isForeignKeyViolation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	summary := &models.RatingSummary{}
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(value), 0), COUNT(*) FROM ratings WHERE recipe_id = $1`,
		recipeID).Scan(&summary.AverageRating, &summary.RatingsCount)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return summary, nil
}

func (r *PostgresRepository) AddNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	query :=
		`INSERT INTO notes (recipe_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, note.RecipeID, note.UserID, note.Content).
		Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return note, nil
}

func (r *PostgresRepository) ListNotes(ctx context.Context, recipeID, userID int64) ([]models.Note, error) {
	query :=
		`SELECT id, recipe_id, user_id, content, created_at FROM notes
		 WHERE recipe_id = $1 AND user_id = $2
		 ORDER BY created_at DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, recipeID, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.RecipeID, &n.UserID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return notes, nil
}

func scanRecipe(scan func(dest ...any) error) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	var ingredients []byte

	err := scan(&recipe.ID, &recipe.Title, &recipe.Description, &recipe.Instructions,
		&recipe.CookTime, &recipe.Cuisine, &recipe.ImageURL, &ingredients,
		&recipe.AuthorID, &recipe.Author, &recipe.AverageRating, &recipe.RatingsCount,
		&recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
			return nil, fmt.Errorf("decode ingredients: %w", err)
		}
	}

	return recipe, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
