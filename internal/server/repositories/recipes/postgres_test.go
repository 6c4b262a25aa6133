package recipes

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mvoronkov/recipeshelf/internal/common"
	"github.com/mvoronkov/recipeshelf/internal/server/models"
)

var recipeRowColumns = []string{
	"id", "title", "description", "instructions", "cook_time",
	"cuisine", "image_url", "ingredients", "author_id", "username",
	"avg", "count", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func recipeRow(id int64, title string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(recipeRowColumns).
		AddRow(id, title, "desc", "steps", 30, "italian", "",
			[]byte(`["flour","water"]`), int64(7), "alice", 4.5, 2, now, now)
}

func TestList_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	listQ := `(?s)^SELECT\s+r\.id,.*FROM\s+recipes\s+r\s+JOIN\s+users\s+u.*LEFT\s+JOIN\s+ratings\s+rt.*GROUP\s+BY\s+r\.id,\s*u\.username\s+ORDER\s+BY\s+r\.created_at\s+DESC,\s*r\.id\s+DESC\s+LIMIT\s+\$4\s+OFFSET\s+\$5\s*$`
	mock.ExpectQuery(listQ).
		WithArgs("pasta", "", int64(0), 12, 12).
		WillReturnRows(recipeRow(1, "Carbonara"))

	countQ := `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+recipes\s+r\s+WHERE`
	mock.ExpectQuery(countQ).
		WithArgs("pasta", "", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	items, total, err := repo.List(context.Background(), ListFilter{Page: 2, Limit: 12, Search: "pasta"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 25 || len(items) != 1 {
		t.Fatalf("unexpected result: total=%d items=%d", total, len(items))
	}
	got := items[0]
	if got.Title != "Carbonara" || got.Author != "alice" || got.AverageRating != 4.5 {
		t.Fatalf("unexpected recipe: %+v", got)
	}
	if len(got.Ingredients) != 2 || got.Ingredients[0] != "flour" {
		t.Fatalf("ingredients not decoded: %+v", got.Ingredients)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+r\.id,`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+recipes\s*\(title,\s*description,\s*instructions,\s*cook_time,\s*cuisine,\s*image_url,\s*ingredients,\s*author_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("Soup", "warm", "boil", 20, "french", "", []byte(`["water"]`), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))

	in := &models.Recipe{Title: "Soup", Description: "warm", Instructions: "boil",
		CookTime: 20, Cuisine: "french", Ingredients: []string{"water"}, AuthorID: 7}
	got, err := repo.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 5 {
		t.Fatalf("unexpected recipe: %+v", got)
	}
}

func TestUpdate_BuildsSetClause(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	title := "Renamed"
	cookTime := 45

	q := `(?s)^UPDATE\s+recipes\s+SET\s+title\s*=\s*\$1,\s*cook_time\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$3$`
	mock.ExpectExec(q).
		WithArgs("Renamed", 45, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT\s+r\.id,`).
		WithArgs(int64(1)).
		WillReturnRows(recipeRow(1, "Renamed"))

	got, err := repo.Update(context.Background(), 1, models.RecipePatch{Title: &title, CookTime: &cookTime})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Title != "Renamed" {
		t.Fatalf("unexpected recipe: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	title := "Renamed"
	mock.ExpectExec(`UPDATE\s+recipes\s+SET`).
		WithArgs("Renamed", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), 99, models.RecipePatch{Title: &title})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+recipes\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 99); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestUpsertRating_ReturnsAggregate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+ratings\s*\(recipe_id,\s*user_id,\s*value\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(recipe_id,\s*user_id\)\s+DO\s+UPDATE\s+SET\s+value\s*=\s*EXCLUDED\.value\s*$`
	mock.ExpectExec(q).
		WithArgs(int64(1), int64(7), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT\s+COALESCE\(AVG\(value\),\s*0\),\s*COUNT\(\*\)\s+FROM\s+ratings`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.5, 2))

	got, err := repo.UpsertRating(context.Background(), 1, 7, 5)
	if err != nil {
		t.Fatalf("UpsertRating error: %v", err)
	}
	if got.AverageRating != 4.5 || got.RatingsCount != 2 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestUpsertRating_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+ratings`).
		WithArgs(int64(1), int64(7), 5).
		WillReturnError(errors.New("db down"))

	_, err := repo.UpsertRating(context.Background(), 1, 7, 5)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestAddNote_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+notes\s*\(recipe_id,\s*user_id,\s*content\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`
	mock.ExpectQuery(q).
		WithArgs(int64(1), int64(7), "less salt next time").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), time.Now()))

	got, err := repo.AddNote(context.Background(), &models.Note{RecipeID: 1, UserID: 7, Content: "less salt next time"})
	if err != nil {
		t.Fatalf("AddNote error: %v", err)
	}
	if got.ID != 3 {
		t.Fatalf("unexpected note: %+v", got)
	}
}

func TestListNotes_ScopedToUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*recipe_id,\s*user_id,\s*content,\s*created_at\s+FROM\s+notes\s+WHERE\s+recipe_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC\s*$`
	rows := sqlmock.NewRows([]string{"id", "recipe_id", "user_id", "content", "created_at"}).
		AddRow(int64(2), int64(1), int64(7), "second", time.Now()).
		AddRow(int64(1), int64(1), int64(7), "first", time.Now())
	mock.ExpectQuery(q).
		WithArgs(int64(1), int64(7)).
		WillReturnRows(rows)

	got, err := repo.ListNotes(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("ListNotes error: %v", err)
	}
	if len(got) != 2 || got[0].Content != "second" {
		t.Fatalf("unexpected notes: %+v", got)
	}
}
