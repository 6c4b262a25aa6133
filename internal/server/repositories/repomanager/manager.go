package repomanager

import (
	"context"
	"database/sql"

	"github.com/mvoronkov/recipeshelf/internal/dbx"
	"github.com/mvoronkov/recipeshelf/internal/server/repositories/recipes"
	"github.com/mvoronkov/recipeshelf/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Recipes(db dbx.DBTX) recipes.Repository
}
