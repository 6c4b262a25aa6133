package repomanager

import (
	"context"
	"database/sql"

	"github.com/mvoronkov/recipeshelf/internal/dbx"
	"github.com/mvoronkov/recipeshelf/internal/server/repositories/recipes"
	"github.com/mvoronkov/recipeshelf/internal/server/repositories/users"
)

// MemoryRepositoryManager vends shared in-memory repositories. Used when no
// database DSN is configured and in end-to-end tests. The DBTX argument is
// ignored; there are no transactions to carry.
type MemoryRepositoryManager struct {
	users   *users.MemoryRepository
	recipes *recipes.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:   users.NewMemoryRepository(),
		recipes: recipes.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users(_ dbx.DBTX) users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Recipes(_ dbx.DBTX) recipes.Repository {
	return m.recipes
}

func (m *MemoryRepositoryManager) RunMigrations(_ context.Context, _ *sql.DB) error {
	return nil
}
