package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/azura/internal/dbx"
	"github.com/dmitrijs2005/azura/internal/server/repositories/memory"
	"github.com/dmitrijs2005/azura/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/azura/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out the same in-process stores on every
// call; the db argument is ignored.
type MemoryRepositoryManager struct {
	users         *memory.UserRepository
	refreshTokens *memory.RefreshTokenRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		users:         memory.NewUserRepository(),
		refreshTokens: memory.NewRefreshTokenRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}
