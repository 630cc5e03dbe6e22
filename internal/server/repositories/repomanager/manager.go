package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/azura/internal/dbx"
	"github.com/dmitrijs2005/azura/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/azura/internal/server/repositories/users"
)

// RepositoryManager vends the stores of one storage backend.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
