package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/blockkeeper/internal/dbx"
	"github.com/dmitrijs2005/blockkeeper/internal/server/repositories/blocks"
	"github.com/dmitrijs2005/blockkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services can run multi-step work under dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Blocks(db dbx.DBTX) blocks.Repository
}
