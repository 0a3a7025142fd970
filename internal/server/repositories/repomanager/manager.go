package repomanager

import (
	"context"
	"database/sql"

	"blogserver/internal/dbx"
	"blogserver/internal/server/repositories/posts"
	"blogserver/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes the schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
}
