package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/achievements"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/entries"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/projects"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/responses"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/tags"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
	Achievements(db dbx.DBTX) achievements.Repository
	Responses(db dbx.DBTX) responses.Repository
	Tags(db dbx.DBTX) tags.Repository
	Projects(db dbx.DBTX) projects.Repository
}
