package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/achievements"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/entries"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/inmemory"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/projects"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/responses"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/tags"
)

// InMemoryRepositoryManager ignores the DBTX handle; every repository it
// vends shares one inmemory.Store.
type InMemoryRepositoryManager struct {
	store *inmemory.Store
}

func NewInMemoryRepositoryManager(store *inmemory.Store) *InMemoryRepositoryManager {
	if store == nil {
		store = inmemory.NewStore()
	}
	return &InMemoryRepositoryManager{store: store}
}

// Store exposes the backing store for seeding and inspection.
func (m *InMemoryRepositoryManager) Store() *inmemory.Store {
	return m.store
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Entries(dbx.DBTX) entries.Repository {
	return inmemory.NewEntriesRepository(m.store)
}

func (m *InMemoryRepositoryManager) Achievements(dbx.DBTX) achievements.Repository {
	return inmemory.NewAchievementsRepository(m.store)
}

func (m *InMemoryRepositoryManager) Responses(dbx.DBTX) responses.Repository {
	return inmemory.NewResponsesRepository(m.store)
}

func (m *InMemoryRepositoryManager) Tags(dbx.DBTX) tags.Repository {
	return inmemory.NewTagsRepository(m.store)
}

func (m *InMemoryRepositoryManager) Projects(dbx.DBTX) projects.Repository {
	return inmemory.NewProjectsRepository(m.store)
}
