package entries

import (
	"context"

	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

// Repository stores day entries. Every call is scoped to the owning user
// and ignores soft-deleted rows.
type Repository interface {
	FindByDate(ctx context.Context, userID string, date timex.Date, section string) (*models.Entry, error)
	Get(ctx context.Context, userID, entryID string) (*models.Entry, error)
	Insert(ctx context.Context, entry *models.Entry) error
	// UpdateSummary sets the current summary and the original only if it is
	// still empty.
	UpdateSummary(ctx context.Context, userID, entryID, summary string) error
	ListRecentWithSummary(ctx context.Context, userID string, limit int) ([]*models.Entry, error)
}
