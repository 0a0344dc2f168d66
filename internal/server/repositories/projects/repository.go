package projects

import (
	"context"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

// Repository stores projects scoped by owning user.
type Repository interface {
	Insert(ctx context.Context, p *models.Project) error
	Get(ctx context.Context, userID, projectID string) (*models.Project, error)
	// UpdateRollupSummary writes an automatic summary unless the project was
	// manually edited in the meantime. It reports whether a row was written.
	UpdateRollupSummary(ctx context.Context, userID, projectID, summary string) (bool, error)
	// EditSummary stores a manual summary and marks the project as edited.
	EditSummary(ctx context.Context, userID, projectID, summary string, at time.Time) error
	ClearManualEdit(ctx context.Context, userID, projectID string) error
}
