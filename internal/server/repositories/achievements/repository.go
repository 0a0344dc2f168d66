package achievements

import (
	"context"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

// Repository stores professional achievements scoped by owning user.
type Repository interface {
	// CountByEntry counts live achievements of an entry.
	CountByEntry(ctx context.Context, userID, entryID string) (int, error)
	Insert(ctx context.Context, a *models.Achievement) error
	Get(ctx context.Context, userID, achievementID string) (*models.Achievement, error)
	// UpdateSynthesis writes current values and status; original values are
	// only stored where none exist yet.
	UpdateSynthesis(ctx context.Context, a *models.Achievement) error
	// UpdateCurrent writes user edits to current values and the edit markers.
	UpdateCurrent(ctx context.Context, a *models.Achievement) error
	UpdateStatus(ctx context.Context, userID, achievementID string, status common.SynthesisStatus) error
	ListByEntry(ctx context.Context, userID, entryID string) ([]*models.Achievement, error)
	// ListByProject returns live achievements of a project, oldest first.
	ListByProject(ctx context.Context, userID, projectID string) ([]*models.Achievement, error)
}
