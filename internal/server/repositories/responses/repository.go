package responses

import (
	"context"

	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

// Repository stores raw answers. Rows are insert-only.
type Repository interface {
	InsertMany(ctx context.Context, rows []*models.Response) error
	ListByAchievement(ctx context.Context, userID, achievementID string) ([]*models.Response, error)
}
