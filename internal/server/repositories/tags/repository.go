package tags

import (
	"context"

	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

// Repository resolves tag slugs and links tags to achievements.
type Repository interface {
	// FindBySlugs returns live system tags and live tags of userID whose
	// slug is in slugs.
	FindBySlugs(ctx context.Context, userID string, slugs []string) ([]*models.Tag, error)
	// Attach links tags to achievements, ignoring links that already exist.
	Attach(ctx context.Context, rows []*models.AchievementTag) error
}
