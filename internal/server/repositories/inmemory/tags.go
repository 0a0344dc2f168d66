package inmemory

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

type TagsRepository struct {
	s *Store
}

func NewTagsRepository(s *Store) *TagsRepository {
	return &TagsRepository{s: s}
}

func (r *TagsRepository) FindBySlugs(ctx context.Context, userID string, slugs []string) ([]*models.Tag, error) {
	var out []*models.Tag
	err := r.s.read(ctx, func() {
		for _, t := range r.s.tags {
			if (t.UserID == nil || *t.UserID == userID) && slices.Contains(slugs, t.Slug) {
				c := *t
				out = append(out, &c)
			}
		}
	})
	return out, err
}

func (r *TagsRepository) Attach(ctx context.Context, rows []*models.AchievementTag) error {
	if len(rows) == 0 {
		return nil
	}
	return r.s.write(ctx, "tags.Attach", func() error {
		now := r.s.now()
		for _, row := range rows {
			dup := slices.ContainsFunc(r.s.achTags, func(at *models.AchievementTag) bool {
				return at.AchievementID == row.AchievementID && at.TagID == row.TagID
			})
			if dup {
				continue
			}
			row.CreatedAt = now
			c := *row
			r.s.achTags = append(r.s.achTags, &c)
		}
		return nil
	})
}
