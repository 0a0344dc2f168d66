package inmemory

import (
	"context"

	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

type ResponsesRepository struct {
	s *Store
}

func NewResponsesRepository(s *Store) *ResponsesRepository {
	return &ResponsesRepository{s: s}
}

// InsertMany skips rows whose ID is already stored.
func (r *ResponsesRepository) InsertMany(ctx context.Context, rows []*models.Response) error {
	if len(rows) == 0 {
		return nil
	}
	return r.s.write(ctx, "responses.InsertMany", func() error {
		seen := make(map[string]struct{}, len(r.s.responses))
		for _, existing := range r.s.responses {
			seen[existing.ID] = struct{}{}
		}
		now := r.s.now()
		for _, row := range rows {
			if _, ok := seen[row.ID]; ok {
				continue
			}
			row.CreatedAt = now
			c := *row
			r.s.responses = append(r.s.responses, &c)
		}
		return nil
	})
}

func (r *ResponsesRepository) ListByAchievement(ctx context.Context, userID, achievementID string) ([]*models.Response, error) {
	var out []*models.Response
	err := r.s.read(ctx, func() {
		a, ok := r.s.achievements[achievementID]
		if !ok || a.UserID != userID || a.DeletedAt != nil {
			return
		}
		for _, row := range r.s.responses {
			if row.AchievementID == achievementID {
				c := *row
				out = append(out, &c)
			}
		}
	})
	return out, err
}
