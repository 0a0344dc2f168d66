package inmemory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

type AchievementsRepository struct {
	s *Store
}

func NewAchievementsRepository(s *Store) *AchievementsRepository {
	return &AchievementsRepository{s: s}
}

func (r *AchievementsRepository) CountByEntry(ctx context.Context, userID, entryID string) (int, error) {
	var n int
	err := r.s.read(ctx, func() {
		for _, a := range r.s.achievements {
			if a.EntryID == entryID && a.UserID == userID && a.DeletedAt == nil {
				n++
			}
		}
	})
	return n, err
}

func (r *AchievementsRepository) Insert(ctx context.Context, a *models.Achievement) error {
	return r.s.write(ctx, "achievements.Insert", func() error {
		if _, ok := r.s.achievements[a.ID]; ok {
			return common.ErrorAlreadyExists
		}
		now := r.s.now()
		a.CreatedAt, a.UpdatedAt = now, now
		r.s.achievements[a.ID] = copyAchievement(a)
		r.s.achOrder = append(r.s.achOrder, a.ID)
		return nil
	})
}

func (r *AchievementsRepository) Get(ctx context.Context, userID, achievementID string) (*models.Achievement, error) {
	var found *models.Achievement
	err := r.s.read(ctx, func() {
		if a, ok := r.s.achievements[achievementID]; ok && a.UserID == userID && a.DeletedAt == nil {
			found = copyAchievement(a)
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *AchievementsRepository) live(userID, achievementID string) (*models.Achievement, error) {
	a, ok := r.s.achievements[achievementID]
	if !ok || a.UserID != userID || a.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

// UpdateSynthesis keeps stored originals when present, mirroring the
// COALESCE in the SQL implementation.
func (r *AchievementsRepository) UpdateSynthesis(ctx context.Context, in *models.Achievement) error {
	return r.s.write(ctx, "achievements.UpdateSynthesis", func() error {
		a, err := r.live(in.UserID, in.ID)
		if err != nil {
			return err
		}
		src := copyAchievement(in)

		a.Status = src.Status
		mergeText(&a.Name, src.Name)
		mergeText(&a.Paragraph, src.Paragraph)
		mergeText(&a.Situation, src.Situation)
		mergeText(&a.Task, src.Task)
		mergeText(&a.Action, src.Action)
		mergeText(&a.Result, src.Result)
		a.Bullets.Current = src.Bullets.Current
		if a.Bullets.Original == nil {
			a.Bullets.Original = src.Bullets.Original
		}
		a.CompletenessScore = src.CompletenessScore
		a.CompletenessFlags = src.CompletenessFlags
		a.CompletenessCalculatedAt = src.CompletenessCalculatedAt
		a.UpdatedAt = r.s.now()
		return nil
	})
}

func mergeText(dst *models.Provenance[string], src models.Provenance[string]) {
	dst.Current = src.Current
	if dst.Original == nil {
		dst.Original = src.Original
	}
}

func (r *AchievementsRepository) UpdateCurrent(ctx context.Context, in *models.Achievement) error {
	return r.s.write(ctx, "achievements.UpdateCurrent", func() error {
		a, err := r.live(in.UserID, in.ID)
		if err != nil {
			return err
		}
		src := copyAchievement(in)

		a.Name.Current = src.Name.Current
		a.Paragraph.Current = src.Paragraph.Current
		a.Bullets.Current = src.Bullets.Current
		a.Situation.Current = src.Situation.Current
		a.Task.Current = src.Task.Current
		a.Action.Current = src.Action.Current
		a.Result.Current = src.Result.Current
		a.SynthesisEdited = src.SynthesisEdited
		a.SynthesisLastEditedAt = src.SynthesisLastEditedAt
		a.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *AchievementsRepository) UpdateStatus(ctx context.Context, userID, achievementID string, status common.SynthesisStatus) error {
	return r.s.write(ctx, "achievements.UpdateStatus", func() error {
		a, err := r.live(userID, achievementID)
		if err != nil {
			return err
		}
		a.Status = status
		a.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *AchievementsRepository) ListByEntry(ctx context.Context, userID, entryID string) ([]*models.Achievement, error) {
	var out []*models.Achievement
	err := r.s.read(ctx, func() {
		for _, id := range r.s.achOrder {
			a := r.s.achievements[id]
			if a.EntryID == entryID && a.UserID == userID && a.DeletedAt == nil {
				out = append(out, copyAchievement(a))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

// ListByProject relies on insertion order, which matches creation time.
func (r *AchievementsRepository) ListByProject(ctx context.Context, userID, projectID string) ([]*models.Achievement, error) {
	var out []*models.Achievement
	err := r.s.read(ctx, func() {
		for _, id := range r.s.achOrder {
			a := r.s.achievements[id]
			if a.ProjectID != nil && *a.ProjectID == projectID && a.UserID == userID && a.DeletedAt == nil {
				out = append(out, copyAchievement(a))
			}
		}
	})
	return out, err
}
