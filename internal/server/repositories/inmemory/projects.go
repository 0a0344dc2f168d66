package inmemory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

type ProjectsRepository struct {
	s *Store
}

func NewProjectsRepository(s *Store) *ProjectsRepository {
	return &ProjectsRepository{s: s}
}

func (r *ProjectsRepository) Insert(ctx context.Context, p *models.Project) error {
	return r.s.write(ctx, "projects.Insert", func() error {
		if _, ok := r.s.projects[p.ID]; ok {
			return common.ErrorAlreadyExists
		}
		now := r.s.now()
		p.CreatedAt, p.UpdatedAt = now, now
		r.s.projects[p.ID] = copyProject(p)
		return nil
	})
}

func (r *ProjectsRepository) Get(ctx context.Context, userID, projectID string) (*models.Project, error) {
	var found *models.Project
	err := r.s.read(ctx, func() {
		if p, ok := r.s.projects[projectID]; ok && p.UserID == userID && p.DeletedAt == nil {
			found = copyProject(p)
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

func (r *ProjectsRepository) live(userID, projectID string) (*models.Project, error) {
	p, ok := r.s.projects[projectID]
	if !ok || p.UserID != userID || p.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (r *ProjectsRepository) UpdateRollupSummary(ctx context.Context, userID, projectID, summary string) (bool, error) {
	written := false
	err := r.s.write(ctx, "projects.UpdateRollupSummary", func() error {
		p, ok := r.s.projects[projectID]
		if !ok || p.UserID != userID || p.DeletedAt != nil || p.ManuallyEdited() {
			return nil
		}
		p.Summary.Set(summary)
		p.Summary.SetOriginalOnce(summary)
		p.UpdatedAt = r.s.now()
		written = true
		return nil
	})
	return written, err
}

func (r *ProjectsRepository) EditSummary(ctx context.Context, userID, projectID, summary string, at time.Time) error {
	return r.s.write(ctx, "projects.EditSummary", func() error {
		p, err := r.live(userID, projectID)
		if err != nil {
			return err
		}
		p.Summary.Set(summary)
		p.SummaryLastEditedAt = &at
		p.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *ProjectsRepository) ClearManualEdit(ctx context.Context, userID, projectID string) error {
	return r.s.write(ctx, "projects.ClearManualEdit", func() error {
		p, err := r.live(userID, projectID)
		if err != nil {
			return err
		}
		p.SummaryLastEditedAt = nil
		p.UpdatedAt = r.s.now()
		return nil
	})
}
