package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/events"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

// ProjectService handles the user-facing project operations the pipeline
// depends on.
type ProjectService struct {
	Deps
}

func NewProjectService(d Deps) *ProjectService {
	return &ProjectService{Deps: d.withDefaults().scoped("projects")}
}

// Create adds an active project.
func (s *ProjectService) Create(ctx context.Context, userID, name string, description *string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return nil, fmt.Errorf("%w: user and name are required", common.ErrorValidation)
	}

	p := &models.Project{
		ID:          s.Clock.NewID(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Status:      common.ProjectActive,
	}
	err := s.writeVerified(ctx, "projects.insert",
		func(ctx context.Context) error {
			return s.Repomanager.Projects(s.DB).Insert(ctx, p)
		},
		func(ctx context.Context) (bool, error) {
			return exists(s.Repomanager.Projects(s.DB).Get(ctx, userID, p.ID))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}

	s.publish(ctx, userID, "project_created", events.KindProjects)
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*models.Project, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.Repomanager.Projects(s.DB).Get(ctx, userID, projectID)
}

// EditSummary stores a hand-written summary. From then on automatic
// rollups leave the project alone until ClearManualEdit.
func (s *ProjectService) EditSummary(ctx context.Context, userID, projectID, summary string) error {
	if strings.TrimSpace(summary) == "" {
		return fmt.Errorf("%w: summary must not be empty", common.ErrorValidation)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.Repomanager.Projects(s.DB).EditSummary(sctx, userID, projectID, summary, s.Clock.Now()); err != nil {
		return fmt.Errorf("error editing project summary: %w", err)
	}

	s.Logger.Info(ctx, "project summary edited", "project_id", projectID)
	s.publish(ctx, userID, "project_edited", events.KindProjects, events.KindHighlights)
	return nil
}

// ClearManualEdit lets automatic rollups overwrite the summary again.
func (s *ProjectService) ClearManualEdit(ctx context.Context, userID, projectID string) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.Repomanager.Projects(s.DB).ClearManualEdit(sctx, userID, projectID); err != nil {
		return fmt.Errorf("error clearing manual edit: %w", err)
	}
	s.publish(ctx, userID, "project_edit_cleared", events.KindProjects)
	return nil
}
