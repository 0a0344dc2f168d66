package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/events"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/server/synthesis"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

const untitledAchievement = "Untitled achievement"

// RollupPropagator regenerates derived summaries from scratch over the
// current achievements. Each path is idempotent and safe to skip.
type RollupPropagator struct {
	Deps
	client synthesis.Client
}

func NewRollupPropagator(d Deps, client synthesis.Client) *RollupPropagator {
	return &RollupPropagator{Deps: d.withDefaults().scoped("rollup"), client: client}
}

// Entry rebuilds the entry summary. latest is the achievement just
// synthesized; its values stand in when a read does not reflect them yet.
func (p *RollupPropagator) Entry(ctx context.Context, userID, entryID string, latest *models.Achievement) (err error) {
	outcome := RollupOK
	defer func() { p.observe("entry", outcome, err) }()

	list, err := p.listByEntry(ctx, userID, entryID)
	if err != nil {
		return fmt.Errorf("error listing entry achievements: %w", err)
	}

	digests := entryDigests(list, latest)
	if len(digests) == 0 {
		outcome = RollupEmpty
		p.Logger.Debug(ctx, "no achievements to summarize", "entry_id", entryID)
		return nil
	}

	summary, err := p.client.SynthesizeEntrySummary(ctx, digests)
	if err != nil {
		return fmt.Errorf("entry summary synthesis: %w", err)
	}

	sctx, cancel := p.storeCtx(ctx)
	defer cancel()
	if err := p.Repomanager.Entries(p.DB).UpdateSummary(sctx, userID, entryID, summary); err != nil {
		return fmt.Errorf("error saving entry summary: %w", err)
	}

	p.Logger.Info(ctx, "entry summary regenerated", "entry_id", entryID, "achievements", len(digests))
	p.publish(ctx, userID, "entry_rollup", events.KindEntries, events.KindStats)
	return nil
}

func (p *RollupPropagator) listByEntry(ctx context.Context, userID, entryID string) ([]*models.Achievement, error) {
	ctx, cancel := p.storeCtx(ctx)
	defer cancel()
	return p.Repomanager.Achievements(p.DB).ListByEntry(ctx, userID, entryID)
}

// entryDigests keeps achievements that have content, substituting latest's
// values for its own row when that row is missing or still empty.
func entryDigests(list []*models.Achievement, latest *models.Achievement) []models.AchievementDigest {
	var out []models.AchievementDigest
	seen := false
	for _, a := range list {
		name, paragraph := a.Name.Current, a.Paragraph.Current
		if latest != nil && a.ID == latest.ID {
			seen = true
			if name == "" {
				name = latest.Name.Current
			}
			if paragraph == "" {
				paragraph = latest.Paragraph.Current
			}
		}
		if name == "" && paragraph == "" {
			continue
		}
		if name == "" {
			name = untitledAchievement
		}
		out = append(out, models.AchievementDigest{Name: name, Paragraph: paragraph})
	}
	if latest != nil && !seen && latest.Paragraph.Current != "" {
		out = append(out, models.AchievementDigest{Name: latest.Name.Current, Paragraph: latest.Paragraph.Current})
	}
	return out
}

// Project rebuilds the project summary unless the user edited it by hand,
// in which case the stored summary is left untouched.
func (p *RollupPropagator) Project(ctx context.Context, userID, projectID string) (err error) {
	outcome := RollupOK
	defer func() { p.observe("project", outcome, err) }()

	sctx, cancel := p.storeCtx(ctx)
	project, err := p.Repomanager.Projects(p.DB).Get(sctx, userID, projectID)
	cancel()
	if errors.Is(err, common.ErrorNotFound) {
		outcome = RollupSkipped
		p.Logger.Info(ctx, "project not found, rollup skipped", "project_id", projectID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error loading project: %w", err)
	}
	if project.ManuallyEdited() {
		outcome = RollupSkipped
		p.Logger.Info(ctx, "project summary edited manually, rollup skipped", "project_id", projectID)
		return nil
	}

	sctx, cancel = p.storeCtx(ctx)
	list, err := p.Repomanager.Achievements(p.DB).ListByProject(sctx, userID, projectID)
	cancel()
	if err != nil {
		return fmt.Errorf("error listing project achievements: %w", err)
	}
	if len(list) == 0 {
		outcome = RollupEmpty
		return nil
	}

	loc := p.Clock.Now().Location()
	digests := make([]models.AchievementDigest, 0, len(list))
	for _, a := range list {
		name := a.Name.Current
		if name == "" {
			name = untitledAchievement
		}
		digests = append(digests, models.AchievementDigest{
			Name:      name,
			Paragraph: a.Paragraph.Current,
			Date:      timex.DateOf(a.CreatedAt.In(loc)),
		})
	}

	summary, err := p.client.SynthesizeProjectSummary(ctx, project.Name, project.Description, digests)
	if err != nil {
		return fmt.Errorf("project summary synthesis: %w", err)
	}

	sctx, cancel = p.storeCtx(ctx)
	defer cancel()
	written, err := p.Repomanager.Projects(p.DB).UpdateRollupSummary(sctx, userID, projectID, summary)
	if err != nil {
		return fmt.Errorf("error saving project summary: %w", err)
	}
	if !written {
		outcome = RollupSkipped
		p.Logger.Info(ctx, "project edited during rollup, summary discarded", "project_id", projectID)
		return nil
	}

	p.Logger.Info(ctx, "project summary regenerated", "project_id", projectID, "achievements", len(digests))
	p.publish(ctx, userID, "project_rollup", events.KindProjects, events.KindHighlights)
	return nil
}

// RecentFocus summarizes the user's n latest entries that have a summary.
// It returns an empty string when there is nothing to summarize.
func (p *RollupPropagator) RecentFocus(ctx context.Context, userID string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("%w: entry count must be positive", common.ErrorValidation)
	}

	sctx, cancel := p.storeCtx(ctx)
	recent, err := p.Repomanager.Entries(p.DB).ListRecentWithSummary(sctx, userID, n)
	cancel()
	if err != nil {
		return "", fmt.Errorf("error listing recent entries: %w", err)
	}
	if len(recent) == 0 {
		return "", nil
	}

	digests := make([]models.EntryDigest, 0, len(recent))
	for _, e := range recent {
		list, err := p.listByEntry(ctx, userID, e.ID)
		if err != nil {
			return "", fmt.Errorf("error listing entry achievements: %w", err)
		}
		names := make([]string, 0, len(list))
		for _, a := range list {
			if a.Name.Current != "" {
				names = append(names, a.Name.Current)
			}
		}
		digests = append(digests, models.EntryDigest{Date: e.Date, Summary: e.Summary.Current, AchievementNames: names})
	}

	focus, err := p.client.SynthesizeRecentFocus(ctx, digests)
	if err != nil {
		return "", fmt.Errorf("recent focus synthesis: %w", err)
	}
	return focus, nil
}

func (p *RollupPropagator) observe(kind, outcome string, err error) {
	if err != nil {
		outcome = RollupError
	}
	p.Observer.ObserveRollup(kind, outcome)
}
