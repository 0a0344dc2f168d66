package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/server/events"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

// RawInput is what the user typed on the input step. Answers are keyed by
// question and may hold empty strings for questions left blank.
type RawInput struct {
	MainText    string
	Answers     map[common.QuestionKey]string
	ProjectID   *string
	CompanyID   *string
	CompanyName *string
	RoleTitle   *string
}

// AchievementWriter persists raw input before any model call and applies
// synthesis results afterwards.
type AchievementWriter struct {
	Deps
	rollups *RollupPropagator
	wg      sync.WaitGroup
}

// NewAchievementWriter returns a writer; rollups may be nil to disable
// summary regeneration.
func NewAchievementWriter(d Deps, rollups *RollupPropagator) *AchievementWriter {
	return &AchievementWriter{Deps: d.withDefaults().scoped("achievement_writer"), rollups: rollups}
}

func (in RawInput) validate() error {
	if strings.TrimSpace(in.MainText) == "" {
		return fmt.Errorf("%w: main text is required", common.ErrorValidation)
	}
	for key := range in.Answers {
		if key == common.QuestionHeadline {
			return fmt.Errorf("%w: headline is passed as main text", common.ErrorValidation)
		}
		if _, ok := common.QuestionText(key); !ok {
			return fmt.Errorf("%w: unknown question %q", common.ErrorValidation, key)
		}
	}
	return nil
}

// SaveRawInput stores a pending achievement and one response row per
// non-empty answer plus the headline, in one unit of work. It returns the
// achievement id once the rows are durable.
func (w *AchievementWriter) SaveRawInput(ctx context.Context, userID, entryID string, in RawInput) (string, error) {
	if userID == "" || entryID == "" {
		return "", fmt.Errorf("%w: user and entry are required", common.ErrorValidation)
	}
	if err := in.validate(); err != nil {
		return "", err
	}
	if err := w.checkOwnership(ctx, userID, entryID, in.ProjectID); err != nil {
		return "", err
	}

	a := &models.Achievement{
		ID:                  w.Clock.NewID(),
		EntryID:             entryID,
		UserID:              userID,
		ProjectID:           in.ProjectID,
		CompanyID:           in.CompanyID,
		CompanyNameSnapshot: in.CompanyName,
		RoleTitle:           in.RoleTitle,
		SourcePlatform:      common.SourceManual,
		Status:              common.SynthesisPending,
	}
	rows := w.responseRows(a.ID, in)

	err := w.writeVerified(ctx, "achievements.save_raw",
		func(ctx context.Context) error {
			return w.Tx.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
				achievements := w.Repomanager.Achievements(tx)

				n, err := achievements.CountByEntry(ctx, userID, entryID)
				if err != nil {
					return fmt.Errorf("error counting achievements: %w", err)
				}
				a.DisplayOrder = n + 1

				// A previous attempt may have stored the row but not its answers.
				if err := achievements.Insert(ctx, a); err != nil && !errors.Is(err, common.ErrorAlreadyExists) {
					return fmt.Errorf("error creating achievement: %w", err)
				}
				if err := w.Repomanager.Responses(tx).InsertMany(ctx, rows); err != nil {
					return fmt.Errorf("error saving responses: %w", err)
				}
				return nil
			})
		},
		func(ctx context.Context) (bool, error) {
			if ok, err := exists(w.Repomanager.Achievements(w.DB).Get(ctx, userID, a.ID)); !ok || err != nil {
				return false, err
			}
			saved, err := w.Repomanager.Responses(w.DB).ListByAchievement(ctx, userID, a.ID)
			if err != nil {
				return false, err
			}
			return len(saved) == len(rows), nil
		},
	)
	if err != nil {
		return "", err
	}

	w.Logger.Info(ctx, "raw input saved",
		"user_id", userID, "entry_id", entryID, "achievement_id", a.ID, "responses", len(rows))
	return a.ID, nil
}

func (w *AchievementWriter) checkOwnership(ctx context.Context, userID, entryID string, projectID *string) error {
	ctx, cancel := w.storeCtx(ctx)
	defer cancel()

	if _, err := w.Repomanager.Entries(w.DB).Get(ctx, userID, entryID); err != nil {
		return fmt.Errorf("error loading entry: %w", err)
	}
	if projectID != nil {
		if _, err := w.Repomanager.Projects(w.DB).Get(ctx, userID, *projectID); err != nil {
			return fmt.Errorf("error loading project: %w", err)
		}
	}
	return nil
}

func (w *AchievementWriter) responseRows(achievementID string, in RawInput) []*models.Response {
	rows := []*models.Response{{
		ID:                   w.Clock.NewID(),
		AchievementID:        achievementID,
		QuestionKey:          common.QuestionHeadline,
		QuestionTextSnapshot: common.HeadlineSnapshot,
		ResponseText:         strings.TrimSpace(in.MainText),
	}}
	for _, key := range common.StructuredKeys {
		text := strings.TrimSpace(in.Answers[key])
		if text == "" {
			continue
		}
		snapshot, _ := common.QuestionText(key)
		rows = append(rows, &models.Response{
			ID:                   w.Clock.NewID(),
			AchievementID:        achievementID,
			QuestionKey:          key,
			QuestionTextSnapshot: snapshot,
			ResponseText:         text,
		})
	}
	return rows
}

// SaveSynthesisResult applies res to the achievement. Current values are
// always replaced; original values are written only on the first
// successful synthesis. On failure the achievement is marked as errored
// and the error is returned. Tag links, the transcript archive and the
// entry and project rollups run afterwards and never fail the call.
func (w *AchievementWriter) SaveSynthesisResult(ctx context.Context, userID, achievementID, entryID string, res *models.SynthesisResult, projectID *string) error {
	if res == nil {
		return fmt.Errorf("%w: synthesis result is required", common.ErrorValidation)
	}

	a, err := w.load(ctx, userID, achievementID)
	if err != nil {
		w.markError(ctx, userID, achievementID)
		return err
	}
	if entryID != "" && a.EntryID != entryID {
		return fmt.Errorf("%w: achievement %s does not belong to entry %s", common.ErrorValidation, achievementID, entryID)
	}

	now := w.Clock.Now()
	first := a.ApplySynthesis(*res, now)

	err = w.writeVerified(ctx, "achievements.save_synthesis",
		func(ctx context.Context) error {
			return w.Repomanager.Achievements(w.DB).UpdateSynthesis(ctx, a)
		},
		func(ctx context.Context) (bool, error) {
			got, err := w.Repomanager.Achievements(w.DB).Get(ctx, userID, achievementID)
			if err != nil {
				return false, err
			}
			return got.Status == common.SynthesisComplete &&
				got.Paragraph.Current == res.Paragraph && got.Name.Current == res.Name, nil
		},
	)
	if err != nil {
		w.markError(ctx, userID, achievementID)
		return fmt.Errorf("error saving synthesis: %w", err)
	}

	w.Logger.Info(ctx, "synthesis saved",
		"user_id", userID, "achievement_id", achievementID, "first_write", first, "score", res.CompletenessScore)

	w.attachTags(ctx, a, res.Tags)
	w.archive(ctx, a, res.Raw)

	if projectID == nil {
		projectID = a.ProjectID
	}
	w.startRollups(ctx, userID, a, projectID)
	return nil
}

func (w *AchievementWriter) load(ctx context.Context, userID, achievementID string) (*models.Achievement, error) {
	ctx, cancel := w.storeCtx(ctx)
	defer cancel()

	a, err := w.Repomanager.Achievements(w.DB).Get(ctx, userID, achievementID)
	if err != nil {
		return nil, fmt.Errorf("error loading achievement: %w", err)
	}
	return a, nil
}

// markError records a failed synthesis. It runs even if ctx was canceled.
func (w *AchievementWriter) markError(ctx context.Context, userID, achievementID string) {
	ctx, cancel := w.storeCtx(context.WithoutCancel(ctx))
	defer cancel()

	if err := w.Repomanager.Achievements(w.DB).UpdateStatus(ctx, userID, achievementID, common.SynthesisError); err != nil {
		w.Logger.Error(ctx, "failed to mark synthesis error", "achievement_id", achievementID, "error", err)
	}
}

// MarkError sets the synthesis status to error for an achievement whose
// model call failed before any result was saved.
func (w *AchievementWriter) MarkError(ctx context.Context, userID, achievementID string) {
	w.markError(ctx, userID, achievementID)
}

// MarkProcessing flags an achievement whose model call is in flight.
func (w *AchievementWriter) MarkProcessing(ctx context.Context, userID, achievementID string) error {
	ctx, cancel := w.storeCtx(ctx)
	defer cancel()

	if err := w.Repomanager.Achievements(w.DB).UpdateStatus(ctx, userID, achievementID, common.SynthesisProcessing); err != nil {
		return fmt.Errorf("error marking achievement processing: %w", err)
	}
	return nil
}

func (w *AchievementWriter) attachTags(ctx context.Context, a *models.Achievement, slugs []string) {
	if len(slugs) == 0 {
		return
	}
	ctx, cancel := w.storeCtx(ctx)
	defer cancel()

	found, err := w.Repomanager.Tags(w.DB).FindBySlugs(ctx, a.UserID, slugs)
	if err != nil {
		w.Logger.Warn(ctx, "tag lookup failed", "achievement_id", a.ID, "error", err)
		return
	}
	if len(found) == 0 {
		return
	}

	rows := make([]*models.AchievementTag, 0, len(found))
	for _, t := range found {
		rows = append(rows, &models.AchievementTag{
			ID:            w.Clock.NewID(),
			AchievementID: a.ID,
			TagID:         t.ID,
			IsAISuggested: true,
			IsConfirmed:   true,
		})
	}
	if err := w.Repomanager.Tags(w.DB).Attach(ctx, rows); err != nil {
		w.Logger.Warn(ctx, "tag attach failed", "achievement_id", a.ID, "error", err)
	}
}

func (w *AchievementWriter) archive(ctx context.Context, a *models.Achievement, raw string) {
	if w.Archive == nil || raw == "" {
		return
	}
	ctx, cancel := w.storeCtx(ctx)
	defer cancel()

	if err := w.Archive.Archive(ctx, a.UserID, a.ID, w.Clock.Now(), raw); err != nil {
		w.Logger.Warn(ctx, "transcript archive failed", "achievement_id", a.ID, "error", err)
	}
}

// startRollups regenerates the entry summary and, when a project is
// attached, the project summary. The caller does not wait for them.
func (w *AchievementWriter) startRollups(ctx context.Context, userID string, a *models.Achievement, projectID *string) {
	if w.rollups == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	latest := *a

	w.detach(base, "entry", func(ctx context.Context) error {
		return w.rollups.Entry(ctx, userID, latest.EntryID, &latest)
	})
	if projectID != nil && *projectID != "" {
		pid := *projectID
		w.detach(base, "project", func(ctx context.Context) error {
			return w.rollups.Project(ctx, userID, pid)
		})
	}
}

func (w *AchievementWriter) detach(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				w.Logger.Error(ctx, "rollup panicked", "kind", kind, "panic", p)
			}
		}()

		if w.Config.RollupTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, w.Config.RollupTimeout)
			defer cancel()
		}
		if err := fn(ctx); err != nil {
			w.Logger.Error(ctx, "rollup failed", "kind", kind, "error", err)
		}
	}()
}

// Wait blocks until detached rollups have finished.
func (w *AchievementWriter) Wait() {
	w.wg.Wait()
}

// UpdateCurrentFields applies review edits to current values only.
func (w *AchievementWriter) UpdateCurrentFields(ctx context.Context, userID, achievementID string, edit models.CurrentEdit) error {
	if edit.Empty() {
		return fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}
	if edit.Name != nil && strings.TrimSpace(*edit.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", common.ErrorValidation)
	}

	a, err := w.load(ctx, userID, achievementID)
	if err != nil {
		return err
	}
	a.ApplyEdit(edit, w.Clock.Now())

	err = w.writeVerified(ctx, "achievements.update_current",
		func(ctx context.Context) error {
			return w.Repomanager.Achievements(w.DB).UpdateCurrent(ctx, a)
		},
		// UpdateCurrent is idempotent.
		func(context.Context) (bool, error) { return false, nil },
	)
	if err != nil {
		return fmt.Errorf("error updating achievement: %w", err)
	}

	w.publish(ctx, userID, "achievement_edited", events.KindAchievements, events.KindEntries, events.KindHighlights)
	return nil
}

// UpdateAchievementName renames an achievement.
func (w *AchievementWriter) UpdateAchievementName(ctx context.Context, userID, achievementID, name string) error {
	name = strings.TrimSpace(name)
	return w.UpdateCurrentFields(ctx, userID, achievementID, models.CurrentEdit{Name: &name})
}

// Responses returns the stored raw answers of an achievement.
func (w *AchievementWriter) Responses(ctx context.Context, userID, achievementID string) ([]*models.Response, error) {
	ctx, cancel := w.storeCtx(ctx)
	defer cancel()

	rows, err := w.Repomanager.Responses(w.DB).ListByAchievement(ctx, userID, achievementID)
	if err != nil {
		return nil, fmt.Errorf("error loading responses: %w", err)
	}
	return rows, nil
}
