package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/logging"
	"github.com/dmitrijs2005/careermemory/internal/server/config"
	"github.com/dmitrijs2005/careermemory/internal/server/events"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/server/services"
	"github.com/dmitrijs2005/careermemory/internal/server/synthesis"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

// EntryResolver finds or creates today's entry.
type EntryResolver interface {
	ResolveToday(ctx context.Context, userID string) (string, error)
}

// AchievementWriter is the persistence side of the flow.
type AchievementWriter interface {
	SaveRawInput(ctx context.Context, userID, entryID string, in services.RawInput) (string, error)
	SaveSynthesisResult(ctx context.Context, userID, achievementID, entryID string, res *models.SynthesisResult, projectID *string) error
	MarkProcessing(ctx context.Context, userID, achievementID string) error
	MarkError(ctx context.Context, userID, achievementID string)
	UpdateCurrentFields(ctx context.Context, userID, achievementID string, edit models.CurrentEdit) error
	Responses(ctx context.Context, userID, achievementID string) ([]*models.Response, error)
}

// Observer receives every state change.
type Observer interface {
	ObserveTransition(from, to string)
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(string, string) {}

type Deps struct {
	Resolver EntryResolver
	Writer   AchievementWriter
	Client   synthesis.Client
	Clock    timex.Clock
	Config   *config.Config
	Logger   logging.Logger
	Events   events.Publisher
	Observer Observer
}

// Controller runs the form state machine over flows held by the caller.
type Controller struct {
	d Deps
}

func NewController(d Deps) *Controller {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if d.Config == nil {
		d.Config = &config.Config{}
		d.Config.LoadDefaults()
	}
	d.Logger = d.Logger.With("module", "flow")
	return &Controller{d: d}
}

func (c *Controller) move(ctx context.Context, f *Flow, from, to State) error {
	if err := f.move(from, to, c.d.Clock.Now()); err != nil {
		return err
	}
	c.d.Observer.ObserveTransition(string(from), string(to))
	c.d.Logger.Debug(ctx, "flow transition", "flow_id", f.id, "from", from, "to", to)
	return nil
}

func (c *Controller) publish(ctx context.Context, userID, reason string, kinds ...events.Kind) {
	ev := events.Event{UserID: userID, Kinds: kinds, Reason: reason, At: c.d.Clock.Now()}
	if err := c.d.Events.Publish(ctx, ev); err != nil {
		c.d.Logger.Warn(ctx, "publish event failed", "reason", reason, "error", err)
	}
}

// Submit stores the draft and synthesizes it. If the store fails the flow
// returns to input with the draft kept and a *SaveError is returned. If
// the model call or saving its result fails the flow ends in the error
// state and a *SynthesisError is returned.
func (c *Controller) Submit(ctx context.Context, f *Flow, draft services.RawInput) error {
	if strings.TrimSpace(draft.MainText) == "" {
		return fmt.Errorf("%w: main text is required", common.ErrorValidation)
	}

	f.mu.Lock()
	err := c.move(ctx, f, StateInput, StateProcessing)
	if err == nil {
		f.draft = copyDraft(draft)
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}

	entryID, achievementID, err := c.saveRaw(ctx, f.userID, draft)
	if err != nil {
		c.d.Logger.Warn(ctx, "raw input not saved", "flow_id", f.id, "user_id", f.userID, "error", err)
		f.mu.Lock()
		f.lastErr = err
		_ = c.move(ctx, f, StateProcessing, StateInput)
		f.mu.Unlock()
		return &SaveError{Err: err}
	}

	f.mu.Lock()
	f.entryID, f.achievementID = entryID, achievementID
	f.lastErr = nil
	f.mu.Unlock()
	c.publish(ctx, f.userID, "raw_saved", events.KindEntries, events.KindAchievements)

	return c.synthesize(ctx, f, inputFromDraft(draft))
}

func (c *Controller) saveRaw(ctx context.Context, userID string, draft services.RawInput) (string, string, error) {
	entryID, err := c.d.Resolver.ResolveToday(ctx, userID)
	if err != nil {
		return "", "", err
	}
	achievementID, err := c.d.Writer.SaveRawInput(ctx, userID, entryID, draft)
	if err != nil {
		return "", "", err
	}
	return entryID, achievementID, nil
}

func inputFromDraft(d services.RawInput) models.SynthesisInput {
	a := d.Answers
	return models.SynthesisInput{
		Headline:  strings.TrimSpace(d.MainText),
		Situation: strings.TrimSpace(a[common.QuestionSituation]),
		Action:    strings.TrimSpace(a[common.QuestionAction]),
		Result:    strings.TrimSpace(a[common.QuestionResult]),
		Metrics:   strings.TrimSpace(a[common.QuestionMetrics]),
		Skills:    strings.TrimSpace(a[common.QuestionSkills]),
		Freeform:  strings.TrimSpace(a[common.QuestionFreeform]),
	}
}

// Retry synthesizes the stored answers again. No new entry or achievement
// is created.
func (c *Controller) Retry(ctx context.Context, f *Flow) error {
	f.mu.Lock()
	err := c.move(ctx, f, StateError, StateProcessing)
	userID, achievementID := f.userID, f.achievementID
	f.mu.Unlock()
	if err != nil {
		return err
	}

	rows, err := c.d.Writer.Responses(ctx, userID, achievementID)
	if err == nil && len(rows) == 0 {
		err = fmt.Errorf("achievement %s has no stored answers: %w", achievementID, common.ErrorNotFound)
	}
	if err != nil {
		return c.fail(ctx, f, err)
	}
	return c.synthesize(ctx, f, synthesis.InputFromResponses(rows))
}

// synthesize runs with the flow in the processing state.
func (c *Controller) synthesize(ctx context.Context, f *Flow, in models.SynthesisInput) error {
	f.mu.Lock()
	userID, entryID, achievementID := f.userID, f.entryID, f.achievementID
	projectID := f.draft.ProjectID
	f.mu.Unlock()

	if err := c.d.Writer.MarkProcessing(ctx, userID, achievementID); err != nil {
		c.d.Logger.Warn(ctx, "mark processing failed", "achievement_id", achievementID, "error", err)
	}

	res, err := c.callModel(ctx, in)
	if err != nil {
		c.d.Writer.MarkError(ctx, userID, achievementID)
		return c.fail(ctx, f, err)
	}

	if err := c.d.Writer.SaveSynthesisResult(ctx, userID, achievementID, entryID, res, projectID); err != nil {
		return c.fail(ctx, f, err)
	}

	f.mu.Lock()
	f.result = res
	f.lastErr = nil
	err = c.move(ctx, f, StateProcessing, StateReview)
	f.mu.Unlock()
	if err != nil {
		return err
	}

	c.d.Logger.Info(ctx, "achievement synthesized", "flow_id", f.id, "achievement_id", achievementID)
	c.publish(ctx, userID, "synthesis_saved", events.KindAchievements, events.KindEntries, events.KindHighlights)
	return nil
}

func (c *Controller) callModel(ctx context.Context, in models.SynthesisInput) (*models.SynthesisResult, error) {
	if c.d.Config.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.d.Config.SynthesisTimeout)
		defer cancel()
	}

	res, err := c.d.Client.SynthesizeAchievement(ctx, in)
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, common.ErrSynthesisTimeout) {
		err = fmt.Errorf("%w: %w", common.ErrSynthesisTimeout, err)
	}
	return res, err
}

func (c *Controller) fail(ctx context.Context, f *Flow, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastErr = err
	if mErr := c.move(ctx, f, StateProcessing, StateError); mErr != nil {
		return mErr
	}
	c.d.Logger.Warn(ctx, "synthesis failed", "flow_id", f.id, "achievement_id", f.achievementID, "error", err)
	return &SynthesisError{AchievementID: f.achievementID, EntryID: f.entryID, Err: err}
}

// Skip leaves the form after a failed synthesis. The stored answers stay.
func (c *Controller) Skip(ctx context.Context, f *Flow) error {
	f.mu.Lock()
	err := c.move(ctx, f, StateError, StateDone)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish(ctx, f.userID, "synthesis_skipped", events.KindEntries, events.KindAchievements)
	return nil
}

// EditReview changes the current values shown on the review step.
func (c *Controller) EditReview(ctx context.Context, f *Flow, edit models.CurrentEdit) error {
	f.mu.Lock()
	state, userID, achievementID := f.state, f.userID, f.achievementID
	f.mu.Unlock()
	if state != StateReview {
		return fmt.Errorf("%w: cannot edit in %s", common.ErrInvalidTransition, state)
	}

	if err := c.d.Writer.UpdateCurrentFields(ctx, userID, achievementID, edit); err != nil {
		return err
	}

	f.mu.Lock()
	if f.result != nil {
		applyEdit(f.result, edit)
	}
	f.updatedAt = c.d.Clock.Now()
	f.mu.Unlock()
	return nil
}

func applyEdit(r *models.SynthesisResult, e models.CurrentEdit) {
	if e.Name != nil {
		r.Name = *e.Name
	}
	if e.Paragraph != nil {
		r.Paragraph = *e.Paragraph
	}
	if e.Bullets != nil {
		r.Bullets = e.Bullets
	}
	if e.Situation != nil {
		r.StarSituation = *e.Situation
	}
	if e.Task != nil {
		r.StarTask = *e.Task
	}
	if e.Action != nil {
		r.StarAction = *e.Action
	}
	if e.Result != nil {
		r.StarResult = *e.Result
	}
}

// Save leaves the form from review.
func (c *Controller) Save(ctx context.Context, f *Flow) error {
	f.mu.Lock()
	err := c.move(ctx, f, StateReview, StateDone)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish(ctx, f.userID, "achievement_saved", events.KindEntries, events.KindAchievements, events.KindStats)
	return nil
}

// AddAnother resets the flow for a new, independent achievement. The one
// just reviewed is already stored.
func (c *Controller) AddAnother(ctx context.Context, f *Flow) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := c.move(ctx, f, StateReview, StateInput); err != nil {
		return err
	}
	f.draft = services.RawInput{}
	f.entryID, f.achievementID = "", ""
	f.result = nil
	f.lastErr = nil
	return nil
}

// SuggestName asks the model for a title. When text is empty the flow's
// draft is used. Nothing is stored.
func (c *Controller) SuggestName(ctx context.Context, f *Flow, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		f.mu.Lock()
		text = f.draft.MainText
		f.mu.Unlock()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: nothing to name", common.ErrorValidation)
	}

	if c.d.Config.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.d.Config.SynthesisTimeout)
		defer cancel()
	}
	name, err := c.d.Client.SynthesizeAchievementName(ctx, text)
	if err != nil {
		return "", fmt.Errorf("name suggestion: %w", err)
	}
	return name, nil
}
