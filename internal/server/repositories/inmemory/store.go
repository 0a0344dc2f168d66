// Package inmemory implements every server repository over process memory.
// It backs the "memory://" DSN and the service and flow tests. All
// repositories returned for one Store share its data and lock.
package inmemory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

// Hook lets tests inject store failures. op names the operation, for
// example "achievements.Insert".
type Hook func(ctx context.Context, op string) error

// OpCommit is the hook op run when a unit of work commits. A before hook
// error rolls the unit back; an after hook error leaves it committed.
const OpCommit = "tx.Commit"

type txKey struct{}

type Store struct {
	mu sync.Mutex
	// txMu is held by a running unit of work and by every write outside one.
	txMu  sync.Mutex
	clock timex.Clock

	entries      map[string]*models.Entry
	achievements map[string]*models.Achievement
	achOrder     []string
	responses    []*models.Response
	tags         map[string]*models.Tag
	achTags      []*models.AchievementTag
	projects     map[string]*models.Project

	beforeWrite Hook
	afterWrite  Hook
}

// NewStore returns an empty store seeded with the system tag vocabulary.
func NewStore() *Store {
	s := &Store{
		entries:      map[string]*models.Entry{},
		achievements: map[string]*models.Achievement{},
		tags:         map[string]*models.Tag{},
		projects:     map[string]*models.Project{},
	}
	for _, slug := range common.TagVocabulary {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("tag:"+slug)).String()
		s.tags[id] = &models.Tag{ID: id, Name: slug, Slug: slug, IsSystem: true}
	}
	return s
}

// SetHooks installs failure hooks. before runs ahead of a write and an error
// aborts it; after runs once the write is applied and its error is returned
// to the caller although the write landed. Nil clears a hook.
func (s *Store) SetHooks(before, after Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeWrite, s.afterWrite = before, after
}

// SetClock makes the store stamp rows from c instead of the wall clock.
func (s *Store) SetClock(c timex.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = c
}

// now must be called with mu held.
func (s *Store) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return time.Now()
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTx runs fn as one unit of work. Units are serialized with every
// other write; if fn or the commit hook fails, all writes fn made are
// rolled back. Nested calls join the outer unit.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.inTx(ctx) {
		return fn(ctx, nil)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.snapshot()
	before, after := s.beforeWrite, s.afterWrite
	s.mu.Unlock()

	rollback := func() {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
	}

	if err := fn(context.WithValue(ctx, txKey{}, s), nil); err != nil {
		rollback()
		return err
	}
	if before != nil {
		if err := before(ctx, OpCommit); err != nil {
			rollback()
			return err
		}
	}
	if after != nil {
		return after(ctx, OpCommit)
	}
	return nil
}

type snapshot struct {
	entries      map[string]*models.Entry
	achievements map[string]*models.Achievement
	achOrder     []string
	responses    []*models.Response
	tags         map[string]*models.Tag
	achTags      []*models.AchievementTag
	projects     map[string]*models.Project
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		entries:      make(map[string]*models.Entry, len(s.entries)),
		achievements: make(map[string]*models.Achievement, len(s.achievements)),
		achOrder:     slices.Clone(s.achOrder),
		responses:    make([]*models.Response, 0, len(s.responses)),
		tags:         make(map[string]*models.Tag, len(s.tags)),
		achTags:      make([]*models.AchievementTag, 0, len(s.achTags)),
		projects:     make(map[string]*models.Project, len(s.projects)),
	}
	for id, e := range s.entries {
		snap.entries[id] = copyEntry(e)
	}
	for id, a := range s.achievements {
		snap.achievements[id] = copyAchievement(a)
	}
	for _, r := range s.responses {
		c := *r
		snap.responses = append(snap.responses, &c)
	}
	for id, t := range s.tags {
		c := *t
		snap.tags[id] = &c
	}
	for _, at := range s.achTags {
		c := *at
		snap.achTags = append(snap.achTags, &c)
	}
	for id, p := range s.projects {
		snap.projects[id] = copyProject(p)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.entries = snap.entries
	s.achievements = snap.achievements
	s.achOrder = snap.achOrder
	s.responses = snap.responses
	s.tags = snap.tags
	s.achTags = snap.achTags
	s.projects = snap.projects
}

func (s *Store) write(ctx context.Context, op string, apply func() error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	before, after := s.beforeWrite, s.afterWrite
	s.mu.Unlock()

	if before != nil {
		if err := before(ctx, op); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	err := apply()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if after != nil {
		return after(ctx, op)
	}
	return nil
}

func (s *Store) read(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	return nil
}

// Entries returns copies of every entry of userID, deleted ones included.
func (s *Store) Entries(userID string) []*models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Entry
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, copyEntry(e))
		}
	}
	return out
}

// Achievements returns copies of the achievements of userID in insertion order.
func (s *Store) Achievements(userID string) []*models.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Achievement
	for _, id := range s.achOrder {
		if a := s.achievements[id]; a.UserID == userID {
			out = append(out, copyAchievement(a))
		}
	}
	return out
}

// Responses returns copies of the raw answers of an achievement.
func (s *Store) Responses(achievementID string) []*models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Response
	for _, r := range s.responses {
		if r.AchievementID == achievementID {
			c := *r
			out = append(out, &c)
		}
	}
	return out
}

// AchievementTags returns copies of the tag links of an achievement.
func (s *Store) AchievementTags(achievementID string) []*models.AchievementTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.AchievementTag
	for _, at := range s.achTags {
		if at.AchievementID == achievementID {
			c := *at
			out = append(out, &c)
		}
	}
	return out
}

// TagBySlug returns the system tag with slug, if seeded.
func (s *Store) TagBySlug(slug string) (*models.Tag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Slug == slug && t.UserID == nil {
			c := *t
			return &c, true
		}
	}
	return nil, false
}

// DeleteTag removes every tag with slug so lookups miss it.
func (s *Store) DeleteTag(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tags {
		if t.Slug == slug {
			delete(s.tags, id)
		}
	}
}

// SoftDeleteEntry marks an entry deleted.
func (s *Store) SoftDeleteEntry(entryID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[entryID]; ok {
		e.DeletedAt = &at
	}
}

func copyEntry(e *models.Entry) *models.Entry {
	c := *e
	c.Summary = copyText(e.Summary)
	return &c
}

func copyText(p models.Provenance[string]) models.Provenance[string] {
	out := models.Provenance[string]{Current: p.Current}
	if p.Original != nil {
		v := *p.Original
		out.Original = &v
	}
	return out
}

func copyList(p models.Provenance[[]string]) models.Provenance[[]string] {
	out := models.Provenance[[]string]{Current: slices.Clone(p.Current)}
	if p.Original != nil {
		v := slices.Clone(*p.Original)
		out.Original = &v
	}
	return out
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyAchievement(a *models.Achievement) *models.Achievement {
	c := *a
	c.ProjectID = copyStringPtr(a.ProjectID)
	c.CompanyID = copyStringPtr(a.CompanyID)
	c.CompanyNameSnapshot = copyStringPtr(a.CompanyNameSnapshot)
	c.RoleTitle = copyStringPtr(a.RoleTitle)
	c.Name = copyText(a.Name)
	c.Paragraph = copyText(a.Paragraph)
	c.Bullets = copyList(a.Bullets)
	c.Situation = copyText(a.Situation)
	c.Task = copyText(a.Task)
	c.Action = copyText(a.Action)
	c.Result = copyText(a.Result)
	if a.CompletenessScore != nil {
		v := *a.CompletenessScore
		c.CompletenessScore = &v
	}
	c.CompletenessFlags = slices.Clone(a.CompletenessFlags)
	c.CompletenessCalculatedAt = copyTimePtr(a.CompletenessCalculatedAt)
	c.SynthesisLastEditedAt = copyTimePtr(a.SynthesisLastEditedAt)
	c.DeletedAt = copyTimePtr(a.DeletedAt)
	return &c
}

func copyProject(p *models.Project) *models.Project {
	c := *p
	c.Description = copyStringPtr(p.Description)
	c.Summary = copyText(p.Summary)
	c.SummaryLastEditedAt = copyTimePtr(p.SummaryLastEditedAt)
	c.DeletedAt = copyTimePtr(p.DeletedAt)
	return &c
}
