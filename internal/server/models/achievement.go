package models

import (
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
)

type Achievement struct {
	ID      string
	EntryID string
	UserID  string

	ProjectID           *string
	CompanyID           *string
	CompanyNameSnapshot *string
	RoleTitle           *string

	DisplayOrder   int
	SourcePlatform string
	Status         common.SynthesisStatus

	Name      Provenance[string]
	Paragraph Provenance[string]
	Bullets   Provenance[[]string]
	Situation Provenance[string]
	Task      Provenance[string]
	Action    Provenance[string]
	Result    Provenance[string]

	CompletenessScore        *int
	CompletenessFlags        []string
	CompletenessCalculatedAt *time.Time

	SynthesisEdited       bool
	SynthesisLastEditedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// ApplySynthesis copies r into the current fields, marks the record
// complete and, when no original has been captured yet, freezes the same
// values as the originals. It returns true on that first write.
func (a *Achievement) ApplySynthesis(r SynthesisResult, now time.Time) bool {
	first := !a.Name.HasOriginal() && !a.Paragraph.HasOriginal()

	a.Name.Set(r.Name)
	a.Paragraph.Set(r.Paragraph)
	a.Bullets.Set(r.Bullets)
	a.Situation.Set(r.StarSituation)
	a.Task.Set(r.StarTask)
	a.Action.Set(r.StarAction)
	a.Result.Set(r.StarResult)

	score := r.CompletenessScore
	a.CompletenessScore = &score
	a.CompletenessFlags = r.CompletenessFlags
	a.CompletenessCalculatedAt = &now
	a.Status = common.SynthesisComplete

	if first {
		a.Name.SetOriginalOnce(r.Name)
		a.Paragraph.SetOriginalOnce(r.Paragraph)
		a.Bullets.SetOriginalOnce(r.Bullets)
		a.Situation.SetOriginalOnce(r.StarSituation)
		a.Task.SetOriginalOnce(r.StarTask)
		a.Action.SetOriginalOnce(r.StarAction)
		a.Result.SetOriginalOnce(r.StarResult)
	}
	return first
}

// CurrentEdit carries user edits made on the review screen. Nil fields are
// left untouched.
type CurrentEdit struct {
	Name      *string
	Paragraph *string
	Bullets   []string
	Situation *string
	Task      *string
	Action    *string
	Result    *string
}

// Empty reports whether the edit changes nothing.
func (e CurrentEdit) Empty() bool {
	return e.Name == nil && e.Paragraph == nil && e.Bullets == nil &&
		e.Situation == nil && e.Task == nil && e.Action == nil && e.Result == nil
}

// ApplyEdit changes current values only and flags the record as edited.
func (a *Achievement) ApplyEdit(e CurrentEdit, now time.Time) {
	if e.Name != nil {
		a.Name.Set(*e.Name)
	}
	if e.Paragraph != nil {
		a.Paragraph.Set(*e.Paragraph)
	}
	if e.Bullets != nil {
		a.Bullets.Set(e.Bullets)
	}
	if e.Situation != nil {
		a.Situation.Set(*e.Situation)
	}
	if e.Task != nil {
		a.Task.Set(*e.Task)
	}
	if e.Action != nil {
		a.Action.Set(*e.Action)
	}
	if e.Result != nil {
		a.Result.Set(*e.Result)
	}
	a.SynthesisEdited = true
	a.SynthesisLastEditedAt = &now
}

// Response is the durable record of one raw answer. It is never updated.
type Response struct {
	ID                   string
	AchievementID        string
	QuestionKey          common.QuestionKey
	QuestionTextSnapshot string
	ResponseText         string
	CreatedAt            time.Time
}
