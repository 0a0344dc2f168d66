package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/events"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/inmemory"
	"github.com/dmitrijs2005/careermemory/internal/server/synthesis"
)

const billingHeadline = "Migrated the billing pipeline to a new provider, cut latency 30%"

func firstResult() *models.SynthesisResult {
	return &models.SynthesisResult{
		Name:              "Migrated billing pipeline",
		Paragraph:         "I migrated the billing pipeline to a new provider.",
		Bullets:           []string{"Moved billing to a new provider"},
		StarAction:        "Migrated the pipeline",
		Tags:              []string{"process_improvement"},
		CompletenessScore: 55,
		CompletenessFlags: []string{"situation", "result"},
		Raw:               `{"name":"Migrated billing pipeline"}`,
	}
}

func secondResult() *models.SynthesisResult {
	r := firstResult()
	r.Name = "Moved billing to a faster provider"
	r.Paragraph = "I moved billing to a faster provider and cut latency by 30%."
	r.Bullets = []string{"Cut latency 30%"}
	r.CompletenessScore = 70
	r.CompletenessFlags = []string{"situation"}
	return r
}

func saveRaw(t *testing.T, env *testEnv, userID string, in RawInput) (entryID, achievementID string) {
	t.Helper()
	ctx := context.Background()
	entryID, err := env.resolver.ResolveToday(ctx, userID)
	require.NoError(t, err)
	achievementID, err = env.writer.SaveRawInput(ctx, userID, entryID, in)
	require.NoError(t, err)
	return entryID, achievementID
}

func onlyAchievement(t *testing.T, env *testEnv, userID string) *models.Achievement {
	t.Helper()
	list := env.store.Achievements(userID)
	require.Len(t, list, 1)
	return list[0]
}

func TestSaveRawInput_HeadlineOnly(t *testing.T) {
	env := newTestEnv(t)

	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	a := onlyAchievement(t, env, "u1")
	assert.Equal(t, id, a.ID)
	assert.Equal(t, entryID, a.EntryID)
	assert.Equal(t, common.SynthesisPending, a.Status)
	assert.Equal(t, common.SourceManual, a.SourcePlatform)
	assert.Equal(t, 1, a.DisplayOrder)
	assert.Empty(t, a.Paragraph.Current)
	assert.Nil(t, a.Paragraph.Original)

	rows := env.store.Responses(id)
	require.Len(t, rows, 1)
	assert.Equal(t, common.QuestionHeadline, rows[0].QuestionKey)
	assert.Equal(t, common.HeadlineSnapshot, rows[0].QuestionTextSnapshot)
	assert.Equal(t, billingHeadline, rows[0].ResponseText)
}

func TestSaveRawInput_StructuredAnswers(t *testing.T) {
	env := newTestEnv(t)
	project, err := env.projects.Create(context.Background(), "u1", "Billing", nil)
	require.NoError(t, err)

	company := "Acme"
	_, id := saveRaw(t, env, "u1", RawInput{
		MainText: "  Shipped the billing rewrite ",
		Answers: map[common.QuestionKey]string{
			common.QuestionResult:    "Latency fell 30%",
			common.QuestionSituation: "Old provider was slow",
			common.QuestionMetrics:   "   ",
			common.QuestionFreeform:  "",
		},
		ProjectID:   &project.ID,
		CompanyName: &company,
	})

	type row struct {
		Key  common.QuestionKey
		Text string
	}
	var got []row
	for _, r := range env.store.Responses(id) {
		got = append(got, row{r.QuestionKey, r.ResponseText})
	}
	want := []row{
		{common.QuestionHeadline, "Shipped the billing rewrite"},
		{common.QuestionSituation, "Old provider was slow"},
		{common.QuestionResult, "Latency fell 30%"},
	}
	assert.Empty(t, cmp.Diff(want, got))

	a := onlyAchievement(t, env, "u1")
	require.NotNil(t, a.ProjectID)
	assert.Equal(t, project.ID, *a.ProjectID)
	require.NotNil(t, a.CompanyNameSnapshot)
	assert.Equal(t, "Acme", *a.CompanyNameSnapshot)
}

func TestSaveRawInput_DisplayOrderIsGapless(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	entryID, err := env.resolver.ResolveToday(ctx, "u1")
	require.NoError(t, err)

	const k = 5
	for i := 0; i < k; i++ {
		_, err := env.writer.SaveRawInput(ctx, "u1", entryID, RawInput{MainText: "thing"})
		require.NoError(t, err)
	}

	var orders []int
	for _, a := range env.store.Achievements("u1") {
		orders = append(orders, a.DisplayOrder)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, orders)
}

func TestSaveRawInput_SecondAchievementSameDay(t *testing.T) {
	env := newTestEnv(t)

	entryA, _ := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})
	env.clock.Advance(time.Hour)
	entryB, idB := saveRaw(t, env, "u1", RawInput{MainText: "Mentored two new hires"})

	assert.Equal(t, entryA, entryB)
	assert.Len(t, env.store.Entries("u1"), 1)
	for _, a := range env.store.Achievements("u1") {
		if a.ID == idB {
			assert.Equal(t, 2, a.DisplayOrder)
		}
	}
}

func TestSaveRawInput_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	entryID, err := env.resolver.ResolveToday(ctx, "u1")
	require.NoError(t, err)
	otherProject, err := env.projects.Create(ctx, "u2", "Theirs", nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  string
		entryID string
		in      RawInput
		want    error
	}{
		{"blank main text", "u1", entryID, RawInput{MainText: "  "}, common.ErrorValidation},
		{"unknown question", "u1", entryID, RawInput{MainText: "x", Answers: map[common.QuestionKey]string{"mood": "great"}}, common.ErrorValidation},
		{"headline as answer", "u1", entryID, RawInput{MainText: "x", Answers: map[common.QuestionKey]string{common.QuestionHeadline: "x"}}, common.ErrorValidation},
		{"missing entry", "u1", "", RawInput{MainText: "x"}, common.ErrorValidation},
		{"foreign entry", "u2", entryID, RawInput{MainText: "x"}, common.ErrorNotFound},
		{"foreign project", "u1", entryID, RawInput{MainText: "x", ProjectID: &otherProject.ID}, common.ErrorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.writer.SaveRawInput(ctx, tt.userID, tt.entryID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, env.store.Achievements("u1"))
	assert.Empty(t, env.store.Achievements("u2"))
}

func TestSaveRawInput_AmbiguousInsertIsNotDuplicated(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetHooks(nil, failOnce("achievements.Insert", common.ErrStoreTimeout))

	_, id := saveRaw(t, env, "u1", RawInput{
		MainText: billingHeadline,
		Answers:  map[common.QuestionKey]string{common.QuestionAction: "Rewrote the adapters"},
	})

	a := onlyAchievement(t, env, "u1")
	assert.Equal(t, id, a.ID)
	assert.Equal(t, 1, a.DisplayOrder)
	assert.Len(t, env.store.Responses(id), 2)
	assert.Equal(t, 1, env.observer.retry("achievements.save_raw"))
}

func TestSaveRawInput_AmbiguousLandedWriteIsAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetHooks(nil, failOnce(inmemory.OpCommit, common.ErrStoreTimeout))

	_, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	onlyAchievement(t, env, "u1")
	assert.Len(t, env.store.Responses(id), 1)
	assert.Zero(t, env.observer.retry("achievements.save_raw"))
}

func TestSaveRawInput_ResponseFailureLeavesNoAchievement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	entryID, err := env.resolver.ResolveToday(ctx, "u1")
	require.NoError(t, err)

	env.store.SetHooks(failAlways("responses.InsertMany", errDiskFull), nil)
	_, err = env.writer.SaveRawInput(ctx, "u1", entryID, RawInput{MainText: billingHeadline})
	require.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, env.store.Achievements("u1"))

	env.store.SetHooks(nil, nil)
	_, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})
	a := onlyAchievement(t, env, "u1")
	assert.Equal(t, id, a.ID)
	assert.Equal(t, 1, a.DisplayOrder)
	assert.Len(t, env.store.Responses(id), 1)
}

func TestSaveRawInput_PersistentTimeout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	entryID, err := env.resolver.ResolveToday(ctx, "u1")
	require.NoError(t, err)

	env.store.SetHooks(failAlways("achievements.Insert", common.ErrStoreTimeout), nil)

	_, err = env.writer.SaveRawInput(ctx, "u1", entryID, RawInput{MainText: "x"})
	require.ErrorIs(t, err, common.ErrStoreTimeout)
	assert.Empty(t, env.store.Achievements("u1"))
}

func TestSaveSynthesisResult_FirstWriteSetsOriginals(t *testing.T) {
	env := newTestEnv(t)
	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	res := firstResult()
	require.NoError(t, env.writer.SaveSynthesisResult(context.Background(), "u1", id, entryID, res, nil))
	env.writer.Wait()

	a := onlyAchievement(t, env, "u1")
	assert.Equal(t, common.SynthesisComplete, a.Status)
	assert.Equal(t, res.Name, a.Name.Current)
	require.NotNil(t, a.Name.Original)
	assert.Equal(t, res.Name, *a.Name.Original)
	require.NotNil(t, a.Paragraph.Original)
	assert.Equal(t, res.Paragraph, *a.Paragraph.Original)
	require.NotNil(t, a.Bullets.Original)
	assert.Equal(t, res.Bullets, *a.Bullets.Original)
	require.NotNil(t, a.CompletenessScore)
	assert.Equal(t, 55, *a.CompletenessScore)
	assert.Equal(t, []string{"situation", "result"}, a.CompletenessFlags)

	tag, ok := env.store.TagBySlug("process_improvement")
	require.True(t, ok)
	links := env.store.AchievementTags(id)
	require.Len(t, links, 1)
	assert.Equal(t, tag.ID, links[0].TagID)
	assert.True(t, links[0].IsAISuggested)

	assert.Equal(t, []string{"u1/" + id}, env.archive.keys)
}

func TestSaveSynthesisResult_WriteOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	first, second := firstResult(), secondResult()
	require.NoError(t, env.writer.SaveSynthesisResult(ctx, "u1", id, entryID, first, nil))
	require.NoError(t, env.writer.SaveSynthesisResult(ctx, "u1", id, entryID, second, nil))
	env.writer.Wait()

	a := onlyAchievement(t, env, "u1")
	assert.Equal(t, second.Name, a.Name.Current)
	assert.Equal(t, second.Paragraph, a.Paragraph.Current)
	assert.Equal(t, second.Bullets, a.Bullets.Current)
	assert.Equal(t, first.Name, *a.Name.Original)
	assert.Equal(t, first.Paragraph, *a.Paragraph.Original)
	assert.Equal(t, first.Bullets, *a.Bullets.Original)
	assert.Equal(t, 70, *a.CompletenessScore)

	assert.Len(t, env.store.AchievementTags(id), 1)
}

func TestSaveSynthesisResult_StoreFailureMarksError(t *testing.T) {
	env := newTestEnv(t)
	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})
	env.store.SetHooks(failAlways("achievements.UpdateSynthesis", errDiskFull), nil)

	err := env.writer.SaveSynthesisResult(context.Background(), "u1", id, entryID, firstResult(), nil)
	require.ErrorIs(t, err, errDiskFull)
	env.writer.Wait()

	a := onlyAchievement(t, env, "u1")
	assert.Equal(t, common.SynthesisError, a.Status)
	assert.Nil(t, a.Paragraph.Original)
	assert.Len(t, env.store.Responses(id), 1)
	assert.Zero(t, env.client.Calls(synthesis.KindEntrySummary))
}

func TestSaveSynthesisResult_TagAndArchiveFailuresAreIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.archive.err = errors.New("bucket missing")
	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})
	env.store.SetHooks(failAlways("tags.Attach", errDiskFull), nil)

	require.NoError(t, env.writer.SaveSynthesisResult(context.Background(), "u1", id, entryID, firstResult(), nil))
	env.writer.Wait()

	assert.Equal(t, common.SynthesisComplete, onlyAchievement(t, env, "u1").Status)
	assert.Empty(t, env.store.AchievementTags(id))
}

func TestSaveSynthesisResult_UnknownTagSkipped(t *testing.T) {
	env := newTestEnv(t)
	env.store.DeleteTag("process_improvement")
	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	require.NoError(t, env.writer.SaveSynthesisResult(context.Background(), "u1", id, entryID, firstResult(), nil))
	env.writer.Wait()
	assert.Empty(t, env.store.AchievementTags(id))
}

func TestSaveSynthesisResult_WrongEntryOrUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	err := env.writer.SaveSynthesisResult(ctx, "u1", id, "some-other-entry", firstResult(), nil)
	assert.ErrorIs(t, err, common.ErrorValidation)

	err = env.writer.SaveSynthesisResult(ctx, "u2", id, entryID, firstResult(), nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.Equal(t, common.SynthesisPending, onlyAchievement(t, env, "u1").Status)
}

func TestSaveSynthesisResult_TriggersEntryRollup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sub, cancel := env.bus.Subscribe("u1", 16)
	defer cancel()

	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})
	require.NoError(t, env.writer.SaveSynthesisResult(ctx, "u1", id, entryID, firstResult(), nil))
	env.writer.Wait()

	e := env.store.Entries("u1")[0]
	assert.Equal(t, firstResult().Paragraph, e.Summary.Current)
	require.NotNil(t, e.Summary.Original)
	assert.Equal(t, 1, env.observer.rollup("entry/ok"))
	assert.Zero(t, env.client.Calls(synthesis.KindProjectSummary))

	var reasons []string
	for len(sub) > 0 {
		ev := <-sub
		reasons = append(reasons, ev.Reason)
		if ev.Reason == "entry_rollup" {
			assert.Contains(t, ev.Kinds, events.KindEntries)
		}
	}
	assert.Contains(t, reasons, "entry_rollup")
}

func TestSaveSynthesisResult_RollupFailureDoesNotSurface(t *testing.T) {
	env := newTestEnv(t)
	env.client.EntrySummaryFunc = func(context.Context, []models.AchievementDigest) (string, error) {
		return "", common.ErrSynthesisFailed
	}
	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	require.NoError(t, env.writer.SaveSynthesisResult(context.Background(), "u1", id, entryID, firstResult(), nil))
	env.writer.Wait()

	assert.Empty(t, env.store.Entries("u1")[0].Summary.Current)
	assert.Equal(t, 1, env.observer.rollup("entry/error"))
}

func TestUpdateCurrentFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	entryID, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})
	require.NoError(t, env.writer.SaveSynthesisResult(ctx, "u1", id, entryID, firstResult(), nil))
	env.writer.Wait()

	env.clock.Advance(time.Minute)
	paragraph := "My own words."
	require.NoError(t, env.writer.UpdateCurrentFields(ctx, "u1", id, models.CurrentEdit{
		Paragraph: &paragraph,
		Bullets:   []string{"one", "two"},
	}))
	require.NoError(t, env.writer.UpdateAchievementName(ctx, "u1", id, "  Billing move "))

	a := onlyAchievement(t, env, "u1")
	assert.Equal(t, "Billing move", a.Name.Current)
	assert.Equal(t, paragraph, a.Paragraph.Current)
	assert.Equal(t, []string{"one", "two"}, a.Bullets.Current)
	assert.Equal(t, firstResult().Name, *a.Name.Original)
	assert.Equal(t, firstResult().Paragraph, *a.Paragraph.Original)
	assert.True(t, a.SynthesisEdited)
	require.NotNil(t, a.SynthesisLastEditedAt)
	assert.True(t, a.SynthesisLastEditedAt.Equal(env.clock.Now()))
}

func TestUpdateCurrentFields_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	assert.ErrorIs(t, env.writer.UpdateCurrentFields(ctx, "u1", id, models.CurrentEdit{}), common.ErrorValidation)
	assert.ErrorIs(t, env.writer.UpdateAchievementName(ctx, "u1", id, "   "), common.ErrorValidation)

	name := "Mine now"
	assert.ErrorIs(t, env.writer.UpdateCurrentFields(ctx, "u2", id, models.CurrentEdit{Name: &name}), common.ErrorNotFound)
}

func TestMarkProcessingAndError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, id := saveRaw(t, env, "u1", RawInput{MainText: billingHeadline})

	require.NoError(t, env.writer.MarkProcessing(ctx, "u1", id))
	assert.Equal(t, common.SynthesisProcessing, onlyAchievement(t, env, "u1").Status)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	env.writer.MarkError(canceled, "u1", id)
	assert.Equal(t, common.SynthesisError, onlyAchievement(t, env, "u1").Status)
}

func TestResponses(t *testing.T) {
	env := newTestEnv(t)
	_, id := saveRaw(t, env, "u1", RawInput{
		MainText: billingHeadline,
		Answers:  map[common.QuestionKey]string{common.QuestionSkills: "Negotiation"},
	})

	rows, err := env.writer.Responses(context.Background(), "u1", id)
	require.NoError(t, err)
	in := synthesis.InputFromResponses(rows)
	assert.Equal(t, billingHeadline, in.Headline)
	assert.Equal(t, "Negotiation", in.Skills)

	rows, err = env.writer.Responses(context.Background(), "u2", id)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
