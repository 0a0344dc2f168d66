package synthesis

import (
	"testing"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAchievementJSON = `{
  "name": "Rebuilt onboarding flow to cut churn",
  "paragraph": "I rebuilt the onboarding flow. Churn dropped 18% in Q3.",
  "bullets": ["Rebuilt onboarding", "Cut churn 18%"],
  "star_situation": "Churn was rising",
  "star_task": null,
  "star_action": "Rebuilt onboarding",
  "star_result": "Churn dropped 18%",
  "tags": ["shipped_product"],
  "completeness_flags": ["task"],
  "completeness_score": 82
}`

func TestParseAchievement_Valid(t *testing.T) {
	raw := "Here you go:\n" + validAchievementJSON + "\nThanks"

	got, err := ParseAchievement(raw)
	require.NoError(t, err)

	assert.Equal(t, "Rebuilt onboarding flow to cut churn", got.Name)
	assert.Equal(t, []string{"Rebuilt onboarding", "Cut churn 18%"}, got.Bullets)
	assert.Equal(t, "Churn was rising", got.StarSituation)
	assert.Empty(t, got.StarTask)
	assert.Equal(t, []string{"shipped_product"}, got.Tags)
	assert.Equal(t, []string{"task"}, got.CompletenessFlags)
	assert.Equal(t, 82, got.CompletenessScore)
	assert.Equal(t, raw, got.Raw)
}

func TestParseAchievement_ClampsScore(t *testing.T) {
	tests := []struct {
		name  string
		score string
		want  int
	}{
		{"above", "140", 100},
		{"below", "-3", 0},
		{"fraction", "55.6", 56},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"name":"n","paragraph":"p","bullets":[],"tags":[],"completeness_flags":[],"completeness_score":` + tt.score + `}`
			got, err := ParseAchievement(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.CompletenessScore)
		})
	}
}

func TestParseAchievement_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no object", "I could not do that"},
		{"broken json", `{"name": "x", "paragraph": }`},
		{"missing paragraph", `{"name":"n","bullets":[],"tags":[],"completeness_flags":[],"completeness_score":10}`},
		{"missing score", `{"name":"n","paragraph":"p","bullets":[],"tags":[],"completeness_flags":[]}`},
		{"null bullets", `{"name":"n","paragraph":"p","bullets":null,"tags":[],"completeness_flags":[],"completeness_score":10}`},
		{"null score", `{"name":"n","paragraph":"p","bullets":[],"tags":[],"completeness_flags":[],"completeness_score":null}`},
		{"bullets not array", `{"name":"n","paragraph":"p","bullets":"one","tags":[],"completeness_flags":[],"completeness_score":10}`},
		{"score not number", `{"name":"n","paragraph":"p","bullets":[],"tags":[],"completeness_flags":[],"completeness_score":"high"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAchievement(tt.raw)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, common.ErrMalformedSynthesis)
		})
	}
}
