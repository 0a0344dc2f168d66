package models

import "github.com/dmitrijs2005/careermemory/internal/timex"

// SynthesisInput holds the raw answers sent to the synthesis service.
type SynthesisInput struct {
	Headline  string
	Situation string
	Action    string
	Result    string
	Metrics   string
	Skills    string
	Freeform  string
}

// SynthesisResult is the structured output of an achievement synthesis.
// Raw keeps the model text it was parsed from.
type SynthesisResult struct {
	Name              string   `json:"name"`
	Paragraph         string   `json:"paragraph"`
	Bullets           []string `json:"bullets"`
	StarSituation     string   `json:"star_situation"`
	StarTask          string   `json:"star_task"`
	StarAction        string   `json:"star_action"`
	StarResult        string   `json:"star_result"`
	Tags              []string `json:"tags"`
	CompletenessScore int      `json:"completeness_score"`
	CompletenessFlags []string `json:"completeness_flags"`
	Raw               string   `json:"-"`
}

// AchievementDigest is the per-achievement input of a rollup summary.
// Date is only used by project rollups.
type AchievementDigest struct {
	Name      string
	Paragraph string
	Date      timex.Date
}

// EntryDigest is the per-entry input of the recent focus summary.
type EntryDigest struct {
	Date             timex.Date
	Summary          string
	AchievementNames []string
}
