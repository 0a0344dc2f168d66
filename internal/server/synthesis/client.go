// Package synthesis talks to the language model that turns raw answers into
// structured achievement records and rolls them up into entry, project and
// recent-focus summaries. The model is asked to use only the information it
// is given.
package synthesis

import (
	"context"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

// Call kinds, used for metrics labels and the mock's call counters.
const (
	KindAchievement     = "achievement"
	KindAchievementName = "achievement_name"
	KindEntrySummary    = "entry_summary"
	KindProjectSummary  = "project_summary"
	KindRecentFocus     = "recent_focus"
)

// Client is the synthesis service contract. The achievement call returns a
// validated structured result; summary calls return plain text.
type Client interface {
	SynthesizeAchievement(ctx context.Context, in models.SynthesisInput) (*models.SynthesisResult, error)
	SynthesizeAchievementName(ctx context.Context, text string) (string, error)
	SynthesizeEntrySummary(ctx context.Context, achievements []models.AchievementDigest) (string, error)
	SynthesizeProjectSummary(ctx context.Context, name string, description *string, achievements []models.AchievementDigest) (string, error)
	SynthesizeRecentFocus(ctx context.Context, entries []models.EntryDigest) (string, error)
}

// Observer receives the latency and outcome of every model call.
type Observer interface {
	ObserveSynthesis(kind string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveSynthesis(string, time.Duration, error) {}
