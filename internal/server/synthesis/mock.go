package synthesis

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

// Mock is a deterministic Client. Each Func field overrides the default
// behaviour of its call; the defaults derive output from the input only.
type Mock struct {
	AchievementFunc     func(ctx context.Context, in models.SynthesisInput) (*models.SynthesisResult, error)
	AchievementNameFunc func(ctx context.Context, text string) (string, error)
	EntrySummaryFunc    func(ctx context.Context, achievements []models.AchievementDigest) (string, error)
	ProjectSummaryFunc  func(ctx context.Context, name string, description *string, achievements []models.AchievementDigest) (string, error)
	RecentFocusFunc     func(ctx context.Context, entries []models.EntryDigest) (string, error)

	mu    sync.Mutex
	calls map[string]int
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) record(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[kind]++
}

// Calls returns how many times the call of kind was made.
func (m *Mock) Calls(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

func (m *Mock) SynthesizeAchievement(ctx context.Context, in models.SynthesisInput) (*models.SynthesisResult, error) {
	m.record(KindAchievement)
	if m.AchievementFunc != nil {
		return m.AchievementFunc(ctx, in)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bullets []string
	for _, v := range []string{in.Situation, in.Action, in.Result, in.Metrics} {
		if v = strings.TrimSpace(v); v != "" {
			bullets = append(bullets, v)
		}
	}
	if len(bullets) == 0 {
		bullets = []string{strings.TrimSpace(in.Headline)}
	}

	var flags []string
	for _, f := range []struct{ key, v string }{
		{"situation", in.Situation}, {"action", in.Action}, {"result", in.Result}, {"metrics", in.Metrics},
	} {
		if strings.TrimSpace(f.v) == "" {
			flags = append(flags, f.key)
		}
	}

	return &models.SynthesisResult{
		Name:              shortName(in.Headline),
		Paragraph:         strings.TrimSpace(in.Headline),
		Bullets:           bullets,
		StarSituation:     strings.TrimSpace(in.Situation),
		StarAction:        strings.TrimSpace(in.Action),
		StarResult:        strings.TrimSpace(in.Result),
		Tags:              []string{},
		CompletenessScore: 30 + 15*(4-len(flags)),
		CompletenessFlags: flags,
	}, nil
}

func (m *Mock) SynthesizeAchievementName(ctx context.Context, text string) (string, error) {
	m.record(KindAchievementName)
	if m.AchievementNameFunc != nil {
		return m.AchievementNameFunc(ctx, text)
	}
	return shortName(text), ctx.Err()
}

func (m *Mock) SynthesizeEntrySummary(ctx context.Context, achievements []models.AchievementDigest) (string, error) {
	m.record(KindEntrySummary)
	if m.EntrySummaryFunc != nil {
		return m.EntrySummaryFunc(ctx, achievements)
	}
	parts := make([]string, 0, len(achievements))
	for _, a := range achievements {
		parts = append(parts, a.Paragraph)
	}
	return strings.Join(parts, " "), ctx.Err()
}

func (m *Mock) SynthesizeProjectSummary(ctx context.Context, name string, description *string, achievements []models.AchievementDigest) (string, error) {
	m.record(KindProjectSummary)
	if m.ProjectSummaryFunc != nil {
		return m.ProjectSummaryFunc(ctx, name, description, achievements)
	}
	parts := []string{name + ":"}
	for _, a := range achievements {
		parts = append(parts, a.Name+".")
	}
	return strings.Join(parts, " "), ctx.Err()
}

func (m *Mock) SynthesizeRecentFocus(ctx context.Context, entries []models.EntryDigest) (string, error) {
	m.record(KindRecentFocus)
	if m.RecentFocusFunc != nil {
		return m.RecentFocusFunc(ctx, entries)
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Summary)
	}
	return strings.Join(parts, " "), ctx.Err()
}

func shortName(text string) string {
	words := strings.Fields(text)
	if len(words) > 7 {
		words = words[:7]
	}
	return strings.TrimRight(strings.Join(words, " "), ".,;:!?")
}
