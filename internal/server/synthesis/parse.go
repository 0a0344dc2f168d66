package synthesis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

var requiredFields = []string{"name", "paragraph", "bullets", "tags", "completeness_flags", "completeness_score"}

// ParseAchievement extracts the JSON object from raw model text, from the
// first '{' to the last '}', and validates it. Any deviation is reported as
// common.ErrMalformedSynthesis; nothing is defaulted.
func ParseAchievement(raw string) (*models.SynthesisResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object found in response", common.ErrMalformedSynthesis)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedSynthesis, err)
	}

	for _, key := range requiredFields {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%w: missing required field: %s", common.ErrMalformedSynthesis, key)
		}
	}

	var (
		out   models.SynthesisResult
		score float64
	)
	decoders := []struct {
		key string
		dst any
	}{
		{"name", &out.Name},
		{"paragraph", &out.Paragraph},
		{"bullets", &out.Bullets},
		{"tags", &out.Tags},
		{"completeness_flags", &out.CompletenessFlags},
		{"completeness_score", &score},
		{"star_situation", &out.StarSituation},
		{"star_task", &out.StarTask},
		{"star_action", &out.StarAction},
		{"star_result", &out.StarResult},
	}
	for _, d := range decoders {
		v, ok := fields[d.key]
		if !ok || string(v) == "null" {
			continue
		}
		if err := json.Unmarshal(v, d.dst); err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", common.ErrMalformedSynthesis, d.key, err)
		}
	}

	for _, key := range []string{"bullets", "tags", "completeness_flags"} {
		if string(fields[key]) == "null" {
			return nil, fmt.Errorf("%w: %s must be an array", common.ErrMalformedSynthesis, key)
		}
	}
	if string(fields["completeness_score"]) == "null" {
		return nil, fmt.Errorf("%w: completeness_score must be a number", common.ErrMalformedSynthesis)
	}

	out.CompletenessScore = clampScore(score)
	out.Raw = raw
	return &out, nil
}

func clampScore(v float64) int {
	n := int(math.Round(v))
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}
