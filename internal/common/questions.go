package common

// QuestionKey identifies one prompt of the achievement form.
type QuestionKey string

const (
	QuestionHeadline  QuestionKey = "headline"
	QuestionSituation QuestionKey = "situation"
	QuestionAction    QuestionKey = "action"
	QuestionResult    QuestionKey = "result"
	QuestionMetrics   QuestionKey = "metrics"
	QuestionSkills    QuestionKey = "skills"
	QuestionFreeform  QuestionKey = "freeform"
)

// HeadlineSnapshot is stored as question_text_snapshot for the headline row.
const HeadlineSnapshot = "What did you accomplish?"

// Question is a catalog item shown to the user.
type Question struct {
	Key          QuestionKey
	Text         string
	HelperText   string
	DisplayOrder int
}

// Questions lists the system prompts in display order.
var Questions = []Question{
	{
		Key:          QuestionHeadline,
		Text:         HeadlineSnapshot,
		HelperText:   "Think about what you were working on, why it mattered, what you specifically did, and what the outcome was",
		DisplayOrder: 1,
	},
	{
		Key:          QuestionSituation,
		Text:         "What was the situation or challenge?",
		HelperText:   "What context or problem led to this work?",
		DisplayOrder: 2,
	},
	{
		Key:          QuestionAction,
		Text:         "What did you specifically do?",
		HelperText:   "Focus on your individual contribution",
		DisplayOrder: 3,
	},
	{
		Key:          QuestionResult,
		Text:         "What was the result or impact?",
		HelperText:   "What changed because of your work?",
		DisplayOrder: 4,
	},
	{
		Key:          QuestionMetrics,
		Text:         "Do you have any numbers or data to support this?",
		HelperText:   "Percentages, time saved, revenue, users. Anything quantifiable",
		DisplayOrder: 5,
	},
	{
		Key:          QuestionSkills,
		Text:         "What skills or strengths did this highlight?",
		HelperText:   "Used to generate your tags automatically",
		DisplayOrder: 6,
	},
	{
		Key:          QuestionFreeform,
		Text:         "Anything else worth capturing?",
		HelperText:   "Any additional context or color",
		DisplayOrder: 7,
	},
}

// StructuredKeys are the optional answers that accompany the headline, in
// the order their response rows are written.
var StructuredKeys = []QuestionKey{
	QuestionSituation,
	QuestionAction,
	QuestionResult,
	QuestionMetrics,
	QuestionSkills,
	QuestionFreeform,
}

// QuestionText returns the snapshot text for key and whether the key is known.
func QuestionText(key QuestionKey) (string, bool) {
	for _, q := range Questions {
		if q.Key == key {
			return q.Text, true
		}
	}
	return "", false
}
