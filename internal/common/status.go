package common

// SynthesisStatus is the lifecycle of an achievement's AI round-trip.
type SynthesisStatus string

const (
	SynthesisPending    SynthesisStatus = "pending"
	SynthesisProcessing SynthesisStatus = "processing"
	SynthesisComplete   SynthesisStatus = "complete"
	SynthesisError      SynthesisStatus = "error"
)

// EntryStatus is the lifecycle of a day entry.
type EntryStatus string

const (
	EntryDraft    EntryStatus = "draft"
	EntryComplete EntryStatus = "complete"
)

// ProjectStatus is the lifecycle of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

const (
	SectionProfessional = "professional"
	SourceManual        = "manual"
)

// TagVocabulary is the set of system tag slugs the synthesis model may suggest.
var TagVocabulary = []string{
	"leadership",
	"cross_functional",
	"shipped_product",
	"cost_reduction",
	"revenue_impact",
	"process_improvement",
	"mentorship",
	"communication",
	"problem_solving",
	"data_analysis",
	"project_management",
	"stakeholder_management",
}
