package models

import (
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
)

type Project struct {
	ID          string
	UserID      string
	Name        string
	Description *string
	Status      common.ProjectStatus
	IsHighlight bool

	Summary             Provenance[string]
	SummaryLastEditedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// ManuallyEdited reports whether automatic rollups must leave the summary alone.
func (p *Project) ManuallyEdited() bool {
	return p.SummaryLastEditedAt != nil
}
