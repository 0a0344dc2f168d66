package models

import (
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

// Entry is one user's logged work for one calendar day.
type Entry struct {
	ID          string
	UserID      string
	Date        timex.Date
	SectionType string
	Status      common.EntryStatus
	Summary     Provenance[string]
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
