package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

type EntriesRepository struct {
	s *Store
}

func NewEntriesRepository(s *Store) *EntriesRepository {
	return &EntriesRepository{s: s}
}

func (r *EntriesRepository) FindByDate(ctx context.Context, userID string, date timex.Date, section string) (*models.Entry, error) {
	var found *models.Entry
	err := r.s.read(ctx, func() {
		for _, e := range r.s.entries {
			if e.UserID == userID && e.Date == date && e.SectionType == section && e.DeletedAt == nil {
				found = copyEntry(e)
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *EntriesRepository) Get(ctx context.Context, userID, entryID string) (*models.Entry, error) {
	var found *models.Entry
	err := r.s.read(ctx, func() {
		if e, ok := r.s.entries[entryID]; ok && e.UserID == userID && e.DeletedAt == nil {
			found = copyEntry(e)
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

// Insert enforces the same one-live-entry-per-day rule as the SQL partial
// unique index.
func (r *EntriesRepository) Insert(ctx context.Context, entry *models.Entry) error {
	return r.s.write(ctx, "entries.Insert", func() error {
		if _, ok := r.s.entries[entry.ID]; ok {
			return common.ErrorAlreadyExists
		}
		for _, e := range r.s.entries {
			if e.UserID == entry.UserID && e.Date == entry.Date && e.SectionType == entry.SectionType && e.DeletedAt == nil {
				return common.ErrorAlreadyExists
			}
		}
		now := r.s.now()
		entry.CreatedAt, entry.UpdatedAt = now, now
		r.s.entries[entry.ID] = copyEntry(entry)
		return nil
	})
}

func (r *EntriesRepository) UpdateSummary(ctx context.Context, userID, entryID, summary string) error {
	return r.s.write(ctx, "entries.UpdateSummary", func() error {
		e, ok := r.s.entries[entryID]
		if !ok || e.UserID != userID || e.DeletedAt != nil {
			return common.ErrorNotFound
		}
		e.Summary.Set(summary)
		e.Summary.SetOriginalOnce(summary)
		e.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *EntriesRepository) ListRecentWithSummary(ctx context.Context, userID string, limit int) ([]*models.Entry, error) {
	var out []*models.Entry
	err := r.s.read(ctx, func() {
		for _, e := range r.s.entries {
			if e.UserID == userID && e.DeletedAt == nil && e.Summary.Current != "" {
				out = append(out, copyEntry(e))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.In(time.UTC).After(out[j].Date.In(time.UTC))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
