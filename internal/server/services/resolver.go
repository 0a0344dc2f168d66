package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

// EntryResolver finds or creates the single entry of a user's day.
type EntryResolver struct {
	Deps
}

func NewEntryResolver(d Deps) *EntryResolver {
	return &EntryResolver{Deps: d.withDefaults().scoped("entry_resolver")}
}

// ResolveToday returns the id of userID's live entry for today's local
// calendar day, creating it when missing. A concurrent creator winning the
// unique (user, date) constraint is treated as already resolved.
func (r *EntryResolver) ResolveToday(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", common.ErrorValidation)
	}
	today := r.Clock.Today()

	if e, err := r.find(ctx, userID, today); err == nil {
		return e.ID, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("error searching entry: %w", err)
	}

	entry := &models.Entry{
		ID:          r.Clock.NewID(),
		UserID:      userID,
		Date:        today,
		SectionType: common.SectionProfessional,
		Status:      common.EntryComplete,
	}

	err := r.writeVerified(ctx, "entries.insert",
		func(ctx context.Context) error {
			return r.Repomanager.Entries(r.DB).Insert(ctx, entry)
		},
		func(ctx context.Context) (bool, error) {
			return exists(r.Repomanager.Entries(r.DB).Get(ctx, userID, entry.ID))
		},
	)
	switch {
	case err == nil:
		r.Logger.Info(ctx, "entry created", "user_id", userID, "entry_id", entry.ID, "date", today.String())
		return entry.ID, nil
	case errors.Is(err, common.ErrorAlreadyExists):
		e, ferr := r.find(ctx, userID, today)
		if ferr != nil {
			return "", fmt.Errorf("error re-reading entry after conflict: %w", ferr)
		}
		r.Logger.Debug(ctx, "entry created concurrently", "user_id", userID, "entry_id", e.ID)
		return e.ID, nil
	default:
		return "", fmt.Errorf("error creating entry: %w", err)
	}
}

func (r *EntryResolver) find(ctx context.Context, userID string, day timex.Date) (*models.Entry, error) {
	ctx, cancel := r.storeCtx(ctx)
	defer cancel()
	return r.Repomanager.Entries(r.DB).FindByDate(ctx, userID, day, common.SectionProfessional)
}

// exists maps a lookup result to "found" for write verification.
func exists[T any](_ T, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}
