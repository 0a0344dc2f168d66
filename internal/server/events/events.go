// Package events tells interested read views that entities of some kind
// changed for a user, so they can refetch.
package events

import (
	"context"
	"errors"
	"time"
)

// Kind names a family of read views.
type Kind string

const (
	KindEntries      Kind = "entries"
	KindAchievements Kind = "achievements"
	KindProjects     Kind = "projects"
	KindStats        Kind = "stats"
	KindHighlights   Kind = "highlights"
)

// Event reports that the listed kinds changed for UserID. Reason is a short
// machine-readable cause such as "raw_input_saved".
type Event struct {
	UserID string    `json:"user_id"`
	Kinds  []Kind    `json:"kinds"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
