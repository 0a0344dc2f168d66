// Package flow drives one user interaction of the achievement form:
// input, processing, then review or error. Raw input is made durable
// before the model is called, and a failed synthesis can be retried
// against the same stored achievement.
package flow

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/server/services"
)

type State string

const (
	StateInput      State = "input"
	StateProcessing State = "processing"
	StateReview     State = "review"
	StateError      State = "error"
	// StateDone means the user saved or skipped and left the form.
	StateDone State = "done"
)

var transitions = map[State][]State{
	StateInput:      {StateProcessing},
	StateProcessing: {StateInput, StateReview, StateError},
	StateError:      {StateProcessing, StateDone},
	StateReview:     {StateInput, StateDone},
}

func canMove(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SaveError reports that raw input could not be stored. The flow is back
// in the input state with the draft intact.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return "saving input: " + e.Err.Error() }
func (e *SaveError) Unwrap() error { return e.Err }

// SynthesisError reports that raw input is stored but the model call or
// saving its result failed. AchievementID and EntryID are kept for Retry.
type SynthesisError struct {
	AchievementID string
	EntryID       string
	Err           error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis of achievement %s: %v", e.AchievementID, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Flow is one session of the form. Its fields are guarded by mu; the
// processing state acts as the busy flag so a long model call never holds
// the lock.
type Flow struct {
	mu sync.Mutex

	id     string
	userID string

	state         State
	draft         services.RawInput
	entryID       string
	achievementID string
	result        *models.SynthesisResult
	lastErr       error
	updatedAt     time.Time
}

func newFlow(id, userID string, now time.Time) *Flow {
	return &Flow{id: id, userID: userID, state: StateInput, updatedAt: now}
}

func (f *Flow) ID() string     { return f.id }
func (f *Flow) UserID() string { return f.userID }

// Snapshot is a copy of a flow's state safe to hand out.
type Snapshot struct {
	ID            string
	UserID        string
	State         State
	Draft         services.RawInput
	EntryID       string
	AchievementID string
	Result        *models.SynthesisResult
	Error         string
	UpdatedAt     time.Time
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		ID:            f.id,
		UserID:        f.userID,
		State:         f.state,
		Draft:         copyDraft(f.draft),
		EntryID:       f.entryID,
		AchievementID: f.achievementID,
		UpdatedAt:     f.updatedAt,
	}
	if f.result != nil {
		r := *f.result
		s.Result = &r
	}
	if f.lastErr != nil {
		s.Error = f.lastErr.Error()
	}
	return s
}

func copyDraft(d services.RawInput) services.RawInput {
	d.Answers = maps.Clone(d.Answers)
	return d
}

// move switches from one state to another. The caller must hold f.mu.
func (f *Flow) move(from, to State, now time.Time) error {
	if f.state != from || !canMove(from, to) {
		return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, f.state, to)
	}
	f.state = to
	f.updatedAt = now
	return nil
}
