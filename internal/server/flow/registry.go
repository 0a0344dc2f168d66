package flow

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

// Registry keeps live flows keyed by owner and flow id. Sessions expire
// after ttl without access; stored data is unaffected.
type Registry struct {
	flows *cache.Cache
	clock timex.Clock
}

func NewRegistry(ttl time.Duration, clock timex.Clock) *Registry {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := 2 * ttl
	if ttl == cache.NoExpiration {
		cleanup = 0
	}
	return &Registry{flows: cache.New(ttl, cleanup), clock: clock}
}

func key(userID, flowID string) string {
	return userID + "/" + flowID
}

// Start opens a new flow in the input state.
func (r *Registry) Start(userID string) (*Flow, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", common.ErrorValidation)
	}
	f := newFlow(r.clock.NewID(), userID, r.clock.Now())
	r.flows.Set(key(userID, f.id), f, cache.DefaultExpiration)
	return f, nil
}

// Get returns the flow and extends its lifetime. A flow of another user is
// reported as not found.
func (r *Registry) Get(userID, flowID string) (*Flow, error) {
	k := key(userID, flowID)
	v, ok := r.flows.Get(k)
	if !ok {
		return nil, fmt.Errorf("flow %s: %w", flowID, common.ErrorNotFound)
	}
	r.flows.Set(k, v, cache.DefaultExpiration)
	return v.(*Flow), nil
}

func (r *Registry) Remove(userID, flowID string) {
	r.flows.Delete(key(userID, flowID))
}

// Len counts flows, including expired ones not yet cleaned up.
func (r *Registry) Len() int {
	return r.flows.ItemCount()
}
