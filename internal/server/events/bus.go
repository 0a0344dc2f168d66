package events

import (
	"context"
	"sync"
)

// Bus is an in-process pub/sub scoped per user. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan Event
	nextID int
}

func NewBus() *Bus {
	return &Bus{subs: map[string]map[int]chan Event{}}
}

// Subscribe returns a channel receiving userID's events and a func that
// removes the subscription. The channel is not closed on cancel.
func (b *Bus) Subscribe(userID string, bufSize int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan Event, bufSize)
	if _, ok := b.subs[userID]; !ok {
		b.subs[userID] = map[int]chan Event{}
	}
	b.subs[userID][id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if conns, ok := b.subs[userID]; ok {
			delete(conns, id)
			if len(conns) == 0 {
				delete(b.subs, userID)
			}
		}
	}
}

func (b *Bus) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions of userID.
func (b *Bus) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
