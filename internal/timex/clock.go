package timex

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time, the user's local calendar day and
// client-side identifiers.
type Clock interface {
	Now() time.Time
	Today() Date
	NewID() string
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

// LoadLocation resolves a configured timezone name; "" and "Local" mean
// the process's local zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func (c *SystemClock) Now() time.Time { return time.Now().In(c.loc) }
func (c *SystemClock) Today() Date    { return DateOf(c.Now()) }
func (c *SystemClock) NewID() string  { return uuid.NewString() }

// FixedClock is a manually driven Clock for tests. IDs are deterministic
// UUIDs derived from a counter.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
	seq int
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Today() Date {
	return DateOf(c.Now())
}

func (c *FixedClock) NewID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("fixed-%d", c.seq))).String()
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
