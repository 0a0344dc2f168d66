// Package services contains the server-side business logic of the
// save-before-synthesize pipeline: resolving the day's entry, persisting
// raw input and synthesis results, and regenerating derived summaries.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/logging"
	"github.com/dmitrijs2005/careermemory/internal/server/config"
	"github.com/dmitrijs2005/careermemory/internal/server/events"
	"github.com/dmitrijs2005/careermemory/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

// Rollup outcomes reported to the Observer.
const (
	RollupOK      = "ok"
	RollupSkipped = "skipped"
	RollupEmpty   = "empty"
	RollupError   = "error"
)

// Observer receives rollup outcomes and ambiguous-write retries.
type Observer interface {
	ObserveRollup(kind, outcome string)
	ObserveStoreRetry(op string)
}

type nopObserver struct{}

func (nopObserver) ObserveRollup(string, string) {}
func (nopObserver) ObserveStoreRetry(string)     {}

// Archiver keeps the raw model output of a synthesis.
type Archiver interface {
	Archive(ctx context.Context, userID, achievementID string, at time.Time, raw string) error
}

// Deps bundles what every service needs. DB is the pool handle used
// outside transactions; it is nil for the in-memory store.
type Deps struct {
	DB          dbx.DBTX
	Tx          dbx.TxRunner
	Repomanager repomanager.RepositoryManager
	Clock       timex.Clock
	Config      *config.Config
	Logger      logging.Logger
	Events      events.Publisher
	Observer    Observer
	Archive     Archiver
}

func (d Deps) withDefaults() Deps {
	if d.Tx == nil {
		d.Tx = dbx.NoTxRunner{}
	}
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if d.Config == nil {
		d.Config = &config.Config{}
		d.Config.LoadDefaults()
	}
	return d
}

func (d Deps) scoped(module string) Deps {
	d.Logger = d.Logger.With("module", module)
	return d
}

// storeCtx bounds a single store round trip.
func (d Deps) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Config.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Config.StoreTimeout)
}

// publish notifies read views; failures are logged only.
func (d Deps) publish(ctx context.Context, userID, reason string, kinds ...events.Kind) {
	ev := events.Event{UserID: userID, Kinds: kinds, Reason: reason, At: d.Clock.Now()}
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.Logger.Warn(ctx, "publish event failed", "reason", reason, "user_id", userID, "error", err)
	}
}

// isTimeout reports whether err leaves the outcome of a write unknown.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, common.ErrStoreTimeout)
}
