package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// retryBackoff is the pause between write attempts.
var retryBackoff = 100 * time.Millisecond

// writeVerified runs write with a store timeout. When an attempt times out
// the outcome is ambiguous, so verify is asked whether the write landed
// before trying again; row ids are generated up front, which makes the
// query-back meaningful. Other errors are returned as is.
func (d Deps) writeVerified(ctx context.Context, op string, write func(ctx context.Context) error, verify func(ctx context.Context) (bool, error)) error {
	attempts := d.Config.StoreWriteAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(retryBackoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			landed, err := d.verify(ctx, verify)
			if err != nil {
				return fmt.Errorf("%s: verify: %w", op, err)
			}
			if landed {
				d.Logger.Info(ctx, "ambiguous write had landed", "op", op, "attempt", attempt)
				return nil
			}
			d.Observer.ObserveStoreRetry(op)
			d.Logger.Warn(ctx, "retrying store write", "op", op, "attempt", attempt)
		}

		wctx, cancel := d.storeCtx(ctx)
		err := write(wctx)
		cancel()

		if err == nil {
			return nil
		}
		if isTimeout(err) && ctx.Err() == nil {
			return retry.RetryableError(fmt.Errorf("%s: %w", op, err))
		}
		return fmt.Errorf("%s: %w", op, err)
	})
	if err == nil || !isTimeout(err) || ctx.Err() != nil {
		return err
	}

	// The last attempt may have landed too.
	if landed, verr := d.verify(ctx, verify); verr == nil && landed {
		return nil
	}
	return err
}

func (d Deps) verify(ctx context.Context, verify func(ctx context.Context) (bool, error)) (bool, error) {
	vctx, cancel := d.storeCtx(ctx)
	defer cancel()
	return verify(vctx)
}
