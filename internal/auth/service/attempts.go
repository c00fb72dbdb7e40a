package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/siteadmin/pkg/kv"
)

// Defaults for the login attempt tracker.
const (
	DefaultMaxAttempts     = 5
	DefaultAttemptWindow   = 60 * time.Second
	DefaultLockoutDuration = 300 * time.Second
)

// AttemptTracker counts failures per identity in the shared key-value store
// and locks the identity out once the count reaches Threshold.
//
// An identity is CLEAR (no keys), COUNTING (counter below Threshold) or
// LOCKED (lock key present). The counter window slides on every failure; the
// lock has its own TTL and outlives the counter. A success deletes both.
type AttemptTracker struct {
	KV        kv.Store
	Purpose   string // key namespace, e.g. "login"
	Threshold int64
	Window    time.Duration
	LockTTL   time.Duration
	Timeout   time.Duration // per store round trip; zero means none
}

func (t *AttemptTracker) counterKey(identity string) string {
	return t.Purpose + ":attempts:" + identity
}

func (t *AttemptTracker) lockKey(identity string) string {
	return t.Purpose + ":lock:" + identity
}

func (t *AttemptTracker) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.Timeout)
}

// IsBlocked reports whether identity may not attempt a login right now. Both
// the counter and the lock are consulted since either may be live alone.
func (t *AttemptTracker) IsBlocked(ctx context.Context, identity string) (bool, error) {
	ctx, cancel := t.bounded(ctx)
	defer cancel()

	locked, err := t.KV.Exists(ctx, t.lockKey(identity))
	if err != nil {
		return false, fmt.Errorf("%w: check lock: %v", ErrStoreUnavailable, err)
	}
	if locked {
		return true, nil
	}

	raw, err := t.KV.Get(ctx, t.counterKey(identity))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read counter: %v", ErrStoreUnavailable, err)
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("%w: counter %q is not an integer", ErrStoreUnavailable, raw)
	}
	return count >= t.Threshold, nil
}

// RecordFailure bumps the counter, re-arming its window, and sets the lock
// once the threshold is reached. It returns the new count.
func (t *AttemptTracker) RecordFailure(ctx context.Context, identity string) (int64, error) {
	ctx, cancel := t.bounded(ctx)
	defer cancel()

	count, err := t.KV.IncrWithExpiry(ctx, t.counterKey(identity), t.Window)
	if err != nil {
		return 0, fmt.Errorf("%w: increment counter: %v", ErrStoreUnavailable, err)
	}

	if count >= t.Threshold {
		if err := t.KV.Set(ctx, t.lockKey(identity), "1", t.LockTTL); err != nil {
			return count, fmt.Errorf("%w: set lock: %v", ErrStoreUnavailable, err)
		}
	}
	return count, nil
}

// RecordSuccess returns identity to CLEAR.
func (t *AttemptTracker) RecordSuccess(ctx context.Context, identity string) error {
	ctx, cancel := t.bounded(ctx)
	defer cancel()

	if err := t.KV.Delete(ctx, t.counterKey(identity), t.lockKey(identity)); err != nil {
		return fmt.Errorf("%w: clear attempts: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Record applies the outcome of one attempt.
func (t *AttemptTracker) Record(ctx context.Context, identity string, success bool) error {
	if success {
		return t.RecordSuccess(ctx, identity)
	}
	_, err := t.RecordFailure(ctx, identity)
	return err
}
