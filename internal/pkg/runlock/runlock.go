// Package runlock provides short-lived named locks that keep a job from
// running twice at the same time, either within one process or across
// replicas sharing a Redis.
package runlock

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotAcquired is returned by Acquire when another holder owns the key.
	ErrNotAcquired = errors.New("runlock: lock held by another owner")

	// ErrNotHeld is returned by Release and Extend once the lease is no
	// longer owned by its holder.
	ErrNotHeld = errors.New("runlock: lease no longer held")
)

// Locker hands out leases on keys. A lease expires on its own after ttl so a
// crashed holder cannot block the key forever.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error)
}

// Lease is a held lock. Release is safe to call more than once.
type Lease struct {
	Key   string
	Token string

	release func(ctx context.Context) error
	extend  func(ctx context.Context, ttl time.Duration) error
}

// Release gives the key back. Releasing an expired lease reports ErrNotHeld.
func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.release == nil {
		return nil
	}
	fn := l.release
	l.release = nil
	return fn(ctx)
}

// Extend pushes the expiry to ttl from now while the lease is still held.
func (l *Lease) Extend(ctx context.Context, ttl time.Duration) error {
	if l == nil || l.release == nil || l.extend == nil {
		return ErrNotHeld
	}
	return l.extend(ctx, ttl)
}
