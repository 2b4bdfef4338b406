package runlock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Local is an in-process Locker used when no Redis is configured.
type Local struct {
	mu    sync.Mutex
	held  map[string]localEntry
	nowFn func() time.Time
}

type localEntry struct {
	token   string
	expires time.Time
}

// NewLocal returns an empty in-process Locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]localEntry), nowFn: time.Now}
}

// Acquire takes key unless an unexpired lease already holds it.
func (l *Local) Acquire(_ context.Context, key string, ttl time.Duration) (*Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, ErrNotAcquired
	}

	token := uuid.NewString()
	l.held[key] = localEntry{token: token, expires: now.Add(ttl)}

	return &Lease{
		Key:   key,
		Token: token,
		release: func(context.Context) error {
			l.mu.Lock()
			defer l.mu.Unlock()

			if e, ok := l.held[key]; !ok || e.token != token {
				return ErrNotHeld
			}
			delete(l.held, key)
			return nil
		},
		extend: func(_ context.Context, ttl time.Duration) error {
			l.mu.Lock()
			defer l.mu.Unlock()

			now := l.nowFn()
			e, ok := l.held[key]
			if !ok || e.token != token || !now.Before(e.expires) {
				return ErrNotHeld
			}
			l.held[key] = localEntry{token: token, expires: now.Add(ttl)}
			return nil
		},
	}, nil
}
