package pgxcasbin

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/casbin/casbin/v3/persist"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

const defaultChannel = "iam_casbin_psql_watcher"

var _ persist.Watcher = (*Watcher)(nil)

// Watcher listens on a Postgres channel and invokes the update callback for
// every notification. Reconnects back off from 200ms up to 5s.
type Watcher struct {
	pool    *pgxpool.Pool
	channel string
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.RWMutex
	callback func(string)
}

// NewWatcher starts listening on channel ("" selects the default channel).
// The listener stops when ctx is done or Close is called.
func NewWatcher(ctx context.Context, pool *pgxpool.Pool, channel string) *Watcher {
	if channel == "" {
		channel = defaultChannel
	}

	lctx, cancel := context.WithCancel(ctx)
	w := &Watcher{pool: pool, channel: channel, cancel: cancel, done: make(chan struct{})}

	go w.run(lctx)

	return w
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	backoff := retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := w.listen(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		slog.WarnContext(ctx, "pgxcasbin listener interrupted, reconnecting", "channel", w.channel, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "pgxcasbin listener stopped", "channel", w.channel, "error", err)
	}
}

func (w *Watcher) listen(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "listen "+pgx.Identifier{w.channel}.Sanitize()); err != nil {
		return errors.Join(ErrListen, err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		w.mu.RLock()
		cb := w.callback
		w.mu.RUnlock()

		if cb == nil {
			slog.WarnContext(ctx, "pgxcasbin notification without callback", "channel", w.channel)
			continue
		}
		cb(n.Payload)
	}
}

// SetUpdateCallback registers the function run for each notification.
func (w *Watcher) SetUpdateCallback(cb func(string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = cb
	return nil
}

// Update notifies every listener, this process included, that policies changed.
func (w *Watcher) Update() error {
	if _, err := w.pool.Exec(context.Background(), "select pg_notify($1, $2)", w.channel, "reload"); err != nil {
		return errors.Join(ErrNotify, err)
	}
	return nil
}

// Close stops the listener and waits for it to exit.
func (w *Watcher) Close() {
	w.cancel()
	<-w.done
}

// ReloadCallback returns a callback that reloads the whole policy set on
// every notification, whatever its payload.
func ReloadCallback(loader interface{ LoadPolicy() error }) func(string) {
	return func(payload string) {
		if err := loader.LoadPolicy(); err != nil {
			slog.Error("pgxcasbin failed to reload policy", "payload", payload, "error", err)
			return
		}
		slog.Info("pgxcasbin policy reloaded")
	}
}
