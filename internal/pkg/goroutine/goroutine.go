// Package goroutine hosts long-lived background tasks (consumers, the
// scheduler loop) with a bounded number of slots and panic recovery.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

var (
	// ErrManagerClosed is returned by Go after Wait has been called.
	ErrManagerClosed = errors.New("goroutine: manager closed")

	// ErrLimitReached is returned by Go when every slot is taken.
	ErrLimitReached = errors.New("goroutine: limit reached")
)

// Manager runs tasks in goroutines and collects their errors.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu     sync.Mutex
	errs   []error
	closed bool
}

// NewManager creates a Manager that runs at most maxGoroutine tasks at once.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go starts f in its own goroutine. name identifies the task in logs and in
// the error returned by Wait. A panic inside f is recovered and reported as
// an error for that task.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	if g == nil {
		return ErrManagerClosed
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager is closed, task not started", "task", name)
		return ErrManagerClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.mu.Unlock()
		slog.WarnContext(ctx, "goroutine limit reached, task not started", "task", name)
		return ErrLimitReached
	}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() { <-g.sema }()

		if err := g.run(ctx, name, f); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, fmt.Errorf("%s: %w", name, err))
			g.mu.Unlock()
		}
	}()

	return nil
}

func (g *Manager) run(ctx context.Context, name string, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("panic: %v", rvr)
		}
	}()

	if ctx.Err() != nil {
		slog.WarnContext(ctx, "goroutine canceled before start", "task", name, "because", ctx.Err())
		return nil
	}

	return f(ctx)
}

// Wait stops accepting new tasks, blocks until running ones return and
// joins their errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
