package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.uber.org/atomic"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/stacktrace"
)

// delivery is the Message every driver hands to handlers. Drivers differ only
// in how they fill it and in what ack and nack do.
type delivery struct {
	body    []byte
	key     []byte
	headers []Header
	id      string
	topic   string
	ts      time.Time

	ack  func(ctx context.Context) error
	nack func(ctx context.Context) error

	responded atomic.Bool
}

func (d *delivery) Body() []byte         { return d.body }
func (d *delivery) Key() []byte          { return d.key }
func (d *delivery) Headers() []Header    { return d.headers }
func (d *delivery) ID() string           { return d.id }
func (d *delivery) Topic() string        { return d.topic }
func (d *delivery) Timestamp() time.Time { return d.ts }

func (d *delivery) Header(key string) string {
	for _, h := range d.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Ack acknowledges the message. Only the first Ack or Nack has an effect.
func (d *delivery) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.responded.Swap(true) || d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

// Nack asks for redelivery where the broker supports it.
func (d *delivery) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.responded.Swap(true) || d.nack == nil {
		return nil
	}
	return d.nack(ctx)
}

// dispatch runs handler on d, recovering panics, then settles d when autoAck
// is on and the handler did not settle it itself. Only settle failures are
// returned; handler errors are logged.
func dispatch(ctx context.Context, driver string, handler Handler, d *delivery, autoAck bool) error {
	herr := callWithRecover(ctx, driver, func() error { return handler(ctx, d) })
	if herr != nil {
		slog.WarnContext(ctx, "messaging handler failed", "driver", driver, "topic", d.topic, "error", herr)
	}
	if !autoAck || d.responded.Load() {
		return nil
	}
	if herr == nil {
		return d.Ack(ctx)
	}
	return d.Nack(ctx)
}

func callWithRecover(ctx context.Context, driver string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return fn()
}

func validateConsume(ctx context.Context, topic string, handler Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	return nil
}
