package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrNATSURLRequired is returned when no server URL is configured.
var ErrNATSURLRequired = errors.New("messaging: nats url is required")

// NATSConfig configures the NATS driver.
type NATSConfig struct {
	URL     string
	Name    string
	Options []nats.Option
}

// NATS publishes to subjects and consumes with queue subscriptions.
type NATS struct {
	conn *nats.Conn

	mu     sync.Mutex
	closed bool
}

// NewNATS connects to the configured server.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	opts := cfg.Options
	if cfg.Name != "" {
		opts = append([]nats.Option{nats.Name(cfg.Name)}, opts...)
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Close drains the connection, letting in-flight handlers finish.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true

	err := n.conn.Drain()
	n.conn.Close()
	return err
}

// Publish sends msg to the subject topic and flushes the connection.
func (n *NATS) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}

	nmsg := nats.NewMsg(topic)
	nmsg.Data = msg.Body
	for _, h := range msg.Headers {
		if h.Key != "" {
			nmsg.Header.Add(h.Key, string(h.Value))
		}
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats publish: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats flush: %w", err)
	}

	return PublishResult{Topic: topic, Timestamp: time.Now()}, nil
}

// Consume queue-subscribes to topic. Core NATS has no redelivery so Nack is a no-op.
func (n *NATS) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, handler); err != nil {
		return err
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return io.ErrClosedPipe
	}
	n.mu.Unlock()

	co := newConsumeOptions(opts...)
	msgCh := make(chan *nats.Msg, co.concurrency)

	sub, err := n.conn.QueueSubscribe(topic, co.queueGroup, func(m *nats.Msg) {
		select {
		case msgCh <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for m := range msgCh {
				_ = dispatch(ctx, DriverNATS, handler, natsDelivery(m), co.autoAck)
			}
		})
	}

	<-ctx.Done()

	derr := sub.Drain()
	close(msgCh)
	wg.Wait()

	return errors.Join(ctx.Err(), derr)
}

func natsDelivery(m *nats.Msg) *delivery {
	d := &delivery{body: m.Data, topic: m.Subject, ts: time.Now()}
	for k, values := range m.Header {
		for _, v := range values {
			d.headers = append(d.headers, Header{Key: k, Value: []byte(v)})
		}
	}

	d.ack = func(context.Context) error { return ignoreNoReply(m.Ack()) }
	d.nack = func(context.Context) error { return ignoreNoReply(m.Nak()) }
	return d
}

// ignoreNoReply hides the error core NATS returns when acking a plain
// (non-JetStream) message.
func ignoreNoReply(err error) error {
	if errors.Is(err, nats.ErrMsgNoReply) || errors.Is(err, nats.ErrMsgNotBound) {
		return nil
	}
	return err
}
