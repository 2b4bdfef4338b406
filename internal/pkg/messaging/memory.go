package messaging

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"
)

// ErrMemoryQueueFull is returned by Memory.Publish when a topic's buffer is full.
var ErrMemoryQueueFull = errors.New("messaging: memory queue full")

const (
	memoryQueueSize       = 1024
	memoryMaxRedeliveries = 3
)

// Memory is an in-process broker for single-node deployments and tests.
// Messages published before any consumer starts are buffered. Consumers of
// the same topic compete for messages, as with a NATS queue group.
type Memory struct {
	mu     sync.Mutex
	queues map[string]chan *memoryEnvelope
	seq    uint64
	closed bool
}

type memoryEnvelope struct {
	id       string
	msg      OutgoingMessage
	ts       time.Time
	attempts int
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{queues: make(map[string]chan *memoryEnvelope)}
}

func (m *Memory) queue(topic string) (chan *memoryEnvelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}
	q, ok := m.queues[topic]
	if !ok {
		q = make(chan *memoryEnvelope, memoryQueueSize)
		m.queues[topic] = q
	}
	return q, nil
}

// Close rejects further publishes and consumes. Running consumers exit when
// their context is done.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Publish enqueues msg on topic without blocking.
func (m *Memory) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}

	q, err := m.queue(topic)
	if err != nil {
		return PublishResult{}, err
	}

	m.mu.Lock()
	m.seq++
	env := &memoryEnvelope{id: strconv.FormatUint(m.seq, 10), msg: msg, ts: time.Now()}
	m.mu.Unlock()

	select {
	case q <- env:
		return PublishResult{MessageID: env.id, Topic: topic, Timestamp: env.ts}, nil
	default:
		return PublishResult{}, ErrMemoryQueueFull
	}
}

// Consume delivers messages from topic until ctx is done. A nacked message is
// requeued up to memoryMaxRedeliveries times.
func (m *Memory) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, handler); err != nil {
		return err
	}

	q, err := m.queue(topic)
	if err != nil {
		return err
	}

	co := newConsumeOptions(opts...)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case env := <-q:
					_ = dispatch(ctx, DriverMemory, handler, memoryDelivery(topic, q, env), co.autoAck)
				}
			}
		})
	}
	wg.Wait()

	return ctx.Err()
}

func memoryDelivery(topic string, q chan *memoryEnvelope, env *memoryEnvelope) *delivery {
	return &delivery{
		body:    env.msg.Body,
		key:     env.msg.Key,
		headers: env.msg.Headers,
		id:      env.id,
		topic:   topic,
		ts:      env.ts,
		nack: func(context.Context) error {
			if env.attempts >= memoryMaxRedeliveries {
				return nil
			}
			env.attempts++
			select {
			case q <- env:
				return nil
			default:
				return ErrMemoryQueueFull
			}
		},
	}
}
