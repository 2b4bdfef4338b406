package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

var (
	// ErrPubSubProjectIDRequired is returned when neither a client nor a project id is configured.
	ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")
	// ErrPubSubClientRequired is returned when the driver has no client.
	ErrPubSubClientRequired = errors.New("messaging: pubsub client is required")
)

// PubSubConfig configures the Google Pub/Sub driver.
type PubSubConfig struct {
	ProjectID string

	// Client is used as is when set. Close still closes it.
	Client *pubsub.Client
	// ClientOptions are passed to pubsub.NewClient.
	ClientOptions []option.ClientOption

	// EnableMessageOrdering maps OutgoingMessage.Key to the ordering key.
	// Subscriptions must have ordering enabled for it to matter.
	EnableMessageOrdering bool
}

// PubSub publishes to topics and consumes from subscriptions.
type PubSub struct {
	client   *pubsub.Client
	ordering bool

	mu         sync.Mutex
	closed     bool
	publishers map[string]*pubsub.Publisher
}

// NewPubSub builds the driver, creating a client unless one is given.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	ps := &PubSub{
		client:     cfg.Client,
		ordering:   cfg.EnableMessageOrdering,
		publishers: map[string]*pubsub.Publisher{},
	}
	if ps.client != nil {
		return ps, nil
	}
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectIDRequired
	}

	c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
	}
	ps.client = c

	return ps, nil
}

// Close flushes and stops every publisher, then closes the client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pubs := make([]*pubsub.Publisher, 0, len(p.publishers))
	for _, pub := range p.publishers {
		pubs = append(pubs, pub)
	}
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}

	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Publish sends msg to the topic (id or full resource name) and waits for the server id.
func (p *PubSub) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}

	pub, err := p.publisher(topic)
	if err != nil {
		return PublishResult{}, err
	}

	id, err := pub.Publish(ctx, pubsubMessage(msg, p.ordering)).Get(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return PublishResult{MessageID: id, Topic: topic}, nil
}

// Consume receives from a subscription. The subscription is the one set with
// WithSubscription, or topic itself when none is set.
func (p *PubSub) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, handler); err != nil {
		return err
	}
	if err := p.ensureOpen(); err != nil {
		return err
	}

	co := newConsumeOptions(opts...)
	subscription := pubsubSubscription(topic, co)

	sub := p.client.Subscriber(subscription)
	sub.ReceiveSettings.NumGoroutines = co.concurrency
	if co.maxInFlight > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = co.maxInFlight
	}

	err := sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		_ = dispatch(ctx, DriverGooglePubSub, handler, pubsubDelivery(topic, m), co.autoAck)
	})
	if err != nil {
		return fmt.Errorf("messaging: pubsub receive %s: %w", subscription, err)
	}

	return ctx.Err()
}

func (p *PubSub) publisher(topic string) (*pubsub.Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil, ErrPubSubClientRequired
	}
	if p.closed {
		return nil, io.ErrClosedPipe
	}
	if pub, ok := p.publishers[topic]; ok {
		return pub, nil
	}

	pub := p.client.Publisher(topic)
	pub.EnableMessageOrdering = p.ordering
	p.publishers[topic] = pub
	return pub, nil
}

func (p *PubSub) ensureOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return ErrPubSubClientRequired
	}
	if p.closed {
		return io.ErrClosedPipe
	}
	return nil
}

func pubsubSubscription(topic string, co consumeOptions) string {
	if co.subscription != "" {
		return co.subscription
	}
	return topic
}

// pubsubMessage carries headers as attributes. Repeated keys keep the last value.
func pubsubMessage(msg OutgoingMessage, ordering bool) *pubsub.Message {
	m := &pubsub.Message{Data: msg.Body}
	if ordering {
		m.OrderingKey = string(msg.Key)
	}
	if len(msg.Headers) > 0 {
		m.Attributes = make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			if h.Key != "" {
				m.Attributes[h.Key] = string(h.Value)
			}
		}
	}
	return m
}

func pubsubDelivery(topic string, m *pubsub.Message) *delivery {
	d := &delivery{
		body:  m.Data,
		id:    m.ID,
		topic: topic,
		ts:    m.PublishTime,
	}
	if m.OrderingKey != "" {
		d.key = []byte(m.OrderingKey)
	}
	for k, v := range m.Attributes {
		d.headers = append(d.headers, Header{Key: k, Value: []byte(v)})
	}

	d.ack = func(context.Context) error { m.Ack(); return nil }
	d.nack = func(context.Context) error { m.Nack(); return nil }
	return d
}
