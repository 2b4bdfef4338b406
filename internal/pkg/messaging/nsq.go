package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var (
	// ErrNSQChannelRequired is returned when Consume is called without WithChannel.
	ErrNSQChannelRequired = errors.New("messaging: nsq channel is required")
	// ErrNSQProducerRequired is returned by Publish when no nsqd address is configured.
	ErrNSQProducerRequired = errors.New("messaging: nsq producer address is required")
	// ErrNSQConsumerAddrsRequired is returned when neither nsqd nor lookupd addresses are set.
	ErrNSQConsumerAddrsRequired = errors.New("messaging: nsq consumer nsqd/lookupd addresses are required")
)

// NSQConfig configures the NSQ driver.
type NSQConfig struct {
	ProducerAddr         string
	ConsumerNSQDAddrs    []string
	ConsumerLookupdAddrs []string
}

// NSQ publishes through one nsqd and consumes topic/channel pairs.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer

	mu        sync.Mutex
	consumers []*nsq.Consumer
	closed    bool
}

// NewNSQ builds the driver. The producer is only created when ProducerAddr is set.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	n := &NSQ{cfg: cfg}

	if cfg.ProducerAddr != "" {
		p, err := nsq.NewProducer(cfg.ProducerAddr, nsq.NewConfig())
		if err != nil {
			return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
		}
		p.SetLoggerLevel(nsq.LogLevelError)
		n.producer = p
	}

	return n, nil
}

// Close stops every consumer, then the producer.
func (n *NSQ) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	consumers := n.consumers
	n.consumers = nil
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}
	if n.producer != nil {
		n.producer.Stop()
	}
	return nil
}

// Publish sends msg.Body to topic. NSQ has no headers; they are dropped.
func (n *NSQ) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}
	if n.producer == nil {
		return PublishResult{}, ErrNSQProducerRequired
	}

	if err := n.producer.Publish(topic, msg.Body); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return PublishResult{Topic: topic, Timestamp: time.Now()}, nil
}

// Consume reads topic on the WithChannel channel until ctx is done.
func (n *NSQ) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, handler); err != nil {
		return err
	}
	if len(n.cfg.ConsumerNSQDAddrs) == 0 && len(n.cfg.ConsumerLookupdAddrs) == 0 {
		return ErrNSQConsumerAddrsRequired
	}

	co := newConsumeOptions(opts...)
	if co.channel == "" {
		return ErrNSQChannelRequired
	}

	ccfg := nsq.NewConfig()
	ccfg.MaxInFlight = max(co.maxInFlight, co.concurrency)

	consumer, err := nsq.NewConsumer(topic, co.channel, ccfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)
	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()
		return dispatch(ctx, DriverNSQ, handler, nsqDelivery(topic, m), co.autoAck)
	}), co.concurrency)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return io.ErrClosedPipe
	}
	n.consumers = append(n.consumers, consumer)
	n.mu.Unlock()

	if len(n.cfg.ConsumerLookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.cfg.ConsumerLookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.cfg.ConsumerNSQDAddrs)
	}
	if err != nil {
		consumer.Stop()
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

func nsqDelivery(topic string, m *nsq.Message) *delivery {
	return &delivery{
		body:  m.Body,
		id:    fmt.Sprintf("%x", m.ID),
		topic: topic,
		ts:    time.Unix(0, m.Timestamp),
		ack: func(context.Context) error {
			m.Finish()
			return nil
		},
		nack: func(context.Context) error {
			m.Requeue(-1)
			return nil
		},
	}
}
