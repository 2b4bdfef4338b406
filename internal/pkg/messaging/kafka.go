package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrKafkaBrokersRequired is returned when no brokers are configured.
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
	// ErrKafkaGroupRequired is returned when Consume is called without WithGroup.
	ErrKafkaGroupRequired = errors.New("messaging: kafka consumer group is required")
)

// KafkaConfig configures the Kafka driver.
type KafkaConfig struct {
	Brokers []string
	// MaxBytes caps a single fetch. Defaults to 10MB.
	MaxBytes int
}

// Kafka publishes with one writer per topic and consumes with group readers.
type Kafka struct {
	cfg KafkaConfig

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	closed  bool
}

// NewKafka validates cfg. Connections are opened lazily.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10e6
	}

	return &Kafka{cfg: cfg, writers: map[string]*kafka.Writer{}}, nil
}

// Close flushes and closes every writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true

	var errs []error
	for _, w := range k.writers {
		errs = append(errs, w.Close())
	}
	k.writers = nil
	return errors.Join(errs...)
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, io.ErrClosedPipe
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	k.writers[topic] = w
	return w, nil
}

// Publish writes msg to topic, partitioned by msg.Key.
func (k *Kafka) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}

	w, err := k.writer(topic)
	if err != nil {
		return PublishResult{}, err
	}

	km := kafka.Message{Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for _, h := range msg.Headers {
		if h.Key != "" {
			km.Headers = append(km.Headers, kafka.Header{Key: h.Key, Value: h.Value})
		}
	}

	if err := w.WriteMessages(ctx, km); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return PublishResult{Topic: topic, Timestamp: km.Time}, nil
}

// Consume reads topic as part of the WithGroup consumer group. Ack commits
// the offset; Nack leaves it uncommitted so the message is redelivered after
// a rebalance or restart.
func (k *Kafka) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, handler); err != nil {
		return err
	}

	co := newConsumeOptions(opts...)
	if co.group == "" {
		return ErrKafkaGroupRequired
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		GroupID:  co.group,
		Topic:    topic,
		MaxBytes: k.cfg.MaxBytes,
	})

	msgCh := make(chan kafka.Message)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(msgCh)
		for {
			m, err := reader.FetchMessage(gctx)
			if err != nil {
				return err
			}
			select {
			case msgCh <- m:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for range co.concurrency {
		g.Go(func() error {
			for m := range msgCh {
				if err := dispatch(gctx, DriverKafka, handler, kafkaDelivery(reader, m), co.autoAck); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	cerr := reader.Close()

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ctx.Err(), cerr)
	}
	if err != nil {
		err = fmt.Errorf("messaging: kafka consume: %w", err)
	}
	return errors.Join(err, cerr)
}

func kafkaDelivery(reader *kafka.Reader, m kafka.Message) *delivery {
	d := &delivery{
		body:  m.Value,
		key:   m.Key,
		id:    strconv.Itoa(m.Partition) + ":" + strconv.FormatInt(m.Offset, 10),
		topic: m.Topic,
		ts:    m.Time,
	}
	for _, h := range m.Headers {
		d.headers = append(d.headers, Header{Key: h.Key, Value: h.Value})
	}

	d.ack = func(ctx context.Context) error { return reader.CommitMessages(ctx, m) }
	return d
}
