package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrUnsupported is returned when the selected broker cannot honor a request.
	ErrUnsupported = errors.New("messaging: unsupported operation")

	// ErrTopicRequired is returned when the destination or source is empty.
	ErrTopicRequired = errors.New("messaging: topic is required")

	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
)

// Messaging is a broker client that can both publish and consume.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Publisher sends messages to a topic (subject for NATS).
type Publisher interface {
	Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer blocks delivering messages from topic to handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one message. With auto-ack enabled a nil return acks the
// message and an error nacks it.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to publish.
type OutgoingMessage struct {
	Body []byte
	// Key is the partition key for Kafka. Other brokers ignore it.
	Key []byte
	// Headers are dropped by brokers without header support (NSQ).
	Headers []Header
}

// Header is one message header.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the broker reported back.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Key() []byte
	Headers() []Header
	// Header returns the first value for key, or "".
	Header(key string) string
	ID() string
	Topic() string
	Timestamp() time.Time

	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}
