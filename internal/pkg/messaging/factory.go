package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverNATS   = "nats"
	DriverNSQ    = "nsq"
	DriverKafka  = "kafka"
	DriverMemory = "memory"

	DriverGooglePubSub = "google-pubsub"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions groups per-driver settings. Only the selected driver's
// section is read.
type FactoryOptions struct {
	NATS   NATSConfig
	NSQ    NSQConfig
	Kafka  KafkaConfig
	PubSub PubSubConfig
}

// NewFromDriver builds the Messaging implementation named by driver.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverNSQ:
		return NewNSQ(opts.NSQ)
	case DriverKafka:
		return NewKafka(opts.Kafka)
	case DriverGooglePubSub:
		return NewPubSub(ctx, opts.PubSub)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
