package messaging

type consumeOptions struct {
	concurrency int
	autoAck     bool
	// group is the Kafka consumer group.
	group string
	// channel is the NSQ channel.
	channel string
	// queueGroup is the NATS queue group.
	queueGroup string
	// subscription is the Pub/Sub subscription.
	subscription string
	maxInFlight  int
}

// ConsumeOption configures Consume.
type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	if co.concurrency < 1 {
		co.concurrency = 1
	}
	return co
}

// WithConcurrency sets how many handlers run in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

// WithAutoAck acks on nil handler error and nacks otherwise.
func WithAutoAck(autoAck bool) ConsumeOption {
	return func(o *consumeOptions) { o.autoAck = autoAck }
}

// WithGroup sets the Kafka consumer group.
func WithGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.group = group }
}

// WithChannel sets the NSQ channel.
func WithChannel(channel string) ConsumeOption {
	return func(o *consumeOptions) { o.channel = channel }
}

// WithQueueGroup sets the NATS queue group.
func WithQueueGroup(queueGroup string) ConsumeOption {
	return func(o *consumeOptions) { o.queueGroup = queueGroup }
}

// WithMaxInFlight caps unacknowledged messages (NSQ).
func WithMaxInFlight(n int) ConsumeOption {
	return func(o *consumeOptions) { o.maxInFlight = n }
}

// WithSubscription sets the Pub/Sub subscription to receive from.
func WithSubscription(subscription string) ConsumeOption {
	return func(o *consumeOptions) { o.subscription = subscription }
}
