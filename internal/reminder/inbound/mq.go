package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goroutine"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/messaging"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/uid"
	"github.com/lakshaytakkar/team-portal-sub003/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.reminder.consumer_names")

	var consumers = []struct {
		name               string
		topic              string // destination where publisher sent message
		nsqConsumerName    string // for nsq
		natsConsumerName   string // for nats
		kafkaConsumerName  string // for kafka
		pubsubSubscription string // for google pubsub
		handler            messaging.Handler
	}{
		{
			name:               event.ReminderRunRequestedConsumerScheduler,
			topic:              event.ReminderRunRequestedDestination,
			nsqConsumerName:    event.ReminderRunRequestedConsumerScheduler,
			natsConsumerName:   event.ReminderRunRequestedConsumerScheduler,
			kafkaConsumerName:  event.ReminderRunRequestedConsumerScheduler,
			pubsubSubscription: event.ReminderRunRequestedConsumerScheduler,
			handler:            mqHandler.ReminderRunRequested,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) == 0 || !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		err := routine.Go(ctx, consumer.name, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithChannel(consumer.nsqConsumerName),
				messaging.WithQueueGroup(consumer.natsConsumerName),
				messaging.WithGroup(consumer.kafkaConsumerName),
				messaging.WithSubscription(consumer.pubsubSubscription),
				messaging.WithAutoAck(true),
				// runs are single flight, more workers only contend on the lock
				messaging.WithConcurrency(1),
				messaging.WithMaxInFlight(1),
			)
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to start consumer", "consumer", consumer.name, "error", err)
		}
	}
}
