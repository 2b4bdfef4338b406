package mq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/messaging"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/usecase"
	"github.com/lakshaytakkar/team-portal-sub003/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// PublishNotificationCreated announces a committed outbox batch. Messages are
// keyed by obligation so one obligation's batches stay ordered on Kafka.
func (m *Messaging) PublishNotificationCreated(ctx context.Context, msg usecase.NotificationCreatedEvent) error {
	ctx, span := m.ins.Tracer("reminder.outbound.mq").Start(ctx, "PublishNotificationCreated")
	defer span.End()

	body, err := json.Marshal(event.ReminderNotificationCreatedMessage{
		NotificationIDs: msg.NotificationIDs,
		ObligationID:    msg.ObligationID,
		UnitID:          msg.UnitID,
		ReportDate:      msg.ReportDate.Format(time.DateOnly),
		RuleKind:        msg.Kind.String(),
		EscalationLevel: msg.EscalationLevel,
		Type:            msg.Type.String(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.ReminderNotificationCreatedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(msg.ObligationID, 10)),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
