package inbound

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/messaging"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/uid"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/usecase"
	"github.com/lakshaytakkar/team-portal-sub003/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) ReminderRunRequested(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("reminder.inbound.mq").Start(ctx, "ReminderRunRequested")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: reminder run requested", "msg_body", string(body))

	var payload event.ReminderRunRequestedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of reminder run requested", "msg_body", string(body), "error", err)
		return nil
	}

	var ref time.Time
	if raw := strings.TrimSpace(payload.ReferenceTime); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			slog.ErrorContext(ctx, "invalid reference time of reminder run requested", "reference_time", raw, "error", err)
			return nil
		}
		ref = parsed
	}

	if err := h.uc.ConsumeRunRequested(ctx, usecase.ConsumeRunRequestedInput{
		ReferenceTime: ref,
		RequestedBy:   payload.RequestedBy,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume reminder run requested", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
