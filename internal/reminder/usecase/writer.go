package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/valueobject"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/samber/lo"
)

type DispatchInput struct {
	Assignment      entity.Assignment
	Obligation      entity.Obligation
	Kind            entity.RuleKind
	EscalationLevel int
	Recipients      []int64
	// Now is the reference time the dispatch was decided at.
	Now time.Time
	// Day is the reference-zone calendar day the dispatch counts for in
	// deduplication. Zero derives it from Now.
	Day time.Time
}

// WriteDispatch writes one outbox record per recipient and bumps the
// obligation's reminder count once. It returns the number of records
// written; an empty recipient set writes nothing.
func (s *Usecase) WriteDispatch(ctx context.Context, in DispatchInput) (int, error) {
	ctx, span := s.startSpan(ctx, "WriteDispatch")
	defer span.End()

	if len(in.Recipients) == 0 {
		return 0, nil
	}

	if in.Day.IsZero() {
		loc, err := s.referenceLocation()
		if err != nil {
			return 0, err
		}
		in.Day = civilDate(in.Now, loc)
	}
	written := s.clock.Now().UTC()

	key := entity.DispatchKey{
		ObligationID:    in.Obligation.ID,
		Kind:            in.Kind,
		EscalationLevel: in.EscalationLevel,
	}
	title, body := buildMessage(in.Assignment, in.Obligation, in.Kind, in.EscalationLevel, in.Now)

	records := make([]entity.NotificationRecord, 0, len(in.Recipients))
	for _, userID := range in.Recipients {
		records = append(records, entity.NotificationRecord{
			ID:        s.uid.Generate(),
			UserID:    userID,
			Type:      key.Type(),
			Title:     title,
			Body:      body,
			Payload:   dispatchPayload(in),
			CreatedAt: written,
		})
	}

	if err := s.repoDB.CreateDispatch(ctx, entity.Dispatch{Key: key, Records: records, SentAt: written}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create dispatch", "obligation_id", key.ObligationID, "rule_kind", key.Kind.String(), "escalation_level", key.EscalationLevel, "error", err)
		return 0, &entity.DataAccessError{Op: "write notifications", Err: err}
	}

	if s.repoMessaging != nil && s.cfg.GetBool("reminder.publish_events") {
		if err := s.repoMessaging.PublishNotificationCreated(ctx, NotificationCreatedEvent{
			NotificationIDs: lo.Map(records, func(r entity.NotificationRecord, _ int) int64 { return r.ID }),
			ObligationID:    in.Obligation.ID,
			UnitID:          in.Assignment.UnitID,
			ReportDate:      in.Obligation.ReportDate,
			Kind:            in.Kind,
			EscalationLevel: in.EscalationLevel,
			Type:            key.Type(),
		}); err != nil {
			slog.WarnContext(ctx, "failed to publish notification created", "obligation_id", key.ObligationID, "error", err)
		}
	}

	return len(records), nil
}

func dispatchPayload(in DispatchInput) valueobject.JSONMap {
	payload := valueobject.JSONMap{
		"obligation_id":    in.Obligation.ID,
		"unit_id":          in.Assignment.UnitID,
		"report_date":      in.Obligation.ReportDate.Format(time.DateOnly),
		"deadline":         in.Obligation.Deadline.UTC().Format(time.RFC3339),
		"rule_kind":        in.Kind.String(),
		"escalation_level": in.EscalationLevel,
		"dispatch_day":     in.Day.Format(time.DateOnly),
	}
	if in.Assignment.CategoryID != nil {
		payload["category_id"] = *in.Assignment.CategoryID
	}
	return payload
}
