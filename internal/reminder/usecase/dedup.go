package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

// AlreadyDispatched reports whether a batch for key was already written for
// the reference-zone calendar day containing now. The day is the one recorded
// in the payload, not the row's created_at.
func (s *Usecase) AlreadyDispatched(ctx context.Context, key entity.DispatchKey, now time.Time) (bool, error) {
	loc, err := s.referenceLocation()
	if err != nil {
		return false, err
	}

	return s.alreadyDispatched(ctx, key, now, loc)
}

func (s *Usecase) alreadyDispatched(ctx context.Context, key entity.DispatchKey, now time.Time, loc *time.Location) (bool, error) {
	ctx, span := s.startSpan(ctx, "AlreadyDispatched")
	defer span.End()

	exists, err := s.repoDB.ExistsNotification(ctx, key, civilDate(now, loc))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check notification", "obligation_id", key.ObligationID, "rule_kind", key.Kind.String(), "escalation_level", key.EscalationLevel, "error", err)
		return false, &entity.DataAccessError{Op: "find notifications today", Err: err}
	}

	return exists, nil
}
