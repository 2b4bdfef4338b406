package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

// ReadObligation loads the obligation of a's unit and category dated date.
// It returns nil, nil when none exists; absent obligations are never
// created here. Deadline and IsLate are filled relative to now.
func (s *Usecase) ReadObligation(ctx context.Context, a entity.Assignment, date, now time.Time) (*entity.Obligation, error) {
	ctx, span := s.startSpan(ctx, "ReadObligation")
	defer span.End()

	ob, err := s.repoDB.GetObligation(ctx, a.UnitID, a.CategoryID, date)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get obligation", "unit_id", a.UnitID, "date", date.Format(time.DateOnly), "error", err)
		return nil, &entity.DataAccessError{Op: "get obligation", Err: err}
	}

	deadline, err := DeadlineFor(a, date)
	if err != nil {
		return nil, err
	}
	ob.Deadline = deadline
	ob.IsLate = isLate(*ob, now)

	return ob, nil
}

// isLate is true when an unsubmitted obligation is past its deadline or a
// submitted one came in after it.
func isLate(ob entity.Obligation, now time.Time) bool {
	if ob.IsSubmitted() {
		return ob.SubmittedAt != nil && ob.SubmittedAt.After(ob.Deadline)
	}
	return now.After(ob.Deadline)
}
