package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

const queryListActiveAssignments = `
SELECT a.id, a.unit_id, COALESCE(u.name, ''), a.category_id, a.assigned_user_id,
       a.deadline_time, a.timezone, a.is_active
FROM report_assignments a
LEFT JOIN report_units u ON u.id = a.unit_id
WHERE a.is_active
ORDER BY a.unit_id, a.id`

const queryGetObligation = `
SELECT id, unit_id, category_id, report_date, status, submitted_at,
       reminder_sent_count, last_reminder_sent_at
FROM report_obligations
WHERE unit_id = $1 AND category_id IS NOT DISTINCT FROM $2 AND report_date = $3
ORDER BY id
LIMIT 1`

const queryListGlobalReminderRules = `
SELECT id, unit_id, kind, offset_days, escalation_level, recipients, is_active
FROM reminder_rules
WHERE unit_id IS NULL
ORDER BY id`

const queryListUnitReminderRules = `
SELECT id, unit_id, kind, offset_days, escalation_level, recipients, is_active
FROM reminder_rules
WHERE unit_id = $1
ORDER BY id`

const queryExistsNotification = `
SELECT EXISTS (
  SELECT 1 FROM reminder_notifications
  WHERE type = $1
    AND (payload->>'obligation_id')::BIGINT = $2
    AND (payload->>'escalation_level')::INT = $3
    AND payload->>'dispatch_day' = $4
)`

func (s *DB) ListActiveAssignments(ctx context.Context) (out []entity.Assignment, err error) {
	ctx, span := s.startSpan(ctx, "ListActiveAssignments")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, queryListActiveAssignments)
	if err != nil {
		return nil, s.mapError(err)
	}

	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Assignment, error) {
		var (
			a          entity.Assignment
			categoryID pgtype.Int8
			assignee   pgtype.Int8
		)
		if err := row.Scan(&a.ID, &a.UnitID, &a.UnitName, &categoryID, &assignee, &a.DeadlineTime, &a.Timezone, &a.IsActive); err != nil {
			return a, err
		}
		a.CategoryID = int8Ptr(categoryID)
		a.AssignedUserID = int8Ptr(assignee)
		return a, nil
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetObligation(ctx context.Context, unitID int64, categoryID *int64, date time.Time) (_ *entity.Obligation, err error) {
	ctx, span := s.startSpan(ctx, "GetObligation")
	defer func() { s.endSpan(span, err) }()

	var (
		ob          entity.Obligation
		category    pgtype.Int8
		reportDate  pgtype.Date
		submittedAt pgtype.Timestamptz
		lastSentAt  pgtype.Timestamptz
	)
	err = s.conn.QueryRow(ctx, queryGetObligation, unitID, categoryID, pgtype.Date{Time: date, Valid: true}).Scan(
		&ob.ID,
		&ob.UnitID,
		&category,
		&reportDate,
		&ob.Status,
		&submittedAt,
		&ob.ReminderSentCount,
		&lastSentAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	ob.CategoryID = int8Ptr(category)
	ob.ReportDate = reportDate.Time
	ob.SubmittedAt = timestamptzPtr(submittedAt)
	ob.LastReminderSentAt = timestamptzPtr(lastSentAt)

	return &ob, nil
}

func (s *DB) ListReminderRules(ctx context.Context, unitID *int64) (out []entity.ReminderRule, err error) {
	ctx, span := s.startSpan(ctx, "ListReminderRules")
	defer func() { s.endSpan(span, err) }()

	var rows pgx.Rows
	if unitID == nil {
		rows, err = s.conn.Query(ctx, queryListGlobalReminderRules)
	} else {
		rows, err = s.conn.Query(ctx, queryListUnitReminderRules, *unitID)
	}
	if err != nil {
		return nil, s.mapError(err)
	}

	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ReminderRule, error) {
		var (
			r    entity.ReminderRule
			unit pgtype.Int8
		)
		if err := row.Scan(&r.ID, &unit, &r.Kind, &r.OffsetDays, &r.EscalationLevel, &r.Recipients, &r.IsActive); err != nil {
			return r, err
		}
		r.UnitID = int8Ptr(unit)
		return r, nil
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) ExistsNotification(ctx context.Context, key entity.DispatchKey, day time.Time) (exists bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsNotification")
	defer func() { s.endSpan(span, err) }()

	err = s.conn.QueryRow(ctx, queryExistsNotification,
		string(key.Type()),
		key.ObligationID,
		key.EscalationLevel,
		day.Format(time.DateOnly),
	).Scan(&exists)
	if err != nil {
		return false, s.mapError(err)
	}

	return exists, nil
}

func int8Ptr(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func timestamptzPtr(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
