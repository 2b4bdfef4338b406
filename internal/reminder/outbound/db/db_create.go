package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

const queryCreateNotification = `
INSERT INTO reminder_notifications (id, user_id, type, title, body, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const queryBumpObligationReminder = `
UPDATE report_obligations
SET reminder_sent_count = reminder_sent_count + 1,
    last_reminder_sent_at = $2
WHERE id = $1`

// CreateDispatch writes every record of d and bumps the obligation's
// reminder bookkeeping once, in one transaction.
func (s *DB) CreateDispatch(ctx context.Context, d entity.Dispatch) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDispatch")
	defer func() { s.endSpan(span, err) }()

	if len(d.Records) == 0 {
		return nil
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range d.Records {
			batch.Queue(queryCreateNotification,
				r.ID,
				r.UserID,
				string(r.Type),
				r.Title,
				r.Body,
				r.Payload,
				r.CreatedAt.UTC(),
			)
		}
		batch.Queue(queryBumpObligationReminder, d.Key.ObligationID, d.SentAt.UTC())

		br := tx.SendBatch(ctx, batch)
		defer func() { _ = br.Close() }()

		for range d.Records {
			if _, err := br.Exec(); err != nil {
				return err
			}
		}
		tag, err := br.Exec()
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrNotFound
		}

		return br.Close()
	})

	return s.mapError(err)
}
