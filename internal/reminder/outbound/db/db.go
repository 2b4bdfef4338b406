package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxTxAttempts = 3

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

// - 23505 unique violation → goerror.ErrConflict
// - 40001 serialization_failure → retryable error
// - 40P01 deadlock_detected → retryable error
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("reminder.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// inTx runs fn in a transaction and retries the whole transaction on
// serialization failures and deadlocks.
func (s *DB) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	backoff := retry.WithMaxRetries(maxTxAttempts-1, retry.NewExponential(50*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.runTx(ctx, fn)
		if isRetryable(err) {
			slog.WarnContext(ctx, "transaction conflict, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *DB) runTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
