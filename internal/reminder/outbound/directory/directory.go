package directory

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const userStatusActive = 2

const queryListActiveUserIDs = `
SELECT id FROM identity_users
WHERE id = ANY($1) AND status = $2
ORDER BY id`

const queryGetUnitManager = `
SELECT manager_id FROM report_units WHERE id = $1`

// RoleIndex is the part of the casbin enforcer the directory reads.
type RoleIndex interface {
	GetImplicitUsersForRole(name string, domain ...string) ([]string, error)
}

// Querier is the subset of pgxpool.Pool the directory needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Directory answers "who holds role R" from the casbin grouping policy and
// "who manages unit U" from the units table.
type Directory struct {
	roles RoleIndex
	conn  Querier
	ins   instrument.Instrumentation
}

func NewDirectory(roles RoleIndex, conn Querier, ins instrument.Instrumentation) *Directory {
	return &Directory{roles: roles, conn: conn, ins: ins}
}

// ListUserIDsByRole returns the active users holding role, directly or
// through an inherited role, in ascending order.
func (d *Directory) ListUserIDsByRole(ctx context.Context, role string) (_ []int64, err error) {
	ctx, span := d.startSpan(ctx, "ListUserIDsByRole")
	defer func() { d.endSpan(span, err) }()

	subjects, err := d.roles.GetImplicitUsersForRole(role)
	if err != nil {
		return nil, err
	}

	ids := userIDs(subjects)
	if len(ids) == 0 {
		return []int64{}, nil
	}

	rows, err := d.conn.Query(ctx, queryListActiveUserIDs, ids, userStatusActive)
	if err != nil {
		return nil, err
	}

	out, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}

	if skipped := len(ids) - len(out); skipped > 0 {
		slog.DebugContext(ctx, "inactive role members skipped", "role", role, "count", skipped)
	}

	return out, nil
}

// GetUnitManager returns nil when the unit is unknown or has no manager.
func (d *Directory) GetUnitManager(ctx context.Context, unitID int64) (_ *int64, err error) {
	ctx, span := d.startSpan(ctx, "GetUnitManager")
	defer func() { d.endSpan(span, err) }()

	var manager pgtype.Int8
	err = d.conn.QueryRow(ctx, queryGetUnitManager, unitID).Scan(&manager)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !manager.Valid {
		return nil, nil
	}
	return &manager.Int64, nil
}

// userIDs keeps the numeric casbin subjects. Nested role names and other
// non-user subjects are dropped.
func userIDs(subjects []string) []int64 {
	out := make([]int64, 0, len(subjects))
	for _, s := range subjects {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out = append(out, id)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (d *Directory) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return d.ins.Tracer("reminder.outbound.directory").Start(ctx, name)
}

func (d *Directory) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
