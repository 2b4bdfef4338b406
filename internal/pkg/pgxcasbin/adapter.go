// Package pgxcasbin loads casbin policies from Postgres with pgx and reloads
// them when the policy owner announces a change over LISTEN/NOTIFY.
package pgxcasbin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"go.uber.org/atomic"
)

const (
	defaultTableName = "casbin_rule"
	ruleColumns      = 6
)

var (
	_ persist.Adapter         = (*Adapter)(nil)
	_ persist.ContextAdapter  = (*Adapter)(nil)
	_ persist.FilteredAdapter = (*Adapter)(nil)
)

// Querier is the subset of pgxpool.Pool the adapter needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Filter selects rules by ptype. Each inner slice is one condition on
// v0..v5 where "" matches anything; conditions are ORed.
type Filter map[string][][]string

// Adapter is a read-only casbin adapter over a ptype,v0..v5 table.
type Adapter struct {
	db        Querier
	tableName string
	filtered  *atomic.Bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTableName overrides the rule table name.
func WithTableName(name string) Option {
	return func(a *Adapter) { a.tableName = lo.SnakeCase(name) }
}

// NewAdapter returns an adapter reading from db.
func NewAdapter(db Querier, opts ...Option) *Adapter {
	a := &Adapter{db: db, tableName: defaultTableName, filtered: atomic.NewBool(false)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadPolicyCtx loads every rule into m.
func (a *Adapter) LoadPolicyCtx(ctx context.Context, m model.Model) error {
	a.filtered.Store(false)

	lines, err := a.selectRules(ctx, "", nil)
	if err != nil {
		return err
	}
	return loadLines(m, lines)
}

// LoadPolicy loads every rule into m.
func (a *Adapter) LoadPolicy(m model.Model) error {
	return a.LoadPolicyCtx(context.Background(), m)
}

// LoadFilteredPolicy loads only the rules matching filter, which must be a Filter.
func (a *Adapter) LoadFilteredPolicy(m model.Model, filter any) error {
	if lo.IsNil(filter) {
		return a.LoadPolicy(m)
	}

	ft, ok := filter.(Filter)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidFilterType, filter)
	}

	a.filtered.Store(true)

	var lines [][]string
	for ptype, conds := range ft {
		for _, cond := range conds {
			rows, err := a.selectRules(context.Background(), ptype, cond)
			if err != nil {
				return err
			}
			lines = append(lines, rows...)
		}
	}

	lines = lo.UniqBy(lines, func(l []string) string { return strings.Join(l, ",") })
	return loadLines(m, lines)
}

// IsFiltered reports whether the last load used a filter.
func (a *Adapter) IsFiltered() bool {
	return a.filtered.Load()
}

// Write methods are rejected; see ErrReadOnly.

func (a *Adapter) SavePolicy(model.Model) error { return ErrReadOnly }
func (a *Adapter) AddPolicy(string, string, []string) error { return ErrReadOnly }
func (a *Adapter) RemovePolicy(string, string, []string) error { return ErrReadOnly }
func (a *Adapter) RemoveFilteredPolicy(string, string, int, ...string) error { return ErrReadOnly }
func (a *Adapter) SavePolicyCtx(context.Context, model.Model) error { return ErrReadOnly }
func (a *Adapter) AddPolicyCtx(context.Context, string, string, []string) error { return ErrReadOnly }
func (a *Adapter) RemovePolicyCtx(context.Context, string, string, []string) error { return ErrReadOnly }
func (a *Adapter) RemoveFilteredPolicyCtx(context.Context, string, string, int, ...string) error {
	return ErrReadOnly
}

// selectRules returns rows as [ptype, v0, ...] with trailing blanks trimmed.
func (a *Adapter) selectRules(ctx context.Context, ptype string, values []string) ([][]string, error) {
	if len(values) > ruleColumns {
		return nil, fmt.Errorf("%w: %d", ErrTooManyValues, len(values))
	}

	cols := lo.Times(ruleColumns, func(i int) string { return "coalesce(v" + strconv.Itoa(i) + ", '')" })
	query := "select ptype, " + strings.Join(cols, ", ") + " from " + a.tableName

	var (
		conds []string
		args  []any
	)
	if ptype != "" {
		args = append(args, ptype)
		conds = append(conds, "ptype = $1")
	}
	for i, v := range values {
		if v == "" {
			continue
		}
		args = append(args, v)
		conds = append(conds, "v"+strconv.Itoa(i)+" = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		query += " where " + strings.Join(conds, " and ")
	}
	query += " order by id"

	rows, err := a.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrSelect, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		line := make([]string, ruleColumns+1)
		dest := lo.Map(line, func(_ string, i int) any { return &line[i] })
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Join(ErrScanRow, err)
		}
		out = append(out, trimTrailingEmpty(line))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrSelect, err)
	}

	return out, nil
}

func loadLines(m model.Model, lines [][]string) error {
	for _, line := range lines {
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return err
		}
	}
	return nil
}

func trimTrailingEmpty(line []string) []string {
	end := len(line)
	for end > 0 && line[end-1] == "" {
		end--
	}
	return line[:end]
}
