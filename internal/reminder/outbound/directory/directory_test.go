package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type stubRoles struct {
	subjects []string
	err      error
}

func (s stubRoles) GetImplicitUsersForRole(string, ...string) ([]string, error) {
	return s.subjects, s.err
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

type stubQuerier struct {
	queryErr error
	row      pgx.Row
	queried  bool
}

func (q *stubQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	q.queried = true
	return nil, q.queryErr
}

func (q *stubQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return q.row
}

func ptr[T any](v T) *T { return &v }

func TestUserIDs(t *testing.T) {
	got := userIDs([]string{"300", "admin", "100", "-4", "0", "300", "12x", "200"})

	assert.Equal(t, []int64{100, 200, 300}, got)
}

func TestDirectory_ListUserIDsByRole(t *testing.T) {
	t.Run("role with only nested roles", func(t *testing.T) {
		q := &stubQuerier{}
		d := NewDirectory(stubRoles{subjects: []string{"admin"}}, q, instrument.NewNoop())

		got, err := d.ListUserIDsByRole(context.Background(), "superadmin")

		require.NoError(t, err)
		assert.Empty(t, got)
		assert.False(t, q.queried)
	})

	t.Run("casbin failure", func(t *testing.T) {
		boom := errors.New("boom")
		d := NewDirectory(stubRoles{err: boom}, &stubQuerier{}, instrument.NewNoop())

		_, err := d.ListUserIDsByRole(context.Background(), "superadmin")

		assert.ErrorIs(t, err, boom)
	})

	t.Run("users table failure", func(t *testing.T) {
		boom := errors.New("boom")
		d := NewDirectory(stubRoles{subjects: []string{"7"}}, &stubQuerier{queryErr: boom}, instrument.NewNoop())

		_, err := d.ListUserIDsByRole(context.Background(), "superadmin")

		assert.ErrorIs(t, err, boom)
	})

	t.Run("implicit members come from the casbin grouping policy", func(t *testing.T) {
		// Arrange
		m, err := model.NewModelFromString(rbacModel)
		require.NoError(t, err)
		e, err := casbin.NewEnforcer(m)
		require.NoError(t, err)
		_, err = e.AddGroupingPolicies([][]string{{"7", "superadmin"}, {"admin", "superadmin"}, {"9", "admin"}})
		require.NoError(t, err)

		// Act
		subjects, err := e.GetImplicitUsersForRole("superadmin")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 9}, userIDs(subjects))
	})
}

func TestDirectory_GetUnitManager(t *testing.T) {
	tests := []struct {
		name    string
		scan    func(dest ...any) error
		want    *int64
		wantErr bool
	}{
		{
			name: "unknown unit",
			scan: func(...any) error { return pgx.ErrNoRows },
		},
		{
			name: "unit with manager",
			scan: func(dest ...any) error {
				*dest[0].(*pgtype.Int8) = pgtype.Int8{Int64: 200, Valid: true}
				return nil
			},
			want: ptr(int64(200)),
		},
		{
			name: "unit without manager",
			scan: func(...any) error { return nil },
		},
		{
			name:    "query failure",
			scan:    func(...any) error { return errors.New("boom") },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirectory(stubRoles{}, &stubQuerier{row: stubRow{scan: tt.scan}}, instrument.NewNoop())

			got, err := d.GetUnitManager(context.Background(), 10)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
