package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_ResolveRecipients(t *testing.T) {
	now := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)
	assignment := entity.Assignment{ID: 1, UnitID: 10, AssignedUserID: ptr(int64(100))}

	t.Run("assignee who is also a superadmin appears once", func(t *testing.T) {
		// Arrange
		f := newFixture(t, now)
		f.dir.roles["superadmin"] = []int64{300, 100}

		// Act
		got, err := f.uc.ResolveRecipients(context.Background(), []string{"assignee", "role:superadmin"}, assignment)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []int64{100, 300}, got)
	})

	t.Run("all descriptor kinds merge", func(t *testing.T) {
		f := newFixture(t, now)
		f.dir.managers[10] = 200
		f.dir.roles["auditor"] = []int64{400}

		got, err := f.uc.ResolveRecipients(context.Background(), []string{"user:500", "assignee", "manager-of-unit", "role:auditor", "200"}, assignment)

		require.NoError(t, err)
		assert.Equal(t, []int64{100, 200, 400, 500}, got)
	})

	t.Run("missing assignee and manager give an empty set", func(t *testing.T) {
		f := newFixture(t, now)

		got, err := f.uc.ResolveRecipients(context.Background(), []string{"assignee", "manager"}, entity.Assignment{ID: 2, UnitID: 11})

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("malformed descriptor", func(t *testing.T) {
		f := newFixture(t, now)

		_, err := f.uc.ResolveRecipients(context.Background(), []string{"assignee", "supervisor"}, assignment)

		var ide *entity.InvalidDescriptorError
		require.ErrorAs(t, err, &ide)
		assert.Equal(t, "supervisor", ide.Raw)
	})

	t.Run("directory failure", func(t *testing.T) {
		f := newFixture(t, now)
		f.dir.errRole = errBoom

		_, err := f.uc.ResolveRecipients(context.Background(), []string{"role:superadmin"}, assignment)

		var dae *entity.DataAccessError
		require.ErrorAs(t, err, &dae)
		assert.Equal(t, "list users by role", dae.Op)
	})
}
