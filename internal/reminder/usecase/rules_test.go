package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_ResolveRules(t *testing.T) {
	now := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)

	t.Run("unit rule overrides global rule of the same kind and level", func(t *testing.T) {
		// Arrange
		f := newFixture(t, now)
		f.db.rules = []entity.ReminderRule{
			{ID: 1, Kind: entity.RuleKindBeforeDeadline, OffsetDays: 1, EscalationLevel: 1, Recipients: []string{"assignee"}, IsActive: true},
			{ID: 2, UnitID: ptr(int64(10)), Kind: entity.RuleKindBeforeDeadline, OffsetDays: 2, EscalationLevel: 1, Recipients: []string{"manager"}, IsActive: true},
		}

		// Act
		got, err := f.uc.ResolveRules(context.Background(), 10)

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("other units keep the global rule", func(t *testing.T) {
		f := newFixture(t, now)
		f.db.rules = []entity.ReminderRule{
			{ID: 1, Kind: entity.RuleKindBeforeDeadline, OffsetDays: 1, EscalationLevel: 1, IsActive: true},
			{ID: 2, UnitID: ptr(int64(10)), Kind: entity.RuleKindBeforeDeadline, OffsetDays: 2, EscalationLevel: 1, IsActive: true},
		}

		got, err := f.uc.ResolveRules(context.Background(), 11)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("inactive unit rule does not hide the global one", func(t *testing.T) {
		f := newFixture(t, now)
		f.db.rules = []entity.ReminderRule{
			{ID: 1, Kind: entity.RuleKindOnDeadline, EscalationLevel: 1, IsActive: true},
			{ID: 2, UnitID: ptr(int64(10)), Kind: entity.RuleKindOnDeadline, EscalationLevel: 1, IsActive: false},
		}

		got, err := f.uc.ResolveRules(context.Background(), 10)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("ordered by level then kind and invalid rules dropped", func(t *testing.T) {
		f := newFixture(t, now)
		f.db.rules = []entity.ReminderRule{
			{ID: 1, Kind: entity.RuleKindAfterDeadline, OffsetDays: 3, EscalationLevel: 2, IsActive: true},
			{ID: 2, Kind: entity.RuleKindAfterDeadline, OffsetDays: 1, EscalationLevel: 1, IsActive: true},
			{ID: 3, Kind: entity.RuleKindOnDeadline, EscalationLevel: 1, IsActive: true},
			{ID: 4, Kind: entity.RuleKindBeforeDeadline, OffsetDays: 2, EscalationLevel: 1, IsActive: true},
			{ID: 5, Kind: entity.RuleKindUnknown, EscalationLevel: 1, IsActive: true},
			{ID: 6, Kind: entity.RuleKindOnDeadline, EscalationLevel: 0, IsActive: true},
			{ID: 7, Kind: entity.RuleKindAfterDeadline, OffsetDays: -1, EscalationLevel: 3, IsActive: true},
		}

		got, err := f.uc.ResolveRules(context.Background(), 10)

		require.NoError(t, err)
		ids := make([]int64, 0, len(got))
		for _, r := range got {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []int64{4, 3, 2, 1}, ids)
	})

	t.Run("read failure is a data access error", func(t *testing.T) {
		f := newFixture(t, now)
		f.db.errUnitRules[10] = errBoom

		_, err := f.uc.ResolveRules(context.Background(), 10)

		var dae *entity.DataAccessError
		require.ErrorAs(t, err, &dae)
		assert.ErrorIs(t, err, errBoom)
	})
}
