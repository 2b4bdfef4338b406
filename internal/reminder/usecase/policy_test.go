package usecase

import (
	"testing"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	deadline := time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC)
	draft := entity.Obligation{ID: 1, Status: entity.ObligationStatusDraft, Deadline: deadline}
	onTime := entity.Obligation{
		ID:          2,
		Status:      entity.ObligationStatusSubmitted,
		SubmittedAt: ptr(deadline.Add(-time.Hour)),
		Deadline:    deadline,
	}
	late := entity.Obligation{
		ID:          3,
		Status:      entity.ObligationStatusSubmitted,
		SubmittedAt: ptr(deadline.Add(5 * time.Hour)),
		Deadline:    deadline,
		IsLate:      true,
	}

	before2 := entity.ReminderRule{Kind: entity.RuleKindBeforeDeadline, OffsetDays: 2, EscalationLevel: 1}
	on := entity.ReminderRule{Kind: entity.RuleKindOnDeadline, EscalationLevel: 1}
	after1 := entity.ReminderRule{Kind: entity.RuleKindAfterDeadline, OffsetDays: 1, EscalationLevel: 1}

	tests := []struct {
		name string
		now  time.Time
		ob   entity.Obligation
		rule entity.ReminderRule
		want Decision
	}{
		{
			name: "before rule on its day",
			now:  time.Date(2024, time.February, 28, 9, 0, 0, 0, time.UTC),
			ob:   draft,
			rule: before2,
			want: Decision{Due: true, Actionable: true, DayOffset: -2},
		},
		{
			name: "before rule a day early",
			now:  time.Date(2024, time.February, 27, 9, 0, 0, 0, time.UTC),
			ob:   draft,
			rule: before2,
			want: Decision{Due: false, Actionable: true, DayOffset: -3},
		},
		{
			name: "on rule after the deadline instant is still due that day",
			now:  time.Date(2024, time.March, 1, 23, 0, 0, 0, time.UTC),
			ob:   draft,
			rule: on,
			want: Decision{Due: true, Actionable: true, DayOffset: 0},
		},
		{
			name: "on rule is not actionable once submitted",
			now:  time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
			ob:   onTime,
			rule: on,
			want: Decision{Due: true, Actionable: false, DayOffset: 0},
		},
		{
			name: "after rule on its day",
			now:  time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC),
			ob:   draft,
			rule: after1,
			want: Decision{Due: true, Actionable: true, DayOffset: 1},
		},
		{
			name: "on time submission cancels after rule",
			now:  time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC),
			ob:   onTime,
			rule: after1,
			want: Decision{Due: true, Actionable: false, DayOffset: 1},
		},
		{
			name: "late submission keeps after rule",
			now:  time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC),
			ob:   late,
			rule: after1,
			want: Decision{Due: true, Actionable: true, DayOffset: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.now, time.UTC, tt.ob, tt.rule)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Due && tt.want.Actionable, got.Fire())
		})
	}
}

func TestDecide_ReferenceZone(t *testing.T) {
	// Arrange: deadline 2024-03-01 20:00 UTC is already 2024-03-02 in Kolkata.
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	assert.NoError(t, err)
	ob := entity.Obligation{Status: entity.ObligationStatusDraft, Deadline: time.Date(2024, time.March, 1, 20, 0, 0, 0, time.UTC)}
	rule := entity.ReminderRule{Kind: entity.RuleKindOnDeadline, EscalationLevel: 1}
	now := time.Date(2024, time.March, 2, 1, 0, 0, 0, time.UTC)

	// Act
	inUTC := Decide(now, time.UTC, ob, rule)
	inKolkata := Decide(now, kolkata, ob, rule)

	// Assert
	assert.False(t, inUTC.Due)
	assert.True(t, inKolkata.Due)
}

func TestEscalationRule(t *testing.T) {
	deadline := time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC)
	ob := entity.Obligation{Status: entity.ObligationStatusDraft, Deadline: deadline}
	rules := []entity.ReminderRule{
		{ID: 1, Kind: entity.RuleKindAfterDeadline, OffsetDays: 1, EscalationLevel: 1},
		{ID: 2, Kind: entity.RuleKindAfterDeadline, OffsetDays: 2, EscalationLevel: 2},
		{ID: 3, Kind: entity.RuleKindAfterDeadline, OffsetDays: 5, EscalationLevel: 3},
		{ID: 4, Kind: entity.RuleKindBeforeDeadline, OffsetDays: 1, EscalationLevel: 4},
	}

	t.Run("picks highest after rule at level two or more", func(t *testing.T) {
		got, ok := EscalationRule(deadline.Add(49*time.Hour), ob, rules)

		assert.True(t, ok)
		assert.Equal(t, int64(3), got.ID)
	})

	t.Run("not within the first day", func(t *testing.T) {
		_, ok := EscalationRule(deadline.Add(24*time.Hour), ob, rules)

		assert.False(t, ok)
	})

	t.Run("not once submitted", func(t *testing.T) {
		sub := ob
		sub.Status = entity.ObligationStatusSubmitted
		sub.SubmittedAt = ptr(deadline.Add(30 * time.Hour))

		_, ok := EscalationRule(deadline.Add(72*time.Hour), sub, rules)

		assert.False(t, ok)
	})

	t.Run("needs a level two rule", func(t *testing.T) {
		_, ok := EscalationRule(deadline.Add(72*time.Hour), ob, rules[:1])

		assert.False(t, ok)
	})
}

func TestDaysLate(t *testing.T) {
	deadline := time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysLate(deadline.Add(time.Hour), deadline))
	assert.Equal(t, 1, DaysLate(deadline.Add(47*time.Hour), deadline))
	assert.Equal(t, 3, DaysLate(deadline.Add(72*time.Hour), deadline))
}
