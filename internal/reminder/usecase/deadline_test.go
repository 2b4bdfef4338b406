package usecase

import (
	"testing"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlineFor(t *testing.T) {
	tests := []struct {
		name string
		a    entity.Assignment
		date time.Time
		want time.Time
	}{
		{
			name: "Kolkata five pm is eleven thirty UTC",
			a:    entity.Assignment{DeadlineTime: "17:00", Timezone: "Asia/Kolkata"},
			date: day(2024, time.March, 1),
			want: time.Date(2024, time.March, 1, 11, 30, 0, 0, time.UTC),
		},
		{
			name: "UTC with seconds",
			a:    entity.Assignment{DeadlineTime: "18:00:30", Timezone: "UTC"},
			date: day(2024, time.March, 1),
			want: time.Date(2024, time.March, 1, 18, 0, 30, 0, time.UTC),
		},
		{
			name: "zone ahead of UTC moves to previous UTC day",
			a:    entity.Assignment{DeadlineTime: "06:00", Timezone: "Pacific/Auckland"},
			date: day(2024, time.July, 10),
			want: time.Date(2024, time.July, 9, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "wall clock on a DST start day",
			a:    entity.Assignment{DeadlineTime: "09:00", Timezone: "America/New_York"},
			date: day(2024, time.March, 10),
			want: time.Date(2024, time.March, 10, 13, 0, 0, 0, time.UTC),
		},
		{
			name: "only the calendar date of the input is used",
			a:    entity.Assignment{DeadlineTime: "17:00", Timezone: "Asia/Kolkata"},
			date: time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, time.March, 1, 11, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := DeadlineFor(tt.a, tt.date)

			// Assert
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDeadlineFor_ConfigurationError(t *testing.T) {
	tests := []struct {
		name  string
		a     entity.Assignment
		field string
	}{
		{name: "empty timezone", a: entity.Assignment{ID: 1, DeadlineTime: "17:00"}, field: "timezone"},
		{name: "unknown timezone", a: entity.Assignment{ID: 2, DeadlineTime: "17:00", Timezone: "Mars/Olympus"}, field: "timezone"},
		{name: "hour out of range", a: entity.Assignment{ID: 3, DeadlineTime: "25:00", Timezone: "UTC"}, field: "deadline_time"},
		{name: "single digit hour", a: entity.Assignment{ID: 4, DeadlineTime: "9:00", Timezone: "UTC"}, field: "deadline_time"},
		{name: "empty time", a: entity.Assignment{ID: 5, Timezone: "UTC"}, field: "deadline_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeadlineFor(tt.a, day(2024, time.March, 1))

			var ce *entity.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Equal(t, tt.a.ID, ce.AssignmentID)
		})
	}
}

func TestCivilDate(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	evening := time.Date(2024, time.March, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, day(2024, time.March, 2), civilDate(evening, kolkata))
	assert.Equal(t, day(2024, time.March, 1), civilDate(evening, time.UTC))
}
