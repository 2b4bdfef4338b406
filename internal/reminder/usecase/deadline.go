package usecase

import (
	"errors"
	"sync"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/validator"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

var (
	errEmptyTimezone    = errors.New("timezone is empty")
	errInvalidTimeOfDay = errors.New("expected HH:MM or HH:MM:SS")
)

var locations sync.Map // name -> *time.Location

func loadLocation(name string) (*time.Location, error) {
	if v, ok := locations.Load(name); ok {
		return v.(*time.Location), nil //nolint:forcetypeassert // only *time.Location is stored
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	locations.Store(name, loc)
	return loc, nil
}

// DeadlineFor returns the deadline instant, in UTC, of the obligation dated
// date: the deadline time of day on that calendar date, read as wall clock
// time in the assignment's timezone. Only the year, month and day of date
// are used. An empty or unknown timezone is a ConfigurationError.
func DeadlineFor(a entity.Assignment, date time.Time) (time.Time, error) {
	if a.Timezone == "" {
		return time.Time{}, &entity.ConfigurationError{AssignmentID: a.ID, Field: "timezone", Value: a.Timezone, Err: errEmptyTimezone}
	}
	loc, err := loadLocation(a.Timezone)
	if err != nil {
		return time.Time{}, &entity.ConfigurationError{AssignmentID: a.ID, Field: "timezone", Value: a.Timezone, Err: err}
	}

	tod, err := timeOfDay(a.DeadlineTime)
	if err != nil {
		return time.Time{}, &entity.ConfigurationError{AssignmentID: a.ID, Field: "deadline_time", Value: a.DeadlineTime, Err: err}
	}

	y, m, d := date.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), 0, loc).UTC(), nil
}

func timeOfDay(s string) (time.Time, error) {
	if !validator.IsTimeOfDay(s) {
		return time.Time{}, errInvalidTimeOfDay
	}

	layout := "15:04:05"
	if len(s) == len("15:04") {
		layout = "15:04"
	}
	return time.Parse(layout, s)
}

// civilDate truncates t to its calendar date in loc, returned as UTC
// midnight of that date so dates compare and subtract exactly.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b; both must come from civilDate.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
