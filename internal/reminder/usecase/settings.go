package usecase

import (
	"strings"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

const (
	defaultDaysBefore      = 7
	defaultDaysAfter       = 3
	defaultEscalationRole  = "superadmin"
	defaultLockTTL         = 15 * time.Minute
	runLockKey             = "reminder:scheduler:run"
	referenceTimezoneField = "reminder.reference_tz"
)

// settings is the scheduler configuration read at the start of each run so
// a config reload takes effect on the next tick.
type settings struct {
	refLoc         *time.Location
	daysBefore     int
	daysAfter      int
	escalationRole string
	concurrency    int
	lockTTL        time.Duration
	publishEvents  bool
}

func (s *Usecase) loadSettings() (settings, error) {
	loc, err := s.referenceLocation()
	if err != nil {
		return settings{}, err
	}

	out := settings{
		refLoc:         loc,
		daysBefore:     s.cfg.GetInt("reminder.window.days_before"),
		daysAfter:      s.cfg.GetInt("reminder.window.days_after"),
		escalationRole: strings.TrimSpace(s.cfg.GetString("reminder.escalation.role")),
		concurrency:    s.cfg.GetInt("reminder.scheduler.concurrency"),
		lockTTL:        s.cfg.GetSecond("reminder.scheduler.lock_ttl_seconds"),
		publishEvents:  s.cfg.GetBool("reminder.publish_events"),
	}
	if out.daysBefore <= 0 {
		out.daysBefore = defaultDaysBefore
	}
	if out.daysAfter <= 0 {
		out.daysAfter = defaultDaysAfter
	}
	if out.escalationRole == "" {
		out.escalationRole = defaultEscalationRole
	}
	if out.concurrency < 1 {
		out.concurrency = 1
	}
	if out.lockTTL <= 0 {
		out.lockTTL = defaultLockTTL
	}

	return out, nil
}

// referenceLocation is the zone that defines "today" for windows and the
// dedup boundary. Empty means UTC.
func (s *Usecase) referenceLocation() (*time.Location, error) {
	name := strings.TrimSpace(s.cfg.GetString(referenceTimezoneField))
	if name == "" {
		return time.UTC, nil
	}

	loc, err := loadLocation(name)
	if err != nil {
		return nil, &entity.ConfigurationError{Field: referenceTimezoneField, Value: name, Err: err}
	}
	return loc, nil
}
