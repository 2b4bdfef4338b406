package usecase

import (
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

// Decision is the outcome of evaluating one rule against one obligation on
// the day containing now.
type Decision struct {
	// Due is set when today is the rule's trigger day.
	Due bool
	// Actionable is set when a due rule should fire given the obligation state.
	Actionable bool
	// DayOffset is today minus the deadline date, in calendar days.
	DayOffset int
}

func (d Decision) Fire() bool {
	return d.Due && d.Actionable
}

// Decide evaluates rule for ob on the calendar day of now in refLoc. The
// deadline date is the deadline instant's date in the same zone.
func Decide(now time.Time, refLoc *time.Location, ob entity.Obligation, rule entity.ReminderRule) Decision {
	offset := daysBetween(civilDate(ob.Deadline, refLoc), civilDate(now, refLoc))
	dec := Decision{DayOffset: offset}

	switch rule.Kind {
	case entity.RuleKindBeforeDeadline:
		dec.Due = offset == -rule.OffsetDays
		dec.Actionable = !ob.IsSubmitted()
	case entity.RuleKindOnDeadline:
		dec.Due = offset == 0
		dec.Actionable = !ob.IsSubmitted()
	case entity.RuleKindAfterDeadline:
		dec.Due = offset == rule.OffsetDays
		dec.Actionable = !ob.IsSubmitted() || ob.IsLate
	}

	return dec
}

// EscalationRule picks the rule for the cross-level escalation check: the
// highest level after_deadline rule at level 2 or above, applicable only
// while ob is unsubmitted and more than a day past its deadline.
func EscalationRule(now time.Time, ob entity.Obligation, rules []entity.ReminderRule) (entity.ReminderRule, bool) {
	if ob.IsSubmitted() || now.Sub(ob.Deadline) <= 24*time.Hour {
		return entity.ReminderRule{}, false
	}

	var (
		best  entity.ReminderRule
		found bool
	)
	for _, r := range rules {
		if r.Kind != entity.RuleKindAfterDeadline || r.EscalationLevel < 2 {
			continue
		}
		if !found || r.EscalationLevel > best.EscalationLevel {
			best, found = r, true
		}
	}

	return best, found
}

// DaysLate is the whole number of days now is past deadline, at least 1.
func DaysLate(now, deadline time.Time) int {
	return max(int(now.Sub(deadline)/(24*time.Hour)), 1)
}
