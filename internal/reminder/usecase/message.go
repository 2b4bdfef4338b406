package usecase

import (
	"fmt"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

const deadlineLayout = "2006-01-02 15:04 MST"

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// buildMessage renders the outbox title and body. Every message names the
// unit and the report date, plus the deadline or the days late.
func buildMessage(a entity.Assignment, ob entity.Obligation, kind entity.RuleKind, level int, now time.Time) (string, string) {
	unit := a.UnitName
	if unit == "" {
		unit = fmt.Sprintf("Unit %d", a.UnitID)
	}
	date := ob.ReportDate.Format(time.DateOnly)

	deadline := ob.Deadline
	if loc, err := loadLocation(a.Timezone); err == nil {
		deadline = deadline.In(loc)
	}
	due := deadline.Format(deadlineLayout)

	switch kind {
	case entity.RuleKindBeforeDeadline:
		days := max(daysBetween(civilDate(now, deadline.Location()), civilDate(deadline, deadline.Location())), 1)
		return fmt.Sprintf("Report due in %s: %s", plural(days, "day"), unit),
			fmt.Sprintf("The %s report for %s is due on %s.", unit, date, due)

	case entity.RuleKindOnDeadline:
		return fmt.Sprintf("Report due today: %s", unit),
			fmt.Sprintf("The %s report for %s is due today at %s.", unit, date, due)

	default:
		late := plural(DaysLate(now, ob.Deadline), "day")
		if level >= 2 {
			return fmt.Sprintf("Escalation level %d: %s report overdue", level, unit),
				fmt.Sprintf("The %s report for %s is %s overdue (deadline %s) and has been escalated.", unit, date, late, due)
		}
		return fmt.Sprintf("Report overdue: %s", unit),
			fmt.Sprintf("The %s report for %s is %s overdue. The deadline was %s.", unit, date, late, due)
	}
}
