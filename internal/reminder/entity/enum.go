package entity

import (
	"strings"
)

type RuleKind int16

const (
	RuleKindUnknown        RuleKind = 0
	RuleKindBeforeDeadline RuleKind = 1
	RuleKindOnDeadline     RuleKind = 2
	RuleKindAfterDeadline  RuleKind = 3
)

func RuleKindFromString(raw string) RuleKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "before_deadline":
		return RuleKindBeforeDeadline
	case "on_deadline":
		return RuleKindOnDeadline
	case "after_deadline":
		return RuleKindAfterDeadline
	default:
		return RuleKindUnknown
	}
}

func (k RuleKind) String() string {
	switch k {
	case RuleKindBeforeDeadline:
		return "before_deadline"
	case RuleKindOnDeadline:
		return "on_deadline"
	case RuleKindAfterDeadline:
		return "after_deadline"
	default:
		return "unknown"
	}
}

func (k RuleKind) IsValid() bool {
	return k >= RuleKindBeforeDeadline && k <= RuleKindAfterDeadline
}

type ObligationStatus int16

const (
	ObligationStatusUnknown    ObligationStatus = 0
	ObligationStatusNotStarted ObligationStatus = 1
	ObligationStatusDraft      ObligationStatus = 2
	ObligationStatusSubmitted  ObligationStatus = 3
)

func (s ObligationStatus) String() string {
	switch s {
	case ObligationStatusNotStarted:
		return "not_started"
	case ObligationStatusDraft:
		return "draft"
	case ObligationStatusSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// NotificationType is the outbox type tag derived from rule kind and
// escalation level.
type NotificationType string

const (
	NotificationTypeDueSoon    NotificationType = "report_due_soon"
	NotificationTypeDueToday   NotificationType = "report_due_today"
	NotificationTypeOverdue    NotificationType = "report_overdue"
	NotificationTypeEscalation NotificationType = "report_escalation"
)

func NotificationTypeFor(kind RuleKind, level int) NotificationType {
	switch kind {
	case RuleKindBeforeDeadline:
		return NotificationTypeDueSoon
	case RuleKindOnDeadline:
		return NotificationTypeDueToday
	default:
		if level >= 2 {
			return NotificationTypeEscalation
		}
		return NotificationTypeOverdue
	}
}

func (t NotificationType) String() string {
	return string(t)
}
