package entity

import (
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/valueobject"
)

// Assignment binds a unit (and optionally a category) to a daily deadline
// and an assignee.
type Assignment struct {
	ID             int64
	UnitID         int64
	UnitName       string
	CategoryID     *int64
	AssignedUserID *int64
	DeadlineTime   string // HH:MM or HH:MM:SS, local to Timezone
	Timezone       string
	IsActive       bool
}

// ReminderRule is a global (UnitID nil) or unit scoped rule. Recipients holds
// raw descriptors, see ParseDescriptor.
type ReminderRule struct {
	ID              int64
	UnitID          *int64
	Kind            RuleKind
	OffsetDays      int
	EscalationLevel int
	Recipients      []string
	IsActive        bool
}

func (r ReminderRule) IsGlobal() bool {
	return r.UnitID == nil
}

// Obligation is one dated report. Deadline and IsLate are derived by the
// reader and never stored.
type Obligation struct {
	ID                 int64
	UnitID             int64
	CategoryID         *int64
	ReportDate         time.Time
	Status             ObligationStatus
	SubmittedAt        *time.Time
	ReminderSentCount  int
	LastReminderSentAt *time.Time

	Deadline time.Time
	IsLate   bool
}

func (o Obligation) IsSubmitted() bool {
	return o.Status == ObligationStatusSubmitted
}

// NotificationRecord is one outbox row.
type NotificationRecord struct {
	ID        int64
	UserID    int64
	Type      NotificationType
	Title     string
	Body      string
	Payload   valueobject.JSONMap
	CreatedAt time.Time
}

// DispatchKey identifies a notification batch within one day.
type DispatchKey struct {
	ObligationID    int64
	Kind            RuleKind
	EscalationLevel int
}

func (k DispatchKey) Type() NotificationType {
	return NotificationTypeFor(k.Kind, k.EscalationLevel)
}

// Dispatch is a batch of outbox rows plus the single bookkeeping update that
// goes with it.
type Dispatch struct {
	Key     DispatchKey
	Records []NotificationRecord
	SentAt  time.Time
}
