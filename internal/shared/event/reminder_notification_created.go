package event

const ReminderNotificationCreatedDestination string = "reminder_notification_created"

type ReminderNotificationCreatedMessage struct {
	NotificationIDs []int64 `json:"notification_ids"`
	ObligationID    int64   `json:"obligation_id,string"`
	UnitID          int64   `json:"unit_id,string"`
	ReportDate      string  `json:"report_date"`
	RuleKind        string  `json:"rule_kind"`
	EscalationLevel int     `json:"escalation_level"`
	Type            string  `json:"type"`
}
