package inbound

import "time"

type RunRequest struct {
	ReferenceTime string `json:"reference_time"`
}

type RunItemErrorResponse struct {
	AssignmentID    int64  `json:"assignment_id,string"`
	UnitID          int64  `json:"unit_id,string"`
	CategoryID      *int64 `json:"category_id,string,omitempty"`
	Date            string `json:"date"`
	RuleKind        string `json:"rule_kind"`
	EscalationLevel int    `json:"escalation_level"`
	Message         string `json:"message"`
}

type RunResponse struct {
	RunID             string                 `json:"run_id"`
	Trigger           string                 `json:"trigger"`
	ReferenceTime     time.Time              `json:"reference_time"`
	WindowStart       string                 `json:"window_start"`
	WindowEnd         string                 `json:"window_end"`
	Assignments       int                    `json:"assignments"`
	Evaluated         int                    `json:"evaluated"`
	RemindersSent     int                    `json:"reminders_sent"`
	EscalationsSent   int                    `json:"escalations_sent"`
	SkippedDuplicates int                    `json:"skipped_duplicates"`
	AbsentObligations int                    `json:"absent_obligations"`
	Errors            []RunItemErrorResponse `json:"errors"`
}

func (RunResponse) Message() string { return "Reminder run finished" }

type RuleResponse struct {
	ID              int64    `json:"id,string"`
	UnitID          *int64   `json:"unit_id,string,omitempty"`
	Scope           string   `json:"scope"`
	Kind            string   `json:"kind"`
	OffsetDays      int      `json:"offset_days"`
	EscalationLevel int      `json:"escalation_level"`
	Recipients      []string `json:"recipients"`
}

type UnitRulesResponse struct {
	UnitID int64          `json:"unit_id,string"`
	Rules  []RuleResponse `json:"rules"`
}
