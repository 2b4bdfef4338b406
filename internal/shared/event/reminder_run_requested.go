package event

const ReminderRunRequestedDestination string = "reminder_run_requested"
const ReminderRunRequestedConsumerScheduler string = "reminder_run_requested_scheduler"

// ReminderRunRequestedMessage asks the scheduler for an out-of-band run.
// An empty ReferenceTime means the consumer's clock.
type ReminderRunRequestedMessage struct {
	ReferenceTime string `json:"reference_time,omitempty"`
	RequestedBy   string `json:"requested_by,omitempty"`
}
