package usecase

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type metrics struct {
	runs            metric.Int64Counter
	remindersSent   metric.Int64Counter
	escalationsSent metric.Int64Counter
	dispatchSkipped metric.Int64Counter
	itemErrors      metric.Int64Counter
	runDuration     metric.Float64Histogram
}

func newMetrics(m metric.Meter) *metrics {
	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			slog.Warn("failed to create metric counter", "name", name, "error", err)
			return noop.Int64Counter{}
		}
		return c
	}

	duration, err := m.Float64Histogram("reminder.run.duration",
		metric.WithDescription("Duration of a scheduler run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		slog.Warn("failed to create metric histogram", "name", "reminder.run.duration", "error", err)
		duration = noop.Float64Histogram{}
	}

	return &metrics{
		runs:            counter("reminder.runs", "Scheduler runs by outcome"),
		remindersSent:   counter("reminder.reminders_sent", "Reminder notification batches written"),
		escalationsSent: counter("reminder.escalations_sent", "Escalation notification batches written"),
		dispatchSkipped: counter("reminder.dispatch_skipped", "Firings skipped because a batch was already written today"),
		itemErrors:      counter("reminder.item_errors", "Per item evaluation failures"),
		runDuration:     duration,
	}
}
