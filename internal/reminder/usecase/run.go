package usecase

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/runlock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

const (
	TriggerCron    = "cron"
	TriggerHTTP    = "http"
	TriggerMessage = "message"
)

type RunInput struct {
	// ReferenceTime is the instant treated as "now". Zero means the clock.
	ReferenceTime time.Time
	Trigger       string
}

// RunResult summarizes one driver pass.
type RunResult struct {
	RunID             string
	Trigger           string
	ReferenceTime     time.Time
	WindowStart       time.Time
	WindowEnd         time.Time
	Assignments       int
	Evaluated         int
	RemindersSent     int
	EscalationsSent   int
	SkippedDuplicates int
	AbsentObligations int
	Errors            []*entity.ItemError
}

// Err returns a *entity.PartialRunError when any item failed.
func (r *RunResult) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	return &entity.PartialRunError{Items: r.Errors}
}

type fireOutcome int

const (
	fireFailed fireOutcome = iota
	fireWritten
	fireDuplicate
	fireEmpty
)

type tally struct {
	evaluated   atomic.Int64
	reminders   atomic.Int64
	escalations atomic.Int64
	skipped     atomic.Int64
	absent      atomic.Int64

	mu   sync.Mutex
	errs []*entity.ItemError
}

func (t *tally) fail(e *entity.ItemError) {
	t.mu.Lock()
	t.errs = append(t.errs, e)
	t.mu.Unlock()
}

// Run evaluates every active assignment over the date window around the
// reference time and writes the notifications that are due. Runs are
// single flight: a run that cannot take the run lock returns
// entity.ErrRunInProgress. Per item failures are collected in the result;
// Run itself fails only when the assignments or global rules cannot be read.
func (s *Usecase) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	runID := s.uuid.Generate()
	ctx = instrument.SetCorrelationID(ctx, runID)

	ctx, span := s.startSpan(ctx, "Run")
	defer span.End()

	started := time.Now()
	now := in.ReferenceTime
	if now.IsZero() {
		now = s.clock.Now()
	}
	now = now.UTC()

	outcome := "failed"
	defer func() {
		attrs := metric.WithAttributes(attribute.String("trigger", in.Trigger), attribute.String("outcome", outcome))
		s.metrics.runs.Add(ctx, 1, attrs)
		s.metrics.runDuration.Record(ctx, time.Since(started).Seconds(), attrs)
	}()

	st, err := s.loadSettings()
	if err != nil {
		slog.ErrorContext(ctx, "invalid reminder settings", "error", err)
		return nil, err
	}

	lease, err := s.locker.Acquire(ctx, runLockKey, st.lockTTL)
	if errors.Is(err, runlock.ErrNotAcquired) {
		outcome = "skipped"
		slog.InfoContext(ctx, "reminder run skipped, another run holds the lock", "trigger", in.Trigger)
		return nil, entity.ErrRunInProgress
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire run lock", "error", err)
		return nil, &entity.DataAccessError{Op: "acquire run lock", Err: err}
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, runlock.ErrNotHeld) {
			slog.WarnContext(ctx, "failed to release run lock", "error", err)
		}
	}()
	stopKeepAlive := keepLease(ctx, lease, st.lockTTL)
	defer stopKeepAlive()

	result, err := s.run(ctx, runID, in.Trigger, now, st)
	if err != nil {
		return nil, err
	}

	outcome = "completed"
	if len(result.Errors) > 0 {
		outcome = "partial"
	}
	slog.InfoContext(ctx, "reminder run finished",
		"run_id", result.RunID,
		"trigger", result.Trigger,
		"reference_time", result.ReferenceTime,
		"assignments", result.Assignments,
		"evaluated", result.Evaluated,
		"reminders_sent", result.RemindersSent,
		"escalations_sent", result.EscalationsSent,
		"skipped_duplicates", result.SkippedDuplicates,
		"absent_obligations", result.AbsentObligations,
		"errors", len(result.Errors),
	)

	return result, nil
}

func (s *Usecase) run(ctx context.Context, runID, trigger string, now time.Time, st settings) (*RunResult, error) {
	assignments, err := s.repoDB.ListActiveAssignments(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list active assignments", "error", err)
		return nil, &entity.DataAccessError{Op: "list active assignments", Err: err}
	}

	global, err := s.repoDB.ListReminderRules(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list global reminder rules", "error", err)
		return nil, &entity.DataAccessError{Op: "list global reminder rules", Err: err}
	}

	today := civilDate(now, st.refLoc)
	result := &RunResult{
		RunID:         runID,
		Trigger:       trigger,
		ReferenceTime: now,
		WindowStart:   today.AddDate(0, 0, -st.daysBefore),
		WindowEnd:     today.AddDate(0, 0, st.daysAfter),
		Assignments:   len(assignments),
	}

	t := &tally{}
	rulesByUnit := make(map[int64][]entity.ReminderRule)

	var g errgroup.Group
	g.SetLimit(st.concurrency)

	for _, a := range assignments {
		if !a.IsActive {
			continue
		}

		rules, ok := rulesByUnit[a.UnitID]
		if !ok {
			rules, err = s.unitRules(ctx, a.UnitID, global)
			if err != nil {
				s.recordFailure(ctx, t, itemError(a, today, entity.RuleKindUnknown, 0, err))
				continue
			}
			rulesByUnit[a.UnitID] = rules
		}

		for date := result.WindowStart; !date.After(result.WindowEnd); date = date.AddDate(0, 0, 1) {
			g.Go(func() error {
				s.evaluate(ctx, st, a, rules, date, now, t)
				return nil
			})
		}
	}
	_ = g.Wait()

	result.Evaluated = int(t.evaluated.Load())
	result.RemindersSent = int(t.reminders.Load())
	result.EscalationsSent = int(t.escalations.Load())
	result.SkippedDuplicates = int(t.skipped.Load())
	result.AbsentObligations = int(t.absent.Load())
	result.Errors = t.errs
	slices.SortFunc(result.Errors, func(a, b *entity.ItemError) int {
		return cmp.Or(
			cmp.Compare(a.UnitID, b.UnitID),
			cmp.Compare(a.AssignmentID, b.AssignmentID),
			a.Date.Compare(b.Date),
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.EscalationLevel, b.EscalationLevel),
		)
	})

	return result, nil
}

// evaluate runs every rule, then the cross-level escalation check, for one
// (assignment, date) pair. Failures are recorded in t and never stop the run.
func (s *Usecase) evaluate(ctx context.Context, st settings, a entity.Assignment, rules []entity.ReminderRule, date, now time.Time, t *tally) {
	ob, err := s.ReadObligation(ctx, a, date, now)
	if err != nil {
		s.recordFailure(ctx, t, itemError(a, date, entity.RuleKindUnknown, 0, err))
		return
	}
	if ob == nil {
		t.absent.Inc()
		return
	}
	t.evaluated.Inc()

	// keys written or found already dispatched by the rules above
	settled := make(map[entity.DispatchKey]bool)

	for _, rule := range rules {
		if !Decide(now, st.refLoc, *ob, rule).Fire() {
			continue
		}
		out, err := s.fire(ctx, st, a, ob, rule.Kind, rule.EscalationLevel, rule.Recipients, now)
		if out == fireWritten || out == fireDuplicate {
			settled[entity.DispatchKey{ObligationID: ob.ID, Kind: rule.Kind, EscalationLevel: rule.EscalationLevel}] = true
		}
		s.record(ctx, t, a, date, rule.Kind, rule.EscalationLevel, out, err)
	}

	if rule, ok := EscalationRule(now, *ob, rules); ok {
		if settled[entity.DispatchKey{ObligationID: ob.ID, Kind: rule.Kind, EscalationLevel: rule.EscalationLevel}] {
			return
		}
		recipients := []string{entity.Descriptor{Kind: entity.DescriptorManager}.String(), "role:" + st.escalationRole}
		out, err := s.fire(ctx, st, a, ob, rule.Kind, rule.EscalationLevel, recipients, now)
		s.record(ctx, t, a, date, rule.Kind, rule.EscalationLevel, out, err)
	}
}

func (s *Usecase) fire(
	ctx context.Context,
	st settings,
	a entity.Assignment,
	ob *entity.Obligation,
	kind entity.RuleKind,
	level int,
	descriptors []string,
	now time.Time,
) (fireOutcome, error) {
	key := entity.DispatchKey{ObligationID: ob.ID, Kind: kind, EscalationLevel: level}

	dup, err := s.alreadyDispatched(ctx, key, now, st.refLoc)
	if err != nil {
		return fireFailed, err
	}
	if dup {
		return fireDuplicate, nil
	}

	recipients, err := s.ResolveRecipients(ctx, descriptors, a)
	if err != nil {
		return fireFailed, err
	}
	if len(recipients) == 0 {
		return fireEmpty, nil
	}

	if _, err := s.WriteDispatch(ctx, DispatchInput{
		Assignment:      a,
		Obligation:      *ob,
		Kind:            kind,
		EscalationLevel: level,
		Recipients:      recipients,
		Now:             now,
		Day:             civilDate(now, st.refLoc),
	}); err != nil {
		return fireFailed, err
	}

	sentAt := s.clock.Now().UTC()
	ob.ReminderSentCount++
	ob.LastReminderSentAt = &sentAt

	return fireWritten, nil
}

func (s *Usecase) record(
	ctx context.Context,
	t *tally,
	a entity.Assignment,
	date time.Time,
	kind entity.RuleKind,
	level int,
	out fireOutcome,
	err error,
) {
	attrs := metric.WithAttributes(attribute.String("rule_kind", kind.String()), attribute.Int("escalation_level", level))

	switch out {
	case fireWritten:
		if kind == entity.RuleKindAfterDeadline && level >= 2 {
			t.escalations.Inc()
			s.metrics.escalationsSent.Add(ctx, 1, attrs)
			return
		}
		t.reminders.Inc()
		s.metrics.remindersSent.Add(ctx, 1, attrs)

	case fireDuplicate:
		t.skipped.Inc()
		s.metrics.dispatchSkipped.Add(ctx, 1, attrs)

	case fireEmpty:
		slog.DebugContext(ctx, "no recipients resolved", "unit_id", a.UnitID, "date", date.Format(time.DateOnly), "rule_kind", kind.String(), "escalation_level", level)

	case fireFailed:
		s.recordFailure(ctx, t, itemError(a, date, kind, level, err))
	}
}

func (s *Usecase) recordFailure(ctx context.Context, t *tally, ie *entity.ItemError) {
	s.metrics.itemErrors.Add(ctx, 1)
	slog.ErrorContext(ctx, "failed to evaluate reminder item",
		"assignment_id", ie.AssignmentID,
		"unit_id", ie.UnitID,
		"category_id", ie.CategoryID,
		"date", ie.Date.Format(time.DateOnly),
		"rule_kind", ie.Kind.String(),
		"escalation_level", ie.EscalationLevel,
		"error", ie.Err,
	)
	t.fail(ie)
}

func itemError(a entity.Assignment, date time.Time, kind entity.RuleKind, level int, err error) *entity.ItemError {
	return &entity.ItemError{
		AssignmentID:    a.ID,
		UnitID:          a.UnitID,
		CategoryID:      a.CategoryID,
		Date:            date,
		Kind:            kind,
		EscalationLevel: level,
		Err:             err,
	}
}

// keepLease extends lease every third of ttl until the returned stop func is
// called. When an extension fails the run carries on without the lock.
func keepLease(ctx context.Context, lease *runlock.Lease, ttl time.Duration) (stop func()) {
	interval := ttl / 3
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := lease.Extend(ctx, ttl); err != nil {
					slog.WarnContext(ctx, "run lock lost, run is no longer single flight", "key", lease.Key, "ttl", ttl, "error", err)
					return
				}
			}
		}
	})

	return func() {
		close(done)
		wg.Wait()
	}
}
