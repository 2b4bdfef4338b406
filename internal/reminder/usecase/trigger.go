package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

type RequestRunInput struct {
	// ReferenceTime is RFC 3339; empty means now.
	ReferenceTime string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// RequestRun starts a run on behalf of an authenticated caller holding the
// reminder.run/create permission.
func (s *Usecase) RequestRun(ctx context.Context, in RequestRunInput) (*RunResult, error) {
	ctx, span := s.startSpan(ctx, "RequestRun")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, PermReminderRun, PermActCreate)
	if err != nil {
		return nil, err
	}

	in.ReferenceTime = strings.TrimSpace(in.ReferenceTime)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var ref time.Time
	if in.ReferenceTime != "" {
		ref, err = time.Parse(time.RFC3339, in.ReferenceTime)
		if err != nil {
			return nil, goerror.NewInvalidInput(nil, "reference_time", "reference_time must be an RFC 3339 timestamp")
		}
	}

	slog.InfoContext(ctx, "reminder run requested", "user_id", clm.UserID, "reference_time", in.ReferenceTime)

	result, err := s.Run(ctx, RunInput{ReferenceTime: ref, Trigger: TriggerHTTP})
	if errors.Is(err, entity.ErrRunInProgress) {
		return nil, goerror.NewBusiness("Reminder run already in progress", goerror.CodeConflict)
	}
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return result, nil
}

type ConsumeRunRequestedInput struct {
	ReferenceTime time.Time
	RequestedBy   string `validate:"max=100"`
}

// ConsumeRunRequested handles a broker request for a run. Only failures
// worth redelivering are returned.
func (s *Usecase) ConsumeRunRequested(ctx context.Context, in ConsumeRunRequestedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeRunRequested")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	return s.backgroundRun(ctx, RunInput{ReferenceTime: in.ReferenceTime, Trigger: TriggerMessage})
}

// ScheduledRun is the cron tick.
func (s *Usecase) ScheduledRun(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "ScheduledRun")
	defer span.End()

	return s.backgroundRun(ctx, RunInput{Trigger: TriggerCron})
}

func (s *Usecase) backgroundRun(ctx context.Context, in RunInput) error {
	result, err := s.Run(ctx, in)
	if errors.Is(err, entity.ErrRunInProgress) {
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "reminder run failed", "trigger", in.Trigger, "error", err)
		return err
	}

	if pErr := result.Err(); pErr != nil {
		slog.WarnContext(ctx, "reminder run finished with item errors", "trigger", in.Trigger, "error", pErr)
	}

	return nil
}

type GetUnitRulesInput struct {
	UnitID int64 `validate:"required,gt=0"`
}

// GetUnitRules returns the rule set that applies to a unit after overrides.
func (s *Usecase) GetUnitRules(ctx context.Context, in GetUnitRulesInput) ([]entity.ReminderRule, error) {
	ctx, span := s.startSpan(ctx, "GetUnitRules")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, PermReminderRules, PermActRead); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rules, err := s.ResolveRules(ctx, in.UnitID)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return rules, nil
}
