package inbound

import (
	"context"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/usecase"
)

type ucConsumer interface {
	ConsumeRunRequested(ctx context.Context, in usecase.ConsumeRunRequestedInput) error
}

type ucScheduler interface {
	ScheduledRun(ctx context.Context) error
}

type uc interface {
	ucConsumer
	ucScheduler

	RequestRun(ctx context.Context, in usecase.RequestRunInput) (*usecase.RunResult, error)
	GetUnitRules(ctx context.Context, in usecase.GetUnitRulesInput) ([]entity.ReminderRule, error)
}
