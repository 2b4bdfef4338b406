package inbound

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goroutine"
	"github.com/robfig/cron/v3"
)

const (
	defaultCronSpec = "0 0 * * * *"
	cronTaskName    = "reminder_scheduler_cron"
)

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// cronLogger routes robfig/cron logs to slog.
type cronLogger struct {
	ctx context.Context
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	slog.DebugContext(l.ctx, "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.ErrorContext(l.ctx, "cron: "+msg, append(keysAndValues, "error", err)...)
}

// RegisterCronTrigger schedules uc.ScheduledRun on reminder.scheduler.cron
// and hosts the cron loop in routine until ctx is done.
func RegisterCronTrigger(ctx context.Context, cfg config.Config, routine *goroutine.Manager, uc ucScheduler) error {
	c, err := newCron(ctx, cfg, uc)
	if err != nil {
		return err
	}

	return routine.Go(ctx, cronTaskName, func(pCtx context.Context) error {
		slog.InfoContext(pCtx, "Running reminder scheduler cron", "spec", cronSpec(cfg))
		c.Start()
		<-pCtx.Done()
		<-c.Stop().Done()
		return nil
	})
}

func newCron(ctx context.Context, cfg config.Config, uc ucScheduler) (*cron.Cron, error) {
	loc := time.UTC
	if name := strings.TrimSpace(cfg.GetString("reminder.reference_tz")); name != "" {
		l, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("reminder cron location %q: %w", name, err)
		}
		loc = l
	}

	logger := cronLogger{ctx: ctx}
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	spec := cronSpec(cfg)
	if _, err := c.AddFunc(spec, func() {
		if err := uc.ScheduledRun(ctx); err != nil {
			slog.ErrorContext(ctx, "scheduled reminder run failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("reminder cron spec %q: %w", spec, err)
	}

	return c, nil
}

func cronSpec(cfg config.Config) string {
	if spec := strings.TrimSpace(cfg.GetString("reminder.scheduler.cron")); spec != "" {
		return spec
	}
	return defaultCronSpec
}
