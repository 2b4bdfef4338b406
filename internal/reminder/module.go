package reminder

import (
	"context"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/clock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goroutine"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/messaging"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/router"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/runlock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/uid"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/validator"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/inbound"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/outbound/db"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/outbound/directory"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/outbound/mq"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/usecase"
)

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool
	Messaging  messaging.Messaging
	Config     config.Config
	Instrument instrument.Instrumentation
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	Goroutine  *goroutine.Manager
	Validator  validator.Validator
	Router     *router.Router
	Locker     runlock.Locker
	Enforcer   *casbin.Enforcer
}

func New(dep Dependency) error {
	dbReminder := db.NewDB(dep.DBConn, dep.Instrument)
	dirReminder := directory.NewDirectory(dep.Enforcer, dep.DBConn, dep.Instrument)
	mqReminder := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbReminder,
		RepoDirectory: dirReminder,
		RepoMessaging: mqReminder,
		Locker:        dep.Locker,
		Validator:     dep.Validator,
		Config:        dep.Config,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx == nil {
		return nil
	}

	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	if dep.Config.GetBool("modules.reminder.cron_enabled") {
		if err := inbound.RegisterCronTrigger(dep.Ctx, dep.Config, dep.Goroutine, uc); err != nil {
			return err
		}
	}

	return nil
}
