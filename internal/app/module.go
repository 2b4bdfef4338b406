package app

import (
	"log/slog"
	"os"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.reminder.enabled") {
		if err := reminder.New(reminder.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Router:     a.router,
			Locker:     a.locker,
			Enforcer:   a.casbin,
		}); err != nil {
			slog.Error("failed to init module reminder", "error", err)
			os.Exit(1)
		}
	}
}
