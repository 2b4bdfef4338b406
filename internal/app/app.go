package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/clock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goroutine"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/jwt"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/messaging"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/pgxcasbin"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/router"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/runlock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/uid"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn        *pgxpool.Pool
	cacheConn     *redis.Client
	locker        runlock.Locker
	messaging     messaging.Messaging
	casbin        *casbin.Enforcer
	casbinWatcher *pgxcasbin.Watcher

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
