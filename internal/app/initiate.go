package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"google.golang.org/api/option"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path,
		config.WithDefaults(map[string]any{
			"app.server.max_goroutine":              32,
			"app.node_id":                           -1,
			"app.server.http.read_timeout_seconds":  15,
			"app.server.http.write_timeout_seconds": 60,
			"instrument.log_level":                  "info",
			"messaging.driver":                      messaging.DriverMemory,
			"casbin.watcher_channel":                "iam_casbin_psql_watcher",
			"reminder.publish_events":               true,
		}),
		config.WithEnvOverride(""),
	)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

// initCache connects Redis for the cross-replica run lock. Without a redis url
// runs are only serialized inside this process.
func (a *App) initCache() {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		slog.Warn("redis url not configured, using process local run lock")
		a.locker = runlock.NewLocal()
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	a.locker = runlock.NewRedis(rdb, a.config.GetString("redis.key_prefix"))
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:         a.config.GetString("messaging.nsq.producer_addr"),
			ConsumerNSQDAddrs:    a.config.GetArray("messaging.nsq.consumer_nsqd_addrs"),
			ConsumerLookupdAddrs: a.config.GetArray("messaging.nsq.consumer_lookupd_addrs"),
		},
		NATS: messaging.NATSConfig{
			URL:  a.config.GetString("messaging.nats.url"),
			Name: a.config.GetString("messaging.nats.name"),
			Options: []nats.Option{
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.MaxPingsOutstanding(a.config.GetInt("messaging.nats.max_pings_outstanding")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers:  a.config.GetArray("messaging.kafka.brokers"),
			MaxBytes: a.config.GetInt("messaging.kafka.max_bytes"),
		},
		PubSub: pubsubConfig(a.config),
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

// pubsubConfig reads messaging.pubsub.*. Credentials come from the
// environment (ADC or PUBSUB_EMULATOR_HOST) unless an endpoint is set.
func pubsubConfig(cfg config.Config) messaging.PubSubConfig {
	var opts []option.ClientOption
	if endpoint := cfg.GetString("messaging.pubsub.endpoint"); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if cfg.GetBool("messaging.pubsub.without_authentication") {
		opts = append(opts, option.WithoutAuthentication())
	}

	return messaging.PubSubConfig{
		ProjectID:             cfg.GetString("messaging.pubsub.project_id"),
		ClientOptions:         opts,
		EnableMessageOrdering: cfg.GetBool("messaging.pubsub.enable_message_ordering"),
	}
}

// initCasbin loads the role grouping and permission policy owned by the
// identity service. The adapter is read-only; changes arrive through the
// watcher's pg_notify channel and trigger a full reload.
func (a *App) initCasbin() {
	const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		slog.Error("failed to create model casbin", "error", err)
		os.Exit(1)
	}

	adapter := pgxcasbin.NewAdapter(a.dbConn, pgxcasbin.WithTableName("identity_casbin_rules"))

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		slog.Error("failed to init casbin", "error", err)
		os.Exit(1)
	}

	watcher := pgxcasbin.NewWatcher(a.ctx, a.dbConn, a.config.GetString("casbin.watcher_channel"))
	if err := e.SetWatcher(watcher); err != nil {
		slog.Error("failed to set watcher casbin", "error", err)
		os.Exit(1)
	}
	if err := watcher.SetUpdateCallback(pgxcasbin.ReloadCallback(e)); err != nil {
		slog.Error("failed to set watcher callback casbin", "error", err)
		os.Exit(1)
	}

	e.EnableAutoSave(false)
	e.EnableAutoNotifyWatcher(false)

	a.casbin = e
	a.casbinWatcher = watcher
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})
	a.router.GET("/health", a.health)

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "CasbinWatcher",
			fn: func(context.Context) error {
				if a.casbinWatcher != nil {
					a.casbinWatcher.Close()
				}

				return nil
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}

				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
