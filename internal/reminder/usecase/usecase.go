package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/clock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/jwt"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/runlock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/uid"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/validator"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"go.opentelemetry.io/otel/trace"
)

const (
	PermReminderRun   = "reminder.run"
	PermReminderRules = "reminder.rules"
	PermActCreate     = "create"
	PermActRead       = "read"
)

// NotificationCreatedEvent describes one committed outbox batch.
type NotificationCreatedEvent struct {
	NotificationIDs []int64
	ObligationID    int64
	UnitID          int64
	ReportDate      time.Time
	Kind            entity.RuleKind
	EscalationLevel int
	Type            entity.NotificationType
}

type repoDB interface {
	ListActiveAssignments(ctx context.Context) ([]entity.Assignment, error)
	// GetObligation returns goerror.ErrNotFound when no obligation exists.
	GetObligation(ctx context.Context, unitID int64, categoryID *int64, date time.Time) (*entity.Obligation, error)
	// ListReminderRules returns global rules when unitID is nil.
	ListReminderRules(ctx context.Context, unitID *int64) ([]entity.ReminderRule, error)
	ExistsNotification(ctx context.Context, key entity.DispatchKey, day time.Time) (bool, error)
	// CreateDispatch writes the records and bumps the obligation's bookkeeping
	// once, atomically.
	CreateDispatch(ctx context.Context, d entity.Dispatch) error
}

type repoDirectory interface {
	ListUserIDsByRole(ctx context.Context, role string) ([]int64, error)
	// GetUnitManager returns nil when the unit has no manager.
	GetUnitManager(ctx context.Context, unitID int64) (*int64, error)
}

type repoMessaging interface {
	PublishNotificationCreated(ctx context.Context, msg NotificationCreatedEvent) error
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoDirectory repoDirectory
	repoMessaging repoMessaging
	locker        runlock.Locker
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	enforcer      enforcer
	metrics       *metrics
}

type Dependency struct {
	RepoDB        repoDB
	RepoDirectory repoDirectory
	RepoMessaging repoMessaging
	Locker        runlock.Locker
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Enforcer      enforcer
}

func New(dep Dependency) *Usecase {
	locker := dep.Locker
	if locker == nil {
		locker = runlock.NewLocal()
	}

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoDirectory: dep.RepoDirectory,
		repoMessaging: dep.RepoMessaging,
		locker:        locker,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		metrics:       newMetrics(dep.Instrument.Meter("reminder.usecase")),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("reminder.usecase").Start(ctx, name)
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.Subject, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
