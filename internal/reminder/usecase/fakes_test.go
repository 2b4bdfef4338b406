package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/clock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/instrument"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/runlock"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/uid"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/validator"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type obligationKey struct {
	unitID     int64
	categoryID int64
	date       string
}

func keyOf(unitID int64, categoryID *int64, date time.Time) obligationKey {
	k := obligationKey{unitID: unitID, date: date.Format(time.DateOnly)}
	if categoryID != nil {
		k.categoryID = *categoryID
	}
	return k
}

type fakeDB struct {
	mu          sync.Mutex
	assignments []entity.Assignment
	obligations map[obligationKey]*entity.Obligation
	rules       []entity.ReminderRule
	records     []entity.NotificationRecord
	dispatches  []entity.Dispatch

	errListAssignments error
	errListGlobalRules error
	errUnitRules       map[int64]error
	errGetObligation   map[string]error // report date -> error
	errExists          error
	errCreate          error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		obligations:      make(map[obligationKey]*entity.Obligation),
		errUnitRules:     make(map[int64]error),
		errGetObligation: make(map[string]error),
	}
}

func (f *fakeDB) addObligation(ob entity.Obligation) *entity.Obligation {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := ob
	f.obligations[keyOf(ob.UnitID, ob.CategoryID, ob.ReportDate)] = &stored
	return &stored
}

func (f *fakeDB) obligation(unitID int64, categoryID *int64, date time.Time) entity.Obligation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.obligations[keyOf(unitID, categoryID, date)]
}

func (f *fakeDB) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeDB) ListActiveAssignments(context.Context) ([]entity.Assignment, error) {
	if f.errListAssignments != nil {
		return nil, f.errListAssignments
	}
	return f.assignments, nil
}

func (f *fakeDB) GetObligation(_ context.Context, unitID int64, categoryID *int64, date time.Time) (*entity.Obligation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errGetObligation[date.Format(time.DateOnly)]; err != nil {
		return nil, err
	}
	ob, ok := f.obligations[keyOf(unitID, categoryID, date)]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *ob
	return &cp, nil
}

func (f *fakeDB) ListReminderRules(_ context.Context, unitID *int64) ([]entity.ReminderRule, error) {
	if unitID == nil && f.errListGlobalRules != nil {
		return nil, f.errListGlobalRules
	}
	if unitID != nil {
		if err := f.errUnitRules[*unitID]; err != nil {
			return nil, err
		}
	}

	var out []entity.ReminderRule
	for _, r := range f.rules {
		switch {
		case unitID == nil && r.UnitID == nil:
			out = append(out, r)
		case unitID != nil && r.UnitID != nil && *r.UnitID == *unitID:
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDB) ExistsNotification(_ context.Context, key entity.DispatchKey, day time.Time) (bool, error) {
	if f.errExists != nil {
		return false, f.errExists
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.Payload.GetInt64("obligation_id") != key.ObligationID ||
			r.Type != key.Type() ||
			r.Payload.GetInt64("escalation_level") != int64(key.EscalationLevel) {
			continue
		}
		if r.Payload.GetString("dispatch_day") == day.Format(time.DateOnly) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) CreateDispatch(_ context.Context, d entity.Dispatch) error {
	if f.errCreate != nil {
		return f.errCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ob := range f.obligations {
		if ob.ID == d.Key.ObligationID {
			ob.ReminderSentCount++
			sent := d.SentAt
			ob.LastReminderSentAt = &sent
		}
	}
	f.records = append(f.records, d.Records...)
	f.dispatches = append(f.dispatches, d)
	return nil
}

type fakeDirectory struct {
	mu       sync.Mutex
	managers map[int64]int64
	roles    map[string][]int64
	errRole  error
	calls    int
}

func (f *fakeDirectory) ListUserIDsByRole(_ context.Context, role string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.errRole != nil {
		return nil, f.errRole
	}
	return f.roles[role], nil
}

func (f *fakeDirectory) GetUnitManager(_ context.Context, unitID int64) (*int64, error) {
	id, ok := f.managers[unitID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []NotificationCreatedEvent
	err    error
}

func (f *fakeMessaging) PublishNotificationCreated(_ context.Context, msg NotificationCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return f.err
}

type fakeEnforcer struct {
	allowed map[string]bool // "sub obj act"
	err     error
}

func (f *fakeEnforcer) Enforce(rvals ...any) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[fmt.Sprintf("%v %v %v", rvals...)], nil
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

var _ uid.NumberID = (*seqID)(nil)

const testConfig = `
reminder:
  reference_tz: UTC
  window:
    days_before: 7
    days_after: 3
  escalation:
    role: superadmin
  scheduler:
    concurrency: 4
    lock_ttl_seconds: 60
  publish_events: true
`

type fixture struct {
	uc     *Usecase
	db     *fakeDB
	dir    *fakeDirectory
	mq     *fakeMessaging
	enf    *fakeEnforcer
	clock  *clock.Fixed
	locker runlock.Locker
}

func newFixture(t *testing.T, now time.Time) *fixture {
	return newFixtureWithConfig(t, now, testConfig)
}

func newFixtureWithConfig(t *testing.T, now time.Time, yaml string) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)
	v, err := validator.NewV10()
	require.NoError(t, err)

	f := &fixture{
		db:     newFakeDB(),
		dir:    &fakeDirectory{managers: map[int64]int64{}, roles: map[string][]int64{}},
		mq:     &fakeMessaging{},
		enf:    &fakeEnforcer{allowed: map[string]bool{}},
		clock:  clock.NewFixed(now),
		locker: runlock.NewLocal(),
	}
	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoDirectory: f.dir,
		RepoMessaging: f.mq,
		Locker:        f.locker,
		Validator:     v,
		Config:        cfg,
		UID:           &seqID{},
		UUID:          uid.NewUUID(),
		Clock:         f.clock,
		Instrument:    instrument.NewNoop(),
		Enforcer:      f.enf,
	})

	return f
}
