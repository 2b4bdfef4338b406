package inbound

import (
	"context"
	"sync"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/jwt"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/messaging"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/usecase"
)

type fakeUsecase struct {
	mu sync.Mutex

	runIn     usecase.RequestRunInput
	runResult *usecase.RunResult
	runErr    error

	rulesIn  usecase.GetUnitRulesInput
	rules    []entity.ReminderRule
	rulesErr error

	consumed   []usecase.ConsumeRunRequestedInput
	consumeErr error

	scheduled   int
	scheduleErr error
}

func (f *fakeUsecase) RequestRun(_ context.Context, in usecase.RequestRunInput) (*usecase.RunResult, error) {
	f.runIn = in
	return f.runResult, f.runErr
}

func (f *fakeUsecase) GetUnitRules(_ context.Context, in usecase.GetUnitRulesInput) ([]entity.ReminderRule, error) {
	f.rulesIn = in
	return f.rules, f.rulesErr
}

func (f *fakeUsecase) ConsumeRunRequested(_ context.Context, in usecase.ConsumeRunRequestedInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumed = append(f.consumed, in)
	return f.consumeErr
}

func (f *fakeUsecase) ScheduledRun(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled++
	return f.scheduleErr
}

type fakeJWT struct{}

func (fakeJWT) Generate(int64) (string, error) { return "", nil }

func (fakeJWT) Verify(token string) (jwt.Claims, error) {
	if token != "good" {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return jwt.Claims{UserID: 7}, nil
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type fakeMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m fakeMessage) Body() []byte                { return m.body }
func (m fakeMessage) Key() []byte                 { return nil }
func (m fakeMessage) Headers() []messaging.Header { return m.headers }
func (m fakeMessage) ID() string                  { return "1" }
func (m fakeMessage) Topic() string               { return "reminder_run_requested" }
func (m fakeMessage) Timestamp() time.Time        { return time.Time{} }
func (m fakeMessage) Ack(context.Context) error   { return nil }
func (m fakeMessage) Nack(context.Context) error  { return nil }

func (m fakeMessage) Header(key string) string {
	for _, h := range m.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
