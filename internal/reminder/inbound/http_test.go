package inbound

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/router"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, uc *fakeUsecase) *router.Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  name: reminder\n"))
	require.NoError(t, err)

	r := router.NewRouter(router.Config{Config: cfg, UUID: fixedID("cid"), JWT: fakeJWT{}})
	RegisterHTTPEndpoint(r, uc)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHTTPEndpoint_RequestRun(t *testing.T) {
	t.Run("returns the run summary", func(t *testing.T) {
		// Arrange
		uc := &fakeUsecase{runResult: &usecase.RunResult{
			RunID:         "run-1",
			Trigger:       usecase.TriggerHTTP,
			ReferenceTime: time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC),
			WindowStart:   time.Date(2024, time.February, 24, 0, 0, 0, 0, time.UTC),
			WindowEnd:     time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
			Evaluated:     1,
			RemindersSent: 1,
			Errors: []*entity.ItemError{{
				AssignmentID: 2,
				UnitID:       20,
				Date:         time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
				Kind:         entity.RuleKindAfterDeadline,
				Err:          errors.New("boom"),
			}},
		}}
		srv := newTestServer(t, uc)

		// Act
		rec := serve(srv, http.MethodPost, "/api/v1/reminder/runs", `{"reference_time":"2024-03-02T09:00:00Z"}`)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2024-03-02T09:00:00Z", uc.runIn.ReferenceTime)
		body := rec.Body.String()
		assert.Contains(t, body, `"message":"Reminder run finished"`)
		assert.Contains(t, body, `"run_id":"run-1"`)
		assert.Contains(t, body, `"window_start":"2024-02-24"`)
		assert.Contains(t, body, `"reminders_sent":1`)
		assert.Contains(t, body, `"unit_id":"20"`)
		assert.Contains(t, body, `"rule_kind":"after_deadline"`)
		assert.Contains(t, body, `"message":"boom"`)
	})

	t.Run("empty body runs at now", func(t *testing.T) {
		uc := &fakeUsecase{runResult: &usecase.RunResult{RunID: "run-2"}}
		srv := newTestServer(t, uc)

		rec := serve(srv, http.MethodPost, "/api/v1/reminder/runs", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, uc.runIn.ReferenceTime)
		assert.Contains(t, rec.Body.String(), `"errors":[]`)
	})

	t.Run("unknown field", func(t *testing.T) {
		srv := newTestServer(t, &fakeUsecase{})

		rec := serve(srv, http.MethodPost, "/api/v1/reminder/runs", `{"when":"now"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("run in progress", func(t *testing.T) {
		srv := newTestServer(t, &fakeUsecase{runErr: goerror.NewBusiness("Reminder run already in progress", goerror.CodeConflict)})

		rec := serve(srv, http.MethodPost, "/api/v1/reminder/runs", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Reminder run already in progress")
	})
}

func TestHTTPEndpoint_GetUnitRules(t *testing.T) {
	t.Run("lists effective rules", func(t *testing.T) {
		unitID := int64(10)
		uc := &fakeUsecase{rules: []entity.ReminderRule{
			{ID: 1, Kind: entity.RuleKindBeforeDeadline, OffsetDays: 2, EscalationLevel: 1, Recipients: []string{"assignee"}},
			{ID: 2, UnitID: &unitID, Kind: entity.RuleKindAfterDeadline, OffsetDays: 1, EscalationLevel: 1, Recipients: []string{"manager"}},
		}}
		srv := newTestServer(t, uc)

		rec := serve(srv, http.MethodGet, "/api/v1/reminder/units/10/rules", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(10), uc.rulesIn.UnitID)
		body := rec.Body.String()
		assert.Contains(t, body, `"scope":"global"`)
		assert.Contains(t, body, `"scope":"unit"`)
		assert.Contains(t, body, `"kind":"before_deadline"`)
		assert.Contains(t, body, `"recipients":["manager"]`)
	})

	t.Run("invalid unit id", func(t *testing.T) {
		srv := newTestServer(t, &fakeUsecase{})

		rec := serve(srv, http.MethodGet, "/api/v1/reminder/units/abc/rules", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		srv := newTestServer(t, &fakeUsecase{rulesErr: goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)})

		rec := serve(srv, http.MethodGet, "/api/v1/reminder/units/10/rules", "")

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
