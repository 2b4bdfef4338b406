package inbound

import (
	"time"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/router"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/usecase"
)

type HTTPEndpoint struct {
	uc uc
}

// RequestRun runs the scheduler once and returns its summary.
// @Summary Run reminder scheduler
// @Description Evaluates every active assignment and writes the reminders and escalations that are due.
// @Tags Reminder
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body RunRequest false "Optional reference time (RFC 3339)"
// @Success 200 {object} router.successResponse{data=RunResponse} "Run summary"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 409 {object} router.errorResponse "Run already in progress"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/reminder/runs [post]
func (h *HTTPEndpoint) RequestRun(r *router.Request) (any, error) {
	var req RunRequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}

	res, err := h.uc.RequestRun(r.Context(), usecase.RequestRunInput{ReferenceTime: req.ReferenceTime})
	if err != nil {
		return nil, err
	}

	resp := RunResponse{
		RunID:             res.RunID,
		Trigger:           res.Trigger,
		ReferenceTime:     res.ReferenceTime,
		WindowStart:       res.WindowStart.Format(time.DateOnly),
		WindowEnd:         res.WindowEnd.Format(time.DateOnly),
		Assignments:       res.Assignments,
		Evaluated:         res.Evaluated,
		RemindersSent:     res.RemindersSent,
		EscalationsSent:   res.EscalationsSent,
		SkippedDuplicates: res.SkippedDuplicates,
		AbsentObligations: res.AbsentObligations,
		Errors:            make([]RunItemErrorResponse, 0, len(res.Errors)),
	}
	for _, ie := range res.Errors {
		resp.Errors = append(resp.Errors, RunItemErrorResponse{
			AssignmentID:    ie.AssignmentID,
			UnitID:          ie.UnitID,
			CategoryID:      ie.CategoryID,
			Date:            ie.Date.Format(time.DateOnly),
			RuleKind:        ie.Kind.String(),
			EscalationLevel: ie.EscalationLevel,
			Message:         ie.Err.Error(),
		})
	}

	return resp, nil
}

// GetUnitRules returns the effective rule set of a unit.
// @Summary Effective reminder rules
// @Description Returns the active rules of a unit after unit overrides are applied to the global defaults.
// @Tags Reminder
// @Security BearerAuth
// @Produce json
// @Param id path int true "Unit ID"
// @Success 200 {object} router.successResponse{data=UnitRulesResponse} "Rule list"
// @Failure 400 {object} router.errorResponse "Invalid unit id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/reminder/units/{id}/rules [get]
func (h *HTTPEndpoint) GetUnitRules(r *router.Request) (any, error) {
	unitID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	rules, err := h.uc.GetUnitRules(r.Context(), usecase.GetUnitRulesInput{UnitID: unitID})
	if err != nil {
		return nil, err
	}

	resp := UnitRulesResponse{UnitID: unitID, Rules: make([]RuleResponse, 0, len(rules))}
	for _, rule := range rules {
		scope := "unit"
		if rule.IsGlobal() {
			scope = "global"
		}
		resp.Rules = append(resp.Rules, RuleResponse{
			ID:              rule.ID,
			UnitID:          rule.UnitID,
			Scope:           scope,
			Kind:            rule.Kind.String(),
			OffsetDays:      rule.OffsetDays,
			EscalationLevel: rule.EscalationLevel,
			Recipients:      rule.Recipients,
		})
	}

	return resp, nil
}
