package usecase

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
)

type ruleSlot struct {
	kind  entity.RuleKind
	level int
}

// ruleCheck is the shape a stored rule must have to take part in evaluation.
type ruleCheck struct {
	Kind            int16 `validate:"oneof=1 2 3"`
	OffsetDays      int   `validate:"gte=0,lte=366"`
	EscalationLevel int   `validate:"gte=1"`
}

// ResolveRules returns the active rules that apply to unitID: one per
// (kind, escalation level), a unit rule replacing the global one for the
// same pair. The result is ordered by level, then before, on, after.
func (s *Usecase) ResolveRules(ctx context.Context, unitID int64) ([]entity.ReminderRule, error) {
	ctx, span := s.startSpan(ctx, "ResolveRules")
	defer span.End()

	global, err := s.repoDB.ListReminderRules(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list global reminder rules", "error", err)
		return nil, &entity.DataAccessError{Op: "list global reminder rules", Err: err}
	}

	return s.unitRules(ctx, unitID, global)
}

func (s *Usecase) unitRules(ctx context.Context, unitID int64, global []entity.ReminderRule) ([]entity.ReminderRule, error) {
	scoped, err := s.repoDB.ListReminderRules(ctx, &unitID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list unit reminder rules", "unit_id", unitID, "error", err)
		return nil, &entity.DataAccessError{Op: "list unit reminder rules", Err: err}
	}

	return mergeRules(s.usableRules(ctx, global), s.usableRules(ctx, scoped)), nil
}

func (s *Usecase) usableRules(ctx context.Context, rules []entity.ReminderRule) []entity.ReminderRule {
	out := make([]entity.ReminderRule, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if err := s.validator.Validate(ruleCheck{
			Kind:            int16(r.Kind),
			OffsetDays:      r.OffsetDays,
			EscalationLevel: r.EscalationLevel,
		}); err != nil {
			slog.WarnContext(ctx, "reminder rule skipped", "rule_id", r.ID, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// mergeRules keeps one rule per slot, scoped beating global. Ties within
// the same scope go to the lowest id.
func mergeRules(global, scoped []entity.ReminderRule) []entity.ReminderRule {
	winners := make(map[ruleSlot]entity.ReminderRule, len(global)+len(scoped))
	pick := func(rules []entity.ReminderRule, override bool) {
		for _, r := range rules {
			slot := ruleSlot{kind: r.Kind, level: r.EscalationLevel}
			cur, exists := winners[slot]
			switch {
			case !exists:
				winners[slot] = r
			case override && cur.IsGlobal():
				winners[slot] = r
			case cur.IsGlobal() == r.IsGlobal() && r.ID < cur.ID:
				winners[slot] = r
			}
		}
	}
	pick(global, false)
	pick(scoped, true)

	out := make([]entity.ReminderRule, 0, len(winners))
	for _, r := range winners {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b entity.ReminderRule) int {
		return cmp.Or(
			cmp.Compare(a.EscalationLevel, b.EscalationLevel),
			cmp.Compare(a.Kind, b.Kind),
		)
	})

	return out
}
