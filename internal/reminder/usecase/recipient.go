package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/goerror"
	"github.com/lakshaytakkar/team-portal-sub003/internal/reminder/entity"
	"github.com/samber/lo"
)

// ResolveRecipients expands raw descriptors into a deduplicated, ascending
// list of user ids. A missing assignee or manager contributes nothing; only
// a malformed descriptor is an error.
func (s *Usecase) ResolveRecipients(ctx context.Context, raws []string, a entity.Assignment) ([]int64, error) {
	ctx, span := s.startSpan(ctx, "ResolveRecipients")
	defer span.End()

	descs := make([]entity.Descriptor, 0, len(raws))
	for _, raw := range raws {
		d, err := entity.ParseDescriptor(raw)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}

	var ids []int64
	for _, d := range descs {
		switch d.Kind {
		case entity.DescriptorExplicit:
			ids = append(ids, d.UserID)

		case entity.DescriptorAssignee:
			if a.AssignedUserID != nil && *a.AssignedUserID > 0 {
				ids = append(ids, *a.AssignedUserID)
			}

		case entity.DescriptorManager:
			managerID, err := s.repoDirectory.GetUnitManager(ctx, a.UnitID)
			if errors.Is(err, goerror.ErrNotFound) {
				continue
			}
			if err != nil {
				slog.ErrorContext(ctx, "failed to repo get unit manager", "unit_id", a.UnitID, "error", err)
				return nil, &entity.DataAccessError{Op: "get unit manager", Err: err}
			}
			if managerID != nil && *managerID > 0 {
				ids = append(ids, *managerID)
			}

		case entity.DescriptorRole:
			users, err := s.repoDirectory.ListUserIDsByRole(ctx, d.Role)
			if err != nil {
				slog.ErrorContext(ctx, "failed to repo list users by role", "role", d.Role, "error", err)
				return nil, &entity.DataAccessError{Op: "list users by role", Err: err}
			}
			ids = append(ids, users...)
		}
	}

	ids = lo.Uniq(ids)
	slices.Sort(ids)

	return ids, nil
}
