package cli

import (
	"context"
	"errors"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/rs/zerolog/log"
)

var (
	ownerOnly        = []api.ProjectMemberRole{api.RoleOwner}
	ownerOrAccepter  = []api.ProjectMemberRole{api.RoleOwner, api.RoleAccepter}
	archiveReaders   = []api.ProjectMemberRole{api.RoleOwner, api.RoleAccepter, api.RoleTrainingDataUser}
	anyProjectMember = []api.ProjectMemberRole{api.RoleOwner, api.RoleAccepter, api.RoleWorker, api.RoleTrainingDataUser}
)

// requireProjectRole checks the caller's membership before any per-item work.
// It returns the membership so callers can use the caller's account id.
func requireProjectRole(c context.Context, ctx *Context, projectID string, roles []api.ProjectMemberRole) (api.ProjectMember, error) {
	if err := ensureClient(ctx); err != nil {
		return api.ProjectMember{}, err
	}
	member, _, err := ctx.Client.GetMyMember(c, projectID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return api.ProjectMember{}, &AuthorizationError{ProjectID: projectID, Required: roles}
		}
		return api.ProjectMember{}, err
	}
	for _, r := range roles {
		if member.MemberRole == r {
			log.Debug().Str("project_id", projectID).Str("role", string(r)).Msg("role check passed")
			return member, nil
		}
	}
	return api.ProjectMember{}, &AuthorizationError{ProjectID: projectID, Required: roles, Actual: member.MemberRole}
}
