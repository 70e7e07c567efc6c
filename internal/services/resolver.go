package services

import (
	"context"

	"docflow/internal/db/repositories"
	"docflow/pkg/models"
)

// RoleDirectory is the external identity/role directory consulted when a
// role-based step activates. It is injected so tests and alternative
// directories (LDAP, SSO sync, ...) can replace the database-backed default.
type RoleDirectory interface {
	ListIdentitiesWithRole(ctx context.Context, organizationID int64, role string) ([]int64, error)
}

// userRoleDirectory resolves roles against the users relation.
type userRoleDirectory struct {
	users *repositories.UserRepo
}

// NewUserRoleDirectory returns the database-backed RoleDirectory.
func NewUserRoleDirectory(users *repositories.UserRepo) RoleDirectory {
	return &userRoleDirectory{users: users}
}

func (d *userRoleDirectory) ListIdentitiesWithRole(ctx context.Context, organizationID int64, role string) ([]int64, error) {
	users, err := d.users.ListActiveByRole(ctx, organizationID, role)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ids, nil
}

// ApproverResolver turns a step's approver spec into the concrete identities
// required to decide it. Role specs are resolved fresh on every call:
// approvers are determined by current role membership, never frozen at
// definition time.
type ApproverResolver struct {
	directory RoleDirectory
}

func NewApproverResolver(directory RoleDirectory) *ApproverResolver {
	return &ApproverResolver{directory: directory}
}

// Resolve may return an empty set (a role nobody holds, or a step created
// with no approver spec). Callers fan out zero approvals in that case and the
// step can never reach consensus.
func (r *ApproverResolver) Resolve(ctx context.Context, organizationID int64, step *models.WorkflowStep) ([]int64, error) {
	switch step.Approver.Kind {
	case models.ApproverKindUser:
		return []int64{step.Approver.UserID}, nil
	case models.ApproverKindRole:
		return r.directory.ListIdentitiesWithRole(ctx, organizationID, step.Approver.Role)
	default:
		return nil, nil
	}
}
