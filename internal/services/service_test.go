package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"docflow/internal/db"
	"docflow/internal/db/repositories"
	"docflow/internal/workflows"
	"docflow/pkg/models"
)

type testEnv struct {
	repos     *repositories.Repositories
	workflows *WorkflowService
	instances *InstanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.NewTest(t)
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { _ = database.Close() })

	repos := repositories.New(database)
	resolver := NewApproverResolver(NewUserRoleDirectory(repos.Users))

	return &testEnv{
		repos:     repos,
		workflows: NewWorkflowService(repos),
		instances: NewInstanceService(repos, resolver),
	}
}

func (e *testEnv) user(t *testing.T, orgID int64, email, role string) *models.User {
	t.Helper()
	user, err := e.repos.Users.Create(context.Background(), orgID, email, "Test User", role, true)
	require.NoError(t, err)
	return user
}

func (e *testEnv) definition(t *testing.T, orgID, createdBy int64, steps ...workflows.StepInput) *models.Workflow {
	t.Helper()
	workflow, _, _, err := e.workflows.CreateDefinition(context.Background(), orgID, createdBy, workflows.DefinitionInput{
		Name:  "Template review",
		Steps: steps,
	})
	require.NoError(t, err)
	return workflow
}

func roleStep(order int64, role string) workflows.StepInput {
	return workflows.StepInput{StepOrder: order, Name: "Review", ApproverRole: &role}
}

func userStep(order int64, userID int64) workflows.StepInput {
	return workflows.StepInput{StepOrder: order, Name: "Review", ApproverUserID: &userID}
}

// pendingFor fetches the single pending approval slot a user currently has.
func (e *testEnv) pendingFor(t *testing.T, approverID int64) *models.PendingApproval {
	t.Helper()
	pending, err := e.instances.PendingApprovalsFor(context.Background(), approverID)
	require.NoError(t, err)
	require.Len(t, pending, 1, "expected exactly one pending approval for user %d", approverID)
	return pending[0]
}
