package repositories

import (
	"context"
	"testing"

	"docflow/internal/db"
	"docflow/pkg/models"
)

func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()

	database, err := db.NewTest(t)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return New(database)
}

func createUser(t *testing.T, repos *Repositories, orgID int64, email, role string) *models.User {
	t.Helper()

	user, err := repos.Users.Create(context.Background(), orgID, email, "Test User", role, true)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

func createWorkflow(t *testing.T, repos *Repositories, orgID, createdBy int64, steps []CreateStepParams) (*models.Workflow, []*models.WorkflowStep) {
	t.Helper()

	workflow, created, err := repos.Workflows.CreateWithSteps(context.Background(), CreateWorkflowParams{
		OrganizationID: orgID,
		Name:           "Template review",
		CreatedBy:      createdBy,
	}, steps)
	if err != nil {
		t.Fatalf("Failed to create workflow: %v", err)
	}
	return workflow, created
}
