package repositories

import (
	"context"
	"errors"
	"testing"

	"docflow/pkg/models"
)

func TestWorkflowRepo_CreateWithSteps(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	admin := createUser(t, repos, 1, "admin@example.com", "admin")

	desc := "Two-stage review"
	workflow, steps, err := repos.Workflows.CreateWithSteps(ctx, CreateWorkflowParams{
		OrganizationID: 1,
		Name:           "Template review",
		Description:    &desc,
		IsDefault:      true,
		CreatedBy:      admin.ID,
	}, []CreateStepParams{
		{StepOrder: 1, Name: "Manager review", Approver: models.RoleSpec("manager"), IsRequired: true, CanReject: true, CanComment: true},
		{StepOrder: 2, Name: "Director sign-off", Approver: models.UserSpec(admin.ID), IsRequired: true, CanReject: true, CanComment: true},
	})
	if err != nil {
		t.Fatalf("Failed to create workflow with steps: %v", err)
	}

	if workflow.ID == 0 {
		t.Error("Expected workflow ID to be set")
	}
	if workflow.Description == nil || *workflow.Description != desc {
		t.Errorf("Expected description %q, got %v", desc, workflow.Description)
	}
	if !workflow.IsDefault {
		t.Error("Expected is_default to be true")
	}
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(steps))
	}
	if steps[0].Approver.Kind != models.ApproverKindRole || steps[0].Approver.Role != "manager" {
		t.Errorf("Expected role spec 'manager', got %+v", steps[0].Approver)
	}
	if steps[1].Approver.Kind != models.ApproverKindUser || steps[1].Approver.UserID != admin.ID {
		t.Errorf("Expected user spec %d, got %+v", admin.ID, steps[1].Approver)
	}
}

func TestWorkflowRepo_CreateWithSteps_DuplicateOrderRollsBack(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	admin := createUser(t, repos, 1, "admin@example.com", "admin")

	_, _, err := repos.Workflows.CreateWithSteps(ctx, CreateWorkflowParams{
		OrganizationID: 1,
		Name:           "Broken",
		CreatedBy:      admin.ID,
	}, []CreateStepParams{
		{StepOrder: 1, Name: "A", Approver: models.RoleSpec("manager"), IsRequired: true, CanReject: true, CanComment: true},
		{StepOrder: 1, Name: "B", Approver: models.RoleSpec("director"), IsRequired: true, CanReject: true, CanComment: true},
	})
	if err == nil {
		t.Fatal("Expected constraint error for duplicate step_order")
	}

	// The transaction must leave nothing behind.
	workflows, err := repos.Workflows.ListByOrganization(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list workflows: %v", err)
	}
	if len(workflows) != 0 {
		t.Errorf("Expected rollback to remove the definition, found %d", len(workflows))
	}
}

func TestWorkflowRepo_GetAndNotFound(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	admin := createUser(t, repos, 1, "admin@example.com", "admin")
	workflow, _ := createWorkflow(t, repos, 1, admin.ID, nil)

	loaded, err := repos.Workflows.Get(ctx, workflow.ID)
	if err != nil {
		t.Fatalf("Failed to get workflow: %v", err)
	}
	if loaded.Name != workflow.Name {
		t.Errorf("Expected name %q, got %q", workflow.Name, loaded.Name)
	}

	if _, err := repos.Workflows.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestWorkflowRepo_ListByOrganization_NewestFirst(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	admin := createUser(t, repos, 1, "admin@example.com", "admin")

	first, _ := createWorkflow(t, repos, 1, admin.ID, nil)
	second, _ := createWorkflow(t, repos, 1, admin.ID, nil)
	// A different tenant's definition must not leak in.
	other := createUser(t, repos, 2, "other@example.com", "admin")
	createWorkflow(t, repos, 2, other.ID, nil)

	listed, err := repos.Workflows.ListByOrganization(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list workflows: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("Expected 2 workflows, got %d", len(listed))
	}
	if listed[0].ID != second.ID || listed[1].ID != first.ID {
		t.Errorf("Expected newest-first order [%d %d], got [%d %d]", second.ID, first.ID, listed[0].ID, listed[1].ID)
	}
}

func TestWorkflowRepo_GetDefault(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	admin := createUser(t, repos, 1, "admin@example.com", "admin")

	if _, err := repos.Workflows.GetDefault(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound with no default, got %v", err)
	}

	createWorkflow(t, repos, 1, admin.ID, nil)
	def, _, err := repos.Workflows.CreateWithSteps(ctx, CreateWorkflowParams{
		OrganizationID: 1,
		Name:           "Fallback",
		IsDefault:      true,
		CreatedBy:      admin.ID,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create default workflow: %v", err)
	}

	loaded, err := repos.Workflows.GetDefault(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get default workflow: %v", err)
	}
	if loaded.ID != def.ID {
		t.Errorf("Expected default workflow %d, got %d", def.ID, loaded.ID)
	}
}

func TestWorkflowRepo_UpdateAndDelete(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	admin := createUser(t, repos, 1, "admin@example.com", "admin")
	workflow, _ := createWorkflow(t, repos, 1, admin.ID, nil)

	updated, err := repos.Workflows.Update(ctx, workflow.ID, UpdateWorkflowParams{
		Name:      "Renamed",
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("Failed to update workflow: %v", err)
	}
	if updated.Name != "Renamed" || !updated.IsDefault {
		t.Errorf("Update not applied: %+v", updated)
	}

	if err := repos.Workflows.Delete(ctx, workflow.ID); err != nil {
		t.Fatalf("Failed to delete workflow: %v", err)
	}
	if err := repos.Workflows.Delete(ctx, workflow.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}
