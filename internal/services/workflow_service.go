package services

import (
	"context"
	"fmt"

	"docflow/internal/db/repositories"
	"docflow/internal/workflows"
	"docflow/pkg/models"
)

// WorkflowService manages workflow definitions and their ordered steps.
//
// Definitions stay mutable after instances have started against them; an
// instance references its steps by id, so later edits bleed into running
// instances. That mirrors the platform's historical behavior and is kept
// deliberately (see DESIGN.md).
type WorkflowService struct {
	repos *repositories.Repositories
}

func NewWorkflowService(repos *repositories.Repositories) *WorkflowService {
	return &WorkflowService{repos: repos}
}

// CreateDefinition validates the input and creates the definition with all of
// its steps in one transaction. Warnings (steps with no approver, zero steps)
// are returned alongside the created rows for the caller to surface.
func (s *WorkflowService) CreateDefinition(ctx context.Context, organizationID, createdBy int64, input workflows.DefinitionInput) (*models.Workflow, []*models.WorkflowStep, workflows.ValidationResult, error) {
	validation := workflows.ValidateDefinition(input)
	if !validation.Valid() {
		return nil, nil, validation, workflows.ErrValidation
	}

	stepParams := make([]repositories.CreateStepParams, 0, len(input.Steps))
	for _, step := range input.Steps {
		stepParams = append(stepParams, stepParamsFromInput(step))
	}

	workflow, steps, err := s.repos.Workflows.CreateWithSteps(ctx, repositories.CreateWorkflowParams{
		OrganizationID: organizationID,
		Name:           input.Name,
		Description:    input.Description,
		IsDefault:      input.IsDefault,
		CreatedBy:      createdBy,
	}, stepParams)
	if err != nil {
		return nil, nil, validation, err
	}
	return workflow, steps, validation, nil
}

// GetDefinition returns a definition and its steps ordered by step_order.
func (s *WorkflowService) GetDefinition(ctx context.Context, id int64) (*models.Workflow, []*models.WorkflowStep, error) {
	workflow, err := s.repos.Workflows.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	steps, err := s.repos.Steps.ListByWorkflow(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return workflow, steps, nil
}

// ListDefinitions returns a tenant's definitions, newest first.
func (s *WorkflowService) ListDefinitions(ctx context.Context, organizationID int64) ([]*models.Workflow, error) {
	return s.repos.Workflows.ListByOrganization(ctx, organizationID)
}

// GetDefaultDefinition returns the organization-wide fallback definition.
func (s *WorkflowService) GetDefaultDefinition(ctx context.Context, organizationID int64) (*models.Workflow, error) {
	return s.repos.Workflows.GetDefault(ctx, organizationID)
}

func (s *WorkflowService) UpdateDefinition(ctx context.Context, id int64, name string, description *string, isDefault bool) (*models.Workflow, error) {
	return s.repos.Workflows.Update(ctx, id, repositories.UpdateWorkflowParams{
		Name:        name,
		Description: description,
		IsDefault:   isDefault,
	})
}

func (s *WorkflowService) DeleteDefinition(ctx context.Context, id int64) error {
	return s.repos.Workflows.Delete(ctx, id)
}

// AddStep appends a step to an existing definition. A step_order collision
// with a sibling is reported as a validation failure, the same way batch
// creation reports duplicate orders.
func (s *WorkflowService) AddStep(ctx context.Context, workflowID int64, input workflows.StepInput) (*models.WorkflowStep, workflows.ValidationResult, error) {
	validation := workflows.ValidateStep(input)
	if !validation.Valid() {
		return nil, validation, workflows.ErrValidation
	}

	if _, err := s.repos.Workflows.Get(ctx, workflowID); err != nil {
		return nil, validation, err
	}

	step, err := s.repos.Steps.Create(ctx, workflowID, stepParamsFromInput(input))
	if repositories.IsUniqueViolation(err) {
		return nil, duplicateOrderResult(validation, input.StepOrder), workflows.ErrValidation
	}
	if err != nil {
		return nil, validation, err
	}
	return step, validation, nil
}

func (s *WorkflowService) UpdateStep(ctx context.Context, stepID int64, input workflows.StepInput) (*models.WorkflowStep, workflows.ValidationResult, error) {
	validation := workflows.ValidateStep(input)
	if !validation.Valid() {
		return nil, validation, workflows.ErrValidation
	}

	params := stepParamsFromInput(input)
	step, err := s.repos.Steps.Update(ctx, stepID, repositories.UpdateStepParams{
		StepOrder:   params.StepOrder,
		Name:        params.Name,
		Description: params.Description,
		Approver:    params.Approver,
		IsRequired:  params.IsRequired,
		CanReject:   params.CanReject,
		CanComment:  params.CanComment,
		TimeoutDays: params.TimeoutDays,
	})
	if repositories.IsUniqueViolation(err) {
		return nil, duplicateOrderResult(validation, input.StepOrder), workflows.ErrValidation
	}
	if err != nil {
		return nil, validation, err
	}
	return step, validation, nil
}

func duplicateOrderResult(validation workflows.ValidationResult, stepOrder int64) workflows.ValidationResult {
	validation.Errors = append(validation.Errors, workflows.ValidationIssue{
		Code:    "DUPLICATE_STEP_ORDER",
		Path:    "/step_order",
		Message: fmt.Sprintf("step_order %d is already used by another step of this workflow", stepOrder),
		Hint:    "step_order values define the advancement sequence and must be unique within a definition.",
	})
	return validation
}

func (s *WorkflowService) DeleteStep(ctx context.Context, stepID int64) error {
	return s.repos.Steps.Delete(ctx, stepID)
}

func stepParamsFromInput(input workflows.StepInput) repositories.CreateStepParams {
	spec := models.ApproverSpec{}
	switch {
	case input.ApproverUserID != nil:
		spec = models.UserSpec(*input.ApproverUserID)
	case input.ApproverRole != nil && *input.ApproverRole != "":
		spec = models.RoleSpec(*input.ApproverRole)
	}

	return repositories.CreateStepParams{
		StepOrder:   input.StepOrder,
		Name:        input.Name,
		Description: input.Description,
		Approver:    spec,
		IsRequired:  boolOrDefault(input.IsRequired, true),
		CanReject:   boolOrDefault(input.CanReject, true),
		CanComment:  boolOrDefault(input.CanComment, true),
		TimeoutDays: input.TimeoutDays,
	}
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
