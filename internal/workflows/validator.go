package workflows

import "fmt"

// ValidateDefinition checks a definition input, returning both errors and
// warnings. A definition with zero steps is legal (an instance started from
// it is vacuously approved); a step with no approver spec is legal too, but
// warned about, since such a step can never reach consensus.
func ValidateDefinition(input DefinitionInput) ValidationResult {
	var result ValidationResult

	if input.Name == "" {
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    "MISSING_NAME",
			Path:    "/name",
			Message: "Workflow definitions must have a name",
		})
	}

	if len(input.Steps) == 0 {
		result.Warnings = append(result.Warnings, ValidationIssue{
			Code:    "NO_STEPS",
			Path:    "/steps",
			Message: "Definition has no steps; instances started from it are approved immediately",
		})
	}

	seenOrders := make(map[int64]int, len(input.Steps))
	for i, step := range input.Steps {
		path := fmt.Sprintf("/steps/%d", i)

		if step.Name == "" {
			result.Errors = append(result.Errors, ValidationIssue{
				Code:    "MISSING_STEP_NAME",
				Path:    path + "/name",
				Message: "Every step must have a name",
			})
		}

		if prev, dup := seenOrders[step.StepOrder]; dup {
			result.Errors = append(result.Errors, ValidationIssue{
				Code:    "DUPLICATE_STEP_ORDER",
				Path:    path + "/step_order",
				Message: fmt.Sprintf("step_order %d is already used by step %d", step.StepOrder, prev),
				Hint:    "step_order values define the advancement sequence and must be unique within a definition.",
			})
		} else {
			seenOrders[step.StepOrder] = i
		}

		result = validateApproverSpec(result, path, step)

		if step.TimeoutDays != nil && *step.TimeoutDays <= 0 {
			result.Errors = append(result.Errors, ValidationIssue{
				Code:    "INVALID_TIMEOUT",
				Path:    path + "/timeout_days",
				Message: "timeout_days must be a positive number of days",
			})
		}
	}

	return result
}

// ValidateStep checks one step input in isolation, for AddStep/UpdateStep.
// Order collisions against existing sibling steps are caught at the
// persistence layer and reported by the caller as DUPLICATE_STEP_ORDER.
func ValidateStep(step StepInput) ValidationResult {
	var result ValidationResult

	if step.Name == "" {
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    "MISSING_STEP_NAME",
			Path:    "/name",
			Message: "Every step must have a name",
		})
	}

	result = validateApproverSpec(result, "", step)

	if step.TimeoutDays != nil && *step.TimeoutDays <= 0 {
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    "INVALID_TIMEOUT",
			Path:    "/timeout_days",
			Message: "timeout_days must be a positive number of days",
		})
	}

	return result
}

func validateApproverSpec(result ValidationResult, path string, step StepInput) ValidationResult {
	hasRole := step.ApproverRole != nil && *step.ApproverRole != ""
	hasUser := step.ApproverUserID != nil

	switch {
	case hasRole && hasUser:
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    "AMBIGUOUS_APPROVER",
			Path:    path + "/approver_role",
			Message: "A step designates either a role or a specific user, not both",
			Hint:    "Remove approver_role or approver_user_id so exactly one is set.",
		})
	case !hasRole && !hasUser:
		// Accepted: the step fans out to nobody and stalls its instance.
		result.Warnings = append(result.Warnings, ValidationIssue{
			Code:    "NO_APPROVER",
			Path:    path,
			Message: "Step has no approver; an instance reaching it will stall with no pending approvals",
			Hint:    "Set approver_role or approver_user_id unless the stall is intentional.",
		})
	}

	return result
}
