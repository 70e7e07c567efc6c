package workflows

import "testing"

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestValidateDefinition_Valid(t *testing.T) {
	result := ValidateDefinition(DefinitionInput{
		Name: "Template review",
		Steps: []StepInput{
			{StepOrder: 1, Name: "Manager review", ApproverRole: strPtr("manager")},
			{StepOrder: 2, Name: "Director sign-off", ApproverUserID: int64Ptr(42)},
		},
	})

	if !result.Valid() {
		t.Fatalf("Expected valid result, got errors: %+v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got: %+v", result.Warnings)
	}
}

func TestValidateDefinition_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    DefinitionInput
		wantCode string
	}{
		{
			name:     "missing name",
			input:    DefinitionInput{Steps: []StepInput{{StepOrder: 1, Name: "Review", ApproverRole: strPtr("manager")}}},
			wantCode: "MISSING_NAME",
		},
		{
			name: "duplicate step order",
			input: DefinitionInput{
				Name: "wf",
				Steps: []StepInput{
					{StepOrder: 1, Name: "A", ApproverRole: strPtr("manager")},
					{StepOrder: 1, Name: "B", ApproverRole: strPtr("director")},
				},
			},
			wantCode: "DUPLICATE_STEP_ORDER",
		},
		{
			name: "both role and user",
			input: DefinitionInput{
				Name: "wf",
				Steps: []StepInput{
					{StepOrder: 1, Name: "A", ApproverRole: strPtr("manager"), ApproverUserID: int64Ptr(7)},
				},
			},
			wantCode: "AMBIGUOUS_APPROVER",
		},
		{
			name: "missing step name",
			input: DefinitionInput{
				Name:  "wf",
				Steps: []StepInput{{StepOrder: 1, ApproverRole: strPtr("manager")}},
			},
			wantCode: "MISSING_STEP_NAME",
		},
		{
			name: "non-positive timeout",
			input: DefinitionInput{
				Name:  "wf",
				Steps: []StepInput{{StepOrder: 1, Name: "A", ApproverRole: strPtr("manager"), TimeoutDays: int64Ptr(0)}},
			},
			wantCode: "INVALID_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateDefinition(tt.input)
			if result.Valid() {
				t.Fatalf("Expected validation errors, got none")
			}
			found := false
			for _, issue := range result.Errors {
				if issue.Code == tt.wantCode {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error code %s, got: %+v", tt.wantCode, result.Errors)
			}
		})
	}
}

func TestValidateDefinition_NoApproverIsWarning(t *testing.T) {
	result := ValidateDefinition(DefinitionInput{
		Name:  "wf",
		Steps: []StepInput{{StepOrder: 1, Name: "Orphan step"}},
	})

	if !result.Valid() {
		t.Fatalf("A step with no approver must be accepted, got errors: %+v", result.Errors)
	}
	found := false
	for _, issue := range result.Warnings {
		if issue.Code == "NO_APPROVER" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected NO_APPROVER warning, got: %+v", result.Warnings)
	}
}

func TestValidateDefinition_ZeroStepsIsWarning(t *testing.T) {
	result := ValidateDefinition(DefinitionInput{Name: "empty"})

	if !result.Valid() {
		t.Fatalf("A definition with zero steps must be accepted, got errors: %+v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a NO_STEPS warning")
	}
}

func TestValidateStep(t *testing.T) {
	result := ValidateStep(StepInput{StepOrder: 3, Name: "Review", ApproverRole: strPtr("manager")})
	if !result.Valid() {
		t.Fatalf("Expected valid step, got: %+v", result.Errors)
	}

	result = ValidateStep(StepInput{StepOrder: 3, ApproverRole: strPtr("manager"), ApproverUserID: int64Ptr(1)})
	if result.Valid() {
		t.Error("Expected errors for ambiguous approver and missing name")
	}
}
