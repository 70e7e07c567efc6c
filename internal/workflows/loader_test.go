package workflows

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefinitionFile(t *testing.T) {
	contents := `
name: Template review
description: Standard two-stage review
is_default: true
steps:
  - step_order: 1
    name: Manager review
    approver_role: manager
    timeout_days: 5
  - step_order: 2
    name: Director sign-off
    approver_user_id: 42
    can_reject: false
`
	path := filepath.Join(t.TempDir(), "definition.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	input, err := LoadDefinitionFile(path)
	if err != nil {
		t.Fatalf("Failed to load definition: %v", err)
	}

	if input.Name != "Template review" {
		t.Errorf("Expected name 'Template review', got %q", input.Name)
	}
	if !input.IsDefault {
		t.Error("Expected is_default to be true")
	}
	if len(input.Steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(input.Steps))
	}
	if input.Steps[0].ApproverRole == nil || *input.Steps[0].ApproverRole != "manager" {
		t.Errorf("Expected first step approver_role 'manager', got %v", input.Steps[0].ApproverRole)
	}
	if input.Steps[0].TimeoutDays == nil || *input.Steps[0].TimeoutDays != 5 {
		t.Errorf("Expected first step timeout_days 5, got %v", input.Steps[0].TimeoutDays)
	}
	if input.Steps[1].ApproverUserID == nil || *input.Steps[1].ApproverUserID != 42 {
		t.Errorf("Expected second step approver_user_id 42, got %v", input.Steps[1].ApproverUserID)
	}
	if input.Steps[1].CanReject == nil || *input.Steps[1].CanReject {
		t.Error("Expected second step can_reject to be false")
	}

	if result := ValidateDefinition(*input); !result.Valid() {
		t.Errorf("Loaded definition should validate, got: %+v", result.Errors)
	}
}

func TestLoadDefinitionFile_Missing(t *testing.T) {
	if _, err := LoadDefinitionFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadDefinitionFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("steps: [unterminated"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if _, err := LoadDefinitionFile(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
