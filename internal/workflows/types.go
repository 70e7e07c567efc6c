package workflows

import "errors"

// StepInput is the raw, not-yet-validated shape of one step in a definition
// create or import request. Policy flags are pointers so an omitted flag can
// fall back to its default (required, rejectable, commentable).
type StepInput struct {
	StepOrder      int64   `json:"step_order" yaml:"step_order"`
	Name           string  `json:"name" yaml:"name"`
	Description    *string `json:"description,omitempty" yaml:"description,omitempty"`
	ApproverRole   *string `json:"approver_role,omitempty" yaml:"approver_role,omitempty"`
	ApproverUserID *int64  `json:"approver_user_id,omitempty" yaml:"approver_user_id,omitempty"`
	IsRequired     *bool   `json:"is_required,omitempty" yaml:"is_required,omitempty"`
	CanReject      *bool   `json:"can_reject,omitempty" yaml:"can_reject,omitempty"`
	CanComment     *bool   `json:"can_comment,omitempty" yaml:"can_comment,omitempty"`
	TimeoutDays    *int64  `json:"timeout_days,omitempty" yaml:"timeout_days,omitempty"`
}

// DefinitionInput is a workflow definition create/import request.
type DefinitionInput struct {
	Name        string      `json:"name" yaml:"name"`
	Description *string     `json:"description,omitempty" yaml:"description,omitempty"`
	IsDefault   bool        `json:"is_default,omitempty" yaml:"is_default,omitempty"`
	Steps       []StepInput `json:"steps" yaml:"steps"`
}

// ValidationIssue describes one problem (or caveat) found in a definition.
type ValidationIssue struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ValidationResult aggregates hard errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// Valid reports whether the input can be accepted.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ErrValidation indicates the definition failed validation.
var ErrValidation = errors.New("workflow validation failed")
