package models

import "time"

// Workflow is an organization's reusable approval template: an ordered
// sequence of steps a document must pass through before it is considered
// approved.
type Workflow struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	IsDefault      bool      `json:"is_default"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ApproverKind discriminates the two ways a step can designate its approvers.
type ApproverKind string

const (
	// ApproverKindUser pins the step to one specific identity.
	ApproverKindUser ApproverKind = "user"
	// ApproverKindRole resolves to every active identity holding the role
	// at the moment the step activates.
	ApproverKindRole ApproverKind = "role"
)

// ApproverSpec designates who decides a step. Exactly one variant is set:
// Kind selects it, and only the matching field is meaningful.
type ApproverSpec struct {
	Kind   ApproverKind `json:"kind"`
	UserID int64        `json:"user_id,omitempty"`
	Role   string       `json:"role,omitempty"`
}

// UserSpec returns an ApproverSpec pinned to a single identity.
func UserSpec(userID int64) ApproverSpec {
	return ApproverSpec{Kind: ApproverKindUser, UserID: userID}
}

// RoleSpec returns an ApproverSpec resolved dynamically by role.
func RoleSpec(role string) ApproverSpec {
	return ApproverSpec{Kind: ApproverKindRole, Role: role}
}

// WorkflowStep is one stage of a workflow. StepOrder values are unique within
// a workflow and define the advancement sequence.
type WorkflowStep struct {
	ID          int64        `json:"id"`
	WorkflowID  int64        `json:"workflow_id"`
	StepOrder   int64        `json:"step_order"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Approver    ApproverSpec `json:"approver"`
	IsRequired  bool         `json:"is_required"`
	CanReject   bool         `json:"can_reject"`
	CanComment  bool         `json:"can_comment"`
	TimeoutDays *int64       `json:"timeout_days,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// WorkflowInstance is one running execution of a workflow against a subject
// document. While in progress it always points at exactly one current step;
// terminal instances have a nil current step and a completion timestamp.
type WorkflowInstance struct {
	ID             int64      `json:"id"`
	InstanceID     string     `json:"instance_id"`
	OrganizationID int64      `json:"organization_id"`
	WorkflowID     int64      `json:"workflow_id"`
	SubjectID      string     `json:"subject_id"`
	StartedBy      int64      `json:"started_by"`
	Status         string     `json:"status"`
	CurrentStepID  *int64     `json:"current_step_id,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Approval is one approver's decision slot for one step of one instance.
// At most one row exists per (instance, step, approver).
type Approval struct {
	ID         int64      `json:"id"`
	ApprovalID string     `json:"approval_id"`
	InstanceID int64      `json:"instance_id"`
	StepID     int64      `json:"step_id"`
	ApproverID int64      `json:"approver_id"`
	Status     string     `json:"status"`
	Comment    *string    `json:"comment,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PendingApproval is an approval row joined with the context an approver
// needs to act on it.
type PendingApproval struct {
	Approval Approval         `json:"approval"`
	Instance WorkflowInstance `json:"instance"`
	Step     WorkflowStep     `json:"step"`
}

// InstanceDetail is the full audit view of one instance: its workflow, the
// current step when still in progress, and every approval across all steps.
type InstanceDetail struct {
	Instance    WorkflowInstance `json:"instance"`
	Workflow    Workflow         `json:"workflow"`
	CurrentStep *WorkflowStep    `json:"current_step,omitempty"`
	Approvals   []*Approval      `json:"approvals"`
}

const (
	InstanceStatusInProgress = "in_progress"
	InstanceStatusApproved   = "approved"
	InstanceStatusRejected   = "rejected"
)

const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)
