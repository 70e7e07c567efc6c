package repositories

import (
	"context"
	"database/sql"
	"time"

	"docflow/pkg/models"
)

// ApprovalRepo manages approval (decision record) persistence.
type ApprovalRepo struct {
	db *sql.DB
}

func NewApprovalRepo(db *sql.DB) *ApprovalRepo {
	return &ApprovalRepo{db: db}
}

const approvalColumns = "id, approval_id, instance_id, step_id, approver_id, status, comment, decided_at, deadline, created_at, updated_at"

const insertApprovalQuery = `INSERT INTO workflow_approvals (approval_id, instance_id, step_id, approver_id, status, deadline)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (instance_id, step_id, approver_id) DO NOTHING`

// CreateApprovalParams captures inputs for fanning out a pending approval.
type CreateApprovalParams struct {
	ApprovalID string
	InstanceID int64
	StepID     int64
	ApproverID int64
	Deadline   *time.Time
}

// CreatePending inserts a pending approval slot. The unique
// (instance, step, approver) constraint makes fan-out idempotent: an existing
// slot is left untouched and returned as-is.
func (r *ApprovalRepo) CreatePending(ctx context.Context, params CreateApprovalParams) (*models.Approval, error) {
	_, err := r.db.ExecContext(ctx, insertApprovalQuery,
		params.ApprovalID, params.InstanceID, params.StepID, params.ApproverID,
		models.ApprovalStatusPending, toNullTime(params.Deadline))
	if err != nil {
		return nil, err
	}

	return r.GetBySlot(ctx, params.InstanceID, params.StepID, params.ApproverID)
}

func (r *ApprovalRepo) Get(ctx context.Context, id int64) (*models.Approval, error) {
	query := "SELECT " + approvalColumns + " FROM workflow_approvals WHERE id = ?"
	approval, err := scanApproval(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return approval, nil
}

func (r *ApprovalRepo) GetByApprovalID(ctx context.Context, approvalID string) (*models.Approval, error) {
	query := "SELECT " + approvalColumns + " FROM workflow_approvals WHERE approval_id = ?"
	approval, err := scanApproval(r.db.QueryRowContext(ctx, query, approvalID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return approval, nil
}

func (r *ApprovalRepo) GetBySlot(ctx context.Context, instanceID, stepID, approverID int64) (*models.Approval, error) {
	query := "SELECT " + approvalColumns + ` FROM workflow_approvals
		WHERE instance_id = ? AND step_id = ? AND approver_id = ?`
	approval, err := scanApproval(r.db.QueryRowContext(ctx, query, instanceID, stepID, approverID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return approval, nil
}

// Decide overwrites the approval's decision in place. Re-deciding the same
// slot updates the one existing row rather than creating another.
func (r *ApprovalRepo) Decide(ctx context.Context, id int64, status string, comment *string, decidedAt time.Time) (*models.Approval, error) {
	query := `UPDATE workflow_approvals
		SET status = ?, comment = ?, decided_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING ` + approvalColumns

	approval, err := scanApproval(r.db.QueryRowContext(ctx, query, status, toNullString(comment), decidedAt, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return approval, nil
}

// ListByInstanceAndStep returns the consensus set for one step activation.
func (r *ApprovalRepo) ListByInstanceAndStep(ctx context.Context, instanceID, stepID int64) ([]*models.Approval, error) {
	query := "SELECT " + approvalColumns + ` FROM workflow_approvals
		WHERE instance_id = ? AND step_id = ?
		ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, instanceID, stepID)
}

// ListByInstance returns the full decision history across all steps,
// oldest first, for audit display.
func (r *ApprovalRepo) ListByInstance(ctx context.Context, instanceID int64) ([]*models.Approval, error) {
	query := "SELECT " + approvalColumns + ` FROM workflow_approvals
		WHERE instance_id = ?
		ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, instanceID)
}

func (r *ApprovalRepo) list(ctx context.Context, query string, args ...any) ([]*models.Approval, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Approval
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, approval)
	}
	return result, rows.Err()
}

// ListPendingForApprover returns an approver's open decision slots joined with
// their instance and step context, oldest first.
func (r *ApprovalRepo) ListPendingForApprover(ctx context.Context, approverID int64) ([]*models.PendingApproval, error) {
	query := `SELECT
			a.id, a.approval_id, a.instance_id, a.step_id, a.approver_id, a.status, a.comment, a.decided_at, a.deadline, a.created_at, a.updated_at,
			i.id, i.instance_id, i.organization_id, i.workflow_id, i.subject_id, i.started_by, i.status, i.current_step_id, i.completed_at, i.created_at, i.updated_at,
			s.id, s.workflow_id, s.step_order, s.name, s.description, s.approver_role, s.approver_user_id, s.is_required, s.can_reject, s.can_comment, s.timeout_days, s.created_at, s.updated_at
		FROM workflow_approvals a
		JOIN workflow_instances i ON i.id = a.instance_id
		JOIN workflow_steps s ON s.id = a.step_id
		WHERE a.approver_id = ? AND a.status = ?
		ORDER BY a.created_at ASC, a.id ASC`

	rows, err := r.db.QueryContext(ctx, query, approverID, models.ApprovalStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.PendingApproval
	for rows.Next() {
		var p models.PendingApproval
		var aComment sql.NullString
		var aDecidedAt, aDeadline, aCreatedAt, aUpdatedAt sql.NullTime
		var iCurrentStepID sql.NullInt64
		var iCompletedAt, iCreatedAt, iUpdatedAt sql.NullTime
		var sDescription, sRole sql.NullString
		var sUserID, sTimeoutDays sql.NullInt64
		var sCreatedAt, sUpdatedAt sql.NullTime

		if err := rows.Scan(
			&p.Approval.ID, &p.Approval.ApprovalID, &p.Approval.InstanceID, &p.Approval.StepID,
			&p.Approval.ApproverID, &p.Approval.Status, &aComment, &aDecidedAt, &aDeadline, &aCreatedAt, &aUpdatedAt,
			&p.Instance.ID, &p.Instance.InstanceID, &p.Instance.OrganizationID, &p.Instance.WorkflowID,
			&p.Instance.SubjectID, &p.Instance.StartedBy, &p.Instance.Status, &iCurrentStepID, &iCompletedAt, &iCreatedAt, &iUpdatedAt,
			&p.Step.ID, &p.Step.WorkflowID, &p.Step.StepOrder, &p.Step.Name, &sDescription,
			&sRole, &sUserID, &p.Step.IsRequired, &p.Step.CanReject, &p.Step.CanComment,
			&sTimeoutDays, &sCreatedAt, &sUpdatedAt,
		); err != nil {
			return nil, err
		}

		p.Approval.Comment = nullStringPtr(aComment)
		p.Approval.DecidedAt = nullTimePtr(aDecidedAt)
		p.Approval.Deadline = nullTimePtr(aDeadline)
		p.Approval.CreatedAt = nullTimeOrZero(aCreatedAt)
		p.Approval.UpdatedAt = nullTimeOrZero(aUpdatedAt)

		p.Instance.CurrentStepID = nullInt64Ptr(iCurrentStepID)
		p.Instance.CompletedAt = nullTimePtr(iCompletedAt)
		p.Instance.CreatedAt = nullTimeOrZero(iCreatedAt)
		p.Instance.UpdatedAt = nullTimeOrZero(iUpdatedAt)

		p.Step.Description = nullStringPtr(sDescription)
		p.Step.Approver = specFromColumns(sRole, sUserID)
		p.Step.TimeoutDays = nullInt64Ptr(sTimeoutDays)
		p.Step.CreatedAt = nullTimeOrZero(sCreatedAt)
		p.Step.UpdatedAt = nullTimeOrZero(sUpdatedAt)

		result = append(result, &p)
	}
	return result, rows.Err()
}

func scanApproval(row rowScanner) (*models.Approval, error) {
	var a models.Approval
	var comment sql.NullString
	var decidedAt, deadline, createdAt, updatedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.ApprovalID, &a.InstanceID, &a.StepID, &a.ApproverID,
		&a.Status, &comment, &decidedAt, &deadline, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.Comment = nullStringPtr(comment)
	a.DecidedAt = nullTimePtr(decidedAt)
	a.Deadline = nullTimePtr(deadline)
	a.CreatedAt = nullTimeOrZero(createdAt)
	a.UpdatedAt = nullTimeOrZero(updatedAt)
	return &a, nil
}
