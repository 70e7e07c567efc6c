package repositories

import (
	"context"
	"database/sql"
	"time"

	"docflow/pkg/models"
)

// InstanceRepo manages workflow instance persistence.
type InstanceRepo struct {
	db *sql.DB
}

func NewInstanceRepo(db *sql.DB) *InstanceRepo {
	return &InstanceRepo{db: db}
}

const instanceColumns = "id, instance_id, organization_id, workflow_id, subject_id, started_by, status, current_step_id, completed_at, created_at, updated_at"

// CreateInstanceParams captures inputs for inserting a workflow instance.
type CreateInstanceParams struct {
	InstanceID     string
	OrganizationID int64
	WorkflowID     int64
	SubjectID      string
	StartedBy      int64
	Status         string
	CurrentStepID  *int64
	CompletedAt    *time.Time
}

const insertInstanceQuery = `INSERT INTO workflow_instances
	(instance_id, organization_id, workflow_id, subject_id, started_by, status, current_step_id, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING ` + instanceColumns

func (r *InstanceRepo) Create(ctx context.Context, params CreateInstanceParams) (*models.WorkflowInstance, error) {
	return r.CreateWithApprovals(ctx, params, nil)
}

// CreateWithApprovals inserts the instance row and its first step's pending
// approvals in one transaction, so a failed fan-out never leaves a running
// instance behind with a partial consensus set. The approval params'
// InstanceID is ignored; the inserted instance's id is used.
func (r *InstanceRepo) CreateWithApprovals(ctx context.Context, params CreateInstanceParams, approvals []CreateApprovalParams) (*models.WorkflowInstance, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	instance, err := scanInstance(tx.QueryRowContext(ctx, insertInstanceQuery,
		params.InstanceID, params.OrganizationID, params.WorkflowID, params.SubjectID,
		params.StartedBy, params.Status, toNullInt64(params.CurrentStepID), toNullTime(params.CompletedAt)))
	if err != nil {
		return nil, err
	}

	for _, approval := range approvals {
		if _, err := tx.ExecContext(ctx, insertApprovalQuery,
			approval.ApprovalID, instance.ID, approval.StepID, approval.ApproverID,
			models.ApprovalStatusPending, toNullTime(approval.Deadline)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return instance, nil
}

func (r *InstanceRepo) Get(ctx context.Context, id int64) (*models.WorkflowInstance, error) {
	query := "SELECT " + instanceColumns + " FROM workflow_instances WHERE id = ?"
	instance, err := scanInstance(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return instance, nil
}

func (r *InstanceRepo) GetByInstanceID(ctx context.Context, instanceID string) (*models.WorkflowInstance, error) {
	query := "SELECT " + instanceColumns + " FROM workflow_instances WHERE instance_id = ?"
	instance, err := scanInstance(r.db.QueryRowContext(ctx, query, instanceID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return instance, nil
}

// ListBySubject returns every instance ever started against a subject
// document, newest first.
func (r *InstanceRepo) ListBySubject(ctx context.Context, subjectID string) ([]*models.WorkflowInstance, error) {
	query := "SELECT " + instanceColumns + ` FROM workflow_instances
		WHERE subject_id = ?
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.WorkflowInstance
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, instance)
	}
	return result, rows.Err()
}

// SetCurrentStep moves an in-progress instance's step pointer. The WHERE
// status guard keeps a terminal instance from ever advancing again.
func (r *InstanceRepo) SetCurrentStep(ctx context.Context, id, stepID int64) error {
	return r.AdvanceStep(ctx, id, stepID, nil)
}

// AdvanceStep moves an in-progress instance's step pointer and fans out the
// new step's pending approvals in one transaction: either the instance points
// at the new step with its full consensus set in place, or nothing changed.
// The WHERE status guard keeps a terminal instance from ever advancing again.
func (r *InstanceRepo) AdvanceStep(ctx context.Context, id, stepID int64, approvals []CreateApprovalParams) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE workflow_instances
		SET current_step_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, stepID, models.InstanceStatusInProgress, id, models.InstanceStatusInProgress)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	for _, approval := range approvals {
		if _, err := tx.ExecContext(ctx, insertApprovalQuery,
			approval.ApprovalID, id, approval.StepID, approval.ApproverID,
			models.ApprovalStatusPending, toNullTime(approval.Deadline)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Finalize transitions an in-progress instance to a terminal status, clearing
// the step pointer and stamping completion. It refuses to touch an instance
// that is already terminal.
func (r *InstanceRepo) Finalize(ctx context.Context, id int64, status string, completedAt time.Time) error {
	query := `UPDATE workflow_instances
		SET status = ?, current_step_id = NULL, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, status, completedAt, id, models.InstanceStatusInProgress)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanInstance(row rowScanner) (*models.WorkflowInstance, error) {
	var i models.WorkflowInstance
	var currentStepID sql.NullInt64
	var completedAt, createdAt, updatedAt sql.NullTime
	if err := row.Scan(&i.ID, &i.InstanceID, &i.OrganizationID, &i.WorkflowID, &i.SubjectID,
		&i.StartedBy, &i.Status, &currentStepID, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	i.CurrentStepID = nullInt64Ptr(currentStepID)
	i.CompletedAt = nullTimePtr(completedAt)
	i.CreatedAt = nullTimeOrZero(createdAt)
	i.UpdatedAt = nullTimeOrZero(updatedAt)
	return &i, nil
}
