package repositories

import (
	"context"
	"database/sql"

	"docflow/pkg/models"
)

// StepRepo manages workflow step persistence.
type StepRepo struct {
	db *sql.DB
}

func NewStepRepo(db *sql.DB) *StepRepo {
	return &StepRepo{db: db}
}

const stepColumns = "id, workflow_id, step_order, name, description, approver_role, approver_user_id, is_required, can_reject, can_comment, timeout_days, created_at, updated_at"

const insertStepQuery = `INSERT INTO workflow_steps
	(workflow_id, step_order, name, description, approver_role, approver_user_id, is_required, can_reject, can_comment, timeout_days)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING ` + stepColumns

// CreateStepParams captures inputs for inserting a workflow step.
type CreateStepParams struct {
	StepOrder   int64
	Name        string
	Description *string
	Approver    models.ApproverSpec
	IsRequired  bool
	CanReject   bool
	CanComment  bool
	TimeoutDays *int64
}

func (r *StepRepo) Create(ctx context.Context, workflowID int64, params CreateStepParams) (*models.WorkflowStep, error) {
	row := r.db.QueryRowContext(ctx, insertStepQuery,
		workflowID, params.StepOrder, params.Name, toNullString(params.Description),
		specRole(params.Approver), specUserID(params.Approver),
		params.IsRequired, params.CanReject, params.CanComment, toNullInt64(params.TimeoutDays))
	return scanStep(row)
}

func (r *StepRepo) Get(ctx context.Context, id int64) (*models.WorkflowStep, error) {
	query := "SELECT " + stepColumns + " FROM workflow_steps WHERE id = ?"
	step, err := scanStep(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return step, nil
}

// ListByWorkflow returns a definition's steps in advancement order.
func (r *StepRepo) ListByWorkflow(ctx context.Context, workflowID int64) ([]*models.WorkflowStep, error) {
	query := "SELECT " + stepColumns + ` FROM workflow_steps
		WHERE workflow_id = ?
		ORDER BY step_order ASC`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.WorkflowStep
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, step)
	}
	return result, rows.Err()
}

// First returns the step with the lowest step_order, or ErrNotFound for a
// definition with no steps.
func (r *StepRepo) First(ctx context.Context, workflowID int64) (*models.WorkflowStep, error) {
	query := "SELECT " + stepColumns + ` FROM workflow_steps
		WHERE workflow_id = ?
		ORDER BY step_order ASC LIMIT 1`

	step, err := scanStep(r.db.QueryRowContext(ctx, query, workflowID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return step, nil
}

// NextAfter returns the step with the smallest step_order strictly greater
// than the given order, or ErrNotFound when the given order was the last.
func (r *StepRepo) NextAfter(ctx context.Context, workflowID, stepOrder int64) (*models.WorkflowStep, error) {
	query := "SELECT " + stepColumns + ` FROM workflow_steps
		WHERE workflow_id = ? AND step_order > ?
		ORDER BY step_order ASC LIMIT 1`

	step, err := scanStep(r.db.QueryRowContext(ctx, query, workflowID, stepOrder))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return step, nil
}

// UpdateStepParams defines fields that can be updated on a step.
type UpdateStepParams struct {
	StepOrder   int64
	Name        string
	Description *string
	Approver    models.ApproverSpec
	IsRequired  bool
	CanReject   bool
	CanComment  bool
	TimeoutDays *int64
}

func (r *StepRepo) Update(ctx context.Context, id int64, params UpdateStepParams) (*models.WorkflowStep, error) {
	query := `UPDATE workflow_steps
		SET step_order = ?, name = ?, description = ?, approver_role = ?, approver_user_id = ?,
			is_required = ?, can_reject = ?, can_comment = ?, timeout_days = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING ` + stepColumns

	step, err := scanStep(r.db.QueryRowContext(ctx, query,
		params.StepOrder, params.Name, toNullString(params.Description),
		specRole(params.Approver), specUserID(params.Approver),
		params.IsRequired, params.CanReject, params.CanComment, toNullInt64(params.TimeoutDays), id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return step, nil
}

func (r *StepRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflow_steps WHERE id = ?", id)
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

// The approver spec is a tagged union in Go but two nullable columns in the
// schema; these converters keep the union the only representation above the
// repo boundary.

func specRole(spec models.ApproverSpec) sql.NullString {
	if spec.Kind == models.ApproverKindRole {
		return sql.NullString{String: spec.Role, Valid: true}
	}
	return sql.NullString{}
}

func specUserID(spec models.ApproverSpec) sql.NullInt64 {
	if spec.Kind == models.ApproverKindUser {
		return sql.NullInt64{Int64: spec.UserID, Valid: true}
	}
	return sql.NullInt64{}
}

func specFromColumns(role sql.NullString, userID sql.NullInt64) models.ApproverSpec {
	if userID.Valid {
		return models.UserSpec(userID.Int64)
	}
	if role.Valid {
		return models.RoleSpec(role.String)
	}
	// A step created with no approver spec; it resolves to nobody.
	return models.ApproverSpec{}
}

func scanStep(row rowScanner) (*models.WorkflowStep, error) {
	var s models.WorkflowStep
	var description, approverRole sql.NullString
	var approverUserID sql.NullInt64
	var timeoutDays sql.NullInt64
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&s.ID, &s.WorkflowID, &s.StepOrder, &s.Name, &description,
		&approverRole, &approverUserID, &s.IsRequired, &s.CanReject, &s.CanComment,
		&timeoutDays, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Description = nullStringPtr(description)
	s.Approver = specFromColumns(approverRole, approverUserID)
	s.TimeoutDays = nullInt64Ptr(timeoutDays)
	s.CreatedAt = nullTimeOrZero(createdAt)
	s.UpdatedAt = nullTimeOrZero(updatedAt)
	return &s, nil
}
