package repositories

import (
	"context"
	"database/sql"

	"docflow/pkg/models"
)

// WorkflowRepo manages workflow definition persistence.
type WorkflowRepo struct {
	db *sql.DB
}

func NewWorkflowRepo(db *sql.DB) *WorkflowRepo {
	return &WorkflowRepo{db: db}
}

const workflowColumns = "id, organization_id, name, description, is_default, created_by, created_at, updated_at"

// CreateWorkflowParams captures inputs for inserting a workflow definition.
type CreateWorkflowParams struct {
	OrganizationID int64
	Name           string
	Description    *string
	IsDefault      bool
	CreatedBy      int64
}

// CreateWithSteps inserts the definition row and all of its step rows inside
// one transaction, so a partially created definition is never visible.
func (r *WorkflowRepo) CreateWithSteps(ctx context.Context, params CreateWorkflowParams, steps []CreateStepParams) (*models.Workflow, []*models.WorkflowStep, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO workflows (organization_id, name, description, is_default, created_by)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + workflowColumns

	workflow, err := scanWorkflow(tx.QueryRowContext(ctx, query,
		params.OrganizationID, params.Name, toNullString(params.Description), params.IsDefault, params.CreatedBy))
	if err != nil {
		return nil, nil, err
	}

	created := make([]*models.WorkflowStep, 0, len(steps))
	for _, step := range steps {
		row := tx.QueryRowContext(ctx, insertStepQuery,
			workflow.ID, step.StepOrder, step.Name, toNullString(step.Description),
			specRole(step.Approver), specUserID(step.Approver),
			step.IsRequired, step.CanReject, step.CanComment, toNullInt64(step.TimeoutDays))
		inserted, err := scanStep(row)
		if err != nil {
			return nil, nil, err
		}
		created = append(created, inserted)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return workflow, created, nil
}

func (r *WorkflowRepo) Get(ctx context.Context, id int64) (*models.Workflow, error) {
	query := "SELECT " + workflowColumns + " FROM workflows WHERE id = ?"
	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return workflow, nil
}

// ListByOrganization returns a tenant's definitions, newest first.
func (r *WorkflowRepo) ListByOrganization(ctx context.Context, organizationID int64) ([]*models.Workflow, error) {
	query := "SELECT " + workflowColumns + ` FROM workflows
		WHERE organization_id = ?
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Workflow
	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, workflow)
	}
	return result, rows.Err()
}

// GetDefault returns the organization-wide fallback definition, if one is
// flagged. Uniqueness of the flag is not enforced here; the newest wins.
func (r *WorkflowRepo) GetDefault(ctx context.Context, organizationID int64) (*models.Workflow, error) {
	query := "SELECT " + workflowColumns + ` FROM workflows
		WHERE organization_id = ? AND is_default
		ORDER BY created_at DESC, id DESC LIMIT 1`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, organizationID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return workflow, nil
}

// UpdateWorkflowParams defines fields that can be updated on a definition.
type UpdateWorkflowParams struct {
	Name        string
	Description *string
	IsDefault   bool
}

func (r *WorkflowRepo) Update(ctx context.Context, id int64, params UpdateWorkflowParams) (*models.Workflow, error) {
	query := `UPDATE workflows
		SET name = ?, description = ?, is_default = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING ` + workflowColumns

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query,
		params.Name, toNullString(params.Description), params.IsDefault, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return workflow, nil
}

func (r *WorkflowRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = ?", id)
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

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var w models.Workflow
	var description sql.NullString
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&w.ID, &w.OrganizationID, &w.Name, &description, &w.IsDefault, &w.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	w.Description = nullStringPtr(description)
	w.CreatedAt = nullTimeOrZero(createdAt)
	w.UpdatedAt = nullTimeOrZero(updatedAt)
	return &w, nil
}
