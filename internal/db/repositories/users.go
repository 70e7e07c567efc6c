package repositories

import (
	"context"
	"database/sql"

	"docflow/pkg/models"
)

// UserRepo manages the identity/role directory relation.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = "id, organization_id, email, full_name, role, is_active, created_at, updated_at"

func (r *UserRepo) Create(ctx context.Context, organizationID int64, email, fullName, role string, isActive bool) (*models.User, error) {
	query := `INSERT INTO users (organization_id, email, full_name, role, is_active)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, organizationID, email, fullName, role, isActive)
	return scanUser(row)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return user, nil
}

// ListActiveByRole returns every active identity holding the role in the
// organization. This backs the point-in-time role resolution for approver
// fan-out, so it deliberately reads live rows with no caching.
func (r *UserRepo) ListActiveByRole(ctx context.Context, organizationID int64, role string) ([]*models.User, error) {
	query := "SELECT " + userColumns + ` FROM users
		WHERE organization_id = ? AND role = ? AND is_active
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, organizationID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *UserRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	query := `UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, role, id)
	return err
}

func (r *UserRepo) SetActive(ctx context.Context, id int64, isActive bool) error {
	query := `UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, isActive, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.OrganizationID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = nullTimeOrZero(createdAt)
	u.UpdatedAt = nullTimeOrZero(updatedAt)
	return &u, nil
}
