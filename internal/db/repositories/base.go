package repositories

import (
	"database/sql"

	"docflow/internal/db"
)

type Repositories struct {
	Users     *UserRepo
	Workflows *WorkflowRepo
	Steps     *StepRepo
	Instances *InstanceRepo
	Approvals *ApprovalRepo
	db        db.Database // Store reference to database for transactions
}

func New(database db.Database) *Repositories {
	conn := database.Conn()

	return &Repositories{
		Users:     NewUserRepo(conn),
		Workflows: NewWorkflowRepo(conn),
		Steps:     NewStepRepo(conn),
		Instances: NewInstanceRepo(conn),
		Approvals: NewApprovalRepo(conn),
		db:        database,
	}
}

// BeginTx starts a database transaction
func (r *Repositories) BeginTx() (*sql.Tx, error) {
	return r.db.Conn().Begin()
}
