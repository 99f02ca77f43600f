package ledger

import (
	"context"
	"database/sql"

	"leave-engine/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error)
	FindForType(ctx context.Context, companyID, employeeID, leaveType string) (*LeaveBalance, error)
	// UpdateWithVersion persists the balance only if the stored version still
	// equals expectedVersion, bumping the version on success. Returns false
	// when another writer got there first.
	UpdateWithVersion(ctx context.Context, b *LeaveBalance, expectedVersion int64) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) FindByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error) {
	if r.tx != nil {
		return r.findByEmployeeTx(ctx, companyID, employeeID)
	}

	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) findByEmployeeTx(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error) {
	query := `
SELECT id, company_id, employee_id, leave_type, allocated, used, pending, version
FROM leave_balances
WHERE company_id = $1 AND employee_id = $2
ORDER BY leave_type ASC
`
	rows, err := r.tx.QueryContext(ctx, query, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []LeaveBalance
	for rows.Next() {
		var b LeaveBalance
		if err := rows.Scan(
			&b.ID,
			&b.CompanyID,
			&b.EmployeeID,
			&b.LeaveType,
			&b.Allocated,
			&b.Used,
			&b.Pending,
			&b.Version,
		); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *repository) FindForType(ctx context.Context, companyID, employeeID, leaveType string) (*LeaveBalance, error) {
	if r.tx != nil {
		return r.findForTypeTx(ctx, companyID, employeeID, leaveType)
	}

	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// findForTypeTx reads through the open transaction so reservation math sees
// rows written earlier in the same transaction.
func (r *repository) findForTypeTx(ctx context.Context, companyID, employeeID, leaveType string) (*LeaveBalance, error) {
	query := `
SELECT id, company_id, employee_id, leave_type, allocated, used, pending, version
FROM leave_balances
WHERE company_id = $1 AND employee_id = $2 AND leave_type = $3
`
	row := r.tx.QueryRowContext(ctx, query, companyID, employeeID, leaveType)

	var b LeaveBalance
	err := row.Scan(
		&b.ID,
		&b.CompanyID,
		&b.EmployeeID,
		&b.LeaveType,
		&b.Allocated,
		&b.Used,
		&b.Pending,
		&b.Version,
	)
	if err == sql.ErrNoRows {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) UpdateWithVersion(ctx context.Context, b *LeaveBalance, expectedVersion int64) (bool, error) {
	query := `
UPDATE leave_balances
SET
	allocated = $2,
	used = $3,
	pending = $4,
	version = version + 1,
	updated_at = NOW()
WHERE id = $1 AND version = $5
`
	res, err := r.execer().ExecContext(
		ctx, query,
		b.ID, b.Allocated, b.Used, b.Pending, expectedVersion,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	if db, err := r.db.DB(); err == nil {
		return db
	}
	return noopExecer{}
}

type noopExecer struct{}

func (noopExecer) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, sql.ErrConnDone
}
