package ledger_test

import (
	"context"
	"regexp"
	"testing"

	"leave-engine/internal/ledger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Snapshot math inside an open transaction has to see rows written earlier
// in that transaction, so the tx-bound repository must not fall back to the
// pooled connection for reads.
func TestRepository_FindByEmployeeReadsThroughTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	companyID := uuid.New()
	employeeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, company_id, employee_id, leave_type, allocated, used, pending, version",
	)).
		WithArgs(companyID.String(), employeeID.String()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "employee_id", "leave_type", "allocated", "used", "pending", "version",
		}).
			AddRow(uuid.New().String(), companyID.String(), employeeID.String(), ledger.TypeAnnual, 12.0, 2.0, 1.0, int64(3)).
			AddRow(uuid.New().String(), companyID.String(), employeeID.String(), ledger.TypeSick, 5.0, 0.0, 0.0, int64(1)))
	mock.ExpectCommit()

	tx, err := db.Begin()
	assert.NoError(t, err)

	repo := ledger.NewRepository(nil).WithTx(tx)
	balances, err := repo.FindByEmployee(context.Background(), companyID.String(), employeeID.String())

	assert.NoError(t, err)
	assert.NoError(t, tx.Commit())
	assert.Len(t, balances, 2)
	assert.Equal(t, ledger.TypeAnnual, balances[0].LeaveType)
	assert.Equal(t, 9.0, balances[0].Available())
	assert.EqualValues(t, 3, balances[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
