package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	leaveerrors "leave-engine/internal/leave/errors"
	"leave-engine/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, req *LeaveRequest) error
	FindByID(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	FindByEmployee(ctx context.Context, companyID, employeeID string, limit, offset int) ([]LeaveRequest, int64, error)
	// RecordDecision persists the terminal status and each segment's
	// decided status in one shot. The update only lands while the row is
	// still SUBMITTED; a concurrent decision that got there first surfaces
	// as ErrInvalidStatusTransition.
	RecordDecision(ctx context.Context, req *LeaveRequest) error
	// NextReference bumps and returns the per-company yearly sequence
	// number used to build reference numbers like LV-2026-00042.
	NextReference(ctx context.Context, companyID string, year int) (int64, error)
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

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	if r.tx == nil {
		return r.db.WithContext(ctx).Create(req).Error
	}

	query := `
INSERT INTO leave_requests (
	id, company_id, employee_id, leave_type, start_date, end_date,
	duration_type, reason, contact_info, status, reference, created_by,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
`
	_, err := r.tx.ExecContext(
		ctx, query,
		req.ID, req.CompanyID, req.EmployeeID, req.LeaveType,
		req.StartDate, req.EndDate, req.DurationType, req.Reason,
		req.ContactInfo, req.Status, req.Reference, req.CreatedBy,
	)
	if err != nil {
		return err
	}

	segmentQuery := `
INSERT INTO leave_segments (
	id, request_id, segment_type, days, payroll_deduction, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, NOW())
`
	for i := range req.Segments {
		seg := &req.Segments[i]
		if seg.ID == uuid.Nil {
			seg.ID = uuid.New()
		}
		seg.RequestID = req.ID
		if _, err := r.tx.ExecContext(
			ctx, segmentQuery,
			seg.ID, seg.RequestID, seg.SegmentType,
			seg.Days, seg.PayrollDeduction, seg.Status,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, segment_type ASC")
		}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindByEmployee(ctx context.Context, companyID, employeeID string, limit, offset int) ([]LeaveRequest, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []LeaveRequest
	err := base.
		Preload("Segments").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	return requests, total, err
}

func (r *repository) RecordDecision(ctx context.Context, req *LeaveRequest) error {
	query := `
UPDATE leave_requests
SET
	status = $2,
	decided_by = $3,
	decided_at = $4,
	rejection_reason = $5,
	updated_at = NOW()
WHERE id = $1 AND status = $6
`
	exec := r.execer()
	res, err := exec.ExecContext(
		ctx, query,
		req.ID, req.Status, req.DecidedBy, req.DecidedAt, req.RejectionReason,
		StatusSubmitted,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return leaveerrors.ErrInvalidStatusTransition
	}

	segmentQuery := `UPDATE leave_segments SET status = $2 WHERE id = $1`
	for _, seg := range req.Segments {
		if _, err := exec.ExecContext(ctx, segmentQuery, seg.ID, seg.Status); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) NextReference(ctx context.Context, companyID string, year int) (int64, error) {
	query := `
INSERT INTO leave_counters (company_id, year, seq)
VALUES ($1, $2, 1)
ON CONFLICT (company_id, year)
DO UPDATE SET seq = leave_counters.seq + 1
RETURNING seq
`
	var seq int64
	if r.tx != nil {
		err := r.tx.QueryRowContext(ctx, query, companyID, year).Scan(&seq)
		return seq, err
	}

	db, err := r.db.DB()
	if err != nil {
		return 0, err
	}
	err = db.QueryRowContext(ctx, query, companyID, year).Scan(&seq)
	return seq, err
}

// FormatReference renders the human-facing request number.
func FormatReference(year int, seq int64) string {
	return fmt.Sprintf("LV-%d-%05d", year, seq)
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
