// Package leave owns the request lifecycle: balance-aware calculation,
// submission with reservation, and the HR decision step that commits or
// releases reserved days atomically with the status change.
package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"leave-engine/internal/audit"
	"leave-engine/internal/calendar"
	"leave-engine/internal/events"
	leaveerrors "leave-engine/internal/leave/errors"
	"leave-engine/internal/ledger"
	ledgererrors "leave-engine/internal/ledger/errors"
	"leave-engine/internal/messaging/kafka"
	"leave-engine/internal/salary"
	"leave-engine/internal/split"
	"leave-engine/internal/workload"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Calculate(ctx context.Context, companyID, employeeID string, req CalculateRequest) (CalculateResponse, error)
	Submit(ctx context.Context, companyID, actorID, actorRole string, req SubmitRequest) (LeaveResponse, error)
	Approve(ctx context.Context, companyID, actorID, actorRole, id string, req ApproveRequest) (LeaveResponse, error)
	Reject(ctx context.Context, companyID, actorID, actorRole, id string, req RejectRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (LeaveResponse, error)
	GetByID(ctx context.Context, companyID, actorID, actorRole, id string) (LeaveDetailResponse, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string, page, perPage int) ([]LeaveResponse, int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	ledger   ledger.Service
	salaries salary.Service
	holidays calendar.Repository
	audits   audit.Repository
	outbox   kafka.OutboxRepository
	workload workload.Repository
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledgerService ledger.Service,
	salaryService salary.Service,
	holidayRepo calendar.Repository,
	auditRepo audit.Repository,
	outboxRepo kafka.OutboxRepository,
	workloadRepo workload.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		ledger:   ledgerService,
		salaries: salaryService,
		holidays: holidayRepo,
		audits:   auditRepo,
		outbox:   outboxRepo,
		workload: workloadRepo,
		logger:   l,
	}
}

func isHR(role string) bool {
	return role == RoleHR || role == RoleAdmin
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return start, end, nil
}

func (s *service) Calculate(ctx context.Context, companyID, employeeID string, req CalculateRequest) (CalculateResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return CalculateResponse{}, err
	}

	snapshot, err := s.ledger.Snapshot(ctx, companyID, employeeID)
	if err != nil {
		return CalculateResponse{}, err
	}

	plan, err := s.buildPlan(ctx, companyID, employeeID, snapshot, req.LeaveType, req.DurationType, start, end)
	if err != nil {
		return CalculateResponse{}, err
	}

	return CalculateResponse{
		Balance:     snapshot,
		WorkingDays: plan.WorkingDays,
		NeedsSplit:  plan.NeedsSplit,
		Segments:    plan.Segments,
	}, nil
}

// buildPlan resolves the calendar and salary inputs and runs the pure
// split calculation against the given balance snapshot.
func (s *service) buildPlan(
	ctx context.Context,
	companyID, employeeID string,
	snapshot ledger.SnapshotResponse,
	leaveType, durationType string,
	start, end time.Time,
) (split.Plan, error) {
	if durationType == "" {
		durationType = split.DurationFullDay
	}

	holidays, err := s.holidays.FindActiveByCompany(ctx, companyID)
	if err != nil {
		return split.Plan{}, err
	}

	rate, err := s.salaries.DailyRate(ctx, companyID, employeeID)
	if err != nil {
		return split.Plan{}, err
	}

	available, _ := snapshot.AvailableFor(leaveType)
	return split.Calculate(split.Input{
		LeaveType:    leaveType,
		StartDate:    start,
		EndDate:      end,
		DurationType: durationType,
		Holidays:     calendar.HolidayDates(holidays, start, end),
		Available:    available,
		DailyRate:    rate,
	})
}

func (s *service) Submit(ctx context.Context, companyID, actorID, actorRole string, req SubmitRequest) (LeaveResponse, error) {
	employeeID := actorID
	if req.EmployeeID != "" && req.EmployeeID != actorID {
		if !isHR(actorRole) {
			return LeaveResponse{}, leaveerrors.ErrSubmitForOthersForbidden
		}
		employeeID = req.EmployeeID
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return LeaveResponse{}, ledgererrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, ledgererrors.ErrInvalidEmployeeID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, ledgererrors.ErrInvalidEmployeeID
	}

	splitOption := req.SplitOption
	if splitOption == "" {
		splitOption = SplitProceed
	}
	if splitOption == SplitOverride && !isHR(actorRole) {
		return LeaveResponse{}, leaveerrors.ErrOverrideForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)
	txLedger := s.ledger.WithTx(tx)
	txAudit := s.audits.WithTx(tx)

	// Plan against the live balance inside the transaction, not the
	// cached snapshot the caller saw at calculate time.
	snapshot, err := txLedger.Snapshot(ctx, companyID, employeeID)
	if err != nil {
		return LeaveResponse{}, err
	}

	plan, err := s.buildPlan(ctx, companyID, employeeID, snapshot, req.LeaveType, req.DurationType, start, end)
	if err != nil {
		return LeaveResponse{}, err
	}

	segments, granted, err := s.applySplitOption(ctx, txLedger, companyID, employeeID, req.LeaveType, splitOption, plan)
	if err != nil {
		return LeaveResponse{}, err
	}

	if err := txLedger.Reserve(ctx, companyID, employeeID, movements(segments)); err != nil {
		return LeaveResponse{}, err
	}

	now := time.Now().UTC()
	seq, err := txRepo.NextReference(ctx, companyID, now.Year())
	if err != nil {
		return LeaveResponse{}, err
	}

	durationType := req.DurationType
	if durationType == "" {
		durationType = split.DurationFullDay
	}

	request := &LeaveRequest{
		ID:           uuid.New(),
		CompanyID:    companyUUID,
		EmployeeID:   employeeUUID,
		LeaveType:    req.LeaveType,
		StartDate:    start,
		EndDate:      end,
		DurationType: durationType,
		Reason:       req.Reason,
		ContactInfo:  req.ContactInfo,
		Status:       StatusSubmitted,
		Reference:    FormatReference(now.Year(), seq),
		CreatedBy:    actorUUID,
		Segments:     segments,
		CreatedAt:    now,
	}

	if err := txRepo.Create(ctx, request); err != nil {
		return LeaveResponse{}, err
	}

	if granted > 0 {
		if err := txAudit.Append(ctx, audit.Entry{
			RequestID: request.ID,
			ActorID:   actorUUID,
			Action:    audit.ActionBalanceGranted,
			Detail:    fmt.Sprintf("granted %.1f %s day(s) to cover override", granted, req.LeaveType),
		}); err != nil {
			return LeaveResponse{}, err
		}
	}
	if err := txAudit.Append(ctx, audit.Entry{
		RequestID: request.ID,
		ActorID:   actorUUID,
		Action:    audit.ActionSubmitted,
		Detail:    fmt.Sprintf("submitted %s via %s", request.Reference, splitOption),
	}); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}
	s.ledger.InvalidateSnapshot(ctx, companyID, employeeID)

	s.logger.Info("leave request submitted",
		zap.String("reference", request.Reference),
		zap.String("employee_id", employeeID),
		zap.String("split_option", splitOption),
	)
	return toLeaveResponse(*request), nil
}

// applySplitOption reshapes the auto-split plan per the submitter's choice
// and returns the request's segments plus any days granted by an override.
func (s *service) applySplitOption(
	ctx context.Context,
	txLedger ledger.Service,
	companyID, employeeID, leaveType, splitOption string,
	plan split.Plan,
) ([]LeaveSegment, float64, error) {
	toSegments := func(segs []split.Segment) []LeaveSegment {
		out := make([]LeaveSegment, 0, len(segs))
		for _, seg := range segs {
			out = append(out, LeaveSegment{
				ID:               uuid.New(),
				SegmentType:      seg.SegmentType,
				Days:             seg.Days,
				PayrollDeduction: seg.PayrollDeduction,
				Status:           SegmentPending,
			})
		}
		return out
	}

	if !plan.NeedsSplit {
		return toSegments(plan.Segments), 0, nil
	}

	switch splitOption {
	case SplitProceed:
		return toSegments(plan.Segments), 0, nil

	case SplitConvertToUnpaid:
		var total float64
		for _, seg := range plan.Segments {
			total += seg.Days
		}
		rate, err := s.salaries.DailyRate(ctx, companyID, employeeID)
		if err != nil {
			return nil, 0, err
		}
		deduction := rate.Mul(decimal.NewFromFloat(total)).Round(2)
		return []LeaveSegment{{
			ID:               uuid.New(),
			SegmentType:      ledger.TypeUnpaid,
			Days:             total,
			PayrollDeduction: deduction,
			Status:           SegmentPending,
		}}, 0, nil

	case SplitReduce:
		first := plan.Segments[0]
		if first.SegmentType == ledger.TypeUnpaid || first.Days <= 0 {
			return nil, 0, leaveerrors.ErrNothingToReduce
		}
		return toSegments(plan.Segments[:1]), 0, nil

	case SplitOverride:
		var total float64
		var shortfall float64
		for _, seg := range plan.Segments {
			total += seg.Days
			if seg.SegmentType == ledger.TypeUnpaid {
				shortfall += seg.Days
			}
		}
		if shortfall > 0 {
			if err := txLedger.Grant(ctx, companyID, employeeID, leaveType, shortfall); err != nil {
				return nil, 0, err
			}
		}
		return []LeaveSegment{{
			ID:               uuid.New(),
			SegmentType:      leaveType,
			Days:             total,
			PayrollDeduction: decimal.Zero,
			Status:           SegmentPending,
		}}, shortfall, nil

	default:
		return nil, 0, leaveerrors.ErrUnknownSplitOption
	}
}

func movements(segments []LeaveSegment) []ledger.Movement {
	out := make([]ledger.Movement, 0, len(segments))
	for _, seg := range segments {
		out = append(out, ledger.Movement{LeaveType: seg.SegmentType, Days: seg.Days})
	}
	return out
}

func (s *service) Approve(ctx context.Context, companyID, actorID, actorRole, id string, req ApproveRequest) (LeaveResponse, error) {
	if !isHR(actorRole) {
		return LeaveResponse{}, leaveerrors.ErrApprovalForbidden
	}
	if !req.ApproveAll && len(req.Decisions) == 0 {
		return LeaveResponse{}, leaveerrors.ErrNoDecisions
	}
	deciderID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, ledgererrors.ErrInvalidEmployeeID
	}

	request, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if request.Status != StatusSubmitted {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition.WithDetails(map[string]any{
			"status": request.Status,
		})
	}

	if !req.ApproveAll {
		known := make(map[string]struct{}, len(request.Segments))
		for _, seg := range request.Segments {
			known[seg.ID.String()] = struct{}{}
		}
		for segID := range req.Decisions {
			if _, ok := known[segID]; !ok {
				return LeaveResponse{}, leaveerrors.ErrUnknownSegment.WithDetails(map[string]any{
					"segment_id": segID,
				})
			}
		}
	}

	var approved, rejected []LeaveSegment
	for i := range request.Segments {
		seg := &request.Segments[i]
		approve := req.ApproveAll || req.Decisions[seg.ID.String()]
		if approve {
			seg.Status = SegmentApproved
			approved = append(approved, *seg)
		} else {
			seg.Status = SegmentRejected
			rejected = append(rejected, *seg)
		}
	}

	targetStatus := StatusApproved
	switch {
	case len(approved) == 0:
		targetStatus = StatusRejected
	case len(rejected) > 0:
		targetStatus = StatusPartiallyApproved
	}
	if !isAllowedStatusTransition(request.Status, targetStatus) {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)
	txLedger := s.ledger.WithTx(tx)
	txAudit := s.audits.WithTx(tx)
	txOutbox := s.outbox.WithTx(tx)

	employeeID := request.EmployeeID.String()

	// Balance re-validation happens inside these calls: the optimistic
	// version check fails the whole transaction when the balance moved
	// since submission.
	if err := txLedger.Commit(ctx, companyID, employeeID, movements(approved)); err != nil {
		return LeaveResponse{}, err
	}
	if err := txLedger.Release(ctx, companyID, employeeID, movements(rejected)); err != nil {
		return LeaveResponse{}, err
	}

	now := time.Now().UTC()
	request.Status = targetStatus
	request.DecidedBy = &deciderID
	request.DecidedAt = &now
	if targetStatus == StatusRejected && req.Comment != "" {
		reason := req.Comment
		request.RejectionReason = &reason
	}

	if err := txRepo.RecordDecision(ctx, request); err != nil {
		return LeaveResponse{}, err
	}

	action := audit.ActionApproved
	switch targetStatus {
	case StatusPartiallyApproved:
		action = audit.ActionPartiallyApproved
	case StatusRejected:
		action = audit.ActionRejected
	}
	if err := txAudit.Append(ctx, audit.Entry{
		RequestID: request.ID,
		ActorID:   deciderID,
		Action:    action,
		Detail:    req.Comment,
	}); err != nil {
		return LeaveResponse{}, err
	}

	if len(approved) > 0 {
		event := events.LeaveApprovedEvent{
			EventType:  "leave.approved",
			RequestID:  request.ID.String(),
			CompanyID:  companyID,
			EmployeeID: employeeID,
			Reference:  request.Reference,
			CreateOOO:  req.CreateOOO,
			NotifyTeam: req.NotifyTeam,
			ApprovedAt: now,
			OccurredAt: now,
		}
		for _, seg := range approved {
			event.Windows = append(event.Windows, events.ApprovedWindow{
				SegmentType: seg.SegmentType,
				Days:        seg.Days,
				StartDate:   request.StartDate,
				EndDate:     request.EndDate,
			})
		}
		outboxEvent, err := kafka.NewLeaveApprovedOutboxEvent(event)
		if err != nil {
			return LeaveResponse{}, err
		}
		if err := txOutbox.Create(ctx, outboxEvent); err != nil {
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}
	s.ledger.InvalidateSnapshot(ctx, companyID, employeeID)

	s.logger.Info("leave request decided",
		zap.String("reference", request.Reference),
		zap.String("status", targetStatus),
		zap.Int("approved_segments", len(approved)),
		zap.Int("rejected_segments", len(rejected)),
	)
	return toLeaveResponse(*request), nil
}

func (s *service) Reject(ctx context.Context, companyID, actorID, actorRole, id string, req RejectRequest) (LeaveResponse, error) {
	if !isHR(actorRole) {
		return LeaveResponse{}, leaveerrors.ErrApprovalForbidden
	}

	request, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !isAllowedStatusTransition(request.Status, StatusRejected) {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition.WithDetails(map[string]any{
			"status": request.Status,
		})
	}

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, ledgererrors.ErrInvalidEmployeeID
	}
	return s.terminate(ctx, request, actorUUID, StatusRejected, audit.ActionRejected, req.Reason)
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string) (LeaveResponse, error) {
	request, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if request.EmployeeID.String() != actorID {
		return LeaveResponse{}, leaveerrors.ErrNotOwner
	}
	if !isAllowedStatusTransition(request.Status, StatusCancelled) {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition.WithDetails(map[string]any{
			"status": request.Status,
		})
	}

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, ledgererrors.ErrInvalidEmployeeID
	}
	return s.terminate(ctx, request, actorUUID, StatusCancelled, audit.ActionCancelled, "")
}

// terminate releases every reserved segment and moves the request to a
// terminal non-approved status in one transaction.
func (s *service) terminate(
	ctx context.Context,
	request *LeaveRequest,
	actorID uuid.UUID,
	targetStatus, action, reason string,
) (LeaveResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)
	txLedger := s.ledger.WithTx(tx)
	txAudit := s.audits.WithTx(tx)

	companyID := request.CompanyID.String()
	employeeID := request.EmployeeID.String()

	if err := txLedger.Release(ctx, companyID, employeeID, movements(request.Segments)); err != nil {
		return LeaveResponse{}, err
	}

	now := time.Now().UTC()
	request.Status = targetStatus
	request.DecidedBy = &actorID
	request.DecidedAt = &now
	if reason != "" {
		request.RejectionReason = &reason
	}
	for i := range request.Segments {
		request.Segments[i].Status = SegmentRejected
	}

	if err := txRepo.RecordDecision(ctx, request); err != nil {
		return LeaveResponse{}, err
	}
	if err := txAudit.Append(ctx, audit.Entry{
		RequestID: request.ID,
		ActorID:   actorID,
		Action:    action,
		Detail:    reason,
	}); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}
	s.ledger.InvalidateSnapshot(ctx, companyID, employeeID)

	s.logger.Info("leave request closed",
		zap.String("reference", request.Reference),
		zap.String("status", targetStatus),
	)
	return toLeaveResponse(*request), nil
}

func (s *service) GetByID(ctx context.Context, companyID, actorID, actorRole, id string) (LeaveDetailResponse, error) {
	request, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return LeaveDetailResponse{}, err
	}
	if request.EmployeeID.String() != actorID && !isHR(actorRole) {
		return LeaveDetailResponse{}, leaveerrors.ErrNotOwner
	}

	detail := LeaveDetailResponse{LeaveResponse: toLeaveResponse(*request)}

	if emp, err := s.workload.FindEmployee(ctx, companyID, request.EmployeeID.String()); err == nil {
		detail.EmployeeName = emp.FullName
		detail.DepartmentID = emp.DepartmentID.String()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return LeaveDetailResponse{}, err
	}

	entries, err := s.audits.ListByRequest(ctx, id)
	if err != nil {
		return LeaveDetailResponse{}, err
	}
	detail.AuditTrail = toAuditTrail(entries)

	return detail, nil
}

func (s *service) ListByEmployee(ctx context.Context, companyID, employeeID string, page, perPage int) ([]LeaveResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	requests, total, err := s.repo.FindByEmployee(ctx, companyID, employeeID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}

	out := make([]LeaveResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toLeaveResponse(req))
	}
	return out, total, nil
}
