package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ledgererrors "leave-engine/internal/ledger/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const snapshotTTL = 30 * time.Second

// SnapshotKey is the redis key caching one employee's balance snapshot.
func SnapshotKey(companyID, employeeID string) string {
	return fmt.Sprintf("leave:balance:%s:%s", companyID, employeeID)
}

//go:generate mockgen -source=ledger_service.go -destination=mock/ledger_service_mock.go -package=mock
type Service interface {
	// WithTx binds all mutations and in-transaction reads to an open
	// transaction. Snapshot caching is disabled on the bound copy.
	WithTx(tx *sql.Tx) Service
	Snapshot(ctx context.Context, companyID, employeeID string) (SnapshotResponse, error)
	Reserve(ctx context.Context, companyID, employeeID string, movements []Movement) error
	Commit(ctx context.Context, companyID, employeeID string, movements []Movement) error
	Release(ctx context.Context, companyID, employeeID string, movements []Movement) error
	// Grant raises the allocation for one leave type. Used by the HR
	// override path so a reservation never drives available below zero.
	Grant(ctx context.Context, companyID, employeeID, leaveType string, days float64) error
	InvalidateSnapshot(ctx context.Context, companyID, employeeID string)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("ledger.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ledger.service")
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) WithTx(tx *sql.Tx) Service {
	return &service{
		repo:   s.repo.WithTx(tx),
		rdb:    nil,
		sf:     &singleflight.Group{},
		logger: s.logger,
	}
}

func (s *service) Snapshot(ctx context.Context, companyID, employeeID string) (SnapshotResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return SnapshotResponse{}, ledgererrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return SnapshotResponse{}, ledgererrors.ErrInvalidEmployeeID
	}

	cacheKey := SnapshotKey(companyID, employeeID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp SnapshotResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		balances, err := s.repo.FindByEmployee(ctx, companyID, employeeID)
		if err != nil {
			return SnapshotResponse{}, err
		}

		resp := SnapshotResponse{EmployeeID: employeeID}
		for _, b := range balances {
			resp.Balances = append(resp.Balances, BalanceSnapshot{
				LeaveType: b.LeaveType,
				Allocated: b.Allocated,
				Used:      b.Used,
				Pending:   b.Pending,
				Available: b.Available(),
			})
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, snapshotTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return SnapshotResponse{}, err
	}
	return v.(SnapshotResponse), nil
}

func (s *service) Reserve(ctx context.Context, companyID, employeeID string, movements []Movement) error {
	return s.mutate(ctx, companyID, employeeID, movements, func(b *LeaveBalance, days float64) error {
		if b.Available() < days {
			return ledgererrors.ErrInsufficientBalance.WithDetails(map[string]any{
				"leave_type": b.LeaveType,
				"requested":  days,
				"available":  b.Available(),
			})
		}
		b.Pending += days
		return nil
	})
}

func (s *service) Commit(ctx context.Context, companyID, employeeID string, movements []Movement) error {
	return s.mutate(ctx, companyID, employeeID, movements, func(b *LeaveBalance, days float64) error {
		if b.Pending < days {
			return ledgererrors.ErrReservationMismatch
		}
		b.Pending -= days
		b.Used += days
		return nil
	})
}

func (s *service) Release(ctx context.Context, companyID, employeeID string, movements []Movement) error {
	return s.mutate(ctx, companyID, employeeID, movements, func(b *LeaveBalance, days float64) error {
		if b.Pending < days {
			return ledgererrors.ErrReservationMismatch
		}
		b.Pending -= days
		return nil
	})
}

func (s *service) Grant(ctx context.Context, companyID, employeeID, leaveType string, days float64) error {
	if !Tracked(leaveType) {
		return ledgererrors.ErrUnknownLeaveType
	}
	return s.mutate(ctx, companyID, employeeID, []Movement{{LeaveType: leaveType, Days: days}},
		func(b *LeaveBalance, days float64) error {
			b.Allocated += days
			return nil
		})
}

// mutate applies one balance change per tracked movement under the
// optimistic version check. Untracked (unpaid) movements are skipped.
func (s *service) mutate(
	ctx context.Context,
	companyID, employeeID string,
	movements []Movement,
	apply func(b *LeaveBalance, days float64) error,
) error {
	for _, m := range movements {
		if !Tracked(m.LeaveType) {
			continue
		}
		if m.Days <= 0 {
			continue
		}

		b, err := s.repo.FindForType(ctx, companyID, employeeID, m.LeaveType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ledgererrors.ErrBalanceNotFound
			}
			return err
		}

		expectedVersion := b.Version
		if err := apply(b, m.Days); err != nil {
			return err
		}

		ok, err := s.repo.UpdateWithVersion(ctx, b, expectedVersion)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("balance version conflict",
				zap.String("employee_id", employeeID),
				zap.String("leave_type", m.LeaveType),
				zap.Int64("expected_version", expectedVersion),
			)
			return ledgererrors.ErrBalanceConflict.WithDetails(map[string]any{
				"leave_type": m.LeaveType,
				"retry":      "recalculate against the current balance and submit again",
			})
		}
	}

	s.InvalidateSnapshot(ctx, companyID, employeeID)
	return nil
}

func (s *service) InvalidateSnapshot(ctx context.Context, companyID, employeeID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, SnapshotKey(companyID, employeeID)).Err(); err != nil {
		s.logger.Error("invalidate balance snapshot failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}
