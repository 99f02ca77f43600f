package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"leave-engine/internal/audit"
	"leave-engine/internal/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeReconciliationConfirmations records an audit entry per attendance
// reconciliation confirmed by the external collaborator. Replayed
// confirmations hit the partial unique index and are skipped.
func ConsumeReconciliationConfirmations(
	ctx context.Context,
	reader *kafkago.Reader,
	auditRepo audit.Repository,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.reconciliation")
	log.Info("reconciliation consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("reconciliation consumer stopped")
				return
			}
			log.Error("fetch reconciliation message failed", zap.Error(err))
			continue
		}

		var event events.ReconciliationConfirmedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode reconciliation event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		requestID, err := uuid.Parse(event.RequestID)
		if err != nil {
			log.Error("reconciliation event has invalid request id",
				zap.String("request_id", event.RequestID),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		actorID, err := uuid.Parse(event.EmployeeID)
		if err != nil {
			actorID = uuid.Nil
		}

		err = auditRepo.Append(ctx, audit.Entry{
			RequestID: requestID,
			ActorID:   actorID,
			Action:    audit.ActionAttendanceReconcile,
			Detail:    event.Detail,
		})
		if err != nil {
			if isDuplicateReconciliation(err) {
				log.Warn("reconciliation already recorded, skipping",
					zap.String("request_id", event.RequestID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("record reconciliation failed",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit reconciliation message failed", zap.Error(err))
			continue
		}

		log.Info("attendance reconciliation recorded",
			zap.String("request_id", event.RequestID),
			zap.String("company_id", event.CompanyID),
		)
	}
}

func isDuplicateReconciliation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_audit_reconciled"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_audit_reconciled")
}
