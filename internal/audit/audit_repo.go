package audit

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// Append records one entry. There is no update or delete.
	Append(ctx context.Context, entry Entry) error
	ListByRequest(ctx context.Context, requestID string) ([]Entry, error)
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

func (r *repository) Append(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	if r.tx != nil {
		query := `
INSERT INTO audit_entries (id, request_id, actor_id, action, detail, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
`
		_, err := r.tx.ExecContext(
			ctx, query,
			entry.ID, entry.RequestID, entry.ActorID, entry.Action, entry.Detail,
		)
		return err
	}

	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *repository) ListByRequest(ctx context.Context, requestID string) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
