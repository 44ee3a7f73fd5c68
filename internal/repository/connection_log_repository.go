package repository

import (
	"context"

	"gorm.io/gorm"

	"libraryhub/internal/model"
)

// ConnectionLogRepository keeps the bounded, append-only connection history.
type ConnectionLogRepository interface {
	Append(ctx context.Context, entry *model.ConnectionLog) error
	List(ctx context.Context, limit int) ([]model.ConnectionLog, error)
	Count(ctx context.Context) (int64, error)
}

type connectionLogRepository struct {
	db    *gorm.DB
	limit int
}

// NewConnectionLogRepository keeps at most model.MaxConnectionLogs entries.
func NewConnectionLogRepository(db *gorm.DB) ConnectionLogRepository {
	return &connectionLogRepository{db: db, limit: model.MaxConnectionLogs}
}

// Append inserts the entry and evicts the oldest ones beyond the limit.
// Callers run it inside a transaction.
func (r *connectionLogRepository) Append(ctx context.Context, entry *model.ConnectionLog) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(entry).Error; err != nil {
		return err
	}

	// The oldest id that survives; everything below it goes.
	var keep []uint
	err := db.Model(&model.ConnectionLog{}).
		Order("id DESC").
		Offset(r.limit-1).
		Limit(1).
		Pluck("id", &keep).Error
	if err != nil {
		return err
	}
	if len(keep) == 0 {
		return nil
	}
	return db.Where("id < ?", keep[0]).Delete(&model.ConnectionLog{}).Error
}

// List returns the newest entries first.
func (r *connectionLogRepository) List(ctx context.Context, limit int) ([]model.ConnectionLog, error) {
	q := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []model.ConnectionLog
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *connectionLogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ConnectionLog{}).Count(&n).Error
	return n, err
}
