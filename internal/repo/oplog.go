package repo

import (
	"GoGallery/model"
	"context"

	"gorm.io/gorm"
)

// OpLogDB records multi-step mutation intents so that partially completed
// operations stay visible for reconciliation.
type OpLogDB struct {
	db *gorm.DB
}

// NewOpLog creates an operation log on the given connection.
func NewOpLog(db *gorm.DB) *OpLogDB {
	return &OpLogDB{db: db}
}

// Begin writes a pending intent row before the first side effect.
func (o *OpLogDB) Begin(ctx context.Context, entry *model.OperationLog) error {
	entry.State = model.OpStatePending
	return o.db.WithContext(ctx).Create(entry).Error
}

// Complete marks an intent row done after the last side effect.
func (o *OpLogDB) Complete(ctx context.Context, id string) error {
	return o.db.WithContext(ctx).
		Model(&model.OperationLog{}).
		Where("id = ?", id).
		Update("state", model.OpStateComplete).Error
}

// MarkReconciled flags an intent row cleaned up by the reconcile worker.
func (o *OpLogDB) MarkReconciled(ctx context.Context, id string) error {
	return o.db.WithContext(ctx).
		Model(&model.OperationLog{}).
		Where("id = ?", id).
		Update("state", model.OpStateReconciled).Error
}
