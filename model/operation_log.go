package model

import "time"

// Operation log states. A row is written as pending before the first side
// effect of a multi-step mutation and marked complete after the last one.
// Pending rows older than their operation plus the orphan events emitted on
// partial failure are the input for manual or worker reconciliation.
const (
	OpStatePending    = "pending"
	OpStateComplete   = "complete"
	OpStateReconciled = "reconciled"
)

type OperationLog struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"user_id"`

	Op string `gorm:"column:op;size:32;not null" json:"op"`

	FileID uint64 `gorm:"column:file_id" json:"file_id,omitempty"`

	OldKey string `gorm:"column:old_key;size:600" json:"old_key,omitempty"`
	NewKey string `gorm:"column:new_key;size:600" json:"new_key,omitempty"`

	State string `gorm:"column:state;size:16;not null;default:'pending';index" json:"state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (OperationLog) TableName() string {
	return "operation_log"
}
