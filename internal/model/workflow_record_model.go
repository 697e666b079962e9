package model

import (
	"time"

	"itinvent-bot/pkg/store"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkflowRecord is append-only. Rows are inserted once and never updated.
type WorkflowRecord struct {
	Id           uuid.UUID                                       `gorm:"type:uuid;primaryKey"`
	Mode         string                                          `gorm:"type:varchar(32);not null;index:idx_workflow_records_lookup,priority:2"`
	DatabaseId   string                                          `gorm:"type:varchar(64);not null;index:idx_workflow_records_lookup,priority:1"`
	UserId       string                                          `gorm:"type:varchar(64);not null;index"`
	Serial       string                                          `gorm:"type:varchar(100);index:idx_workflow_records_lookup,priority:3"`
	Fields       datatypes.JSONType[map[string]store.FieldValue] `gorm:"type:jsonb"`
	Items        datatypes.JSONSlice[store.Equipment]            `gorm:"type:jsonb"`
	DocumentRefs datatypes.JSONSlice[string]                     `gorm:"type:jsonb"`
	Supersedes   *uuid.UUID                                      `gorm:"type:uuid;index"`
	CreatedAt    time.Time                                       `gorm:"autoCreateTime;index"`
}

func (WorkflowRecord) TableName() string {
	return "workflow_records"
}
