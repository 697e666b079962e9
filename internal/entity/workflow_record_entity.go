package entity

import (
	"time"

	"itinvent-bot/pkg/store"

	"github.com/google/uuid"
)

// WorkflowRecord is the durable result of one confirmed workflow. Written once, never updated.
type WorkflowRecord struct {
	Id           uuid.UUID
	Mode         string
	DatabaseId   string
	UserId       string
	Serial       string
	Fields       map[string]store.FieldValue
	Items        []store.Equipment
	DocumentRefs []string
	Supersedes   *uuid.UUID
	CreatedAt    time.Time
}

func (r *WorkflowRecord) Field(name string) string {
	return r.Fields[name].Value
}
