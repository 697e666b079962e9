package contract

import (
	"context"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/repository/specification"
)

// WorkflowRecordRepository is append-only: Create ignores a record whose id already exists.
type WorkflowRecordRepository interface {
	Create(ctx context.Context, record *entity.WorkflowRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
