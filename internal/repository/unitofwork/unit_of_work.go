package unitofwork

import (
	"context"

	"itinvent-bot/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	WorkflowRecordRepository() contract.WorkflowRecordRepository
	DatabaseSelectionRepository() contract.DatabaseSelectionRepository
	AccessEntryRepository() contract.AccessEntryRepository
}
