package service

import (
	"context"
	"fmt"
	"time"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/pkg/logger"
	"itinvent-bot/internal/repository/specification"
	"itinvent-bot/internal/repository/unitofwork"
	"itinvent-bot/pkg/inventory"
)

// RecordFilter narrows record listings. Zero values match everything.
type RecordFilter struct {
	DatabaseID string
	Mode       string
	UserID     string
	Since      time.Time
}

func (f RecordFilter) specs() []specification.Specification {
	specs := make([]specification.Specification, 0, 5)
	if f.DatabaseID != "" {
		specs = append(specs, specification.ByDatabaseID{DatabaseID: f.DatabaseID})
	}
	if f.Mode != "" {
		specs = append(specs, specification.ByMode{Mode: f.Mode})
	}
	if f.UserID != "" {
		specs = append(specs, specification.ByUserID{UserID: f.UserID})
	}
	if !f.Since.IsZero() {
		specs = append(specs, specification.CreatedSince{Since: f.Since})
	}
	return append(specs, specification.OrderBy{Field: "created_at"})
}

type IRecordService interface {
	inventory.RecordStore
	ListRecords(ctx context.Context, filter RecordFilter) ([]*entity.WorkflowRecord, error)
}

type recordService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewRecordService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IRecordService {
	return &recordService{uowFactory: uowFactory, logger: log}
}

// AppendRecord writes the record in its own transaction. Appending an id twice stores it once.
func (s *recordService) AppendRecord(ctx context.Context, record *entity.WorkflowRecord) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.WorkflowRecordRepository().Create(ctx, record); err != nil {
		return fmt.Errorf("insert workflow record %s: %w", record.Id, err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit workflow record %s: %w", record.Id, err)
	}

	s.logger.Info("RECORDS", "Workflow record stored", map[string]interface{}{
		"record_id":   record.Id.String(),
		"mode":        record.Mode,
		"database_id": record.DatabaseId,
	})
	return nil
}

func (s *recordService) SerialRecorded(ctx context.Context, databaseID, mode, serial string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.WorkflowRecordRepository().Count(ctx,
		specification.ByDatabaseID{DatabaseID: databaseID},
		specification.ByMode{Mode: mode},
		specification.BySerial{Serial: serial},
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *recordService) ListRecords(ctx context.Context, filter RecordFilter) ([]*entity.WorkflowRecord, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.WorkflowRecordRepository().FindAll(ctx, filter.specs()...)
}

type selectionService struct {
	uowFactory unitofwork.RepositoryFactory
}

// NewSelectionService stores the database each user works against.
func NewSelectionService(uowFactory unitofwork.RepositoryFactory) inventory.SelectionStore {
	return &selectionService{uowFactory: uowFactory}
}

func (s *selectionService) LoadSelection(ctx context.Context, userID string) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sel, err := uow.DatabaseSelectionRepository().FindByUserId(ctx, userID)
	if err != nil {
		return "", err
	}
	if sel == nil {
		return "", nil
	}
	return sel.DatabaseId, nil
}

func (s *selectionService) SaveSelection(ctx context.Context, userID, databaseID string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DatabaseSelectionRepository().Upsert(ctx, &entity.UserDatabaseSelection{
		UserId:     userID,
		DatabaseId: databaseID,
		UpdatedAt:  time.Now(),
	})
}
