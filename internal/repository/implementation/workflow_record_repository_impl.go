package implementation

import (
	"context"
	"errors"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/mapper"
	"itinvent-bot/internal/model"
	"itinvent-bot/internal/repository/contract"
	"itinvent-bot/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkflowRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkflowRecordMapper
}

func NewWorkflowRecordRepository(db *gorm.DB) contract.WorkflowRecordRepository {
	return &WorkflowRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkflowRecordMapper(),
	}
}

func (r *WorkflowRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Create inserts the record once. A retried commit with the same id is a no-op.
func (r *WorkflowRecordRepositoryImpl) Create(ctx context.Context, record *entity.WorkflowRecord) error {
	m := r.mapper.ToModel(record)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(m).Error
}

func (r *WorkflowRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowRecord, error) {
	var m model.WorkflowRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkflowRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowRecord, error) {
	var models []*model.WorkflowRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *WorkflowRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.WorkflowRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
