package implementation

import (
	"context"
	"errors"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/mapper"
	"itinvent-bot/internal/model"
	"itinvent-bot/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DatabaseSelectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DatabaseSelectionMapper
}

func NewDatabaseSelectionRepository(db *gorm.DB) contract.DatabaseSelectionRepository {
	return &DatabaseSelectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDatabaseSelectionMapper(),
	}
}

func (r *DatabaseSelectionRepositoryImpl) Upsert(ctx context.Context, selection *entity.UserDatabaseSelection) error {
	m := r.mapper.ToModel(selection)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"database_id", "updated_at"}),
		}).
		Create(m).Error
}

func (r *DatabaseSelectionRepositoryImpl) FindByUserId(ctx context.Context, userId string) (*entity.UserDatabaseSelection, error) {
	var m model.UserDatabaseSelection
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
