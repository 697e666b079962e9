package implementation

import (
	"context"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/mapper"
	"itinvent-bot/internal/model"
	"itinvent-bot/internal/repository/contract"
	"itinvent-bot/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessEntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AccessEntryMapper
}

func NewAccessEntryRepository(db *gorm.DB) contract.AccessEntryRepository {
	return &AccessEntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewAccessEntryMapper(),
	}
}

func (r *AccessEntryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AccessEntryRepositoryImpl) Upsert(ctx context.Context, entry *entity.AccessEntry) error {
	m := r.mapper.ToModel(entry)
	m.Active = true
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"note", "active"}),
		}).
		Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *AccessEntryRepositoryImpl) Deactivate(ctx context.Context, kind, subject string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.AccessEntry{}).
		Where("kind = ? AND subject = ? AND active = ?", kind, subject, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AccessEntryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AccessEntry, error) {
	var models []*model.AccessEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
