package mapper

import (
	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/model"
)

type AccessEntryMapper struct{}

func NewAccessEntryMapper() *AccessEntryMapper {
	return &AccessEntryMapper{}
}

func (m *AccessEntryMapper) ToEntity(a *model.AccessEntry) *entity.AccessEntry {
	if a == nil {
		return nil
	}
	return &entity.AccessEntry{
		Id:        a.Id,
		Kind:      a.Kind,
		Subject:   a.Subject,
		Note:      a.Note,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

func (m *AccessEntryMapper) ToModel(a *entity.AccessEntry) *model.AccessEntry {
	if a == nil {
		return nil
	}
	return &model.AccessEntry{
		Id:        a.Id,
		Kind:      a.Kind,
		Subject:   a.Subject,
		Note:      a.Note,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

func (m *AccessEntryMapper) ToEntities(entries []*model.AccessEntry) []*entity.AccessEntry {
	entities := make([]*entity.AccessEntry, len(entries))
	for i, a := range entries {
		entities[i] = m.ToEntity(a)
	}
	return entities
}

type DatabaseSelectionMapper struct{}

func NewDatabaseSelectionMapper() *DatabaseSelectionMapper {
	return &DatabaseSelectionMapper{}
}

func (m *DatabaseSelectionMapper) ToEntity(s *model.UserDatabaseSelection) *entity.UserDatabaseSelection {
	if s == nil {
		return nil
	}
	return &entity.UserDatabaseSelection{UserId: s.UserId, DatabaseId: s.DatabaseId, UpdatedAt: s.UpdatedAt}
}

func (m *DatabaseSelectionMapper) ToModel(s *entity.UserDatabaseSelection) *model.UserDatabaseSelection {
	if s == nil {
		return nil
	}
	return &model.UserDatabaseSelection{UserId: s.UserId, DatabaseId: s.DatabaseId, UpdatedAt: s.UpdatedAt}
}
