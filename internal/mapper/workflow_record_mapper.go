package mapper

import (
	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/model"
	"itinvent-bot/pkg/store"

	"gorm.io/datatypes"
)

type WorkflowRecordMapper struct{}

func NewWorkflowRecordMapper() *WorkflowRecordMapper {
	return &WorkflowRecordMapper{}
}

func (m *WorkflowRecordMapper) ToEntity(r *model.WorkflowRecord) *entity.WorkflowRecord {
	if r == nil {
		return nil
	}

	fields := r.Fields.Data()
	if fields == nil {
		fields = make(map[string]store.FieldValue)
	}

	return &entity.WorkflowRecord{
		Id:           r.Id,
		Mode:         r.Mode,
		DatabaseId:   r.DatabaseId,
		UserId:       r.UserId,
		Serial:       r.Serial,
		Fields:       fields,
		Items:        []store.Equipment(r.Items),
		DocumentRefs: []string(r.DocumentRefs),
		Supersedes:   r.Supersedes,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *WorkflowRecordMapper) ToModel(r *entity.WorkflowRecord) *model.WorkflowRecord {
	if r == nil {
		return nil
	}

	items := r.Items
	if items == nil {
		items = []store.Equipment{}
	}
	refs := r.DocumentRefs
	if refs == nil {
		refs = []string{}
	}

	return &model.WorkflowRecord{
		Id:           r.Id,
		Mode:         r.Mode,
		DatabaseId:   r.DatabaseId,
		UserId:       r.UserId,
		Serial:       r.Serial,
		Fields:       datatypes.NewJSONType(r.Fields),
		Items:        datatypes.JSONSlice[store.Equipment](items),
		DocumentRefs: datatypes.JSONSlice[string](refs),
		Supersedes:   r.Supersedes,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *WorkflowRecordMapper) ToEntities(records []*model.WorkflowRecord) []*entity.WorkflowRecord {
	entities := make([]*entity.WorkflowRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
