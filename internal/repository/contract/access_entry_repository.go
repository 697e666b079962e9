package contract

import (
	"context"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/repository/specification"
)

type AccessEntryRepository interface {
	// Upsert creates the entry or re-activates an existing one for the same kind and subject.
	Upsert(ctx context.Context, entry *entity.AccessEntry) error
	Deactivate(ctx context.Context, kind, subject string) (bool, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AccessEntry, error)
}
