package contract

import (
	"context"

	"itinvent-bot/internal/entity"
)

type DatabaseSelectionRepository interface {
	Upsert(ctx context.Context, selection *entity.UserDatabaseSelection) error
	FindByUserId(ctx context.Context, userId string) (*entity.UserDatabaseSelection, error)
}
