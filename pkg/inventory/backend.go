package inventory

import (
	"context"

	"itinvent-bot/pkg/store"
)

// Owner is an employee row of a backend database.
type Owner struct {
	Name       string
	Department string
	Email      string
}

// Backend is the query contract every inventory database exposes.
// FindBySerial tries every SerialVariants form of serial and returns (nil, nil) when nothing matches.
type Backend interface {
	FindBySerial(ctx context.Context, serial string) (*store.Equipment, error)
	FindByEmployee(ctx context.Context, name string, strict bool) ([]store.Equipment, error)
	Branches(ctx context.Context) ([]string, error)
	Locations(ctx context.Context, branch string) ([]string, error)
	Employees(ctx context.Context) ([]string, error)
	Models(ctx context.Context) ([]string, error)
	EquipmentTypes(ctx context.Context) ([]string, error)
	Statuses(ctx context.Context) ([]string, error)
	OwnerDepartment(ctx context.Context, name string, strict bool) (string, error)
	Ping(ctx context.Context) error
	Close() error
}
