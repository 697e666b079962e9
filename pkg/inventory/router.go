package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// SelectionStore persists which database each user works against.
// LoadSelection returns "" when the user never selected one.
type SelectionStore interface {
	LoadSelection(ctx context.Context, userID string) (string, error)
	SaveSelection(ctx context.Context, userID, databaseID string) error
}

// RecordStore is the append-only journal of confirmed workflows.
type RecordStore interface {
	AppendRecord(ctx context.Context, record *entity.WorkflowRecord) error
	SerialRecorded(ctx context.Context, databaseID, mode, serial string) (bool, error)
}

// Opener connects to a configured database.
type Opener func(ctx context.Context, db Database) (Backend, error)

// Router maps users to their selected database and owns every open backend handle.
type Router struct {
	catalog    *Catalog
	open       Opener
	selections SelectionStore
	records    RecordStore
	logger     logger.ILogger

	mu      sync.Mutex
	handles *cache.Cache
}

// NewRouter creates a router. Handles idle for longer than handleTTL are closed; zero keeps them forever.
func NewRouter(catalog *Catalog, open Opener, selections SelectionStore, records RecordStore, log logger.ILogger, handleTTL time.Duration) *Router {
	expiration, cleanup := cache.NoExpiration, time.Duration(0)
	if handleTTL > 0 {
		expiration, cleanup = handleTTL, handleTTL/2
	}

	handles := cache.New(expiration, cleanup)
	handles.OnEvicted(func(id string, v interface{}) {
		if b, ok := v.(Backend); ok {
			if err := b.Close(); err != nil {
				log.Warn("ROUTER", "Failed to close backend", map[string]interface{}{"database": id, "error": err.Error()})
			}
		}
	})

	return &Router{
		catalog:    catalog,
		open:       open,
		selections: selections,
		records:    records,
		logger:     log,
		handles:    handles,
	}
}

func (r *Router) Catalog() *Catalog {
	return r.catalog
}

func (r *Router) Databases() []Database {
	return r.catalog.List()
}

// Select records databaseID as the active database of userID.
func (r *Router) Select(ctx context.Context, userID, databaseID string) error {
	if _, ok := r.catalog.Lookup(databaseID); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDatabase, databaseID)
	}
	if err := r.selections.SaveSelection(ctx, userID, databaseID); err != nil {
		return fmt.Errorf("save database selection: %w", err)
	}

	r.logger.Info("ROUTER", "Database selected", map[string]interface{}{"user_id": userID, "database": databaseID})
	return nil
}

// Active returns the database of userID, falling back to the primary one.
func (r *Router) Active(ctx context.Context, userID string) string {
	id, err := r.selections.LoadSelection(ctx, userID)
	if err != nil {
		r.logger.Warn("ROUTER", "Failed to load database selection, using primary", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return r.catalog.Primary()
	}
	if _, ok := r.catalog.Lookup(id); !ok {
		return r.catalog.Primary()
	}
	return id
}

// Backend returns the handle for databaseID, opening it on first use.
func (r *Router) Backend(ctx context.Context, databaseID string) (Backend, error) {
	db, ok := r.catalog.Lookup(databaseID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDatabase, databaseID)
	}

	if v, found := r.handles.Get(databaseID); found {
		r.handles.Set(databaseID, v, cache.DefaultExpiration)
		return v.(Backend), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, found := r.handles.Get(databaseID); found {
		return v.(Backend), nil
	}

	b, err := r.open(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", databaseID, err)
	}
	r.handles.Set(databaseID, b, cache.DefaultExpiration)

	r.logger.Info("ROUTER", "Database handle opened", map[string]interface{}{"database": databaseID})
	return b, nil
}

// ForUser resolves the active database of userID and returns its handle.
func (r *Router) ForUser(ctx context.Context, userID string) (Backend, string, error) {
	id := r.Active(ctx, userID)
	b, err := r.Backend(ctx, id)
	return b, id, err
}

func (r *Router) Ping(ctx context.Context, databaseID string) error {
	b, err := r.Backend(ctx, databaseID)
	if err != nil {
		return err
	}
	return b.Ping(ctx)
}

func (r *Router) Branches(ctx context.Context, databaseID string) ([]string, error) {
	b, err := r.Backend(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	return b.Branches(ctx)
}

func (r *Router) Locations(ctx context.Context, databaseID, branch string) ([]string, error) {
	b, err := r.Backend(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	return b.Locations(ctx, branch)
}

// AppendRecord writes a confirmed workflow for the database the record names.
func (r *Router) AppendRecord(ctx context.Context, record *entity.WorkflowRecord) error {
	if _, ok := r.catalog.Lookup(record.DatabaseId); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDatabase, record.DatabaseId)
	}
	return r.records.AppendRecord(ctx, record)
}

func (r *Router) SerialRecorded(ctx context.Context, databaseID, mode, serial string) (bool, error) {
	return r.records.SerialRecorded(ctx, databaseID, mode, serial)
}

// Close releases every open handle.
func (r *Router) Close() {
	for id := range r.handles.Items() {
		r.handles.Delete(id)
	}
}
