package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/repository/contract"
	"itinvent-bot/internal/repository/specification"
	"itinvent-bot/internal/repository/unitofwork"
)

// fakeStore backs every unit of work handed out by fakeFactory.
type fakeStore struct {
	mu         sync.Mutex
	records    []*entity.WorkflowRecord
	selections map[string]*entity.UserDatabaseSelection
	access     []*entity.AccessEntry
	commitErr  error
	commits    int
	rollbacks  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{selections: make(map[string]*entity.UserDatabaseSelection)}
}

type fakeFactory struct{ store *fakeStore }

func (f fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: f.store}
}

type fakeUoW struct {
	store     *fakeStore
	pending   []*entity.WorkflowRecord
	inTx      bool
	committed bool
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	u.inTx = true
	return nil
}

func (u *fakeUoW) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if u.store.commitErr != nil {
		return u.store.commitErr
	}
	u.store.commits++
	for _, r := range u.pending {
		u.store.insert(r)
	}
	u.pending = nil
	u.committed = true
	return nil
}

func (u *fakeUoW) Rollback() error {
	if u.inTx && !u.committed {
		u.store.mu.Lock()
		u.store.rollbacks++
		u.store.mu.Unlock()
	}
	u.pending = nil
	return nil
}

func (u *fakeUoW) WorkflowRecordRepository() contract.WorkflowRecordRepository {
	return fakeRecords{u}
}

func (u *fakeUoW) DatabaseSelectionRepository() contract.DatabaseSelectionRepository {
	return fakeSelections{u.store}
}

func (u *fakeUoW) AccessEntryRepository() contract.AccessEntryRepository {
	return fakeAccess{u.store}
}

func (s *fakeStore) insert(r *entity.WorkflowRecord) {
	for _, have := range s.records {
		if have.Id == r.Id {
			return
		}
	}
	s.records = append(s.records, r)
}

type fakeRecords struct{ u *fakeUoW }

func (f fakeRecords) Create(ctx context.Context, record *entity.WorkflowRecord) error {
	if f.u.inTx {
		f.u.pending = append(f.u.pending, record)
		return nil
	}
	f.u.store.mu.Lock()
	defer f.u.store.mu.Unlock()
	f.u.store.insert(record)
	return nil
}

func matchRecord(r *entity.WorkflowRecord, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByDatabaseID:
			if r.DatabaseId != s.DatabaseID {
				return false
			}
		case specification.ByMode:
			if r.Mode != s.Mode {
				return false
			}
		case specification.ByUserID:
			if r.UserId != s.UserID {
				return false
			}
		case specification.BySerial:
			if !strings.EqualFold(r.Serial, s.Serial) {
				return false
			}
		case specification.CreatedSince:
			if r.CreatedAt.Before(s.Since) {
				return false
			}
		}
	}
	return true
}

func (f fakeRecords) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowRecord, error) {
	f.u.store.mu.Lock()
	defer f.u.store.mu.Unlock()
	var out []*entity.WorkflowRecord
	for _, r := range f.u.store.records {
		if matchRecord(r, specs) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeRecords) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowRecord, error) {
	all, err := f.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (f fakeRecords) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := f.FindAll(ctx, specs...)
	return int64(len(all)), err
}

type fakeSelections struct{ s *fakeStore }

func (f fakeSelections) Upsert(ctx context.Context, sel *entity.UserDatabaseSelection) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.selections[sel.UserId] = sel
	return nil
}

func (f fakeSelections) FindByUserId(ctx context.Context, userId string) (*entity.UserDatabaseSelection, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.selections[userId], nil
}

type fakeAccess struct{ s *fakeStore }

func (f fakeAccess) Upsert(ctx context.Context, entry *entity.AccessEntry) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, e := range f.s.access {
		if e.Kind == entry.Kind && e.Subject == entry.Subject {
			e.Note, e.Active = entry.Note, entry.Active
			return nil
		}
	}
	f.s.access = append(f.s.access, entry)
	return nil
}

func (f fakeAccess) Deactivate(ctx context.Context, kind, subject string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, e := range f.s.access {
		if e.Kind == kind && e.Subject == subject {
			e.Active = false
			return true, nil
		}
	}
	return false, nil
}

func (f fakeAccess) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AccessEntry, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.AccessEntry
	for _, e := range f.s.access {
		ok := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ActiveOnly:
				ok = ok && e.Active
			case specification.ByKind:
				ok = ok && e.Kind == s.Kind
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

var errCommit = errors.New("commit failed")
