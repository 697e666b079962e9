package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"itinvent-bot/internal/entity"
	"itinvent-bot/pkg/store"
)

var errBackendClosed = errors.New("backend closed")

// MemoryBackend serves inventory data from slices. Used by tests and the demo database.
type MemoryBackend struct {
	mu sync.RWMutex

	Equipment       []store.Equipment
	Owners          []Owner
	BranchLocations map[string][]string
	ModelNames      []string
	TypeNames       []string
	StatusNames     []string

	// Err, when set, is returned by every query.
	Err    error
	closed bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{BranchLocations: make(map[string][]string)}
}

func (m *MemoryBackend) check() error {
	if m.closed {
		return errBackendClosed
	}
	return m.Err
}

func (m *MemoryBackend) FindBySerial(ctx context.Context, serial string) (*store.Equipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	for _, v := range SerialVariants(serial) {
		for i := range m.Equipment {
			e := m.Equipment[i]
			if strings.EqualFold(e.Serial, v) || (e.HwSerial != "" && strings.EqualFold(e.HwSerial, v)) {
				return &e, nil
			}
		}
	}
	return nil, nil
}

func (m *MemoryBackend) FindByEmployee(ctx context.Context, name string, strict bool) ([]store.Equipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	out := make([]store.Equipment, 0)
	for _, e := range m.Equipment {
		if matchName(e.Employee, name, strict) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryBackend) Branches(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(m.BranchLocations))
	for b := range m.BranchLocations {
		out = append(out, b)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryBackend) Locations(ctx context.Context, branch string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	if branch != "" {
		return sortedUnique(m.BranchLocations[branch]), nil
	}
	all := make([]string, 0)
	for _, locs := range m.BranchLocations {
		all = append(all, locs...)
	}
	return sortedUnique(all), nil
}

func (m *MemoryBackend) Employees(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(m.Owners))
	for _, o := range m.Owners {
		names = append(names, o.Name)
	}
	return sortedUnique(names), nil
}

func (m *MemoryBackend) Models(ctx context.Context) ([]string, error) {
	return m.list(m.ModelNames)
}

func (m *MemoryBackend) EquipmentTypes(ctx context.Context) ([]string, error) {
	return m.list(m.TypeNames)
}

func (m *MemoryBackend) Statuses(ctx context.Context) ([]string, error) {
	return m.list(m.StatusNames)
}

func (m *MemoryBackend) list(src []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	return sortedUnique(src), nil
}

func (m *MemoryBackend) OwnerDepartment(ctx context.Context, name string, strict bool) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return "", err
	}

	for _, o := range m.Owners {
		if matchName(o.Name, name, strict) && o.Department != "" {
			return o.Department, nil
		}
	}
	return "", nil
}

func (m *MemoryBackend) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.check()
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryBackend) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func matchName(have, want string, strict bool) bool {
	if strict {
		return strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want))
	}
	return want != "" && strings.Contains(strings.ToLower(have), strings.ToLower(strings.TrimSpace(want)))
}

func sortedUnique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// MemorySelectionStore keeps database selections in a map.
type MemorySelectionStore struct {
	mu       sync.RWMutex
	selected map[string]string
}

func NewMemorySelectionStore() *MemorySelectionStore {
	return &MemorySelectionStore{selected: make(map[string]string)}
}

func (s *MemorySelectionStore) LoadSelection(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[userID], nil
}

func (s *MemorySelectionStore) SaveSelection(ctx context.Context, userID, databaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[userID] = databaseID
	return nil
}

// MemoryRecordStore is an append-only record journal keyed by record id.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records []*entity.WorkflowRecord
	ids     map[string]bool

	// Err, when set, fails every append.
	Err error
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{ids: make(map[string]bool)}
}

func (s *MemoryRecordStore) AppendRecord(ctx context.Context, record *entity.WorkflowRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	id := record.Id.String()
	if s.ids[id] {
		return nil
	}
	s.ids[id] = true
	cp := *record
	s.records = append(s.records, &cp)
	return nil
}

func (s *MemoryRecordStore) SerialRecorded(ctx context.Context, databaseID, mode, serial string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.DatabaseId == databaseID && r.Mode == mode && strings.EqualFold(r.Serial, serial) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryRecordStore) Records() []*entity.WorkflowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.WorkflowRecord, len(s.records))
	copy(out, s.records)
	return out
}
