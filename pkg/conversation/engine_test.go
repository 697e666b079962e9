package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/pkg/logger"
	"itinvent-bot/pkg/access"
	"itinvent-bot/pkg/inventory"
	"itinvent-bot/pkg/location"
	"itinvent-bot/pkg/lock"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"
	"itinvent-bot/pkg/suggest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSessions struct {
	mu       sync.Mutex
	sessions map[string]*store.Session
}

func (m *mapSessions) Get(userID string) (*store.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *mapSessions) Save(s *store.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
}

func (m *mapSessions) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

type stubDocuments struct {
	failures int
	calls    []string
}

func (d *stubDocuments) Generate(ctx context.Context, rec *entity.WorkflowRecord) ([]string, error) {
	d.calls = append(d.calls, rec.Id.String())
	if d.failures > 0 {
		d.failures--
		return nil, errors.New("printer on fire")
	}
	return []string{rec.Mode + "-" + rec.Id.String() + ".xlsx"}, nil
}

type stubRecognizer struct {
	serial string
	err    error
}

func (r stubRecognizer) RecognizeSerial(ctx context.Context, image []byte) (string, error) {
	return r.serial, r.err
}

type fixture struct {
	engine    *Engine
	sessions  *mapSessions
	records   *inventory.MemoryRecordStore
	primary   *inventory.MemoryBackend
	secondary *inventory.MemoryBackend
	docs      *stubDocuments
	guard     *lock.LocalGuard
}

var operator = access.User{ID: "u1"}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	primary := inventory.NewMemoryBackend()
	primary.Owners = []inventory.Owner{
		{Name: "Ivanov I.I.", Department: "IT"},
		{Name: "Petrov P.P.", Department: "Finance"},
	}
	primary.Equipment = []store.Equipment{
		{Serial: "ABC100", Type: "Laptop", Model: "ThinkPad T14", Employee: "Petrov P.P.", Department: "Finance"},
		{Serial: "ABC200", Type: "Printer", Model: "HP LaserJet 1020", Employee: "Petrov P.P.", Department: "Finance"},
	}
	primary.BranchLocations = map[string][]string{
		"Head office": {"Room 101", "Room 102"},
		"Warehouse":   {"Shelf A"},
	}
	primary.ModelNames = []string{"Dell P2419H", "HP LaserJet 1020"}
	primary.TypeNames = []string{"Monitor", "Printer"}
	primary.StatusNames = []string{"In use", "In repair"}

	secondary := inventory.NewMemoryBackend()
	secondary.Equipment = []store.Equipment{{Serial: "XYZ900", Model: "Branch router"}}

	backends := map[string]*inventory.MemoryBackend{"ITINVENT": primary, "DB2": secondary}
	catalog, err := inventory.NewCatalog("ITINVENT", []inventory.Database{
		{ID: "ITINVENT", Name: "Head office"},
		{ID: "DB2", Name: "Branch office"},
	})
	require.NoError(t, err)

	records := inventory.NewMemoryRecordStore()
	router := inventory.NewRouter(catalog, func(ctx context.Context, db inventory.Database) (inventory.Backend, error) {
		return backends[db.ID], nil
	}, inventory.NewMemorySelectionStore(), records, logger.NewNopLogger(), 0)

	suggester := suggest.NewSuggester(suggest.DefaultThreshold)
	sessions := &mapSessions{sessions: make(map[string]*store.Session)}
	docs := &stubDocuments{}
	guard := lock.NewLocalGuard()

	engine := NewEngine(Dependencies{
		Access:     access.NewCache(access.StaticSource{Users: []string{"u1", "u2"}}, time.Minute, logger.NewNopLogger()),
		Sessions:   sessions,
		Router:     router,
		Locations:  location.NewResolver(router, suggester, 5),
		Suggester:  suggester,
		Guard:      guard,
		Documents:  docs,
		Recognizer: stubRecognizer{serial: "S/N: ABC100"},
	}, Options{})

	return &fixture{
		engine:    engine,
		sessions:  sessions,
		records:   records,
		primary:   primary,
		secondary: secondary,
		docs:      docs,
		guard:     guard,
	}
}

func (f *fixture) text(t *testing.T, text string) *render.Render {
	t.Helper()
	return f.engine.HandleEvent(context.Background(), TextEvent(operator, text))
}

func (f *fixture) press(t *testing.T, token string) *render.Render {
	t.Helper()
	return f.engine.HandleEvent(context.Background(), ActionEvent(operator, token))
}

func (f *fixture) session(t *testing.T) *store.Session {
	t.Helper()
	s, ok := f.sessions.Get(operator.ID)
	require.True(t, ok, "session expected")
	return s
}

func hasToken(r *render.Render, token string) bool {
	for _, b := range append(append([]render.Button{}, r.Buttons...), r.Navigation...) {
		if b.Token == token {
			return true
		}
	}
	return false
}

// toTransferConfirm drives a transfer up to its confirmation summary.
func (f *fixture) toTransferConfirm(t *testing.T) {
	t.Helper()

	r := f.press(t, "transfer_start")
	require.Equal(t, render.KindPrompt, r.Kind)

	r = f.engine.HandleEvent(context.Background(), PhotoEvent(operator, []byte("jpeg")))
	require.Equal(t, render.KindPrompt, r.Kind, r.Text)
	require.Len(t, f.session(t).Items, 1)

	r = f.press(t, "transfer_done")
	require.Equal(t, store.StepState(store.ModeTransfer, "employee"), f.session(t).State, r.Text)

	r = f.text(t, "Ivanov I.I.")
	require.Equal(t, render.KindList, r.Kind, r.Text)
	require.True(t, hasToken(r, "transfer_branch:0"))

	r = f.press(t, "transfer_branch:0")
	require.Equal(t, render.KindList, r.Kind, r.Text)
	require.True(t, hasToken(r, "transfer_location:1"))

	r = f.press(t, "transfer_location:1")
	require.Equal(t, render.KindConfirmation, r.Kind, r.Text)
}

func TestEngine_TransferHappyPath(t *testing.T) {
	f := newFixture(t)
	f.toTransferConfirm(t)

	sess := f.session(t)
	assert.Equal(t, store.ConfirmState(store.ModeTransfer), sess.State)
	assert.Equal(t, "ITINVENT", sess.DatabaseID)
	assert.Equal(t, "Ivanov I.I.", sess.Field("employee"))
	assert.Equal(t, "Head office", sess.Field("branch"))
	assert.Equal(t, "Room 102", sess.Field("location"))
	assert.Equal(t, store.FieldValue{Value: "IT", Verified: true, Source: "exact"}, sess.Fields["department"])

	r := f.press(t, "transfer_confirm")
	require.Equal(t, render.KindTerminal, r.Kind, r.Text)

	_, ok := f.sessions.Get(operator.ID)
	assert.False(t, ok, "committed session is deleted")

	recs := f.records.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "transfer", recs[0].Mode)
	assert.Equal(t, "ITINVENT", recs[0].DatabaseId)
	assert.Equal(t, "u1", recs[0].UserId)
	require.Len(t, recs[0].Items, 1)
	assert.Equal(t, "ABC100", recs[0].Items[0].Serial)
	assert.Len(t, recs[0].DocumentRefs, 1)
}

func TestEngine_DocumentFailureKeepsConfirmationAndRetryCommitsOnce(t *testing.T) {
	f := newFixture(t)
	f.docs.failures = 1
	f.toTransferConfirm(t)

	before := f.session(t)
	recordID := before.RecordID
	fields := make(map[string]store.FieldValue)
	for k, v := range before.Fields {
		fields[k] = v
	}

	r := f.press(t, "transfer_confirm")
	require.Equal(t, render.KindError, r.Kind)
	assert.True(t, r.Retryable)
	assert.True(t, hasToken(r, "transfer_confirm"))

	sess := f.session(t)
	assert.Equal(t, store.ConfirmState(store.ModeTransfer), sess.State)
	assert.Equal(t, fields, sess.Fields)
	assert.Equal(t, recordID, sess.RecordID)
	assert.Empty(t, f.records.Records())

	r = f.press(t, "transfer_confirm")
	require.Equal(t, render.KindTerminal, r.Kind, r.Text)

	recs := f.records.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, recordID, recs[0].Id.String())
	assert.Equal(t, []string{recordID, recordID}, f.docs.calls)
}

func TestEngine_RecordStoreFailureKeepsConfirmation(t *testing.T) {
	f := newFixture(t)
	f.toTransferConfirm(t)
	f.records.Err = errors.New("disk full")

	r := f.press(t, "transfer_confirm")
	require.Equal(t, render.KindError, r.Kind)
	assert.Equal(t, store.ConfirmState(store.ModeTransfer), f.session(t).State)

	f.records.Err = nil
	r = f.press(t, "transfer_confirm")
	require.Equal(t, render.KindTerminal, r.Kind)
	assert.Len(t, f.records.Records(), 1)
}

func TestEngine_CancelFromAnyStateIsIdempotent(t *testing.T) {
	steps := map[string][]string{
		"transfer photos":  {"transfer_start"},
		"transfer confirm": nil,
		"work type":        {"work_start"},
		"work serial":      {"work_start", "work_type:battery"},
		"unfound serial":   {"unfound_start"},
		"unfound employee": {"unfound_start:NEW123"},
	}

	for name, tokens := range steps {
		for _, cancel := range []string{"/cancel", "cancel button"} {
			t.Run(name+" via "+cancel, func(t *testing.T) {
				f := newFixture(t)
				if tokens == nil {
					f.toTransferConfirm(t)
				}
				for _, tok := range tokens {
					f.press(t, tok)
				}
				sess := f.session(t)
				require.True(t, sess.Active())

				var r *render.Render
				if cancel == "/cancel" {
					r = f.text(t, "/cancel")
				} else {
					r = f.press(t, string(sess.Mode)+"_cancel")
				}
				assert.Equal(t, render.KindTerminal, r.Kind)
				_, ok := f.sessions.Get(operator.ID)
				assert.False(t, ok)

				r = f.text(t, "/cancel")
				assert.Equal(t, render.KindPrompt, r.Kind)
				assert.False(t, f.session(t).Active())
				assert.Empty(t, f.session(t).Fields)
				assert.Empty(t, f.records.Records())
			})
		}
	}
}

func TestEngine_UnauthorizedUserIsRejectedBeforeSession(t *testing.T) {
	f := newFixture(t)
	stranger := access.User{ID: "intruder"}

	r := f.engine.HandleEvent(context.Background(), ActionEvent(stranger, "transfer_start"))
	assert.Equal(t, render.KindDenied, r.Kind)
	assert.Equal(t, access.DenialText, r.Text)

	_, ok := f.sessions.Get(stranger.ID)
	assert.False(t, ok)
}

func TestEngine_BusyUserGetsPleaseWait(t *testing.T) {
	f := newFixture(t)

	release, ok := f.guard.TryAcquire(context.Background(), operator.ID)
	require.True(t, ok)

	r := f.press(t, "transfer_start")
	assert.Equal(t, render.KindBusy, r.Kind)
	_, found := f.sessions.Get(operator.ID)
	assert.False(t, found)

	release()
	r = f.press(t, "transfer_start")
	assert.Equal(t, render.KindPrompt, r.Kind)
}

func TestEngine_ClarifyLeavesSessionUnchanged(t *testing.T) {
	f := newFixture(t)
	f.press(t, "transfer_start")
	state := f.session(t).State

	tests := []struct {
		name string
		send func(t *testing.T) *render.Render
	}{
		{name: "malformed token", send: func(t *testing.T) *render.Render { return f.press(t, "bogus") }},
		{name: "button of another step", send: func(t *testing.T) *render.Render { return f.press(t, "transfer_branch:0") }},
		{name: "button of another mode", send: func(t *testing.T) *render.Render { return f.press(t, "work_type:battery") }},
		{name: "done without items", send: func(t *testing.T) *render.Render { return f.press(t, "transfer_done") }},
		{name: "skip of a required step", send: func(t *testing.T) *render.Render { return f.press(t, "transfer_skip") }},
		{name: "confirm too early", send: func(t *testing.T) *render.Render { return f.press(t, "transfer_confirm") }},
		{name: "invalid serial", send: func(t *testing.T) *render.Render { return f.text(t, "<script>") }},
		{name: "unknown command", send: func(t *testing.T) *render.Render { return f.text(t, "/frobnicate") }},
		{name: "database switch mid-workflow", send: func(t *testing.T) *render.Render { return f.press(t, "db_select:DB2") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.send(t)
			assert.Equal(t, render.KindClarify, r.Kind, r.Text)
			sess := f.session(t)
			assert.Equal(t, state, sess.State)
			assert.Empty(t, sess.Items)
			assert.Empty(t, sess.Fields)
		})
	}
}

func TestEngine_IdleSearchFollowsDatabaseSelection(t *testing.T) {
	f := newFixture(t)

	r := f.text(t, "ABC100")
	require.Equal(t, render.KindResult, r.Kind, r.Text)
	assert.Contains(t, r.Text, "ITINVENT")

	r = f.press(t, "db_select:DB2")
	require.Equal(t, render.KindPrompt, r.Kind, r.Text)

	r = f.text(t, "ABC100")
	assert.Equal(t, render.KindPrompt, r.Kind)
	assert.True(t, hasToken(r, "unfound_start:ABC100"))

	r = f.text(t, "XYZ900")
	assert.Equal(t, render.KindResult, r.Kind)
	assert.Contains(t, r.Text, "DB2")

	r = f.press(t, "db_select:NOPE")
	assert.Equal(t, render.KindClarify, r.Kind)
}

func TestEngine_WorkflowCapturesDatabaseAtStart(t *testing.T) {
	f := newFixture(t)
	f.press(t, "db_select:DB2")
	f.press(t, "work_start")
	f.press(t, "work_type:cleaning")

	r := f.text(t, "XYZ900")
	require.Equal(t, render.KindConfirmation, r.Kind, r.Text)
	assert.Equal(t, "DB2", f.session(t).DatabaseID)

	f.press(t, "work_confirm")
	recs := f.records.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "DB2", recs[0].DatabaseId)
	assert.Equal(t, "XYZ900", recs[0].Serial)
}

func TestEngine_BackendFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.press(t, "transfer_start")
	f.primary.Err = errors.New("connection refused")

	r := f.text(t, "ABC100")
	require.Equal(t, render.KindError, r.Kind)
	assert.True(t, r.Retryable)
	assert.True(t, hasToken(r, "transfer_retry"))
	assert.Empty(t, f.session(t).Items)

	f.primary.Err = nil
	r = f.text(t, "ABC100")
	assert.Equal(t, render.KindPrompt, r.Kind)
	assert.Len(t, f.session(t).Items, 1)
}

func TestEngine_WorkEditFromConfirmation(t *testing.T) {
	f := newFixture(t)
	f.press(t, "work_start")
	f.press(t, "work_type:battery")
	r := f.text(t, "abc200")
	require.Equal(t, render.KindConfirmation, r.Kind, r.Text)
	recordID := f.session(t).RecordID

	r = f.press(t, "work_edit:type")
	require.Equal(t, render.KindPrompt, r.Kind)
	require.True(t, hasToken(r, "work_type:component"))

	r = f.press(t, "work_type:component")
	require.True(t, hasToken(r, "work_pc_component:ram"), r.Text)

	r = f.press(t, "work_pc_component:ram")
	require.Equal(t, render.KindConfirmation, r.Kind)

	sess := f.session(t)
	assert.Equal(t, "component", sess.Field("type"))
	assert.Equal(t, "ram", sess.Field("pc_component"))
	assert.Equal(t, "ABC200", sess.Field("serial"))
	assert.Equal(t, recordID, sess.RecordID)
}

func TestEngine_CartridgeWorkAsksColorOnlyForToner(t *testing.T) {
	f := newFixture(t)
	f.press(t, "work_start")
	f.press(t, "work_type:cartridge")
	f.press(t, "work_branch:0")
	f.press(t, "work_location:0")
	f.text(t, "HP LaserJet 1020")

	r := f.press(t, "work_component:drum")
	require.Equal(t, render.KindConfirmation, r.Kind, r.Text)
	assert.False(t, f.session(t).HasField("color"))

	r = f.press(t, "work_edit:component")
	require.Equal(t, render.KindPrompt, r.Kind)
	r = f.press(t, "work_component:toner")
	require.True(t, hasToken(r, "work_color:cyan"), r.Text)
	r = f.press(t, "work_color:cyan")
	require.Equal(t, render.KindConfirmation, r.Kind)
	assert.Equal(t, "cyan", f.session(t).Field("color"))
}

func TestEngine_UnfoundFlowWithSuggestionsAndManualLocation(t *testing.T) {
	f := newFixture(t)

	r := f.press(t, "unfound_start:NEW123")
	require.Equal(t, store.StepState(store.ModeUnfound, "employee"), f.session(t).State, r.Text)

	r = f.text(t, "Ivanoff")
	require.Equal(t, render.KindList, r.Kind, r.Text)
	require.True(t, hasToken(r, "unfound_employee:0"))
	require.True(t, hasToken(r, "unfound_employee:manual"))

	f.press(t, "unfound_employee:0")
	f.text(t, "Monitor")
	f.text(t, "Dell P2419H")
	f.press(t, "unfound_skip")
	f.text(t, "INV-0042")

	r = f.text(t, "not an ip")
	require.Equal(t, render.KindClarify, r.Kind)
	f.text(t, "10.0.0.5")

	f.press(t, "unfound_branch:0")
	r = f.press(t, "unfound_location:manual")
	require.Equal(t, render.KindPrompt, r.Kind)
	r = f.text(t, "Room 999")
	require.True(t, hasToken(r, "unfound_skip"), r.Text)

	r = f.press(t, "unfound_skip")
	require.Equal(t, render.KindConfirmation, r.Kind, r.Text)

	var loc render.Line
	for _, l := range r.Summary {
		if l.Label == "Location" {
			loc = l
		}
	}
	assert.Equal(t, "Room 999", loc.Value)
	assert.True(t, loc.Unverified)

	sess := f.session(t)
	assert.Equal(t, "NEW123", sess.Field("serial"))
	assert.Equal(t, "Ivanov I.I.", sess.Field("employee"))
	assert.Equal(t, store.FieldValue{Value: "", Source: "skipped"}, sess.Fields["description"])
	assert.Equal(t, "INV-0042", sess.Field("inventory"))

	r = f.press(t, "unfound_confirm")
	require.Equal(t, render.KindTerminal, r.Kind)

	r = f.press(t, "unfound_start:NEW123")
	assert.Equal(t, render.KindClarify, r.Kind)
	assert.Contains(t, r.Text, "already been reported")
}

func TestEngine_UnfoundRejectsKnownSerial(t *testing.T) {
	f := newFixture(t)
	f.press(t, "unfound_start")

	r := f.text(t, "ABC100")
	assert.Equal(t, render.KindClarify, r.Kind)
	assert.Equal(t, store.StepState(store.ModeUnfound, "serial"), f.session(t).State)
}

func TestEngine_StartReplacesActiveWorkflow(t *testing.T) {
	f := newFixture(t)
	f.press(t, "work_start")
	f.press(t, "work_type:battery")

	r := f.text(t, "/transfer")
	assert.Equal(t, render.KindPrompt, r.Kind)

	sess := f.session(t)
	assert.Equal(t, store.ModeTransfer, sess.Mode)
	assert.False(t, sess.HasField("type"))
}

func TestResolveDepartment_FallsBackToEquipment(t *testing.T) {
	f := newFixture(t)
	b := inventory.NewMemoryBackend()
	b.Owners = []inventory.Owner{{Name: "Sidorov S.S."}}
	b.Equipment = []store.Equipment{
		{Serial: "A1", Employee: "Sidorov S.S.", Department: "Logistics"},
		{Serial: "A2", Employee: "Sidorov S.S.", Department: "Logistics"},
		{Serial: "A3", Employee: "Sidorov S.S.", Department: "Sales"},
	}

	sess := store.NewSession("u1")
	sess.Begin(store.ModeTransfer, "ITINVENT", store.StepState(store.ModeTransfer, "employee"))
	sess.SetField("employee", "Sidorov S.S.", true, "list")

	f.engine.resolveDepartment(context.Background(), sess, b)
	assert.Equal(t, store.FieldValue{Value: "Logistics", Verified: false, Source: "equipment"}, sess.Fields["department"])
}

func TestResolveDepartment_Unresolved(t *testing.T) {
	f := newFixture(t)
	b := inventory.NewMemoryBackend()

	sess := store.NewSession("u1")
	sess.Begin(store.ModeTransfer, "ITINVENT", store.StepState(store.ModeTransfer, "employee"))
	sess.SetField("employee", "Nobody", true, "manual")

	f.engine.resolveDepartment(context.Background(), sess, b)
	assert.Equal(t, "none", sess.Fields["department"].Source)
	assert.Empty(t, sess.Field("department"))
}

func TestEngine_EditToCartridgeDropsCollectedEquipment(t *testing.T) {
	f := newFixture(t)
	f.press(t, "work_start")
	f.press(t, "work_type:battery")
	r := f.text(t, "abc200")
	require.Equal(t, render.KindConfirmation, r.Kind, r.Text)
	require.Len(t, f.session(t).Items, 1)

	f.press(t, "work_edit:type")
	f.press(t, "work_type:cartridge")
	f.press(t, "work_branch:0")
	f.press(t, "work_location:0")
	f.text(t, "HP LaserJet 1020")
	r = f.press(t, "work_component:drum")
	require.Equal(t, render.KindConfirmation, r.Kind, r.Text)

	sess := f.session(t)
	assert.Empty(t, sess.Items)
	assert.False(t, sess.HasField("serial"))

	r = f.press(t, "work_confirm")
	require.Equal(t, render.KindTerminal, r.Kind, r.Text)
	recs := f.records.Records()
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Items)
	assert.Empty(t, recs[0].Serial)
	assert.Equal(t, "cartridge", recs[0].Field("type"))
}

func TestEngine_TokensWithWrongOperationAreRejected(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "cancel of another workflow", token: "transfer_cancel"},
		{name: "start with navigation", token: "unfound_start_next"},
		{name: "serial for a workflow opening with photos", token: "transfer_start:ABC100"},
		{name: "confirm with navigation", token: "work_confirm_next"},
		{name: "cancel with an argument", token: "work_cancel:1"},
		{name: "edit without a step", token: "work_edit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.press(t, "work_start")
			f.press(t, "work_type:battery")
			before := f.session(t)
			state, mode := before.State, before.Mode

			r := f.press(t, tt.token)
			assert.Equal(t, render.KindClarify, r.Kind, r.Text)
			sess := f.session(t)
			assert.Equal(t, state, sess.State)
			assert.Equal(t, mode, sess.Mode)
			assert.Equal(t, "battery", sess.Field("type"))
		})
	}
}

type countingBackend struct {
	*inventory.MemoryBackend
	calls []string
}

func (b *countingBackend) FindBySerial(ctx context.Context, serial string) (*store.Equipment, error) {
	b.calls = append(b.calls, serial)
	return b.MemoryBackend.FindBySerial(ctx, serial)
}

func TestEngine_LookupQueriesBackendOnce(t *testing.T) {
	f := newFixture(t)
	mem := inventory.NewMemoryBackend()
	mem.Equipment = []store.Equipment{{Serial: "CN0AB12", Model: "Scanner"}}
	b := &countingBackend{MemoryBackend: mem}

	eq, err := f.engine.lookup(context.Background(), b, "cnoab12")
	require.NoError(t, err)
	require.NotNil(t, eq)
	assert.Equal(t, "Scanner", eq.Model)
	assert.Equal(t, []string{"cnoab12"}, b.calls)

	eq, err = f.engine.lookup(context.Background(), b, "missing")
	require.NoError(t, err)
	assert.Nil(t, eq)
	assert.Len(t, b.calls, 2)
}
