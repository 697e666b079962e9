package conversation

import (
	"context"

	"itinvent-bot/internal/entity"
	"itinvent-bot/pkg/access"
	"itinvent-bot/pkg/events"
	"itinvent-bot/pkg/inventory"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"
)

type Authorizer interface {
	IsAuthorized(ctx context.Context, user access.User) bool
}

// SessionStore keeps one session per user. Sessions not saved for the idle timeout disappear.
type SessionStore interface {
	Get(userID string) (*store.Session, bool)
	Save(session *store.Session)
	Delete(userID string)
}

// DataRouter is the part of the database router the engine needs.
type DataRouter interface {
	Active(ctx context.Context, userID string) string
	Select(ctx context.Context, userID, databaseID string) error
	Backend(ctx context.Context, databaseID string) (inventory.Backend, error)
	Databases() []inventory.Database
	AppendRecord(ctx context.Context, record *entity.WorkflowRecord) error
	SerialRecorded(ctx context.Context, databaseID, mode, serial string) (bool, error)
}

// Recognizer extracts a serial number from a label photo.
type Recognizer interface {
	RecognizeSerial(ctx context.Context, image []byte) (string, error)
}

// DocumentGenerator renders the acts of a confirmed workflow and returns references to them.
// Generating twice for the same record id must replace, not duplicate, the documents.
type DocumentGenerator interface {
	Generate(ctx context.Context, record *entity.WorkflowRecord) ([]string, error)
}

// Exporter writes spreadsheets requested from the chat and returns a reference to the file.
type Exporter interface {
	ExportRecords(ctx context.Context, databaseID, mode string) (string, int, error)
	ExportEquipment(ctx context.Context, employee string, items []store.Equipment) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Observer receives counters about handled events.
type Observer interface {
	ObserveEvent(kind string, outcome render.Kind)
	ObserveCommit(mode string, err error)
	ObserveCollaboratorFailure(collaborator string)
}

type nopObserver struct{}

func (nopObserver) ObserveEvent(string, render.Kind)  {}
func (nopObserver) ObserveCommit(string, error)       {}
func (nopObserver) ObserveCollaboratorFailure(string) {}
