package service

import (
	"context"
	"testing"
	"time"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/pkg/logger"
	"itinvent-bot/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(mode, db, serial string, at time.Time) *entity.WorkflowRecord {
	return &entity.WorkflowRecord{
		Id:         uuid.New(),
		Mode:       mode,
		DatabaseId: db,
		UserId:     "u1",
		Serial:     serial,
		Fields:     map[string]store.FieldValue{"serial": {Value: serial, Verified: true, Source: "input"}},
		CreatedAt:  at,
	}
}

func TestRecordService_AppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := NewRecordService(fakeFactory{fs}, logger.NewNopLogger())

	rec := newRecord("unfound", "ITINVENT", "ABC1", time.Now())
	require.NoError(t, svc.AppendRecord(ctx, rec))
	require.NoError(t, svc.AppendRecord(ctx, rec))

	assert.Len(t, fs.records, 1)
	assert.Equal(t, 2, fs.commits)
}

func TestRecordService_CommitFailureIsReturned(t *testing.T) {
	fs := newFakeStore()
	fs.commitErr = errCommit
	svc := NewRecordService(fakeFactory{fs}, logger.NewNopLogger())

	err := svc.AppendRecord(context.Background(), newRecord("work", "ITINVENT", "X", time.Now()))

	assert.ErrorIs(t, err, errCommit)
	assert.Empty(t, fs.records)
	assert.Equal(t, 1, fs.rollbacks)
}

func TestRecordService_SerialRecorded(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := NewRecordService(fakeFactory{fs}, logger.NewNopLogger())
	require.NoError(t, svc.AppendRecord(ctx, newRecord("unfound", "ITINVENT", "abc1", time.Now())))

	tests := []struct {
		name   string
		db     string
		mode   string
		serial string
		want   bool
	}{
		{name: "same serial other case", db: "ITINVENT", mode: "unfound", serial: "ABC1", want: true},
		{name: "other database", db: "DB2", mode: "unfound", serial: "ABC1"},
		{name: "other mode", db: "ITINVENT", mode: "work", serial: "ABC1"},
		{name: "other serial", db: "ITINVENT", mode: "unfound", serial: "ABC2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SerialRecorded(ctx, tt.db, tt.mode, tt.serial)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordService_ListRecordsFilters(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := NewRecordService(fakeFactory{fs}, logger.NewNopLogger())

	now := time.Now()
	require.NoError(t, svc.AppendRecord(ctx, newRecord("work", "ITINVENT", "A", now.Add(-48*time.Hour))))
	require.NoError(t, svc.AppendRecord(ctx, newRecord("work", "ITINVENT", "B", now)))
	require.NoError(t, svc.AppendRecord(ctx, newRecord("unfound", "DB2", "C", now)))

	all, err := svc.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	recent, err := svc.ListRecords(ctx, RecordFilter{Mode: "work", Since: now.Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "B", recent[0].Serial)

	other := newRecord("work", "ITINVENT", "D", now)
	other.UserId = "u2"
	require.NoError(t, svc.AppendRecord(ctx, other))

	byUser, err := svc.ListRecords(ctx, RecordFilter{UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "D", byUser[0].Serial)
}

func TestSelectionService(t *testing.T) {
	ctx := context.Background()
	svc := NewSelectionService(fakeFactory{newFakeStore()})

	id, err := svc.LoadSelection(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, svc.SaveSelection(ctx, "u1", "DB2"))
	id, err = svc.LoadSelection(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "DB2", id)
}
