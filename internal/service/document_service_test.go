package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/pkg/logger"
	"itinvent-bot/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func transferRecord() *entity.WorkflowRecord {
	return &entity.WorkflowRecord{
		Id:         uuid.MustParse("3f1c2b9a-0000-4000-8000-000000000001"),
		Mode:       "transfer",
		DatabaseId: "ITINVENT",
		UserId:     "u1",
		Fields: map[string]store.FieldValue{
			"employee":   {Value: "Petrov P.", Verified: true, Source: "list"},
			"department": {Value: "IT", Verified: true, Source: "exact"},
			"branch":     {Value: "HQ", Verified: true, Source: "list"},
			"location":   {Value: "Room 1", Verified: true, Source: "list"},
		},
		Items: []store.Equipment{
			{Serial: "S1", Employee: "Ivanov I.", Model: "X1"},
			{Serial: "S2", Employee: "Sidorov S."},
			{Serial: "S3", Employee: "Ivanov I."},
		},
		CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func cell(t *testing.T, path, axis string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(actSheet, axis)
	require.NoError(t, err)
	return v
}

func TestDocumentService_TransferActPerPreviousOwner(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(dir, logger.NewNopLogger())
	rec := transferRecord()

	names, err := svc.Generate(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, []string{
		"transfer_3f1c2b9a-0000-4000-8000-000000000001_1.xlsx",
		"transfer_3f1c2b9a-0000-4000-8000-000000000001_2.xlsx",
	}, names)

	first := filepath.Join(dir, names[0])
	assert.Equal(t, rec.Id.String(), cell(t, first, "B2"))
	assert.Equal(t, "Ivanov I.", cell(t, first, "B6"))

	second := filepath.Join(dir, names[1])
	assert.Equal(t, "Sidorov S.", cell(t, second, "B6"))
}

func TestDocumentService_RetryOverwrites(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(dir, logger.NewNopLogger())
	rec := transferRecord()

	first, err := svc.Generate(context.Background(), rec)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no leftovers from temp files or duplicates")
}

func TestDocumentService_SingleActForOtherModes(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(dir, logger.NewNopLogger())

	rec := &entity.WorkflowRecord{
		Id:         uuid.New(),
		Mode:       "work",
		DatabaseId: "ITINVENT",
		UserId:     "u1",
		Serial:     "ABC",
		Fields: map[string]store.FieldValue{
			"type":   {Value: "cleaning", Verified: true, Source: "choice"},
			"serial": {Value: "ABC", Verified: true, Source: "backend"},
		},
		CreatedAt: time.Now(),
	}

	names, err := svc.Generate(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, []string{"work_" + rec.Id.String() + ".xlsx"}, names)
	assert.Equal(t, "Maintenance work act", cell(t, filepath.Join(dir, names[0]), "A1"))
}
