package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/pkg/logger"
	"itinvent-bot/pkg/store"

	"github.com/xuri/excelize/v2"
)

const actSheet = "Act"

var actTitles = map[string]string{
	"transfer": "Equipment transfer act",
	"work":     "Maintenance work act",
	"unfound":  "Unfound equipment act",
}

var fieldLabels = map[string]string{
	"employee":     "Employee",
	"department":   "Department",
	"branch":       "Branch",
	"location":     "Location",
	"type":         "Type",
	"model":        "Model",
	"component":    "Component",
	"color":        "Color",
	"serial":       "Serial number",
	"pc_component": "PC component",
	"description":  "Description",
	"inventory":    "Inventory number",
	"ip":           "IP address",
	"status":       "Status",
}

var itemHeader = []interface{}{"#", "Serial number", "Inventory number", "Type", "Model", "Previous employee", "Previous location"}

type IDocumentService interface {
	Generate(ctx context.Context, record *entity.WorkflowRecord) ([]string, error)
}

type documentService struct {
	dir    string
	logger logger.ILogger
}

// NewDocumentService writes one .xlsx act per record into dir. Transfers get one act per previous owner.
func NewDocumentService(dir string, log logger.ILogger) IDocumentService {
	return &documentService{dir: dir, logger: log}
}

// Generate returns the base names of the written files. Names depend only on the record, so a retry overwrites.
func (s *documentService) Generate(ctx context.Context, record *entity.WorkflowRecord) ([]string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create acts directory: %w", err)
	}

	var names []string
	if record.Mode == string(store.ModeTransfer) {
		groups := groupByOwner(record.Items)
		for i, g := range groups {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			name := fmt.Sprintf("%s_%s_%d.xlsx", record.Mode, record.Id, i+1)
			if err := s.write(name, record, g.owner, g.items); err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	} else {
		name := fmt.Sprintf("%s_%s.xlsx", record.Mode, record.Id)
		if err := s.write(name, record, "", nil); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	s.logger.Info("DOCUMENTS", "Acts generated", map[string]interface{}{
		"record_id": record.Id.String(),
		"files":     names,
	})
	return names, nil
}

type ownerGroup struct {
	owner string
	items []store.Equipment
}

func groupByOwner(items []store.Equipment) []ownerGroup {
	index := make(map[string]int)
	var groups []ownerGroup
	for _, it := range items {
		owner := strings.TrimSpace(it.Employee)
		i, ok := index[owner]
		if !ok {
			i = len(groups)
			index[owner] = i
			groups = append(groups, ownerGroup{owner: owner})
		}
		groups[i].items = append(groups[i].items, it)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].owner < groups[b].owner })
	return groups
}

func (s *documentService) write(name string, record *entity.WorkflowRecord, owner string, items []store.Equipment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", actSheet); err != nil {
		return fmt.Errorf("prepare act %s: %w", name, err)
	}

	title := actTitles[record.Mode]
	if title == "" {
		title = record.Mode
	}

	rows := [][]interface{}{
		{title},
		{"Act number", record.Id.String()},
		{"Date", record.CreatedAt.Format("02.01.2006 15:04")},
		{"Database", record.DatabaseId},
		{"Operator", record.UserId},
	}
	if owner != "" {
		rows = append(rows, []interface{}{"Handed over by", owner})
	}
	rows = append(rows, nil)
	for _, key := range sortedFieldNames(record.Fields) {
		fv := record.Fields[key]
		if fv.Value == "" {
			continue
		}
		label := fieldLabels[key]
		if label == "" {
			label = key
		}
		rows = append(rows, []interface{}{label, fv.Value})
	}

	if len(items) > 0 {
		rows = append(rows, nil, itemHeader)
		for i, it := range items {
			rows = append(rows, []interface{}{i + 1, it.Serial, it.InventoryNo, it.Type, it.Model, it.Employee, it.Location})
		}
	}

	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(actSheet, cell, &row); err != nil {
			return fmt.Errorf("fill act %s: %w", name, err)
		}
	}
	_ = f.SetColWidth(actSheet, "A", "A", 22)
	_ = f.SetColWidth(actSheet, "B", "G", 24)

	return saveAtomic(f, filepath.Join(s.dir, name))
}

func sortedFieldNames(fields map[string]store.FieldValue) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// saveAtomic writes next to path and renames over it, so readers never see a partial workbook.
func saveAtomic(f *excelize.File, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".act-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
