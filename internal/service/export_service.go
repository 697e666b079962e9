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

var exportModes = []string{"transfer", "work", "unfound"}

type IExportService interface {
	// Export writes the matching records to an .xlsx workbook at path and returns how many were written.
	Export(ctx context.Context, filter RecordFilter, path string) (int, error)
	// ExportEquipment writes the equipment held by employee to an .xlsx workbook at path.
	ExportEquipment(ctx context.Context, employee string, items []store.Equipment, path string) error
}

type exportService struct {
	records IRecordService
	logger  logger.ILogger
}

func NewExportService(records IRecordService, log logger.ILogger) IExportService {
	return &exportService{records: records, logger: log}
}

func (s *exportService) Export(ctx context.Context, filter RecordFilter, path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return 0, fmt.Errorf("export path %q must end with .xlsx", path)
	}

	records, err := s.records.ListRecords(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	byMode := make(map[string][]*entity.WorkflowRecord)
	for _, r := range records {
		byMode[r.Mode] = append(byMode[r.Mode], r)
	}

	f := excelize.NewFile()
	defer f.Close()

	modes := exportModes
	if filter.Mode != "" {
		modes = []string{filter.Mode}
	}
	for i, mode := range modes {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", mode); err != nil {
				return 0, err
			}
		} else if _, err := f.NewSheet(mode); err != nil {
			return 0, err
		}
		if err := fillSheet(f, mode, byMode[mode]); err != nil {
			return 0, fmt.Errorf("fill sheet %s: %w", mode, err)
		}
	}

	if err := saveWorkbook(f, path); err != nil {
		return 0, err
	}

	s.logger.Info("EXPORT", "Records exported", map[string]interface{}{
		"path":    path,
		"records": len(records),
	})
	return len(records), nil
}

var equipmentHeader = []interface{}{
	"Serial number", "Hardware serial", "Inventory number", "Type", "Model", "Manufacturer",
	"Employee", "Department", "Branch", "Location", "Status", "Description",
}

func (s *exportService) ExportEquipment(_ context.Context, employee string, items []store.Equipment, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("export path %q must end with .xlsx", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Equipment"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := equipmentHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, it := range items {
		row := []interface{}{
			it.Serial, it.HwSerial, it.InventoryNo, it.Type, it.Model, it.Manufacturer,
			it.Employee, it.Department, it.Branch, it.Location, it.Status, it.Description,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := saveWorkbook(f, path); err != nil {
		return err
	}

	s.logger.Info("EXPORT", "Employee equipment exported", map[string]interface{}{
		"path":     path,
		"employee": employee,
		"items":    len(items),
	})
	return nil
}

func saveWorkbook(f *excelize.File, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return saveAtomic(f, path)
}

func fillSheet(f *excelize.File, sheet string, records []*entity.WorkflowRecord) error {
	fieldSet := make(map[string]bool)
	for _, r := range records {
		for k := range r.Fields {
			if k != "serial" {
				fieldSet[k] = true
			}
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for k := range fieldSet {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	header := []interface{}{"Record", "Created at", "Database", "Operator", "Serial number"}
	for _, k := range fields {
		label := fieldLabels[k]
		if label == "" {
			label = k
		}
		header = append(header, label)
	}
	header = append(header, "Equipment", "Documents")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range records {
		row := []interface{}{r.Id.String(), r.CreatedAt.Format("2006-01-02 15:04:05"), r.DatabaseId, r.UserId, r.Serial}
		for _, k := range fields {
			row = append(row, r.Field(k))
		}
		serials := make([]string, 0, len(r.Items))
		for _, it := range r.Items {
			serials = append(serials, it.Serial)
		}
		row = append(row, strings.Join(serials, ", "), strings.Join(r.DocumentRefs, ", "))

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
