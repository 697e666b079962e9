package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"itinvent-bot/pkg/store"
)

// ChatExporter writes workbooks requested from the chat under dir/exports and returns their paths.
type ChatExporter struct {
	export IExportService
	dir    string
	now    func() time.Time
}

func NewChatExporter(export IExportService, dir string) *ChatExporter {
	return &ChatExporter{export: export, dir: filepath.Join(dir, "exports"), now: time.Now}
}

func (c *ChatExporter) ExportRecords(ctx context.Context, databaseID, mode string) (string, int, error) {
	label := mode
	if label == "" {
		label = "all"
	}
	path := c.path(databaseID, label)

	n, err := c.export.Export(ctx, RecordFilter{DatabaseID: databaseID, Mode: mode}, path)
	if err != nil {
		return "", 0, err
	}
	return path, n, nil
}

func (c *ChatExporter) ExportEquipment(ctx context.Context, employee string, items []store.Equipment) (string, error) {
	path := c.path("equipment", employee)
	if err := c.export.ExportEquipment(ctx, employee, items, path); err != nil {
		return "", err
	}
	return path, nil
}

func (c *ChatExporter) path(parts ...string) string {
	safe := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		safe = append(safe, safeName(p))
	}
	safe = append(safe, c.now().Format("20060102-150405"))
	return filepath.Join(c.dir, fmt.Sprintf("%s.xlsx", strings.Join(safe, "_")))
}

// safeName keeps letters and digits; everything else becomes an underscore.
func safeName(s string) string {
	out := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
	if out == "" {
		return "_"
	}
	return out
}
