package cli

import (
	"fmt"
	"strings"
	"time"

	"itinvent-bot/internal/config"
	"itinvent-bot/internal/pkg/logger"
	"itinvent-bot/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOut      string
	exportMode     string
	exportDatabase string
	exportUser     string
	exportSince    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write confirmed workflow records to an .xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := exportFilter(time.Now())
		if err != nil {
			return err
		}

		cfg := config.Load()
		uowFactory, err := repositories(cfg)
		if err != nil {
			return err
		}

		log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
		defer log.Sync()

		exporter := service.NewExportService(service.NewRecordService(uowFactory, log), log)
		n, err := exporter.Export(cmd.Context(), filter, exportOut)
		if err != nil {
			return err
		}

		color.Green("Exported %d records to %s", n, exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "records.xlsx", "output workbook")
	exportCmd.Flags().StringVar(&exportMode, "mode", "", "only this workflow (transfer, work, unfound)")
	exportCmd.Flags().StringVar(&exportDatabase, "database", "", "only records of this database")
	exportCmd.Flags().StringVar(&exportUser, "user", "", "only records of this operator")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only records newer than a duration (720h) or a date (2006-01-02)")
}

func exportFilter(now time.Time) (service.RecordFilter, error) {
	filter := service.RecordFilter{
		DatabaseID: strings.ToUpper(exportDatabase),
		UserID:     strings.TrimSpace(exportUser),
	}

	switch m := strings.ToLower(exportMode); m {
	case "", "transfer", "work", "unfound":
		filter.Mode = m
	default:
		return filter, fmt.Errorf("unknown mode %q", exportMode)
	}

	if exportSince != "" {
		since, err := parseSince(exportSince, now)
		if err != nil {
			return filter, err
		}
		filter.Since = since
	}
	return filter, nil
}

func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("--since %q is neither a duration nor a date", s)
}
