package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/terraincognita07/selene/internal/export"
	"github.com/terraincognita07/selene/internal/services"
	"github.com/terraincognita07/selene/internal/storage"
)

// App bundles the wired services the subcommands operate on.
type App struct {
	Manager *services.DataManager
	Store   *storage.LocalStoreAdapter
	Out     io.Writer
}

func (app *App) RunStats() error {
	stats, err := app.Manager.GetDataStatistics()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Records:      %d\n", stats.TotalRecords)
	if stats.OldestRecord != nil && stats.NewestRecord != nil {
		fmt.Fprintf(app.Out, "Period:       %s - %s\n",
			export.FormatReportDate(*stats.OldestRecord), export.FormatReportDate(*stats.NewestRecord))
	}
	fmt.Fprintf(app.Out, "Average pain: %s\n", export.FormatAveragePain(stats.AveragePainLevel))
	fmt.Fprintf(app.Out, "Storage:      %d bytes\n", stats.StorageSize)

	quota := app.Store.GetQuotaInfo()
	if quota.Quota > 0 {
		fmt.Fprintf(app.Out, "Quota:        %d of %d bytes used (%.1f%%)\n",
			quota.Usage, quota.Quota, float64(quota.Usage)/float64(quota.Quota)*100)
	}
	return nil
}

func (app *App) RunReport(format string, outPath string, options export.ExportOptions) error {
	records, err := app.Manager.GetAllRecords()
	if err != nil {
		return err
	}

	var rendered []byte
	switch format {
	case "html":
		document, err := export.ExportToHTML(records, options)
		if err != nil {
			return err
		}
		rendered = []byte(document)
	case "pdf":
		document, err := export.ExportToPDF(records, options)
		if err != nil {
			return err
		}
		rendered = document
	default:
		return fmt.Errorf("unsupported report format %q (want html or pdf)", format)
	}

	if err := os.WriteFile(outPath, rendered, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(app.Out, "Report written to %s\n", outPath)
	return nil
}

// RunExport writes the full data set to outPath, either as plain JSON or
// as an encrypted archive when a passphrase is given.
func (app *App) RunExport(outPath string, passphrase string) error {
	var payload []byte
	if passphrase != "" {
		archive, err := app.Manager.ExportArchive(passphrase)
		if err != nil {
			return err
		}
		payload = archive
	} else {
		data, err := app.Manager.ExportData()
		if err != nil {
			return err
		}
		encoded, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("encode export: %w", err)
		}
		payload = encoded
	}

	if err := os.WriteFile(outPath, payload, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(app.Out, "Data exported to %s\n", outPath)
	return nil
}

func (app *App) RunImport(inPath string, passphrase string) error {
	payload, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	if passphrase != "" {
		err = app.Manager.ImportArchive(payload, passphrase)
	} else {
		err = app.Manager.ImportPayload(payload)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Data imported from %s\n", inPath)
	return nil
}

func (app *App) RunCleanup() error {
	result, err := app.Manager.PerformDataCleanup()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Removed %d duplicate records and %d expired backups.\n",
		result.RemovedRecords, result.RemovedBackups)
	fmt.Fprintf(app.Out, "Storage now uses %d bytes.\n", result.OptimizedSize)
	return nil
}

func (app *App) RunBackups() error {
	backups, err := app.Store.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintln(app.Out, "No backups found.")
		return nil
	}

	for _, key := range backups {
		fmt.Fprintln(app.Out, key)
	}
	return nil
}

func (app *App) RunRestore(backupKey string) error {
	if err := app.Store.RestoreFromBackup(backupKey); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Restored data from %s\n", backupKey)
	return nil
}
