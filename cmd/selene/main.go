package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/terraincognita07/selene/internal/cli"
	"github.com/terraincognita07/selene/internal/db"
	"github.com/terraincognita07/selene/internal/export"
	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/services"
	"github.com/terraincognita07/selene/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	command := os.Args[1]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage(os.Stdout)
		return
	}

	logger, err := newLogger(getEnv("LOG_LEVEL", "warn"))
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbPath := getEnv("DB_PATH", filepath.Join("data", "selene.db"))
	quotaBytes, err := parseQuota(getEnv("STORAGE_QUOTA_BYTES", ""))
	if err != nil {
		log.Fatalf("invalid STORAGE_QUOTA_BYTES: %v", err)
	}

	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	repositories := db.NewRepositories(database)
	adapter := storage.NewLocalStoreAdapter(repositories.StoreEntries, quotaBytes, logger)
	manager := services.NewDataManager(adapter, services.NewRecordValidator(), logger)

	if err := services.RunSchemaMigrations(adapter, logger); err != nil {
		log.Fatalf("schema migration failed: %v", err)
	}

	app := &cli.App{Manager: manager, Store: adapter, Out: os.Stdout}
	if err := runCommand(app, command, os.Args[2:]); err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func runCommand(app *cli.App, command string, args []string) error {
	switch command {
	case "stats":
		return app.RunStats()

	case "report":
		flags := flag.NewFlagSet("report", flag.ExitOnError)
		format := flags.String("format", "html", "report format: html or pdf")
		outPath := flags.String("o", "", "output file path")
		from := flags.String("from", "", "start date (YYYY-MM-DD)")
		to := flags.String("to", "", "end date (YYYY-MM-DD)")
		summary := flags.Bool("summary", true, "include the executive summary")
		insights := flags.Bool("insights", true, "include clinical insights")
		charts := flags.Bool("charts", true, "include data visualizations")
		if err := flags.Parse(args); err != nil {
			return err
		}
		options, err := buildExportOptions(*from, *to, *summary, *insights, *charts)
		if err != nil {
			return err
		}
		if *format == "pdf" {
			if err := export.LoadPDFLicense(os.Getenv("UNIDOC_LICENSE_API_KEY")); err != nil {
				return err
			}
		}
		path := *outPath
		if path == "" {
			path = "pain-report." + *format
		}
		return app.RunReport(*format, path, options)

	case "export":
		flags := flag.NewFlagSet("export", flag.ExitOnError)
		outPath := flags.String("o", "pain-tracker-export.json", "output file path")
		encrypt := flags.Bool("encrypt", false, "seal the export with a passphrase")
		if err := flags.Parse(args); err != nil {
			return err
		}
		passphrase := ""
		if *encrypt {
			var err error
			if passphrase, err = cli.PromptPassphrase(true); err != nil {
				return err
			}
		}
		return app.RunExport(*outPath, passphrase)

	case "import":
		flags := flag.NewFlagSet("import", flag.ExitOnError)
		inPath := flags.String("i", "", "input file path")
		encrypted := flags.Bool("encrypted", false, "the input is a passphrase-sealed archive")
		if err := flags.Parse(args); err != nil {
			return err
		}
		if *inPath == "" {
			return errors.New("import requires -i <file>")
		}
		passphrase := ""
		if *encrypted {
			var err error
			if passphrase, err = cli.PromptPassphrase(false); err != nil {
				return err
			}
		}
		return app.RunImport(*inPath, passphrase)

	case "cleanup":
		return app.RunCleanup()

	case "backups":
		return app.RunBackups()

	case "restore":
		if len(args) != 1 {
			return errors.New("restore requires exactly one backup key (see backups)")
		}
		return app.RunRestore(args[0])

	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", command)
	}
}

func buildExportOptions(from string, to string, summary bool, insights bool, charts bool) (export.ExportOptions, error) {
	options := export.ExportOptions{
		IncludeSummary:  summary,
		IncludeInsights: insights,
		IncludeCharts:   charts,
	}
	if from != "" {
		parsed, err := time.Parse(models.RecordDateLayout, from)
		if err != nil {
			return export.ExportOptions{}, fmt.Errorf("invalid -from date %q: want YYYY-MM-DD", from)
		}
		options.StartDate = &parsed
	}
	if to != "" {
		parsed, err := time.Parse(models.RecordDateLayout, to)
		if err != nil {
			return export.ExportOptions{}, fmt.Errorf("invalid -to date %q: want YYYY-MM-DD", to)
		}
		options.EndDate = &parsed
	}
	if options.StartDate != nil && options.EndDate != nil && options.EndDate.Before(*options.StartDate) {
		return export.ExportOptions{}, errors.New("-to date is before -from date")
	}
	return options, nil
}

func parseQuota(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	quota, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || quota < 0 {
		return 0, fmt.Errorf("want a non-negative byte count, got %q", raw)
	}
	return quota, nil
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = parsed
	return config.Build()
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `Selene tracks menstrual pain records and turns them into medical reports.

Usage: selene <command> [flags]

Commands:
  stats                      show tracked data statistics
  report [-format html|pdf] [-o file] [-from date] [-to date]
                             generate a medical report
  export [-o file] [-encrypt]
                             export all data as JSON or an encrypted archive
  import -i file [-encrypted]
                             import a previous export
  cleanup                    remove duplicate records and expired backups
  backups                    list available backups
  restore <backup-key>       restore data from a backup
  help                       show this message

Environment:
  DB_PATH               sqlite database path (default data/selene.db)
  STORAGE_QUOTA_BYTES   storage quota in bytes (default 5242880)
  LOG_LEVEL             zap log level (default warn)
  UNIDOC_LICENSE_API_KEY
                        unipdf license key, required for PDF reports`)
}
