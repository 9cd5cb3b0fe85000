package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/dkanlabs/importer/internal/config"
	"github.com/dkanlabs/importer/internal/dkan"
	"github.com/dkanlabs/importer/internal/logging"
	"github.com/dkanlabs/importer/internal/output"
	"github.com/dkanlabs/importer/internal/report"
	"github.com/dkanlabs/importer/internal/schema"
	"github.com/dkanlabs/importer/internal/validate"
	"github.com/dkanlabs/importer/internal/xlsx"
)

type args struct {
	BaseURL          string `arg:"--base-url,required" help:"https URL of the DKAN site to import into"`
	ExcelFile        string `arg:"--excel-file,required" help:"path to the Excel workbook to validate"`
	SheetName        string `arg:"--sheet-name" help:"sheet to process (default: first sheet)"`
	DataDictionaryID string `arg:"--data-dictionary-id,required" help:"UUID of the data dictionary to validate against"`
	DatasetID        string `arg:"--dataset-id,required" help:"UUID of the dataset receiving the CSV distribution"`
	Username         string `arg:"--username" help:"API username (falls back to DKAN_USERNAME)"`
	Password         string `arg:"--password" help:"API password (prompted when omitted)"`
	Workers          int    `arg:"--workers" help:"parallel row validations (default: from VALIDATE_WORKERS)"`
}

func (args) Description() string {
	return "Validates an Excel workbook against a DKAN data dictionary and publishes the clean rows as a CSV distribution."
}

func main() {
	// Load .env if present; environment variables already set win.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	var a args
	arg.MustParse(&a)
	applyFlags(cfg, &a)

	if _, err := uuid.Parse(a.DataDictionaryID); err != nil {
		slog.Error("data dictionary id is not a valid UUID", "id", a.DataDictionaryID)
		os.Exit(1)
	}
	if _, err := uuid.Parse(a.DatasetID); err != nil {
		slog.Error("dataset id is not a valid UUID", "id", a.DatasetID)
		os.Exit(1)
	}

	if cfg.API.Password == "" {
		pw, err := promptPassword()
		if err != nil {
			slog.Error("failed to read password", "error", err)
			os.Exit(1)
		}
		cfg.API.Password = pw
	}

	ctx := logging.WithRunID(context.Background(), uuid.NewString())
	if err := run(ctx, cfg, a); err != nil {
		logging.FromContext(ctx).Error("import failed", "error", err)
		os.Exit(1)
	}
}

// applyFlags lets command-line flags override environment configuration.
func applyFlags(cfg *config.Config, a *args) {
	cfg.API.BaseURL = a.BaseURL
	if a.Username != "" {
		cfg.API.Username = a.Username
	}
	if a.Password != "" {
		cfg.API.Password = a.Password
	}
	if a.Workers > 0 {
		cfg.Validation.Workers = a.Workers
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func run(ctx context.Context, cfg *config.Config, a args) error {
	log := logging.WithFields(ctx,
		"dataset", a.DatasetID,
		"dictionary", a.DataDictionaryID,
	)

	client, err := dkan.NewClient(cfg.API.BaseURL, dkan.Options{
		Username: cfg.API.Username,
		Password: cfg.API.Password,
		Timeout:  cfg.API.Timeout,
		Retries:  cfg.API.Retries,
	})
	if err != nil {
		return err
	}

	dict, err := client.FetchDictionary(ctx, a.DataDictionaryID)
	if err != nil {
		return fmt.Errorf("fetch data dictionary: %w", err)
	}
	log.Info("data dictionary fetched", "title", dict.Title, "fields", len(dict.Fields))

	sch, err := schema.Convert(dict.Fields)
	if err != nil {
		return fmt.Errorf("convert data dictionary: %w", err)
	}

	headers, rows, err := xlsx.ReadSheet(a.ExcelFile, a.SheetName)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("workbook %s has no data rows", a.ExcelFile)
	}
	log.Info("workbook read", "columns", len(headers), "rows", len(rows))

	processor := validate.NewBatchProcessor(validate.NewRowValidator(sch), cfg.Validation.Workers)
	outcome := processor.Process(rows)

	if outcome.ErrorRowCount() > 0 {
		body := report.Render(outcome, time.Now())
		if err := report.AppendLog(cfg.Report.LogFile, "Excel validation error report", body); err != nil {
			log.Warn("could not write error report", "error", err)
		}
		log.Error("validation failed",
			"rows_with_errors", outcome.ErrorRowCount(),
			"field_errors", outcome.ErrorCount(),
			"report", cfg.Report.LogFile,
		)
		return fmt.Errorf("%d of %d rows failed validation", outcome.ErrorRowCount(), outcome.TotalRows())
	}
	log.Info("validation passed", "rows", outcome.TotalRows())

	fileName := dkan.Filename(a.DatasetID, a.DataDictionaryID, time.Now())
	if err := writeCSVFile(fileName, sch, outcome); err != nil {
		return err
	}
	log.Info("csv written", "file", fileName)

	fileURL, err := client.UploadCSV(ctx, fileName)
	if err != nil {
		return fmt.Errorf("upload csv: %w", err)
	}

	previous, err := client.AddDistribution(ctx, a.DatasetID, fileName, fileURL, dict.URL)
	if err != nil {
		return fmt.Errorf("attach distribution: %w", err)
	}
	log.Info("distribution attached", "file_url", fileURL)

	if previous != "" {
		if err := client.DeleteFile(ctx, previous); err != nil {
			return fmt.Errorf("delete replaced file %s: %w", previous, err)
		}
		log.Info("replaced distribution cleaned up", "file", previous)
	}

	if err := os.Remove(fileName); err != nil {
		log.Warn("could not remove local csv", "file", fileName, "error", err)
	}
	return nil
}

func writeCSVFile(path string, sch *schema.Schema, outcome validate.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := output.WriteCSV(f, output.NewFormatter(sch), outcome.ValidRows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
