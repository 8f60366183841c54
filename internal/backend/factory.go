// Package backend builds the export sink the workers and CLI write to.
package backend

import (
	"context"
	"fmt"

	"carlog/internal/log"
	"carlog/internal/sheets"
	gsheet "carlog/internal/sheets/google"
	"carlog/internal/sheets/memory"
)

// Factory creates record sinks from configuration.
type Factory struct {
	logger *log.Logger
	// newGoogle is swapped in tests.
	newGoogle func(ctx context.Context, cfg gsheet.Config) (sheets.RecordSink, error)
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{
		logger: logger,
		newGoogle: func(ctx context.Context, cfg gsheet.Config) (sheets.RecordSink, error) {
			return gsheet.New(ctx, cfg)
		},
	}
}

// CreateSink builds the sink selected by config.
func (f *Factory) CreateSink(ctx context.Context, config Config) (sheets.RecordSink, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case GoogleSink:
		sink, err := f.newGoogle(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Google Sheets export enabled",
			"spreadsheet_id", config.GoogleSpreadsheetID,
			"sheet", config.GoogleSheetName)
		return sink, nil
	case MemorySink:
		f.logger.Info("Google Sheets export disabled - exporting to an in-process sheet")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", config.Type)
	}
}
