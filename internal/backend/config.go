package backend

import (
	"fmt"

	"carlog/internal/config"
)

// SinkType names where exported records go.
type SinkType string

const (
	GoogleSink SinkType = "google"
	MemorySink SinkType = "memory"
)

func (t SinkType) String() string {
	return string(t)
}

func (t SinkType) IsValid() bool {
	switch t {
	case GoogleSink, MemorySink:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to build a sink.
type Config struct {
	Type SinkType

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// FromAppConfig picks the Google sink when a spreadsheet is configured and
// the in-process sink otherwise.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{Type: MemorySink}
	if appConfig.SheetsEnabled() {
		cfg = Config{
			Type:                     GoogleSink,
			GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
			GoogleSheetName:          appConfig.GoogleSheetName,
			GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
			GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		}
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid sink type: %s", c.Type)
	}

	if c.Type == GoogleSink {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("google spreadsheet ID is required for the google sink")
		}
		if c.GoogleSheetName == "" {
			return fmt.Errorf("google sheet name is required for the google sink")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("a service account JSON or file is required for the google sink")
		}
	}
	return nil
}
