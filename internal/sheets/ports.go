// Package sheets defines the spreadsheet export ports and their adapters.
package sheets

import (
	"context"

	"carlog/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordExporter mirrors journal records into an external sheet. Exporting
	// a record that is already present replaces its row.
	RecordExporter interface {
		ExportRecord(ctx context.Context, car core.CarProfile, rec core.MaintenanceRecord) (rowRef string, err error)
	}

	// RecordRemover deletes an exported row. Removing an unknown record is not
	// an error.
	RecordRemover interface {
		RemoveRecord(ctx context.Context, recordID string) error
	}

	RecordSink interface {
		RecordExporter
		RecordRemover
	}
)

// Header is the column layout shared by every adapter.
var Header = []string{"Record ID", "Date", "Car", "Title", "Type", "Mileage km", "Total", "Currency"}

// Row renders a record in Header order.
func Row(car core.CarProfile, rec core.MaintenanceRecord) []any {
	name := car.Make
	if car.Model != "" {
		name += " " + car.Model
	}
	return []any{
		rec.ID,
		rec.Date.String(),
		name,
		rec.Title,
		string(rec.EventType),
		rec.MileageKm,
		rec.TotalCost.Units(),
		rec.Currency,
	}
}
