package google

import "testing"

func TestIndexRecordRows(t *testing.T) {
	values := [][]any{
		{"Record ID", "Date", "Car"},
		{"r1", "2024-01-15"},
		{},
		{"  r2 ", "2024-02-01"},
		{"r1", "duplicate"},
		{""},
	}
	got := indexRecordRows(values)
	if len(got) != 2 {
		t.Fatalf("expected 2 ids, got %v", got)
	}
	if got["r1"] != 2 {
		t.Errorf("r1 row = %d, want 2", got["r1"])
	}
	if got["r2"] != 4 {
		t.Errorf("r2 row = %d, want 4", got["r2"])
	}
	if len(indexRecordRows(nil)) != 0 {
		t.Error("expected empty index for empty sheet")
	}
}

func TestRowRange(t *testing.T) {
	if got := rowRange("Journal", 7); got != "Journal!A7:H7" {
		t.Errorf("rowRange = %q", got)
	}
	if len(headerRow()) != 8 {
		t.Errorf("unexpected header width %d", len(headerRow()))
	}
}
