package google

import (
	"fmt"
	"strings"

	ports "carlog/internal/sheets"
)

// indexRecordRows maps record IDs in column A to their 1-based row numbers.
// The header row and blank cells are skipped; the first occurrence wins.
func indexRecordRows(values [][]any) map[string]int {
	out := make(map[string]int, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(row[0]))
		if id == "" || id == ports.Header[0] {
			continue
		}
		if _, seen := out[id]; !seen {
			out[id] = i + 1
		}
	}
	return out
}

func headerRow() []any {
	out := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		out[i] = h
	}
	return out
}

func rowRange(sheet string, row int) string {
	last := rune('A' + len(ports.Header) - 1)
	return fmt.Sprintf("%s!A%d:%c%d", sheet, row, last, row)
}

func copyIndex(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
