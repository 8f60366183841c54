package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"carlog/internal/core"
)

func TestParseMonths(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 12, false},
		{"months=6", 6, false},
		{"months=%206%20", 6, false},
		{"months=120", 120, false},
		{"months=0", 0, true},
		{"months=-3", 0, true},
		{"months=121", 0, true},
		{"months=six", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got, err := parseMonths(q, 12)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMonths() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseMonths() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) (core.CarProfile, error) {
		var car core.CarProfile
		r := httptest.NewRequest(http.MethodPost, "/api/cars", strings.NewReader(body))
		err := decodeJSON(httptest.NewRecorder(), r, &car)
		return car, err
	}

	car, err := decode(`{"make":"Lada","customIntervalKm":10000}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if car.Make != "Lada" || car.CustomIntervalKm == nil || *car.CustomIntervalKm != 10000 {
		t.Errorf("unexpected car %+v", car)
	}

	if _, err := decode(""); !errors.Is(err, errEmptyBody) {
		t.Errorf("empty body error = %v", err)
	}
	if _, err := decode(`{"make":"Lada"} {"make":"Kia"}`); err == nil {
		t.Error("expected error for trailing data")
	}
	if _, err := decode(`{"make":`); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := decode(`{"make":"` + strings.Repeat("a", maxBodyBytes) + `"}`); !errors.Is(err, errBodyTooLarge) {
		t.Errorf("oversized body error = %v", err)
	}
}

func TestDecodeStatus(t *testing.T) {
	var rec core.MaintenanceRecord
	r := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(`{"totalCost":"-1"}`))
	err := decodeJSON(httptest.NewRecorder(), r, &rec)
	if err == nil {
		t.Fatal("expected error for negative amount")
	}

	w := httptest.NewRecorder()
	decodeStatus(err).Write(w)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}

	w = httptest.NewRecorder()
	decodeStatus(errBodyTooLarge).Write(w)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  Oil change  ":    "Oil change",
		"Brake\x00 pads":    "Brake pads",
		"Tab\tand\nnewline": "Tab\tand\nnewline",
		"\x1b[31mred":       "[31mred",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeRecord(t *testing.T) {
	rec := sanitizeRecord(core.MaintenanceRecord{
		CarID:     " car-1 ",
		EventType: " Refueling ",
		Currency:  "eur",
		Items:     []core.RecordItem{{Name: " Fuel\x07 "}},
	})
	if rec.CarID != "car-1" || rec.EventType != core.Refueling || rec.Currency != "EUR" || rec.Items[0].Name != "Fuel" {
		t.Errorf("unexpected record %+v", rec)
	}
}
