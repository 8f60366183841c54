package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"carlog/internal/core"
)

// MaxStatsMonths bounds the stats window a client may request.
const MaxStatsMonths = 120

var (
	errEmptyBody    = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body too large")
)

// decodeJSON reads a single JSON value from the request body into dst.
// Oversized, empty, malformed or trailing bodies are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errEmptyBody
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		default:
			return fmt.Errorf("malformed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("malformed JSON: trailing data after object")
	}
	return nil
}

// decodeStatus maps a decodeJSON error to a response. Money and date
// parse failures surface as validation errors.
func decodeStatus(err error) *JSONResponseBuilder {
	if errors.Is(err, errBodyTooLarge) {
		return ErrorResponse(http.StatusRequestEntityTooLarge, err.Error())
	}
	if core.IsValidation(err) {
		return UnprocessableEntityError(err.Error())
	}
	return BadRequestError(err.Error())
}

// parseMonths reads the months query parameter. Missing means def;
// anything outside 1..MaxStatsMonths is an error.
func parseMonths(query url.Values, def int) (int, error) {
	v := strings.TrimSpace(query.Get("months"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > MaxStatsMonths {
		return 0, fmt.Errorf("months must be an integer between 1 and %d", MaxStatsMonths)
	}
	return n, nil
}

// pathValue returns a sanitized path parameter.
func pathValue(r *http.Request, name string) string {
	return sanitizeInput(r.PathValue(name))
}

func sanitizeCar(c core.CarProfile) core.CarProfile {
	c.Make = sanitizeInput(c.Make)
	c.Model = sanitizeInput(c.Model)
	c.Year = sanitizeInput(c.Year)
	c.VIN = strings.ToUpper(sanitizeInput(c.VIN))
	c.Currency = strings.ToUpper(sanitizeInput(c.Currency))
	if c.PhotoURI != nil {
		uri := sanitizeInput(*c.PhotoURI)
		c.PhotoURI = &uri
	}
	return c
}

func sanitizeRecord(rec core.MaintenanceRecord) core.MaintenanceRecord {
	rec.CarID = sanitizeInput(rec.CarID)
	rec.Title = sanitizeInput(rec.Title)
	rec.Currency = strings.ToUpper(sanitizeInput(rec.Currency))
	rec.EventType = core.EventType(strings.ToLower(sanitizeInput(string(rec.EventType))))
	for i := range rec.Items {
		rec.Items[i].Name = sanitizeInput(rec.Items[i].Name)
	}
	return rec
}
