package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Planned   EventType = "planned"
	Unplanned EventType = "unplanned"
	Refueling EventType = "refueling"
	Future    EventType = "future"
)

type (
	// EventType classifies a journal entry. The set is closed.
	EventType string

	RecordItem struct {
		ID   string `json:"itemId"`
		Name string `json:"name"`
		Cost Money  `json:"cost"`
	}

	MaintenanceRecord struct {
		ID        string       `json:"id"`
		CarID     string       `json:"carId"`
		Date      Date         `json:"date"`
		MileageKm int          `json:"mileageKm"`
		EventType EventType    `json:"eventType"`
		Title     string       `json:"title"`
		Items     []RecordItem `json:"items"`
		TotalCost Money        `json:"totalCost"`
		Currency  string       `json:"currency"`
		CreatedAt time.Time    `json:"createdAt"`
	}

	CarProfile struct {
		ID       string  `json:"id"`
		Make     string  `json:"make"`
		Model    string  `json:"model"`
		Year     string  `json:"year"`
		VIN      string  `json:"vin"`
		PhotoURI *string `json:"photoUri"`
		Currency string  `json:"currency"`
		// Both overrides must be positive for either to take effect.
		CustomIntervalKm     *int      `json:"customIntervalKm"`
		CustomIntervalMonths *int      `json:"customIntervalMonths"`
		CreatedAt            time.Time `json:"createdAt"`
	}

	// CatalogEntry is one row of the built-in service interval table.
	CatalogEntry struct {
		Make           string   `json:"make"`
		Models         []string `json:"models"`
		IntervalKm     int      `json:"intervalKm"`
		IntervalMonths int      `json:"intervalMonths"`
	}

	ServiceInterval struct {
		IntervalKm     int  `json:"intervalKm"`
		IntervalMonths int  `json:"intervalMonths"`
		IsCustom       bool `json:"isCustom"`
	}

	// NextServiceInfo is the projected next planned service for a car.
	// DaysLeft and KmLeft go negative once the service is overdue.
	NextServiceInfo struct {
		ByMileageKm int  `json:"byMileageKm"`
		ByDate      Date `json:"byDate"`
		DaysLeft    *int `json:"daysLeft"`
		KmLeft      *int `json:"kmLeft"`
		Overdue     bool `json:"overdue"`
	}
)

var (
	ErrInvalidEventType = errors.New("invalid event type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidMileage   = errors.New("invalid mileage")
	ErrMissingDate      = errors.New("date is required")
	ErrEmptyMake        = errors.New("empty make")
	ErrInvalidInterval  = errors.New("invalid custom interval")
	ErrTitleTooLong     = errors.New("title too long (max 200 characters)")

	// ErrNotFound marks lookups of cars, records or catalog rows that do not exist.
	ErrNotFound = errors.New("not found")
)

var validationErrors = []error{
	ErrInvalidEventType, ErrInvalidAmount, ErrInvalidMileage,
	ErrMissingDate, ErrEmptyMake, ErrInvalidInterval, ErrTitleTooLong,
}

// IsValidation reports whether err was caused by invalid user input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// EventTypes lists every event type in display order.
func EventTypes() []EventType {
	return []EventType{Planned, Unplanned, Refueling, Future}
}

func ParseEventType(s string) (EventType, error) {
	et := EventType(strings.ToLower(strings.TrimSpace(s)))
	if !et.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventType, s)
	}
	return et, nil
}

func (et EventType) Valid() bool {
	switch et {
	case Planned, Unplanned, Refueling, Future:
		return true
	default:
		return false
	}
}

// Costed reports whether records of this type carry a real, incurred cost.
func (et EventType) Costed() bool {
	return et != Future
}

func (et EventType) String() string {
	return string(et)
}

// ItemsTotal sums the item costs. TotalCost is stored separately and is not
// recomputed from this.
func (r MaintenanceRecord) ItemsTotal() Money {
	var total int64
	for _, it := range r.Items {
		total += it.Cost.Cents
	}
	return Money{Cents: total}
}

func (r MaintenanceRecord) Validate() error {
	if !r.EventType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, r.EventType)
	}
	if r.MileageKm < 0 {
		return ErrInvalidMileage
	}
	if r.EventType != Future && r.Date.IsEmpty() {
		return ErrMissingDate
	}
	if len(r.Title) > 200 {
		return ErrTitleTooLong
	}
	if err := r.TotalCost.Validate(); err != nil {
		return fmt.Errorf("total cost: %w", err)
	}
	for i, it := range r.Items {
		if err := it.Cost.Validate(); err != nil {
			return fmt.Errorf("item %d cost: %w", i, err)
		}
	}
	return nil
}

func (c CarProfile) Validate() error {
	if strings.TrimSpace(c.Make) == "" {
		return ErrEmptyMake
	}
	if c.CustomIntervalKm != nil && *c.CustomIntervalKm < 0 {
		return fmt.Errorf("%w: km %d", ErrInvalidInterval, *c.CustomIntervalKm)
	}
	if c.CustomIntervalMonths != nil && *c.CustomIntervalMonths < 0 {
		return fmt.Errorf("%w: months %d", ErrInvalidInterval, *c.CustomIntervalMonths)
	}
	return nil
}
