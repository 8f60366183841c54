package core

import "time"

// MonthlyTotal is the spend in one calendar-month bucket.
type MonthlyTotal struct {
	Key   string     `json:"key"` // YYYY-MM
	Label string     `json:"month"`
	Year  int        `json:"year"`
	Month time.Month `json:"monthNumber"`
	Total Money      `json:"total"`
}

// MonthlyTypeTotal splits a monthly bucket by event type.
type MonthlyTypeTotal struct {
	Key       string     `json:"key"`
	Label     string     `json:"month"`
	Year      int        `json:"year"`
	Month     time.Month `json:"monthNumber"`
	Planned   Money      `json:"planned"`
	Unplanned Money      `json:"unplanned"`
	Refueling Money      `json:"refueling"`
}

type YearlyTotal struct {
	Year  int   `json:"year"`
	Total Money `json:"total"`
}

// SpendingSummary bundles every spending statistic for one record set.
type SpendingSummary struct {
	Monthly        []MonthlyTotal     `json:"monthly"`
	MonthlyByType  []MonthlyTypeTotal `json:"monthlyByType"`
	Yearly         []YearlyTotal      `json:"yearly"`
	AvgPerMonth    Money              `json:"avgPerMonth"`
	AvgPerYear     Money              `json:"avgPerYear"`
	PlannedTotal   Money              `json:"plannedTotal"`
	UnplannedTotal Money              `json:"unplannedTotal"`
	RefuelingTotal Money              `json:"refuelingTotal"`
	TotalSpent     Money              `json:"totalSpent"`
	RecordCount    int                `json:"recordCount"`
	// CostPerKm is nil when fewer than two records or no mileage span.
	CostPerKm *float64 `json:"costPerKm"`
}
