package core

import "time"

// ServiceReminder is the last computed next-service projection for a car,
// stored so overdue cars can be listed without recomputing.
type ServiceReminder struct {
	CarID string `json:"carId"`
	NextServiceInfo
	Interval  ServiceInterval `json:"interval"`
	Status    string          `json:"status"`
	CheckedAt time.Time       `json:"checkedAt"`
}
