package services

import "carlog/internal/core"

// ServiceStatus is the urgency of the next planned service.
type ServiceStatus string

const (
	StatusOK      ServiceStatus = "ok"
	StatusDueSoon ServiceStatus = "due_soon"
	StatusOverdue ServiceStatus = "overdue"
)

const (
	DefaultSoonDays = 30
	DefaultSoonKm   = 1000
)

// rank orders statuses from least to most urgent.
func (s ServiceStatus) rank() int {
	switch s {
	case StatusOverdue:
		return 2
	case StatusDueSoon:
		return 1
	default:
		return 0
	}
}

// StatusChecker classifies one dimension of a next-service projection.
type StatusChecker interface {
	Check(info core.NextServiceInfo) ServiceStatus
}

// TimeChecker looks at the days left before the due date.
type TimeChecker struct {
	SoonDays int
}

func (c TimeChecker) Check(info core.NextServiceInfo) ServiceStatus {
	if info.DaysLeft == nil {
		return StatusOK
	}
	switch d := *info.DaysLeft; {
	case d < 0:
		return StatusOverdue
	case d <= c.SoonDays:
		return StatusDueSoon
	}
	return StatusOK
}

// DistanceChecker looks at the kilometres left before the due mileage.
type DistanceChecker struct {
	SoonKm int
}

func (c DistanceChecker) Check(info core.NextServiceInfo) ServiceStatus {
	if info.KmLeft == nil {
		return StatusOK
	}
	switch km := *info.KmLeft; {
	case km < 0:
		return StatusOverdue
	case km <= c.SoonKm:
		return StatusDueSoon
	}
	return StatusOK
}

// DefaultStatusCheckers returns the time and distance checkers with the
// default warning thresholds.
func DefaultStatusCheckers() []StatusChecker {
	return []StatusChecker{
		TimeChecker{SoonDays: DefaultSoonDays},
		DistanceChecker{SoonKm: DefaultSoonKm},
	}
}

// ClassifyService returns the most urgent status any checker reports.
// An overdue projection is always StatusOverdue, whatever the checkers say.
func ClassifyService(info core.NextServiceInfo, checkers ...StatusChecker) ServiceStatus {
	if len(checkers) == 0 {
		checkers = DefaultStatusCheckers()
	}
	status := StatusOK
	if info.Overdue {
		return StatusOverdue
	}
	for _, c := range checkers {
		if s := c.Check(info); s.rank() > status.rank() {
			status = s
		}
	}
	return status
}
