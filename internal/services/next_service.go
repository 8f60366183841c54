package services

import (
	"math"
	"sort"
	"time"

	"carlog/internal/core"
)

// CalcNextService projects the next planned service from the most recent
// planned record. It reports false when there is no planned record to
// project from.
func CalcNextService(records []core.MaintenanceRecord, car core.CarProfile, now time.Time) (core.NextServiceInfo, bool) {
	planned := filterByType(records, core.Planned)
	if len(planned) == 0 {
		return core.NextServiceInfo{}, false
	}
	sortByDateDesc(planned)
	last := planned[0]

	interval := ResolveInterval(car)
	info := core.NextServiceInfo{
		ByMileageKm: last.MileageKm + interval.IntervalKm,
		ByDate:      last.Date.AddMonths(interval.IntervalMonths),
	}

	if !info.ByDate.IsEmpty() {
		days := daysUntil(info.ByDate, now)
		info.DaysLeft = &days
	}

	kmLeft := info.ByMileageKm - currentMileage(records, last.MileageKm)
	info.KmLeft = &kmLeft

	info.Overdue = kmLeft < 0 || (info.DaysLeft != nil && *info.DaysLeft < 0)
	return info, true
}

// daysUntil returns the whole days from now to the due date, rounded up.
func daysUntil(due core.Date, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// currentMileage is the odometer reading of the most recent record of any
// type, or fallback when there are none.
func currentMileage(records []core.MaintenanceRecord, fallback int) int {
	if len(records) == 0 {
		return fallback
	}
	all := append([]core.MaintenanceRecord(nil), records...)
	sortByDateDesc(all)
	return all[0].MileageKm
}

// sortByDateDesc orders records newest first. Undated records go last and
// equal dates keep their input order.
func sortByDateDesc(records []core.MaintenanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Date, records[j].Date
		if a.IsEmpty() || b.IsEmpty() {
			return !a.IsEmpty() && b.IsEmpty()
		}
		return a.After(b.Time)
	})
}

func filterByType(records []core.MaintenanceRecord, et core.EventType) []core.MaintenanceRecord {
	var out []core.MaintenanceRecord
	for _, r := range records {
		if r.EventType == et {
			out = append(out, r)
		}
	}
	return out
}
