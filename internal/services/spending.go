package services

import (
	"math"
	"sort"
	"time"

	"carlog/internal/core"
)

// DefaultStatsMonths is the trailing window used when callers give none.
const DefaultStatsMonths = 12

const (
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan 06"
)

// CostedRecords drops future records, which carry no real cost. Callers pass
// the result to the spending reducers below.
func CostedRecords(records []core.MaintenanceRecord) []core.MaintenanceRecord {
	out := make([]core.MaintenanceRecord, 0, len(records))
	for _, r := range records {
		if r.EventType.Costed() {
			out = append(out, r)
		}
	}
	return out
}

// monthBuckets returns the first day of each of the trailing n calendar
// months ending at now's month, oldest first.
func monthBuckets(months int, now time.Time) []time.Time {
	if months <= 0 {
		return nil
	}
	out := make([]time.Time, 0, months)
	for i := months - 1; i >= 0; i-- {
		out = append(out, time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC))
	}
	return out
}

func sameMonth(d core.Date, bucket time.Time) bool {
	return !d.IsEmpty() && d.Year() == bucket.Year() && d.Month() == bucket.Month()
}

// MonthlyTotals sums TotalCost into trailing calendar-month buckets. Records
// outside the window are ignored.
func MonthlyTotals(records []core.MaintenanceRecord, months int, now time.Time) []core.MonthlyTotal {
	buckets := monthBuckets(months, now)
	out := make([]core.MonthlyTotal, 0, len(buckets))
	for _, b := range buckets {
		mt := core.MonthlyTotal{
			Key:   b.Format(monthKeyLayout),
			Label: b.Format(monthLabelLayout),
			Year:  b.Year(),
			Month: b.Month(),
		}
		for _, r := range records {
			if sameMonth(r.Date, b) {
				mt.Total = mt.Total.Add(r.TotalCost)
			}
		}
		out = append(out, mt)
	}
	return out
}

// MonthlyTotalsByType is MonthlyTotals split by event type.
func MonthlyTotalsByType(records []core.MaintenanceRecord, months int, now time.Time) []core.MonthlyTypeTotal {
	buckets := monthBuckets(months, now)
	out := make([]core.MonthlyTypeTotal, 0, len(buckets))
	for _, b := range buckets {
		mt := core.MonthlyTypeTotal{
			Key:   b.Format(monthKeyLayout),
			Label: b.Format(monthLabelLayout),
			Year:  b.Year(),
			Month: b.Month(),
		}
		for _, r := range records {
			if !sameMonth(r.Date, b) {
				continue
			}
			switch r.EventType {
			case core.Planned:
				mt.Planned = mt.Planned.Add(r.TotalCost)
			case core.Unplanned:
				mt.Unplanned = mt.Unplanned.Add(r.TotalCost)
			case core.Refueling:
				mt.Refueling = mt.Refueling.Add(r.TotalCost)
			}
		}
		out = append(out, mt)
	}
	return out
}

// YearlyTotals sums TotalCost per calendar year, oldest year first.
func YearlyTotals(records []core.MaintenanceRecord) []core.YearlyTotal {
	byYear := make(map[int]core.Money)
	for _, r := range records {
		if r.Date.IsEmpty() {
			continue
		}
		byYear[r.Date.Year()] = byYear[r.Date.Year()].Add(r.TotalCost)
	}
	out := make([]core.YearlyTotal, 0, len(byYear))
	for y, total := range byYear {
		out = append(out, core.YearlyTotal{Year: y, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// dateSpan returns the dated records with their earliest and latest dates.
func dateSpan(records []core.MaintenanceRecord) (dated []core.MaintenanceRecord, minDate, maxDate core.Date) {
	for _, r := range records {
		if r.Date.IsEmpty() {
			continue
		}
		if len(dated) == 0 || r.Date.Before(minDate.Time) {
			minDate = r.Date
		}
		if len(dated) == 0 || r.Date.After(maxDate.Time) {
			maxDate = r.Date
		}
		dated = append(dated, r)
	}
	return dated, minDate, maxDate
}

// monthsInclusive counts calendar months from min to max, both included.
func monthsInclusive(minDate, maxDate core.Date) int {
	n := (maxDate.Year()-minDate.Year())*12 + int(maxDate.Month()-minDate.Month()) + 1
	return max(n, 1)
}

// roundUnits rounds cents to whole currency units.
func roundUnits(cents float64) core.Money {
	return core.Money{Cents: int64(math.Round(cents/100)) * 100}
}

// AvgPerMonth divides total spend by the inclusive number of calendar months
// between the earliest and latest dated records.
func AvgPerMonth(records []core.MaintenanceRecord) core.Money {
	dated, minDate, maxDate := dateSpan(records)
	if len(dated) == 0 {
		return core.Money{}
	}
	span := monthsInclusive(minDate, maxDate)
	return roundUnits(float64(TotalSpent(dated).Cents) / float64(span))
}

// AvgPerYear averages spend over consecutive 12-month windows starting at
// the earliest dated record. A span of up to 12 months counts as one year.
// A partial trailing window is left out of the average.
func AvgPerYear(records []core.MaintenanceRecord) core.Money {
	dated, minDate, maxDate := dateSpan(records)
	if len(dated) == 0 {
		return core.Money{}
	}
	totalMonths := monthsInclusive(minDate, maxDate)
	if totalMonths <= 12 {
		return roundUnits(float64(TotalSpent(dated).Cents))
	}

	fullYears := totalMonths / 12
	var sum int64
	for y := 0; y < fullYears; y++ {
		start := minDate.AddMonths(y * 12)
		end := start.AddMonths(12)
		for _, r := range dated {
			if !r.Date.Before(start.Time) && r.Date.Before(end.Time) {
				sum += r.TotalCost.Cents
			}
		}
	}
	return roundUnits(float64(sum) / float64(fullYears))
}

// TotalByType sums TotalCost over records of one event type.
func TotalByType(records []core.MaintenanceRecord, et core.EventType) core.Money {
	var total core.Money
	for _, r := range records {
		if r.EventType == et {
			total = total.Add(r.TotalCost)
		}
	}
	return total
}

func PlannedTotal(records []core.MaintenanceRecord) core.Money {
	return TotalByType(records, core.Planned)
}

func UnplannedTotal(records []core.MaintenanceRecord) core.Money {
	return TotalByType(records, core.Unplanned)
}

func RefuelingTotal(records []core.MaintenanceRecord) core.Money {
	return TotalByType(records, core.Refueling)
}

// TotalSpent is the exact sum of TotalCost.
func TotalSpent(records []core.MaintenanceRecord) core.Money {
	var total core.Money
	for _, r := range records {
		total = total.Add(r.TotalCost)
	}
	return total
}

// CostPerDistance returns spend per kilometre in currency units, rounded to
// two decimals. It reports false for fewer than two records or when the
// records cover no distance.
func CostPerDistance(records []core.MaintenanceRecord) (float64, bool) {
	if len(records) < 2 {
		return 0, false
	}
	minKm, maxKm := records[0].MileageKm, records[0].MileageKm
	for _, r := range records[1:] {
		minKm = min(minKm, r.MileageKm)
		maxKm = max(maxKm, r.MileageKm)
	}
	diff := maxKm - minKm
	if diff <= 0 {
		return 0, false
	}
	perKm := TotalSpent(records).Units() / float64(diff)
	return math.Round(perKm*100) / 100, true
}

func RecordCount(records []core.MaintenanceRecord) int {
	return len(records)
}

// Summarize runs every reducer over records. Future records are dropped
// first.
func Summarize(records []core.MaintenanceRecord, months int, now time.Time) core.SpendingSummary {
	costed := CostedRecords(records)
	s := core.SpendingSummary{
		Monthly:        MonthlyTotals(costed, months, now),
		MonthlyByType:  MonthlyTotalsByType(costed, months, now),
		Yearly:         YearlyTotals(costed),
		AvgPerMonth:    AvgPerMonth(costed),
		AvgPerYear:     AvgPerYear(costed),
		PlannedTotal:   PlannedTotal(costed),
		UnplannedTotal: UnplannedTotal(costed),
		RefuelingTotal: RefuelingTotal(costed),
		TotalSpent:     TotalSpent(costed),
		RecordCount:    RecordCount(costed),
	}
	if perKm, ok := CostPerDistance(costed); ok {
		s.CostPerKm = &perKm
	}
	return s
}
