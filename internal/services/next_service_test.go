package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlog/internal/core"
)

func intPtr(v int) *int { return &v }

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func rec(id string, et core.EventType, date core.Date, km int, cents int64) core.MaintenanceRecord {
	return core.MaintenanceRecord{
		ID:        id,
		EventType: et,
		Date:      date,
		MileageKm: km,
		TotalCost: core.Money{Cents: cents},
	}
}

func TestIntervalForMake(t *testing.T) {
	e, ok := IntervalForMake("toyota")
	require.True(t, ok)
	assert.Equal(t, "Toyota", e.Make)
	assert.Equal(t, 10000, e.IntervalKm)
	assert.Equal(t, 12, e.IntervalMonths)

	e, ok = IntervalForMake("LAND ROVER")
	require.True(t, ok)
	assert.Equal(t, 16000, e.IntervalKm)

	_, ok = IntervalForMake("Zaporozhets")
	assert.False(t, ok)
	_, ok = IntervalForMake("")
	assert.False(t, ok)
}

func TestCatalogIsACopy(t *testing.T) {
	c := Catalog()
	require.Len(t, c, 30)
	assert.Equal(t, "Lada", c[0].Make)
	assert.Equal(t, "Porsche", c[len(c)-1].Make)

	c[0].IntervalKm = 1
	c[0].Models[0] = "changed"
	e, _ := IntervalForMake("Lada")
	assert.Equal(t, 15000, e.IntervalKm)
	assert.Equal(t, "Vesta", e.Models[0])
}

func TestResolveInterval(t *testing.T) {
	cases := []struct {
		name string
		car  core.CarProfile
		want core.ServiceInterval
	}{
		{"unknown make uses default", core.CarProfile{Make: "Zaporozhets"}, core.ServiceInterval{IntervalKm: 15000, IntervalMonths: 12}},
		{"catalog make", core.CarProfile{Make: "Chery"}, core.ServiceInterval{IntervalKm: 10000, IntervalMonths: 6}},
		{"custom wins over catalog", core.CarProfile{Make: "BMW", CustomIntervalKm: intPtr(8000), CustomIntervalMonths: intPtr(9)}, core.ServiceInterval{IntervalKm: 8000, IntervalMonths: 9, IsCustom: true}},
		{"custom wins with unknown make", core.CarProfile{Make: "Moskvich", CustomIntervalKm: intPtr(5000), CustomIntervalMonths: intPtr(6)}, core.ServiceInterval{IntervalKm: 5000, IntervalMonths: 6, IsCustom: true}},
		{"only km set is ignored", core.CarProfile{Make: "BMW", CustomIntervalKm: intPtr(8000)}, core.ServiceInterval{IntervalKm: 15000, IntervalMonths: 24}},
		{"only months set is ignored", core.CarProfile{Make: "Moskvich", CustomIntervalMonths: intPtr(6)}, core.ServiceInterval{IntervalKm: 15000, IntervalMonths: 12}},
		{"zero override is ignored", core.CarProfile{Make: "Toyota", CustomIntervalKm: intPtr(0), CustomIntervalMonths: intPtr(6)}, core.ServiceInterval{IntervalKm: 10000, IntervalMonths: 12}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveInterval(tc.car))
		})
	}
}

func TestCalcNextServiceNoPrediction(t *testing.T) {
	car := core.CarProfile{Make: "Lada"}
	_, ok := CalcNextService(nil, car, day(2024, 6, 1))
	assert.False(t, ok)

	records := []core.MaintenanceRecord{
		rec("1", core.Refueling, core.NewDate(2024, 1, 1), 1000, 500000),
		rec("2", core.Unplanned, core.NewDate(2024, 2, 1), 2000, 100000),
		rec("3", core.Future, core.Date{}, 0, 0),
	}
	_, ok = CalcNextService(records, car, day(2024, 6, 1))
	assert.False(t, ok)
}

func TestCalcNextService(t *testing.T) {
	car := core.CarProfile{Make: "Lada"}
	planned := rec("p", core.Planned, core.NewDate(2024, 1, 15), 100000, 350000)

	t.Run("within both limits", func(t *testing.T) {
		records := []core.MaintenanceRecord{
			planned,
			rec("f", core.Refueling, core.NewDate(2024, 5, 1), 110000, 400000),
		}
		info, ok := CalcNextService(records, car, day(2024, 6, 1))
		require.True(t, ok)
		assert.Equal(t, 115000, info.ByMileageKm)
		assert.Equal(t, "2025-01-15", info.ByDate.String())
		require.NotNil(t, info.KmLeft)
		assert.Equal(t, 5000, *info.KmLeft)
		require.NotNil(t, info.DaysLeft)
		assert.Equal(t, 228, *info.DaysLeft)
		assert.False(t, info.Overdue)
	})

	t.Run("late by date only", func(t *testing.T) {
		records := []core.MaintenanceRecord{
			planned,
			rec("f", core.Refueling, core.NewDate(2024, 5, 1), 110000, 400000),
		}
		info, ok := CalcNextService(records, car, day(2025, 2, 1))
		require.True(t, ok)
		assert.Equal(t, -17, *info.DaysLeft)
		assert.Equal(t, 5000, *info.KmLeft)
		assert.True(t, info.Overdue)
	})

	t.Run("late by mileage only", func(t *testing.T) {
		records := []core.MaintenanceRecord{
			rec("f", core.Refueling, core.NewDate(2024, 5, 1), 116000, 400000),
			planned,
		}
		info, ok := CalcNextService(records, car, day(2024, 6, 1))
		require.True(t, ok)
		assert.Equal(t, -1000, *info.KmLeft)
		assert.Positive(t, *info.DaysLeft)
		assert.True(t, info.Overdue)
	})

	t.Run("only planned record gives mileage from itself", func(t *testing.T) {
		info, ok := CalcNextService([]core.MaintenanceRecord{planned}, car, day(2024, 6, 1))
		require.True(t, ok)
		assert.Equal(t, 15000, *info.KmLeft)
	})

	t.Run("partial day rounds up", func(t *testing.T) {
		now := time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC)
		info, ok := CalcNextService([]core.MaintenanceRecord{planned}, car, now)
		require.True(t, ok)
		assert.Equal(t, 1, *info.DaysLeft)
		assert.False(t, info.Overdue)
	})
}

func TestCalcNextServiceUsesLatestPlanned(t *testing.T) {
	car := core.CarProfile{Make: "Toyota", CustomIntervalKm: intPtr(7500), CustomIntervalMonths: intPtr(6)}
	records := []core.MaintenanceRecord{
		rec("old", core.Planned, core.NewDate(2023, 3, 1), 50000, 0),
		rec("new", core.Planned, core.NewDate(2023, 9, 1), 58000, 0),
		rec("undated", core.Planned, core.Date{}, 0, 0),
	}
	info, ok := CalcNextService(records, car, day(2023, 10, 1))
	require.True(t, ok)
	assert.Equal(t, 65500, info.ByMileageKm)
	assert.Equal(t, "2024-03-01", info.ByDate.String())
	assert.Equal(t, 7500, *info.KmLeft)
}

func TestCalcNextServiceTieKeepsInputOrder(t *testing.T) {
	car := core.CarProfile{Make: "Lada"}
	records := []core.MaintenanceRecord{
		rec("first", core.Planned, core.NewDate(2024, 1, 15), 90000, 0),
		rec("second", core.Planned, core.NewDate(2024, 1, 15), 95000, 0),
	}
	info, ok := CalcNextService(records, car, day(2024, 2, 1))
	require.True(t, ok)
	assert.Equal(t, 105000, info.ByMileageKm)
}

func TestCalcNextServiceMonthEndRollover(t *testing.T) {
	car := core.CarProfile{Make: "Chery"} // 6 months
	records := []core.MaintenanceRecord{rec("p", core.Planned, core.NewDate(2024, 8, 31), 1000, 0)}
	info, ok := CalcNextService(records, car, day(2024, 9, 1))
	require.True(t, ok)
	assert.Equal(t, "2025-03-03", info.ByDate.String())
}

func TestCalcNextServiceUndatedLastPlanned(t *testing.T) {
	car := core.CarProfile{Make: "Lada"}
	records := []core.MaintenanceRecord{rec("p", core.Planned, core.Date{}, 1000, 0)}
	info, ok := CalcNextService(records, car, day(2024, 9, 1))
	require.True(t, ok)
	assert.Nil(t, info.DaysLeft)
	assert.True(t, info.ByDate.IsEmpty())
	assert.Equal(t, 15000, *info.KmLeft)
	assert.False(t, info.Overdue)
}

func TestClassifyService(t *testing.T) {
	cases := []struct {
		name string
		info core.NextServiceInfo
		want ServiceStatus
	}{
		{"plenty left", core.NextServiceInfo{DaysLeft: intPtr(200), KmLeft: intPtr(9000)}, StatusOK},
		{"few days", core.NextServiceInfo{DaysLeft: intPtr(10), KmLeft: intPtr(9000)}, StatusDueSoon},
		{"few km", core.NextServiceInfo{DaysLeft: intPtr(200), KmLeft: intPtr(500)}, StatusDueSoon},
		{"overdue flag", core.NextServiceInfo{DaysLeft: intPtr(-1), KmLeft: intPtr(9000), Overdue: true}, StatusOverdue},
		{"negative km", core.NextServiceInfo{DaysLeft: intPtr(100), KmLeft: intPtr(-5)}, StatusOverdue},
		{"no days", core.NextServiceInfo{KmLeft: intPtr(9000)}, StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyService(tc.info))
		})
	}

	strict := ClassifyService(core.NextServiceInfo{DaysLeft: intPtr(60), KmLeft: intPtr(9000)}, TimeChecker{SoonDays: 90})
	assert.Equal(t, StatusDueSoon, strict)
}
