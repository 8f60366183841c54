package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlog/internal/core"
)

func TestMonthlyTotalsEmpty(t *testing.T) {
	got := MonthlyTotals(nil, 3, day(2024, 2, 10))
	require.Len(t, got, 3)

	keys := []string{got[0].Key, got[1].Key, got[2].Key}
	labels := []string{got[0].Label, got[1].Label, got[2].Label}
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02"}, keys)
	assert.Equal(t, []string{"Dec 23", "Jan 24", "Feb 24"}, labels)
	for _, m := range got {
		assert.Zero(t, m.Total.Cents)
	}

	assert.Empty(t, MonthlyTotals(nil, 0, day(2024, 2, 10)))
}

func TestMonthlyTotalsBucketsAndWindow(t *testing.T) {
	records := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 1, 1), 0, 10000),
		rec("b", core.Refueling, core.NewDate(2024, 1, 31), 0, 2500),
		rec("c", core.Unplanned, core.NewDate(2024, 3, 15), 0, 7000),
		rec("old", core.Planned, core.NewDate(2023, 3, 15), 0, 99900),
		rec("undated", core.Planned, core.Date{}, 0, 12300),
	}
	now := day(2024, 3, 20)
	got := MonthlyTotals(records, 3, now)
	require.Len(t, got, 3)
	assert.Equal(t, int64(12500), got[0].Total.Cents)
	assert.Equal(t, int64(0), got[1].Total.Cents)
	assert.Equal(t, int64(7000), got[2].Total.Cents)
	assert.Equal(t, 2024, got[2].Year)

	var bucketSum int64
	for _, m := range got {
		bucketSum += m.Total.Cents
	}
	inWindow := records[:3]
	assert.Equal(t, TotalSpent(inWindow).Cents, bucketSum)

	byType := MonthlyTotalsByType(records, 3, now)
	require.Len(t, byType, 3)
	assert.Equal(t, int64(10000), byType[0].Planned.Cents)
	assert.Equal(t, int64(2500), byType[0].Refueling.Cents)
	assert.Equal(t, int64(7000), byType[2].Unplanned.Cents)
	assert.Equal(t, got[2].Label, byType[2].Label)
}

func TestYearlyTotals(t *testing.T) {
	records := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 5, 1), 0, 100),
		rec("b", core.Planned, core.NewDate(2022, 5, 1), 0, 200),
		rec("c", core.Planned, core.NewDate(2024, 1, 1), 0, 300),
		rec("d", core.Future, core.Date{}, 0, 0),
	}
	assert.Equal(t, []core.YearlyTotal{
		{Year: 2022, Total: core.Money{Cents: 200}},
		{Year: 2024, Total: core.Money{Cents: 400}},
	}, YearlyTotals(records))
	assert.Empty(t, YearlyTotals(nil))
}

func TestAvgPerMonth(t *testing.T) {
	assert.Zero(t, AvgPerMonth(nil).Cents)

	single := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 1, 5), 0, 10000),
		rec("b", core.Refueling, core.NewDate(2024, 1, 25), 0, 2345),
	}
	assert.Equal(t, int64(12300), AvgPerMonth(single).Cents)

	span := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 3, 20), 0, 20000),
		rec("b", core.Planned, core.NewDate(2024, 1, 5), 0, 10000),
	}
	assert.Equal(t, int64(10000), AvgPerMonth(span).Cents)

	crossYear := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2023, 11, 1), 0, 40000),
		rec("b", core.Planned, core.NewDate(2024, 2, 1), 0, 0),
	}
	assert.Equal(t, int64(10000), AvgPerMonth(crossYear).Cents)
}

func TestAvgPerYear(t *testing.T) {
	assert.Zero(t, AvgPerYear(nil).Cents)

	short := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 1, 5), 0, 10050),
		rec("b", core.Planned, core.NewDate(2024, 12, 5), 0, 20000),
	}
	assert.Equal(t, int64(30100), AvgPerYear(short).Cents)

	long := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2022, 1, 10), 0, 100000),
		rec("b", core.Planned, core.NewDate(2022, 6, 1), 0, 50000),
		rec("c", core.Planned, core.NewDate(2023, 1, 10), 0, 30000),
		rec("d", core.Planned, core.NewDate(2023, 5, 1), 0, 70000),
		rec("partial", core.Planned, core.NewDate(2024, 2, 1), 0, 999900),
	}
	// Two full windows: 1500 and 1000. The 2024 record falls in the partial window.
	assert.Equal(t, int64(125000), AvgPerYear(long).Cents)
}

func TestCategoryTotals(t *testing.T) {
	records := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 1, 5), 0, 1001),
		rec("b", core.Unplanned, core.NewDate(2024, 1, 6), 0, 2002),
		rec("c", core.Refueling, core.NewDate(2024, 1, 7), 0, 3003),
		rec("d", core.Refueling, core.NewDate(2024, 1, 8), 0, 4),
	}
	assert.Equal(t, int64(1001), PlannedTotal(records).Cents)
	assert.Equal(t, int64(2002), UnplannedTotal(records).Cents)
	assert.Equal(t, int64(3007), RefuelingTotal(records).Cents)
	assert.Equal(t, int64(6010), TotalSpent(records).Cents)
	assert.Equal(t, 4, RecordCount(records))
	assert.Zero(t, TotalSpent(nil).Cents)
}

func TestCostPerDistance(t *testing.T) {
	_, ok := CostPerDistance(nil)
	assert.False(t, ok)

	_, ok = CostPerDistance([]core.MaintenanceRecord{rec("a", core.Planned, core.NewDate(2024, 1, 1), 10000, 500000)})
	assert.False(t, ok)

	_, ok = CostPerDistance([]core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 1, 1), 10000, 100),
		rec("b", core.Planned, core.NewDate(2024, 2, 1), 10000, 100),
	})
	assert.False(t, ok)

	perKm, ok := CostPerDistance([]core.MaintenanceRecord{
		rec("b", core.Refueling, core.NewDate(2024, 2, 1), 20000, 200000),
		rec("a", core.Planned, core.NewDate(2024, 1, 1), 10000, 300000),
	})
	require.True(t, ok)
	assert.InDelta(t, 0.50, perKm, 1e-9)

	perKm, ok = CostPerDistance([]core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 1, 1), 0, 100000),
		rec("b", core.Planned, core.NewDate(2024, 2, 1), 3000, 0),
	})
	require.True(t, ok)
	assert.InDelta(t, 0.33, perKm, 1e-9)
}

func TestSummarizeDropsFutureRecords(t *testing.T) {
	records := []core.MaintenanceRecord{
		rec("a", core.Planned, core.NewDate(2024, 1, 5), 10000, 300000),
		rec("b", core.Refueling, core.NewDate(2024, 2, 5), 20000, 200000),
		rec("f", core.Future, core.Date{}, 0, 777700),
	}
	s := Summarize(records, 2, day(2024, 2, 20))
	assert.Equal(t, 2, s.RecordCount)
	assert.Equal(t, int64(500000), s.TotalSpent.Cents)
	assert.Equal(t, int64(300000), s.PlannedTotal.Cents)
	assert.Equal(t, int64(200000), s.RefuelingTotal.Cents)
	assert.Zero(t, s.UnplannedTotal.Cents)
	assert.Equal(t, int64(250000), s.AvgPerMonth.Cents)
	assert.Equal(t, int64(500000), s.AvgPerYear.Cents)
	require.Len(t, s.Monthly, 2)
	require.Len(t, s.MonthlyByType, 2)
	require.Len(t, s.Yearly, 1)
	require.NotNil(t, s.CostPerKm)
	assert.InDelta(t, 0.5, *s.CostPerKm, 1e-9)

	empty := Summarize(nil, 12, day(2024, 2, 20))
	assert.Nil(t, empty.CostPerKm)
	assert.Len(t, empty.Monthly, 12)
	assert.Zero(t, empty.AvgPerYear.Cents)
}
