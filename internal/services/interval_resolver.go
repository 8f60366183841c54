package services

import "carlog/internal/core"

// ResolveInterval picks the effective service interval for a car: a complete
// user override first, then the catalog entry for the make, then the global
// default. Missing data never fails, it falls through to the next source.
func ResolveInterval(car core.CarProfile) core.ServiceInterval {
	if km, months, ok := customInterval(car); ok {
		return core.ServiceInterval{IntervalKm: km, IntervalMonths: months, IsCustom: true}
	}
	if e, ok := IntervalForMake(car.Make); ok {
		return core.ServiceInterval{IntervalKm: e.IntervalKm, IntervalMonths: e.IntervalMonths}
	}
	return core.ServiceInterval{IntervalKm: DefaultIntervalKm, IntervalMonths: DefaultIntervalMonths}
}

// customInterval reports the override only when both halves are positive.
func customInterval(car core.CarProfile) (int, int, bool) {
	if car.CustomIntervalKm == nil || car.CustomIntervalMonths == nil {
		return 0, 0, false
	}
	km, months := *car.CustomIntervalKm, *car.CustomIntervalMonths
	if km <= 0 || months <= 0 {
		return 0, 0, false
	}
	return km, months, true
}
