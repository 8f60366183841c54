// Package services provides business logic and orchestration services.
//
// This file holds the built-in table of manufacturer service intervals.
// It is data, not logic: lookups are by make only, the model lists are
// informational.
package services

import (
	"strings"

	"carlog/internal/core"
)

const (
	DefaultIntervalKm     = 15000
	DefaultIntervalMonths = 12
)

var serviceIntervals = []core.CatalogEntry{
	{Make: "Lada", Models: []string{"Vesta", "Granta", "Niva", "XRAY", "Largus"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Toyota", Models: []string{"Camry", "RAV4", "Corolla", "Land Cruiser", "Hilux", "Fortuner"}, IntervalKm: 10000, IntervalMonths: 12},
	{Make: "Hyundai", Models: []string{"Solaris", "Tucson", "Creta", "Santa Fe", "Elantra", "i30"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Kia", Models: []string{"Rio", "Sportage", "Ceed", "Sorento", "Optima", "Seltos", "K5"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Volkswagen", Models: []string{"Polo", "Tiguan", "Golf", "Passat", "Touareg", "Jetta", "ID.4"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Skoda", Models: []string{"Octavia", "Rapid", "Kodiaq", "Karoq", "Superb", "Yeti", "Fabia"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Renault", Models: []string{"Duster", "Logan", "Sandero", "Kaptur", "Arkana", "Koleos"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Nissan", Models: []string{"Qashqai", "X-Trail", "Almera", "Juke", "Patrol", "Terrano", "Murano"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "BMW", Models: []string{"3 Series", "5 Series", "X3", "X5", "X1", "7 Series", "X6"}, IntervalKm: 15000, IntervalMonths: 24},
	{Make: "Mercedes-Benz", Models: []string{"C-Class", "E-Class", "GLC", "GLE", "S-Class", "A-Class", "GLA"}, IntervalKm: 15000, IntervalMonths: 24},
	{Make: "Audi", Models: []string{"A3", "A4", "A6", "Q3", "Q5", "Q7", "Q8"}, IntervalKm: 15000, IntervalMonths: 24},
	{Make: "Mazda", Models: []string{"3", "6", "CX-5", "CX-9", "CX-30", "MX-5"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Ford", Models: []string{"Focus", "Kuga", "Mondeo", "Explorer", "EcoSport", "Fiesta"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Chevrolet", Models: []string{"Cruze", "Niva", "Aveo", "Cobalt", "Tracker", "Tahoe"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Mitsubishi", Models: []string{"Outlander", "ASX", "Pajero", "L200", "Eclipse Cross", "Lancer"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Honda", Models: []string{"CR-V", "Civic", "Accord", "HR-V", "Pilot", "Jazz"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Subaru", Models: []string{"Forester", "Outback", "XV", "Impreza", "Legacy", "WRX"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Suzuki", Models: []string{"Vitara", "SX4", "Jimny", "Swift", "Grand Vitara"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Geely", Models: []string{"Atlas", "Coolray", "Tugella", "Monjaro", "Emgrand"}, IntervalKm: 10000, IntervalMonths: 12},
	{Make: "Chery", Models: []string{"Tiggo 4", "Tiggo 7 Pro", "Tiggo 8 Pro", "Arrizo", "Omoda"}, IntervalKm: 10000, IntervalMonths: 6},
	{Make: "Haval", Models: []string{"Jolion", "F7", "H9", "Dargo", "H5"}, IntervalKm: 10000, IntervalMonths: 12},
	{Make: "Changan", Models: []string{"CS35 Plus", "CS55 Plus", "CS75 Plus", "Uni-K", "Uni-V"}, IntervalKm: 10000, IntervalMonths: 6},
	{Make: "GAC", Models: []string{"GS8", "GS5", "GN6", "Empow"}, IntervalKm: 10000, IntervalMonths: 6},
	{Make: "Volvo", Models: []string{"XC60", "XC90", "S60", "S90", "V60", "XC40"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Peugeot", Models: []string{"308", "408", "3008", "5008", "2008", "Partner"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Citroen", Models: []string{"C4", "C5", "Berlingo", "C-Elysee", "C3"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Lexus", Models: []string{"RX", "NX", "ES", "LX", "GX", "IS"}, IntervalKm: 10000, IntervalMonths: 12},
	{Make: "Infiniti", Models: []string{"QX50", "QX60", "QX80", "Q50", "Q60"}, IntervalKm: 15000, IntervalMonths: 12},
	{Make: "Land Rover", Models: []string{"Discovery", "Range Rover", "Defender", "Freelander", "Evoque"}, IntervalKm: 16000, IntervalMonths: 12},
	{Make: "Porsche", Models: []string{"Cayenne", "Macan", "Panamera", "911", "Taycan"}, IntervalKm: 15000, IntervalMonths: 24},
}

// IntervalForMake returns the first catalog entry whose make equals the
// input, ignoring case.
func IntervalForMake(carMake string) (core.CatalogEntry, bool) {
	for _, e := range serviceIntervals {
		if strings.EqualFold(e.Make, carMake) {
			return copyEntry(e), true
		}
	}
	return core.CatalogEntry{}, false
}

// Catalog returns a copy of the full table in declaration order.
func Catalog() []core.CatalogEntry {
	out := make([]core.CatalogEntry, len(serviceIntervals))
	for i, e := range serviceIntervals {
		out[i] = copyEntry(e)
	}
	return out
}

func copyEntry(e core.CatalogEntry) core.CatalogEntry {
	e.Models = append([]string(nil), e.Models...)
	return e
}
