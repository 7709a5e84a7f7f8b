package search

import (
	"sort"

	"salvage_search/internal/domain"
)

// Sort orders vehicles by the chosen key. Sorting is stable: entries that
// compare equal keep their input order.
func Sort(vehicles []domain.Vehicle, order domain.SortOrder) {
	var less func(a, b domain.Vehicle) bool

	switch order {
	case domain.SortOldest:
		less = func(a, b domain.Vehicle) bool { return a.Available.Before(b.Available) }
	case domain.SortYearAsc:
		less = func(a, b domain.Vehicle) bool { return a.Year < b.Year }
	case domain.SortYearDesc:
		less = func(a, b domain.Vehicle) bool { return a.Year > b.Year }
	case domain.SortDistance:
		less = func(a, b domain.Vehicle) bool { return a.DistanceMi < b.DistanceMi }
	case domain.SortNewest:
		fallthrough
	default:
		less = func(a, b domain.Vehicle) bool { return a.Available.After(b.Available) }
	}

	sort.SliceStable(vehicles, func(i, j int) bool {
		return less(vehicles[i], vehicles[j])
	})
}
