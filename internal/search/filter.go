package search

import (
	"strings"

	"salvage_search/internal/domain"
)

// ApplyFilters is a pure projection of the merged vehicle list. All criteria
// are optional and AND-combined. The max-distance ceiling only applies when
// the caller supplied an origin; a defaulted origin would turn it into a
// distance-from-Kansas filter nobody asked for. Salvage-yard name membership
// is deliberately not handled here; the alert engine applies it post-hoc.
func ApplyFilters(vehicles []domain.Vehicle, f domain.Filters, hasOrigin bool) []domain.Vehicle {
	out := make([]domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if !matches(v, f, hasOrigin) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matches(v domain.Vehicle, f domain.Filters, hasOrigin bool) bool {
	if len(f.Sources) > 0 && !containsSource(f.Sources, v.Source) {
		return false
	}
	if len(f.Makes) > 0 && !containsFold(f.Makes, v.Make) {
		return false
	}
	if len(f.Models) > 0 && !containsFold(f.Models, v.Model) {
		return false
	}
	if len(f.Colors) > 0 && !containsColor(f.Colors, v.Color) {
		return false
	}
	if len(f.States) > 0 && !containsFold(f.States, v.Location.State) {
		return false
	}
	if f.YearMin > 0 && v.Year < f.YearMin {
		return false
	}
	if f.YearMax > 0 && v.Year > f.YearMax {
		return false
	}
	if f.DateFrom != nil && v.Available.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && v.Available.After(*f.DateTo) {
		return false
	}
	if f.MaxDistance > 0 && hasOrigin && v.DistanceMi > f.MaxDistance {
		return false
	}
	return true
}

// FilterByYardNames keeps vehicles whose yard name is in the allow-list.
// Saved searches support it, the aggregation layer does not, so the alert
// engine applies it after the fact.
func FilterByYardNames(vehicles []domain.Vehicle, yards []string) []domain.Vehicle {
	if len(yards) == 0 {
		return vehicles
	}
	out := make([]domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if containsFold(yards, v.Location.Name) {
			out = append(out, v)
		}
	}
	return out
}

func containsSource(list []domain.Source, s domain.Source) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func containsColor(list []string, c string) bool {
	canon := CanonicalColor(c)
	for _, item := range list {
		if CanonicalColor(item) == canon {
			return true
		}
	}
	return false
}
