package search

import "salvage_search/internal/domain"

// Dedupe collapses vehicles sharing a VIN down to the entry from the
// highest-priority source. Priority is an ordered source list, earlier wins;
// which source outranks the other is a business policy, so it is configured
// rather than hardcoded. Vehicles with an empty VIN are never merged with
// each other. Output preserves input order of the surviving entries, which
// makes the operation idempotent and deterministic for any input order.
func Dedupe(vehicles []domain.Vehicle, priority []domain.Source) []domain.Vehicle {
	rank := make(map[domain.Source]int, len(priority))
	for i, src := range priority {
		rank[src] = i
	}
	rankOf := func(v domain.Vehicle) int {
		if r, ok := rank[v.Source]; ok {
			return r
		}
		return len(priority)
	}

	type slot struct {
		index int
		rank  int
	}
	byVIN := make(map[string]slot)
	keep := make([]bool, len(vehicles))

	for i, v := range vehicles {
		if v.VIN == "" {
			keep[i] = true
			continue
		}
		existing, seen := byVIN[v.VIN]
		if !seen || rankOf(v) < existing.rank {
			if seen {
				keep[existing.index] = false
			}
			byVIN[v.VIN] = slot{index: i, rank: rankOf(v)}
			keep[i] = true
		}
	}

	out := make([]domain.Vehicle, 0, len(vehicles))
	for i, v := range vehicles {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}
