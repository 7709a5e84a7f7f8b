package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salvage_search/internal/domain"
)

func testVehicles() []domain.Vehicle {
	return []domain.Vehicle{
		{
			ID: "pyp-1", Year: 2003, Make: "Honda", Model: "Accord", Color: "BLK",
			Available:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Location:   domain.Location{Name: "Monrovia", State: "CA"},
			Source:     domain.SourcePickYourPart,
			DistanceMi: 12,
		},
		{
			ID: "pyp-2", Year: 2011, Make: "Toyota", Model: "Camry", Color: "White",
			Available:  time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			Location:   domain.Location{Name: "Fresno", State: "CA"},
			Source:     domain.SourcePickYourPart,
			DistanceMi: 180,
		},
		{
			ID: "row52-1", Year: 1998, Make: "Honda", Model: "Civic", Color: "green",
			Available:  time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
			Location:   domain.Location{Name: "Portland", State: "OR"},
			Source:     domain.SourceRow52,
			DistanceMi: 700,
		},
	}
}

func filteredIDs(vehicles []domain.Vehicle) []string {
	ids := make([]string, len(vehicles))
	for i, v := range vehicles {
		ids[i] = v.ID
	}
	return ids
}

func TestApplyFilters_EmptyFilterIsIdentity(t *testing.T) {
	vehicles := testVehicles()
	out := ApplyFilters(vehicles, domain.Filters{}, false)
	assert.Equal(t, vehicles, out)
}

func TestApplyFilters_Idempotent(t *testing.T) {
	f := domain.Filters{Makes: []string{"honda"}, YearMin: 2000}
	once := ApplyFilters(testVehicles(), f, false)
	twice := ApplyFilters(once, f, false)
	assert.Equal(t, once, twice)
}

func TestApplyFilters_MakeIsCaseInsensitive(t *testing.T) {
	out := ApplyFilters(testVehicles(), domain.Filters{Makes: []string{"HONDA"}}, false)
	assert.Equal(t, []string{"pyp-1", "row52-1"}, filteredIDs(out))
}

func TestApplyFilters_ColorAliasesMatch(t *testing.T) {
	out := ApplyFilters(testVehicles(), domain.Filters{Colors: []string{"black"}}, false)
	assert.Equal(t, []string{"pyp-1"}, filteredIDs(out))

	out = ApplyFilters(testVehicles(), domain.Filters{Colors: []string{"GRN"}}, false)
	assert.Equal(t, []string{"row52-1"}, filteredIDs(out))
}

func TestApplyFilters_YearRange(t *testing.T) {
	out := ApplyFilters(testVehicles(), domain.Filters{YearMin: 2000, YearMax: 2005}, false)
	assert.Equal(t, []string{"pyp-1"}, filteredIDs(out))
}

func TestApplyFilters_DateWindow(t *testing.T) {
	from := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	out := ApplyFilters(testVehicles(), domain.Filters{DateFrom: &from}, false)
	assert.Equal(t, []string{"pyp-2"}, filteredIDs(out))
}

func TestApplyFilters_StateAndSource(t *testing.T) {
	out := ApplyFilters(testVehicles(), domain.Filters{States: []string{"ca"}}, false)
	assert.Equal(t, []string{"pyp-1", "pyp-2"}, filteredIDs(out))

	out = ApplyFilters(testVehicles(), domain.Filters{Sources: []domain.Source{domain.SourceRow52}}, false)
	assert.Equal(t, []string{"row52-1"}, filteredIDs(out))
}

func TestApplyFilters_MaxDistanceRequiresOrigin(t *testing.T) {
	f := domain.Filters{MaxDistance: 100}

	// Without a caller-supplied origin the ceiling is ignored.
	out := ApplyFilters(testVehicles(), f, false)
	assert.Len(t, out, 3)

	out = ApplyFilters(testVehicles(), f, true)
	assert.Equal(t, []string{"pyp-1"}, filteredIDs(out))
}

func TestFilterByYardNames(t *testing.T) {
	out := FilterByYardNames(testVehicles(), []string{"monrovia", "Portland"})
	assert.Equal(t, []string{"pyp-1", "row52-1"}, filteredIDs(out))

	// Empty allow-list keeps everything.
	out = FilterByYardNames(testVehicles(), nil)
	assert.Len(t, out, 3)
}

func TestCanonicalColor(t *testing.T) {
	assert.Equal(t, "black", CanonicalColor("BLK"))
	assert.Equal(t, "gray", CanonicalColor("Grey"))
	assert.Equal(t, "beige", CanonicalColor(" cream "))
	assert.Equal(t, "magenta", CanonicalColor("Magenta"))
}
