package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salvage_search/internal/domain"
)

func TestSort_NewestIsDefault(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
	vehicles := []domain.Vehicle{
		{ID: "a", Available: day(1)},
		{ID: "b", Available: day(20)},
		{ID: "c", Available: day(10)},
	}

	Sort(vehicles, "")

	assert.Equal(t, "b", vehicles[0].ID)
	assert.Equal(t, "c", vehicles[1].ID)
	assert.Equal(t, "a", vehicles[2].ID)
}

func TestSort_Orders(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
	base := []domain.Vehicle{
		{ID: "a", Year: 2011, Available: day(1), DistanceMi: 300},
		{ID: "b", Year: 1998, Available: day(20), DistanceMi: 10},
		{ID: "c", Year: 2003, Available: day(10), DistanceMi: 90},
	}

	tests := []struct {
		order domain.SortOrder
		want  []string
	}{
		{domain.SortNewest, []string{"b", "c", "a"}},
		{domain.SortOldest, []string{"a", "c", "b"}},
		{domain.SortYearAsc, []string{"b", "c", "a"}},
		{domain.SortYearDesc, []string{"a", "c", "b"}},
		{domain.SortDistance, []string{"b", "c", "a"}},
	}

	for _, tt := range tests {
		vehicles := make([]domain.Vehicle, len(base))
		copy(vehicles, base)

		Sort(vehicles, tt.order)

		got := make([]string, len(vehicles))
		for i, v := range vehicles {
			got[i] = v.ID
		}
		assert.Equal(t, tt.want, got, "order %q", tt.order)
	}
}

func TestSort_StableForEqualKeys(t *testing.T) {
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	vehicles := []domain.Vehicle{
		{ID: "first", Available: at},
		{ID: "second", Available: at},
		{ID: "third", Available: at},
	}

	Sort(vehicles, domain.SortNewest)

	assert.Equal(t, "first", vehicles[0].ID)
	assert.Equal(t, "second", vehicles[1].ID)
	assert.Equal(t, "third", vehicles[2].ID)
}
