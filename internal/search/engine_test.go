package search

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salvage_search/internal/domain"
)

// stubAdapter is a canned-response Adapter for engine tests.
type stubAdapter struct {
	id            domain.Source
	locations     []domain.Location
	locationsErr  error
	locationCalls int
	outcome       domain.FetchOutcome
	fetchErr      error
}

func (a *stubAdapter) ID() domain.Source { return a.id }
func (a *stubAdapter) Name() string      { return string(a.id) }

func (a *stubAdapter) FetchLocations(context.Context) ([]domain.Location, error) {
	a.locationCalls++
	return a.locations, a.locationsErr
}

func (a *stubAdapter) FetchVehicles(context.Context, string, []domain.Location) (domain.FetchOutcome, error) {
	return a.outcome, a.fetchErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func defaultEngineConfig() Config {
	return Config{
		SourcePriority:   domain.AllSources(),
		DefaultOrigin:    domain.Coordinate{Latitude: 39.8283, Longitude: -98.5795},
		LocationCacheTTL: 10 * time.Minute,
	}
}

func TestEngine_Search_MergesSources(t *testing.T) {
	pyp := &stubAdapter{
		id:        domain.SourcePickYourPart,
		locations: []domain.Location{{Code: "1281", Source: domain.SourcePickYourPart}},
		outcome: domain.FetchOutcome{
			Vehicles:         []domain.Vehicle{{ID: "pyp-1", VIN: "VINA", Source: domain.SourcePickYourPart}},
			LocationsCovered: 1,
		},
	}
	row52 := &stubAdapter{
		id:        domain.SourceRow52,
		locations: []domain.Location{{Code: "77", Source: domain.SourceRow52}},
		outcome: domain.FetchOutcome{
			Vehicles:         []domain.Vehicle{{ID: "row52-1", VIN: "VINB", Source: domain.SourceRow52}},
			LocationsCovered: 1,
		},
	}

	e := NewEngine([]Adapter{pyp, row52}, NopCache{}, defaultEngineConfig(), testLogger())

	result, err := e.Search(context.Background(), Request{Query: "accord"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.LocationsCovered)
	assert.Empty(t, result.LocationsWithErrors)
}

func TestEngine_Search_PartialLocationFailure(t *testing.T) {
	pyp := &stubAdapter{
		id: domain.SourcePickYourPart,
		locations: []domain.Location{
			{Code: "1281"}, {Code: "1282"}, {Code: "1283"},
		},
		outcome: domain.FetchOutcome{
			Vehicles: []domain.Vehicle{
				{ID: "pyp-1", Source: domain.SourcePickYourPart},
				{ID: "pyp-2", Source: domain.SourcePickYourPart},
			},
			LocationsCovered: 2,
			FailedLocations:  []string{"1283"},
		},
	}

	e := NewEngine([]Adapter{pyp}, NopCache{}, defaultEngineConfig(), testLogger())

	result, err := e.Search(context.Background(), Request{Query: "accord"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.LocationsCovered)
	assert.Equal(t, []string{"pyp-1283"}, result.LocationsWithErrors)
}

func TestEngine_Search_OneSourceDownKeepsTheOther(t *testing.T) {
	pyp := &stubAdapter{
		id:        domain.SourcePickYourPart,
		locations: []domain.Location{{Code: "1281"}},
		outcome: domain.FetchOutcome{
			Vehicles:         []domain.Vehicle{{ID: "pyp-1", Source: domain.SourcePickYourPart}},
			LocationsCovered: 1,
		},
	}
	row52 := &stubAdapter{
		id:           domain.SourceRow52,
		locationsErr: errors.New("connection refused"),
	}

	e := NewEngine([]Adapter{pyp, row52}, NopCache{}, defaultEngineConfig(), testLogger())

	result, err := e.Search(context.Background(), Request{Query: "accord"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, []string{"row52-all"}, result.LocationsWithErrors)
}

func TestEngine_Search_DedupsAcrossSourcesByPriority(t *testing.T) {
	vin := "1HGCM82633A004352"
	pyp := &stubAdapter{
		id:        domain.SourcePickYourPart,
		locations: []domain.Location{{Code: "1281"}},
		outcome: domain.FetchOutcome{
			Vehicles:         []domain.Vehicle{{ID: "pyp-1", VIN: vin, Source: domain.SourcePickYourPart}},
			LocationsCovered: 1,
		},
	}
	row52 := &stubAdapter{
		id:        domain.SourceRow52,
		locations: []domain.Location{{Code: "77"}},
		outcome: domain.FetchOutcome{
			Vehicles:         []domain.Vehicle{{ID: "row52-1", VIN: vin, Source: domain.SourceRow52}},
			LocationsCovered: 1,
		},
	}

	e := NewEngine([]Adapter{pyp, row52}, NopCache{}, defaultEngineConfig(), testLogger())

	result, err := e.Search(context.Background(), Request{Query: "accord"})
	require.NoError(t, err)

	require.Equal(t, 1, result.Total)
	assert.Equal(t, "pyp-1", result.Vehicles[0].ID)
}

func TestEngine_Search_SourceSubset(t *testing.T) {
	pyp := &stubAdapter{
		id:        domain.SourcePickYourPart,
		locations: []domain.Location{{Code: "1281"}},
		outcome: domain.FetchOutcome{
			Vehicles:         []domain.Vehicle{{ID: "pyp-1", Source: domain.SourcePickYourPart}},
			LocationsCovered: 1,
		},
	}
	row52 := &stubAdapter{id: domain.SourceRow52}

	e := NewEngine([]Adapter{pyp, row52}, NopCache{}, defaultEngineConfig(), testLogger())

	result, err := e.Search(context.Background(), Request{
		Query:   "accord",
		Sources: []domain.Source{domain.SourcePickYourPart},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Zero(t, row52.locationCalls)
}

func TestEngine_Search_AttachesDistanceFromOrigin(t *testing.T) {
	pyp := &stubAdapter{
		id:        domain.SourcePickYourPart,
		locations: []domain.Location{{Code: "1281"}},
		outcome: domain.FetchOutcome{
			Vehicles: []domain.Vehicle{{
				ID:       "pyp-1",
				Source:   domain.SourcePickYourPart,
				Location: domain.Location{Latitude: 37.7749, Longitude: -122.4194},
			}},
			LocationsCovered: 1,
		},
	}

	e := NewEngine([]Adapter{pyp}, NopCache{}, defaultEngineConfig(), testLogger())

	origin := domain.Coordinate{Latitude: 34.0522, Longitude: -118.2437}
	result, err := e.Search(context.Background(), Request{Query: "accord", Origin: &origin})
	require.NoError(t, err)

	require.Equal(t, 1, result.Total)
	assert.InDelta(t, 347, result.Vehicles[0].DistanceMi, 5)
}

func TestEngine_Search_CancellationYieldsPartialWithoutError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pyp := &stubAdapter{
		id:           domain.SourcePickYourPart,
		locationsErr: context.Canceled,
	}

	e := NewEngine([]Adapter{pyp}, NopCache{}, defaultEngineConfig(), testLogger())

	result, err := e.Search(ctx, Request{Query: "accord"})
	require.NoError(t, err)

	assert.Zero(t, result.Total)
	assert.Empty(t, result.LocationsWithErrors)
}

func TestEngine_Locations_CachesDiscovery(t *testing.T) {
	pyp := &stubAdapter{
		id:        domain.SourcePickYourPart,
		locations: []domain.Location{{Code: "1281"}},
	}

	e := NewEngine([]Adapter{pyp}, NewMemoryCache(), defaultEngineConfig(), testLogger())

	ctx := context.Background()
	first, err := e.Locations(ctx, domain.SourcePickYourPart)
	require.NoError(t, err)
	second, err := e.Locations(ctx, domain.SourcePickYourPart)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, pyp.locationCalls)

	_, err = e.Locations(ctx, domain.Source("nope"))
	assert.Error(t, err)
}
