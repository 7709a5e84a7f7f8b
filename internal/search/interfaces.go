package search

import (
	"context"
	"time"

	"salvage_search/internal/domain"
)

// Adapter is the uniform fetch-and-normalize contract one upstream network
// implements. Adapters never let failures escape their boundary: a broken
// location or a failed bulk query comes back inside the FetchOutcome, and
// only cancellation is returned as an error.
type Adapter interface {
	ID() domain.Source
	Name() string
	FetchLocations(ctx context.Context) ([]domain.Location, error)
	FetchVehicles(ctx context.Context, query string, locations []domain.Location) (domain.FetchOutcome, error)
}

// Cache is a key to (value, expiry) store injected into the engine so tests
// can disable caching entirely.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}
