// Package search implements the multi-source aggregation pipeline: fan-out
// to the source adapters, merge, VIN dedup, filtering and sorting.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"salvage_search/internal/domain"
)

// Config carries the engine's policy knobs.
type Config struct {
	// SourcePriority orders sources for VIN dedup; earlier entries win.
	SourcePriority   []domain.Source
	DefaultOrigin    domain.Coordinate
	LocationCacheTTL time.Duration
}

// Request is one search invocation. Sources empty means all registered
// sources; Origin nil falls back to the configured default coordinate and
// disables max-distance filtering.
type Request struct {
	Query   string
	Filters domain.Filters
	Sources []domain.Source
	Origin  *domain.Coordinate
}

type Engine struct {
	adapters []Adapter
	cache    Cache
	cfg      Config
	logger   *slog.Logger
}

func NewEngine(adapters []Adapter, cache Cache, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		adapters: adapters,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.With("component", "search"),
	}
}

// Search fans out to every selected source in parallel, merges the results
// and runs the pure filter/sort pipeline. One source failing entirely never
// hides the other source's results; failures surface only as entries in
// LocationsWithErrors. Cancellation returns whatever partial results exist,
// without an error: the user navigating away is not a fault.
func (e *Engine) Search(ctx context.Context, req Request) (*domain.SearchResult, error) {
	start := time.Now()

	origin := e.cfg.DefaultOrigin
	hasOrigin := req.Origin != nil
	if hasOrigin {
		origin = *req.Origin
	}

	var (
		mu       sync.Mutex
		merged   []domain.Vehicle
		covered  int
		failures []string
	)

	g := new(errgroup.Group)
	for _, adapter := range e.selectAdapters(req.Sources) {
		g.Go(func() error {
			vehicles, outCovered, outFailures := e.runSource(ctx, adapter, req.Query)

			mu.Lock()
			defer mu.Unlock()
			merged = append(merged, vehicles...)
			covered += outCovered
			failures = append(failures, outFailures...)
			return nil
		})
	}
	_ = g.Wait()

	for i := range merged {
		merged[i].DistanceMi = Distance(origin, domain.Coordinate{
			Latitude:  merged[i].Location.Latitude,
			Longitude: merged[i].Location.Longitude,
		})
	}

	merged = Dedupe(merged, e.cfg.SourcePriority)
	merged = ApplyFilters(merged, req.Filters, hasOrigin)
	Sort(merged, req.Filters.Sort)

	result := &domain.SearchResult{
		Vehicles:            merged,
		Total:               len(merged),
		LocationsCovered:    covered,
		LocationsWithErrors: failures,
		Duration:            time.Since(start),
	}

	if ctx.Err() == nil {
		e.logger.Info("search completed",
			"query", req.Query,
			"total", result.Total,
			"locations_covered", covered,
			"locations_with_errors", len(failures),
			"duration", result.Duration,
		)
	}

	return result, nil
}

// runSource runs discovery plus vehicle fetch for one source. Failures are
// folded into the returned failure list, prefixed "<source>-<code>";
// cancellation yields silent partial results.
func (e *Engine) runSource(ctx context.Context, adapter Adapter, query string) ([]domain.Vehicle, int, []string) {
	src := adapter.ID()

	locations, err := e.locations(ctx, adapter)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, nil
		}
		e.logger.Error("location discovery failed", "source", src, "error", err)
		return nil, 0, []string{fmt.Sprintf("%s-all", src)}
	}

	out, err := adapter.FetchVehicles(ctx, query, locations)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		e.logger.Error("vehicle fetch failed", "source", src, "error", err)
	}

	failures := make([]string, 0, len(out.FailedLocations))
	for _, code := range out.FailedLocations {
		failures = append(failures, fmt.Sprintf("%s-%s", src, code))
	}

	return out.Vehicles, out.LocationsCovered, failures
}

// Locations returns a source's yards, serving from the injected cache when
// fresh. Exposed for the surrounding application's yard picker.
func (e *Engine) Locations(ctx context.Context, src domain.Source) ([]domain.Location, error) {
	for _, adapter := range e.adapters {
		if adapter.ID() == src {
			return e.locations(ctx, adapter)
		}
	}
	return nil, fmt.Errorf("unknown source %q", src)
}

func (e *Engine) locations(ctx context.Context, adapter Adapter) ([]domain.Location, error) {
	key := "locations:" + string(adapter.ID())
	if cached, ok := e.cache.Get(key); ok {
		if locations, ok := cached.([]domain.Location); ok {
			return locations, nil
		}
	}

	locations, err := adapter.FetchLocations(ctx)
	if err != nil {
		return nil, err
	}

	e.cache.Set(key, locations, e.cfg.LocationCacheTTL)
	return locations, nil
}

func (e *Engine) selectAdapters(sources []domain.Source) []Adapter {
	if len(sources) == 0 {
		return e.adapters
	}
	var selected []Adapter
	for _, adapter := range e.adapters {
		for _, src := range sources {
			if adapter.ID() == src {
				selected = append(selected, adapter)
				break
			}
		}
	}
	return selected
}
