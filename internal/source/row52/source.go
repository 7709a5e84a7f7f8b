// Package row52 queries the Row52 OData API. Unlike the scrape source it has
// no per-location fan-out: one bulk query covers every yard, so a failure is
// whole-source and coverage is computed from the locations actually seen.
package row52

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"salvage_search/internal/config"
	"salvage_search/internal/domain"
	"salvage_search/internal/fetch"
)

const (
	SourceID   = domain.SourceRow52
	SourceName = "Row52"

	// bulkFailureCode marks a whole-source failure in locationsWithErrors.
	bulkFailureCode = "all"
)

type Source struct {
	retrier *fetch.Retrier
	baseURL string
	logger  *slog.Logger
}

func New(cfg config.Row52Config, logger *slog.Logger) *Source {
	log := logger.With("source", SourceID)
	return &Source{
		retrier: fetch.NewRetrier(&http.Client{Timeout: cfg.Timeout}, cfg.Retry, log),
		baseURL: cfg.BaseURL,
		logger:  log,
	}
}

func (s *Source) ID() domain.Source {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

func (s *Source) FetchLocations(ctx context.Context) ([]domain.Location, error) {
	q := query{
		resource: "Locations",
		selects: []string{
			"Id", "Name", "Address1", "City", "StateCode",
			"PostalCode", "Phone", "Latitude", "Longitude",
		},
		orderBy: "Name asc",
		top:     resultCap,
	}

	var resp locationsResponse
	if err := s.get(ctx, q.encode(s.baseURL), &resp); err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}

	locations := make([]domain.Location, 0, len(resp.Value))
	for _, rec := range resp.Value {
		locations = append(locations, s.transformLocation(rec))
	}
	return locations, nil
}

// FetchVehicles runs the single bulk query. Known locations resolve through
// the lookup built from the discovery pass; unknown ones are constructed
// inline from the embedded record.
func (s *Source) FetchVehicles(ctx context.Context, searchQuery string, locations []domain.Location) (domain.FetchOutcome, error) {
	lookup := make(map[string]domain.Location, len(locations))
	for _, loc := range locations {
		lookup[loc.Code] = loc
	}

	q := query{
		resource: "Vehicles",
		selects: []string{
			"Id", "Vin", "Year", "MakeName", "ModelName", "Color",
			"StockNumber", "Section", "Row", "Space", "DateAdded", "LocationId",
		},
		filter:  makeModelFilter(searchQuery),
		expand:  []string{"Location", "Images"},
		orderBy: "DateAdded desc",
		top:     resultCap,
	}

	var resp vehiclesResponse
	if err := s.get(ctx, q.encode(s.baseURL), &resp); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.FetchOutcome{}, err
		}
		s.logger.Error("bulk vehicle fetch failed", "error", err)
		return domain.FetchOutcome{FailedLocations: []string{bulkFailureCode}}, nil
	}

	out := domain.FetchOutcome{
		Vehicles: make([]domain.Vehicle, 0, len(resp.Value)),
	}
	covered := make(map[string]struct{})
	for _, rec := range resp.Value {
		loc, ok := s.resolveLocation(rec, lookup)
		if !ok {
			continue
		}
		covered[loc.Code] = struct{}{}
		out.Vehicles = append(out.Vehicles, s.transformVehicle(rec, loc))
	}
	out.LocationsCovered = len(covered)

	return out, nil
}

func (s *Source) get(ctx context.Context, url string, v any) error {
	resp, err := s.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "SalvageSearch/1.0")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *Source) resolveLocation(rec vehicleRecord, lookup map[string]domain.Location) (domain.Location, bool) {
	if loc, ok := lookup[rec.LocationID]; ok {
		return loc, true
	}
	if rec.Location == nil {
		s.logger.Warn("vehicle without resolvable location", "vehicle", rec.ID)
		return domain.Location{}, false
	}
	loc := s.transformLocation(*rec.Location)
	lookup[loc.Code] = loc
	return loc, true
}

func (s *Source) transformLocation(rec locationRecord) domain.Location {
	return domain.Location{
		Code:         rec.ID,
		Name:         rec.Name,
		Address:      rec.Address1,
		City:         rec.City,
		State:        rec.StateCode,
		Zip:          rec.PostalCode,
		Phone:        rec.Phone,
		Latitude:     rec.Latitude,
		Longitude:    rec.Longitude,
		Source:       SourceID,
		InventoryURL: fmt.Sprintf("%s/locations/%s", publicSite, rec.ID),
		PartsURL:     fmt.Sprintf("%s/locations/%s/parts", publicSite, rec.ID),
		PricesURL:    fmt.Sprintf("%s/locations/%s/prices", publicSite, rec.ID),
	}
}

const publicSite = "https://row52.com"

func (s *Source) transformVehicle(rec vehicleRecord, loc domain.Location) domain.Vehicle {
	available, err := time.Parse(time.RFC3339, rec.DateAdded)
	if err != nil {
		available = time.Now()
	}

	images := make([]string, 0, len(rec.Images))
	for _, img := range rec.Images {
		if img.URL != "" {
			images = append(images, img.URL)
		}
	}

	return domain.Vehicle{
		ID:          fmt.Sprintf("%s-%s", SourceID, rec.ID),
		Year:        rec.Year,
		Make:        rec.MakeName,
		Model:       rec.ModelName,
		Color:       rec.Color,
		VIN:         strings.ToUpper(rec.VIN),
		StockNumber: rec.StockNumber,
		Available:   available,
		Section:     rec.Section,
		Row:         rec.Row,
		Space:       rec.Space,
		ImageURLs:   images,
		DetailsURL: fmt.Sprintf("%s/vehicles/%d-%s-%s/%s", publicSite,
			rec.Year, domain.Slugify(rec.MakeName), domain.Slugify(rec.ModelName), rec.ID),
		PartsURL:  loc.PartsURL,
		PricesURL: loc.PricesURL,
		Location:  loc,
		Source:    SourceID,
	}
}
