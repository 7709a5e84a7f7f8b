package pickyourpart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"salvage_search/internal/config"
	"salvage_search/internal/domain"
	"salvage_search/internal/fetch"
)

const (
	SourceID   = domain.SourcePickYourPart
	SourceName = "LKQ Pick Your Part"

	userAgent = "SalvageSearch/1.0"
)

// Source scrapes per-location inventory pages. The upstream only answers its
// AJAX inventory endpoint for a session that has first loaded the location
// page, so each fetch is a two-step session + query exchange.
type Source struct {
	retrier       *fetch.Retrier
	gate          *fetch.Gate
	politeness    *fetch.Politeness
	baseURL       *url.URL
	locationsFile string
	parser        *parser
	logger        *slog.Logger
}

func New(cfg config.PickYourPartConfig, logger *slog.Logger) (*Source, error) {
	root, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	log := logger.With("source", SourceID)
	client := &http.Client{Timeout: cfg.Timeout}

	return &Source{
		retrier:       fetch.NewRetrier(client, cfg.Retry, log),
		gate:          fetch.NewGate(cfg.Concurrency),
		politeness:    fetch.NewPoliteness(cfg.RequestsPerSec, cfg.FailureDelay),
		baseURL:       root,
		locationsFile: cfg.LocationsFile,
		parser:        &parser{root: root, now: time.Now},
		logger:        log,
	}, nil
}

func (s *Source) ID() domain.Source {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

// FetchLocations returns the configured yard list. The upstream publishes a
// fixed set of yards, shipped as a YAML file rather than re-scraped.
func (s *Source) FetchLocations(ctx context.Context) ([]domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.locationsFile)
	if err != nil {
		return nil, fmt.Errorf("read yard list: %w", err)
	}

	var file yardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse yard list: %w", err)
	}

	locations := make([]domain.Location, 0, len(file.Yards))
	for _, y := range file.Yards {
		locations = append(locations, domain.Location{
			Code:         y.Code,
			Name:         y.Name,
			Address:      y.Address,
			City:         y.City,
			State:        y.State,
			Zip:          y.Zip,
			Phone:        y.Phone,
			Latitude:     y.Latitude,
			Longitude:    y.Longitude,
			Source:       SourceID,
			InventoryURL: fmt.Sprintf("%s/inventory/%s", s.baseURL, y.Code),
			PartsURL:     fmt.Sprintf("%s/parts/%s", s.baseURL, y.Code),
			PricesURL:    fmt.Sprintf("%s/prices/%s", s.baseURL, y.Code),
		})
	}

	return locations, nil
}

// FetchVehicles fans out one inventory query per location through the
// concurrency gate. A failed location is recorded, not fatal; only
// cancellation surfaces as an error, with whatever partial results exist.
func (s *Source) FetchVehicles(ctx context.Context, query string, locations []domain.Location) (domain.FetchOutcome, error) {
	var (
		mu  sync.Mutex
		out domain.FetchOutcome
	)

	g := new(errgroup.Group)
	for _, loc := range locations {
		g.Go(func() error {
			vehicles, err := s.fetchLocation(ctx, query, loc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				s.logger.Error("location fetch failed",
					"location", loc.Code,
					"error", err,
				)
				out.FailedLocations = append(out.FailedLocations, loc.Code)
				return nil
			}
			out.Vehicles = append(out.Vehicles, vehicles...)
			return nil
		})
	}
	_ = g.Wait()

	out.LocationsCovered = len(locations) - len(out.FailedLocations)

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Source) fetchLocation(ctx context.Context, query string, loc domain.Location) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle

	err := s.gate.Run(ctx, func(ctx context.Context) error {
		if err := s.politeness.Wait(ctx); err != nil {
			return err
		}

		cookie, err := s.openSession(ctx, loc)
		if err != nil {
			s.politeness.BackOff(ctx)
			return fmt.Errorf("open session: %w", err)
		}

		raws, err := s.queryInventory(ctx, query, loc, cookie)
		if err != nil {
			s.politeness.BackOff(ctx)
			return fmt.Errorf("query inventory: %w", err)
		}

		vehicles = s.transform(raws, loc)
		return nil
	})

	return vehicles, err
}

// openSession loads the location inventory page and rebuilds its Set-Cookie
// values into the Cookie header the AJAX endpoint requires.
func (s *Source) openSession(ctx context.Context, loc domain.Location) (string, error) {
	resp, err := s.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.InventoryURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	cookie := joinCookieHeader(resp.Header.Values("Set-Cookie"))
	if cookie == "" {
		return "", fmt.Errorf("no session cookies from %s", loc.InventoryURL)
	}
	return cookie, nil
}

func (s *Source) queryInventory(ctx context.Context, query string, loc domain.Location, cookie string) ([]rawVehicle, error) {
	ajaxURL := fmt.Sprintf("%s/inventory/%s/search?filter=%s",
		s.baseURL, loc.Code, url.QueryEscape(query))

	resp, err := s.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ajaxURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Cookie", cookie)
		req.Header.Set("Referer", loc.InventoryURL)
		req.Header.Set("Origin", s.baseURL.String())
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return s.parser.parseInventory(resp.Body)
}

// transform maps parsed rows into the canonical vehicle shape. IDs are
// source-prefixed so they stay unique after the cross-source merge.
func (s *Source) transform(raws []rawVehicle, loc domain.Location) []domain.Vehicle {
	vehicles := make([]domain.Vehicle, 0, len(raws))
	for _, r := range raws {
		vehicles = append(vehicles, domain.Vehicle{
			ID:          fmt.Sprintf("%s-%s", SourceID, r.RowID),
			Year:        r.Year,
			Make:        r.Make,
			Model:       r.Model,
			Color:       r.Color,
			VIN:         strings.ToUpper(r.VIN),
			StockNumber: r.StockNumber,
			Available:   r.Available,
			Section:     r.Section,
			Row:         r.Row,
			Space:       r.Space,
			ImageURLs:   r.ImageURLs,
			DetailsURL:  fmt.Sprintf("%s/vehicle/%s", loc.InventoryURL, r.RowID),
			PartsURL: fmt.Sprintf("%s/%d-%s-%s", loc.PartsURL,
				r.Year, domain.Slugify(r.Make), domain.Slugify(r.Model)),
			PricesURL: loc.PricesURL,
			Location:  loc,
			Source:    SourceID,
		})
	}
	return vehicles
}
