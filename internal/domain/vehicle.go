package domain

import "time"

// Source identifies an upstream salvage-yard network.
type Source string

const (
	SourcePickYourPart Source = "pyp"
	SourceRow52        Source = "row52"
)

// AllSources lists every supported upstream, in default priority order.
func AllSources() []Source {
	return []Source{SourcePickYourPart, SourceRow52}
}

// Location is a physical yard. locationCode is unique within a source only;
// two sources may assign different codes to the same physical yard.
type Location struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Phone        string  `json:"phone"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Source       Source  `json:"source"`
	InventoryURL string  `json:"inventoryUrl"`
	PartsURL     string  `json:"partsUrl"`
	PricesURL    string  `json:"pricesUrl"`
}

// Vehicle is one inventory item, constructed fresh per aggregation run and
// never persisted except as an ID list inside a saved-search snapshot.
// ID is source-prefixed so it stays unique after a cross-source merge; VIN is
// the dedup key and may be empty for malformed scraped records.
type Vehicle struct {
	ID          string    `json:"id"`
	Year        int       `json:"year"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Color       string    `json:"color"`
	VIN         string    `json:"vin"`
	StockNumber string    `json:"stockNumber"`
	Available   time.Time `json:"available"`
	Section     string    `json:"section"`
	Row         string    `json:"row"`
	Space       string    `json:"space"`
	ImageURLs   []string  `json:"imageUrls"`
	DetailsURL  string    `json:"detailsUrl"`
	PartsURL    string    `json:"partsUrl"`
	PricesURL   string    `json:"pricesUrl"`
	Location    Location  `json:"location"`
	Source      Source    `json:"source"`
	DistanceMi  float64   `json:"distanceMi"`
}

// SearchResult is the ephemeral output of one aggregation run.
type SearchResult struct {
	Vehicles            []Vehicle     `json:"vehicles"`
	Total               int           `json:"total"`
	LocationsCovered    int           `json:"locationsCovered"`
	LocationsWithErrors []string      `json:"locationsWithErrors"`
	Duration            time.Duration `json:"duration"`
}

// Coordinate is a caller-supplied search origin.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// FetchOutcome reports one source's result for a single search. Failed
// locations carry bare codes; the aggregation engine prefixes the source tag.
// A source without per-location fan-out reports a single failure entry and
// computes coverage from the locations present among returned vehicles.
type FetchOutcome struct {
	Vehicles         []Vehicle
	LocationsCovered int
	FailedLocations  []string
}
