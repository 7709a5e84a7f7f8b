package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SortOrder selects the ordering of a merged result set.
type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortOldest   SortOrder = "oldest"
	SortYearAsc  SortOrder = "year-asc"
	SortYearDesc SortOrder = "year-desc"
	SortDistance SortOrder = "distance"
)

// FilterBagVersion is the current serialized filter schema version. Rows
// written before a field existed deserialize with that field zero-valued.
const FilterBagVersion = 1

// Filters is the user filter bag. All fields are optional and AND-combined.
// It is persisted as JSON inside saved_searches, so the shape is versioned.
type Filters struct {
	Version      int        `json:"version"`
	Sources      []Source   `json:"sources,omitempty"`
	Makes        []string   `json:"makes,omitempty"`
	Models       []string   `json:"models,omitempty"`
	Colors       []string   `json:"colors,omitempty"`
	States       []string   `json:"states,omitempty"`
	SalvageYards []string   `json:"salvageYards,omitempty"`
	YearMin      int        `json:"yearMin,omitempty"`
	YearMax      int        `json:"yearMax,omitempty"`
	DateFrom     *time.Time `json:"dateFrom,omitempty"`
	DateTo       *time.Time `json:"dateTo,omitempty"`
	MaxDistance  float64    `json:"maxDistance,omitempty"`
	Sort         SortOrder  `json:"sort,omitempty"`
}

// ParseFilters validates a stored filter bag. A corrupt bag must not crash an
// alert cycle, so callers treat an error here as "skip this search".
func ParseFilters(raw []byte) (Filters, error) {
	var f Filters
	if len(raw) == 0 {
		return Filters{Version: FilterBagVersion}, nil
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return Filters{}, fmt.Errorf("parse filter bag: %w", err)
	}
	if f.Version > FilterBagVersion {
		return Filters{}, fmt.Errorf("filter bag version %d is newer than supported %d", f.Version, FilterBagVersion)
	}
	if f.YearMin != 0 && f.YearMax != 0 && f.YearMin > f.YearMax {
		return Filters{}, fmt.Errorf("filter bag year range [%d,%d] is inverted", f.YearMin, f.YearMax)
	}
	if f.Version == 0 {
		f.Version = FilterBagVersion
	}
	return f, nil
}

// SavedSearch is a user's persisted query plus notification preferences.
// LastVehicleIDs and LastCheckedAt are mutated only by the alert engine;
// ProcessingLock is the advisory lock timestamp for mutual exclusion.
type SavedSearch struct {
	ID                  uuid.UUID  `db:"id"`
	UserID              uuid.UUID  `db:"user_id"`
	Name                string     `db:"name"`
	Query               string     `db:"query"`
	FilterBag           []byte     `db:"filter_bag"`
	EmailAlertsEnabled  bool       `db:"email_alerts_enabled"`
	DiscordAlertsEnabled bool      `db:"discord_alerts_enabled"`
	LastCheckedAt       *time.Time `db:"last_checked_at"`
	LastVehicleIDs      []string   `db:"-"`
	ProcessingLock      *time.Time `db:"processing_lock"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// User carries the notification-relevant slice of an account.
type User struct {
	ID                uuid.UUID `db:"id"`
	Email             string    `db:"email"`
	BillingCustomerID string    `db:"billing_customer_id"`
	DiscordUserID     string    `db:"discord_user_id"`
	DiscordLinked     bool      `db:"discord_linked"`
}

// AlertPayload is the notification body built from only the newly appeared
// vehicles. Channel consumers render it; the core only decides whether to
// send.
type AlertPayload struct {
	SearchID      uuid.UUID `json:"searchId"`
	SearchName    string    `json:"searchName"`
	Query         string    `json:"query"`
	SearchURL     string    `json:"searchUrl"`
	Email         string    `json:"email,omitempty"`
	DiscordUserID string    `json:"discordUserId,omitempty"`
	NewVehicles   []Vehicle `json:"newVehicles"`
}

// AlertStats holds statistics about one alert cycle.
type AlertStats struct {
	Eligible  int
	Processed int
	Baselines int
	Notified  int
	Skipped   int
	Errors    int
	Duration  time.Duration
}
