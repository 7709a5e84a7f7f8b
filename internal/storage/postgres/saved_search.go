package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"salvage_search/internal/domain"
)

type SavedSearchStore struct {
	db *sqlx.DB
}

func NewSavedSearchStore(db *sqlx.DB) *SavedSearchStore {
	return &SavedSearchStore{db: db}
}

// savedSearchRow carries the raw jsonb snapshot column alongside the domain
// fields.
type savedSearchRow struct {
	ID                   uuid.UUID  `db:"id"`
	UserID               uuid.UUID  `db:"user_id"`
	Name                 string     `db:"name"`
	Query                string     `db:"query"`
	FilterBag            []byte     `db:"filter_bag"`
	EmailAlertsEnabled   bool       `db:"email_alerts_enabled"`
	DiscordAlertsEnabled bool       `db:"discord_alerts_enabled"`
	LastCheckedAt        *time.Time `db:"last_checked_at"`
	LastVehicleIDs       []byte     `db:"last_vehicle_ids"`
	ProcessingLock       *time.Time `db:"processing_lock"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

func (r savedSearchRow) toDomain() (domain.SavedSearch, error) {
	s := domain.SavedSearch{
		ID:                   r.ID,
		UserID:               r.UserID,
		Name:                 r.Name,
		Query:                r.Query,
		FilterBag:            r.FilterBag,
		EmailAlertsEnabled:   r.EmailAlertsEnabled,
		DiscordAlertsEnabled: r.DiscordAlertsEnabled,
		LastCheckedAt:        r.LastCheckedAt,
		ProcessingLock:       r.ProcessingLock,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if len(r.LastVehicleIDs) > 0 {
		if err := json.Unmarshal(r.LastVehicleIDs, &s.LastVehicleIDs); err != nil {
			return s, fmt.Errorf("decode vehicle id snapshot: %w", err)
		}
	}
	return s, nil
}

const savedSearchColumns = `
	id, user_id, name, query, filter_bag,
	email_alerts_enabled, discord_alerts_enabled,
	last_checked_at, last_vehicle_ids, processing_lock,
	created_at, updated_at`

func (s *SavedSearchStore) Create(ctx context.Context, sr *domain.SavedSearch) error {
	query := `
		INSERT INTO saved_searches (
			id, user_id, name, query, filter_bag,
			email_alerts_enabled, discord_alerts_enabled
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := getExecutor(ctx, s.db).ExecContext(ctx, query,
		sr.ID,
		sr.UserID,
		sr.Name,
		sr.Query,
		sr.FilterBag,
		sr.EmailAlertsEnabled,
		sr.DiscordAlertsEnabled,
	)
	if err != nil {
		return fmt.Errorf("insert saved search: %w", err)
	}
	return nil
}

func (s *SavedSearchStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := getExecutor(ctx, s.db).ExecContext(ctx,
		"DELETE FROM saved_searches WHERE id = $1", id)
	return err
}

func (s *SavedSearchStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SavedSearch, error) {
	query := `SELECT ` + savedSearchColumns + `
		FROM saved_searches
		WHERE user_id = $1
		ORDER BY created_at`

	var rows []savedSearchRow
	if err := sqlx.SelectContext(ctx, getExecutor(ctx, s.db), &rows, query, userID); err != nil {
		return nil, err
	}
	return toDomainList(rows)
}

func (s *SavedSearchStore) ToggleEmailAlerts(ctx context.Context, id uuid.UUID, enabled bool) error {
	_, err := getExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE saved_searches SET email_alerts_enabled = $2, updated_at = now() WHERE id = $1",
		id, enabled)
	return err
}

func (s *SavedSearchStore) ToggleDiscordAlerts(ctx context.Context, id uuid.UUID, enabled bool) error {
	_, err := getExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE saved_searches SET discord_alerts_enabled = $2, updated_at = now() WHERE id = $1",
		id, enabled)
	return err
}

// ListEligible returns searches with at least one alert channel enabled whose
// processing lock is absent or stale.
func (s *SavedSearchStore) ListEligible(ctx context.Context, staleBefore time.Time) ([]domain.SavedSearch, error) {
	query := `SELECT ` + savedSearchColumns + `
		FROM saved_searches
		WHERE (email_alerts_enabled OR discord_alerts_enabled)
		  AND (processing_lock IS NULL OR processing_lock < $1)
		ORDER BY created_at`

	var rows []savedSearchRow
	if err := sqlx.SelectContext(ctx, getExecutor(ctx, s.db), &rows, query, staleBefore); err != nil {
		return nil, err
	}
	return toDomainList(rows)
}

// Claim takes the processing lock with a single conditional update, so
// claiming is atomic at the storage layer; the affected-row count is the
// success signal. A lock older than staleBefore counts as abandoned.
func (s *SavedSearchStore) Claim(ctx context.Context, id uuid.UUID, now, staleBefore time.Time) (bool, error) {
	res, err := getExecutor(ctx, s.db).ExecContext(ctx, `
		UPDATE saved_searches
		SET processing_lock = $2
		WHERE id = $1
		  AND (processing_lock IS NULL OR processing_lock < $3)`,
		id, now, staleBefore)
	if err != nil {
		return false, fmt.Errorf("claim lock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// SaveSnapshot persists the vehicle-ID set and check timestamp and releases
// the lock in the same statement.
func (s *SavedSearchStore) SaveSnapshot(ctx context.Context, id uuid.UUID, vehicleIDs []string, checkedAt time.Time) error {
	if vehicleIDs == nil {
		vehicleIDs = []string{}
	}
	snapshot, err := json.Marshal(vehicleIDs)
	if err != nil {
		return fmt.Errorf("encode vehicle id snapshot: %w", err)
	}

	_, err = getExecutor(ctx, s.db).ExecContext(ctx, `
		UPDATE saved_searches
		SET last_vehicle_ids = $2,
		    last_checked_at = $3,
		    processing_lock = NULL,
		    updated_at = now()
		WHERE id = $1`,
		id, snapshot, checkedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SavedSearchStore) ReleaseLock(ctx context.Context, id uuid.UUID) error {
	_, err := getExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE saved_searches SET processing_lock = NULL WHERE id = $1", id)
	return err
}

// DisableAlerts force-clears both notification toggles, used when the owning
// user's subscription has lapsed.
func (s *SavedSearchStore) DisableAlerts(ctx context.Context, id uuid.UUID) error {
	_, err := getExecutor(ctx, s.db).ExecContext(ctx, `
		UPDATE saved_searches
		SET email_alerts_enabled = FALSE,
		    discord_alerts_enabled = FALSE,
		    updated_at = now()
		WHERE id = $1`, id)
	return err
}

func toDomainList(rows []savedSearchRow) ([]domain.SavedSearch, error) {
	searches := make([]domain.SavedSearch, 0, len(rows))
	for _, r := range rows {
		s, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	return searches, nil
}
