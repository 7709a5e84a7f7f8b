package alert

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salvage_search/internal/domain"
	"salvage_search/internal/search"
)

// SearchEngine re-runs the interactive aggregation pipeline for a saved query.
type SearchEngine interface {
	Search(ctx context.Context, req search.Request) (*domain.SearchResult, error)
}

type SavedSearchStore interface {
	// ListEligible returns searches whose processing lock is null or older
	// than staleBefore.
	ListEligible(ctx context.Context, staleBefore time.Time) ([]domain.SavedSearch, error)
	// Claim atomically takes the processing lock; false means another worker
	// holds a fresh lock.
	Claim(ctx context.Context, id uuid.UUID, now, staleBefore time.Time) (bool, error)
	// SaveSnapshot persists the vehicle-ID set and check timestamp and
	// releases the lock in the same statement.
	SaveSnapshot(ctx context.Context, id uuid.UUID, vehicleIDs []string, checkedAt time.Time) error
	ReleaseLock(ctx context.Context, id uuid.UUID) error
	// DisableAlerts force-clears both notification toggles.
	DisableAlerts(ctx context.Context, id uuid.UUID) error
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// SubscriptionChecker is the authoritative billing oracle. It is queried
// fresh every cycle; a cached local flag is never trusted.
type SubscriptionChecker interface {
	HasActiveSubscription(ctx context.Context, customerID string) (bool, error)
}

// AlertPublisher delivers a payload to one channel. Fire-and-forget from the
// engine's perspective: the outcome is recorded, never retried here.
type AlertPublisher interface {
	PublishEmail(ctx context.Context, payload *domain.AlertPayload) error
	PublishDiscord(ctx context.Context, payload *domain.AlertPayload) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
