// Package alert implements the periodic detection and dispatch engine: it
// re-runs saved searches, diffs vehicle-ID sets against the stored snapshot
// and publishes notifications for newly appeared vehicles only.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"salvage_search/internal/domain"
	"salvage_search/internal/search"
)

// Config carries the alert engine's policy knobs.
type Config struct {
	// BatchSize bounds how many searches run concurrently; batches are
	// processed sequentially.
	BatchSize int
	// LockStaleness is the age past which a processing lock counts as
	// abandoned by a crashed worker.
	LockStaleness time.Duration
	// SearchURLTemplate formats the saved-search ID into the link embedded
	// in notifications.
	SearchURLTemplate string
}

type Service struct {
	engine        SearchEngine
	searches      SavedSearchStore
	users         UserStore
	subscriptions SubscriptionChecker
	publisher     AlertPublisher
	txManager     TransactionManager
	logger        *slog.Logger
	cfg           Config
}

func NewService(
	engine SearchEngine,
	searches SavedSearchStore,
	users UserStore,
	subscriptions SubscriptionChecker,
	publisher AlertPublisher,
	txManager TransactionManager,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &Service{
		engine:        engine,
		searches:      searches,
		users:         users,
		subscriptions: subscriptions,
		publisher:     publisher,
		txManager:     txManager,
		logger:        logger.With("component", "alert"),
		cfg:           cfg,
	}
}

// RunCycle processes every eligible saved search once. Searches locked by a
// concurrent run are simply absent from the eligible set; re-invocation
// while locks are held is safe.
func (s *Service) RunCycle(ctx context.Context) (*domain.AlertStats, error) {
	start := time.Now()
	staleBefore := start.Add(-s.cfg.LockStaleness)

	eligible, err := s.searches.ListEligible(ctx, staleBefore)
	if err != nil {
		return nil, fmt.Errorf("list eligible searches: %w", err)
	}

	stats := &domain.AlertStats{Eligible: len(eligible)}
	var statsMu sync.Mutex
	s.logger.Info("starting alert cycle", "eligible", len(eligible))

	for offset := 0; offset < len(eligible); offset += s.cfg.BatchSize {
		end := offset + s.cfg.BatchSize
		if end > len(eligible) {
			end = len(eligible)
		}

		// Batch members run concurrently; g.Wait() ensures every lock in
		// this batch is released before the next batch starts.
		g := new(errgroup.Group)
		for _, sr := range eligible[offset:end] {
			g.Go(func() error {
				out := s.processSearch(ctx, sr)

				statsMu.Lock()
				stats.Processed += out.delta.Processed
				stats.Baselines += out.delta.Baselines
				stats.Notified += out.delta.Notified
				stats.Skipped += out.delta.Skipped
				stats.Errors += out.delta.Errors
				statsMu.Unlock()

				s.logger.Info("processed saved search",
					"search_id", sr.ID,
					"status", out.status,
				)
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			break
		}
	}

	stats.Duration = time.Since(start)
	s.logger.Info("alert cycle completed",
		"processed", stats.Processed,
		"baselines", stats.Baselines,
		"notified", stats.Notified,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

// outcome folds one search's result into a status string plus stat deltas.
type outcome struct {
	status string
	delta  domain.AlertStats
}

func skipped(status string) outcome {
	return outcome{status: status, delta: domain.AlertStats{Skipped: 1}}
}

func failed(status string) outcome {
	return outcome{status: status, delta: domain.AlertStats{Errors: 1}}
}

// processSearch runs the full per-search state machine. It never lets an
// error escape: one search's crash cannot abort its batch siblings, and the
// lock is released on every path.
func (s *Service) processSearch(ctx context.Context, sr domain.SavedSearch) (out outcome) {
	now := time.Now()
	staleBefore := now.Add(-s.cfg.LockStaleness)

	claimed, err := s.searches.Claim(ctx, sr.ID, now, staleBefore)
	if err != nil {
		s.logger.Error("lock claim failed", "search_id", sr.ID, "error", err)
		return failed("claim-error")
	}
	if !claimed {
		return skipped("locked")
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while processing search", "search_id", sr.ID, "panic", r)
			s.releaseLock(ctx, sr.ID)
			out = failed("panic")
		}
	}()

	filters, err := domain.ParseFilters(sr.FilterBag)
	if err != nil {
		s.logger.Warn("skipping search with corrupt filter bag", "search_id", sr.ID, "error", err)
		s.releaseLock(ctx, sr.ID)
		return skipped("invalid-filters")
	}

	user, err := s.users.GetByID(ctx, sr.UserID)
	if err != nil {
		s.logger.Error("resolve user failed", "search_id", sr.ID, "error", err)
		s.releaseLock(ctx, sr.ID)
		return failed("user-error")
	}

	active, err := s.subscriptions.HasActiveSubscription(ctx, user.BillingCustomerID)
	if err != nil {
		s.logger.Error("subscription check failed", "search_id", sr.ID, "error", err)
		s.releaseLock(ctx, sr.ID)
		return failed("subscription-check-error")
	}
	if !active {
		if err := s.disableAndRelease(ctx, sr.ID); err != nil {
			s.logger.Error("disable alerts failed", "search_id", sr.ID, "error", err)
			return failed("disable-error")
		}
		return skipped("subscription-lapsed")
	}

	result, err := s.engine.Search(ctx, search.Request{
		Query:   sr.Query,
		Filters: filters,
	})
	if err != nil {
		s.logger.Error("search failed", "search_id", sr.ID, "error", err)
		s.releaseLock(ctx, sr.ID)
		return failed("search-error")
	}

	vehicles := search.FilterByYardNames(result.Vehicles, filters.SalvageYards)

	currentIDs := make([]string, len(vehicles))
	byID := make(map[string]domain.Vehicle, len(vehicles))
	for i, v := range vehicles {
		currentIDs[i] = v.ID
		byID[v.ID] = v
	}

	// First-ever run establishes a baseline and never notifies; otherwise a
	// fresh search would alert on its entire result set.
	if sr.LastCheckedAt == nil {
		if err := s.searches.SaveSnapshot(ctx, sr.ID, currentIDs, now); err != nil {
			s.logger.Error("save baseline failed", "search_id", sr.ID, "error", err)
			s.releaseLock(ctx, sr.ID)
			return failed("snapshot-error")
		}
		return outcome{status: "baseline", delta: domain.AlertStats{Processed: 1, Baselines: 1}}
	}

	newIDs := diffIDs(sr.LastVehicleIDs, currentIDs)

	status := "no-new"
	delta := domain.AlertStats{Processed: 1}
	if len(newIDs) > 0 {
		newVehicles := make([]domain.Vehicle, 0, len(newIDs))
		for _, id := range newIDs {
			newVehicles = append(newVehicles, byID[id])
		}
		status = s.dispatch(ctx, sr, user, newVehicles)
		if strings.Contains(status, ":sent") {
			delta.Notified = 1
		}
	}

	// The snapshot persists even when dispatch partially or fully failed:
	// a delivery failure must not re-alert on the same vehicles next cycle.
	if err := s.searches.SaveSnapshot(ctx, sr.ID, currentIDs, now); err != nil {
		s.logger.Error("save snapshot failed", "search_id", sr.ID, "error", err)
		s.releaseLock(ctx, sr.ID)
		return failed("snapshot-error")
	}

	return outcome{status: status, delta: delta}
}

// dispatch attempts each enabled channel independently and folds the
// per-channel outcomes into one status string.
func (s *Service) dispatch(ctx context.Context, sr domain.SavedSearch, user *domain.User, newVehicles []domain.Vehicle) string {
	payload := &domain.AlertPayload{
		SearchID:    sr.ID,
		SearchName:  sr.Name,
		Query:       sr.Query,
		SearchURL:   fmt.Sprintf(s.cfg.SearchURLTemplate, sr.ID),
		NewVehicles: newVehicles,
	}

	var parts []string

	if sr.EmailAlertsEnabled {
		emailPayload := *payload
		emailPayload.Email = user.Email
		if user.Email == "" {
			parts = append(parts, "email:no-address")
		} else if err := s.publisher.PublishEmail(ctx, &emailPayload); err != nil {
			s.logger.Error("email dispatch failed", "search_id", sr.ID, "error", err)
			parts = append(parts, "email:failed")
		} else {
			parts = append(parts, "email:sent")
		}
	}

	if sr.DiscordAlertsEnabled {
		discordPayload := *payload
		discordPayload.DiscordUserID = user.DiscordUserID
		if !user.DiscordLinked || user.DiscordUserID == "" {
			parts = append(parts, "discord:not-linked")
		} else if err := s.publisher.PublishDiscord(ctx, &discordPayload); err != nil {
			s.logger.Error("discord dispatch failed", "search_id", sr.ID, "error", err)
			parts = append(parts, "discord:failed")
		} else {
			parts = append(parts, "discord:sent")
		}
	}

	if len(parts) == 0 {
		return "no-channels"
	}
	return strings.Join(parts, ",")
}

func (s *Service) disableAndRelease(ctx context.Context, id uuid.UUID) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.searches.DisableAlerts(txCtx, id); err != nil {
			return fmt.Errorf("disable alerts: %w", err)
		}
		if err := s.searches.ReleaseLock(txCtx, id); err != nil {
			return fmt.Errorf("release lock: %w", err)
		}
		return nil
	})
}

func (s *Service) releaseLock(ctx context.Context, id uuid.UUID) {
	if err := s.searches.ReleaseLock(ctx, id); err != nil {
		s.logger.Error("release lock failed", "search_id", id, "error", err)
	}
}

// diffIDs returns current minus previous, preserving current's order.
func diffIDs(previous, current []string) []string {
	seen := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		seen[id] = struct{}{}
	}
	var fresh []string
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	return fresh
}
