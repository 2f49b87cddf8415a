package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ganot/stocklog/internal/repository"
	"github.com/google/uuid"
)

// Config tunes the reconciler.
type Config struct {
	// Source is the provenance tag written on appended snapshots.
	Source string
	// FailOnReadError turns a failed latest-snapshot read into an item
	// failure instead of a first-write append.
	FailOnReadError bool
}

// Reconciler decides between amending the latest snapshot and appending a
// new one, and commits the decisions for an item as one batch.
type Reconciler struct {
	repo   Repository
	cfg    Config
	logger *slog.Logger
}

// NewReconciler creates a new reconciler.
func NewReconciler(repo Repository, cfg Config, logger *slog.Logger) *Reconciler {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{repo: repo, cfg: cfg, logger: logger}
}

// Decide produces the write action for one member of an item.
func (r *Reconciler) Decide(ctx context.Context, itemID, member string, stocks int64, obs Observation) (WriteAction, error) {
	if strings.TrimSpace(itemID) == "" || strings.TrimSpace(member) == "" {
		return WriteAction{}, ErrInvalidInput
	}

	degraded := false
	last, err := r.repo.Latest(ctx, itemID, member)
	if err != nil {
		last = nil
		if !errors.Is(err, repository.ErrNotFound) {
			if r.cfg.FailOnReadError {
				return WriteAction{}, fmt.Errorf("%w for %s/%s: %w", ErrReadLatest, itemID, member, err)
			}
			degraded = true
			r.logger.Warn("latest snapshot unreadable, appending without delta",
				"prod_id", itemID, "member", member, "error", err)
		}
	}

	if last != nil && last.Stocks == stocks {
		amended := *last
		amended.Time = obs.Time
		amended.MonthSales = obs.MonthSales
		amended.SoldNum = obs.SoldNum
		prev := last.Stocks
		return WriteAction{Kind: ActionAmend, Snapshot: amended, PreviousStocks: &prev}, nil
	}

	snap := Snapshot{
		ID:         uuid.NewString(),
		ItemID:     itemID,
		Member:     member,
		Time:       obs.Time,
		MonthSales: obs.MonthSales,
		SoldNum:    obs.SoldNum,
		Stocks:     stocks,
		Source:     r.cfg.Source,
	}
	action := WriteAction{Kind: ActionAppend, Snapshot: snap, Degraded: degraded}
	if last != nil {
		prev := last.Stocks
		sold := prev - stocks
		action.PreviousStocks = &prev
		action.Snapshot.UnitSales = &sold
	}
	return action, nil
}

// ReconcileItem decides every member of one observation and commits the
// result as a single batch. Nothing is written if any decision fails.
func (r *Reconciler) ReconcileItem(ctx context.Context, itemID string, obs ItemObservation) (*BatchResult, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, ErrInvalidInput
	}

	members := make([]string, 0, len(obs.Stocks))
	for member := range obs.Stocks {
		members = append(members, member)
	}
	sort.Strings(members)

	actions := make([]WriteAction, 0, len(members))
	for _, member := range members {
		action, err := r.Decide(ctx, itemID, member, obs.Stocks[member], obs.Observation)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	if err := r.repo.CommitBatch(ctx, itemID, actions); err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrCommit, itemID, err)
	}

	result := &BatchResult{ItemID: itemID, Actions: actions}
	for _, action := range actions {
		switch action.Kind {
		case ActionAmend:
			result.Amended++
			r.logger.Info("Updated (no change)",
				"path", action.Snapshot.Path(), "action", action.Kind, "stocks", action.Snapshot.Stocks)
		case ActionAppend:
			result.Appended++
			r.logger.Info("Created (changed)",
				"path", action.Snapshot.Path(), "action", action.Kind, "stocks", action.Snapshot.Stocks,
				"unit_sales", formatDelta(action.Snapshot.UnitSales), "degraded", action.Degraded)
		}
		if action.Degraded {
			result.Degraded++
		}
	}

	return result, nil
}

func formatDelta(v *int64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *v)
}
