// Package poller drives polling cycles over the tracked items.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/domain/snapshot"
	"github.com/ganot/stocklog/internal/extract"
	"github.com/ganot/stocklog/internal/source"
)

// LocalTimeLayout formats the human-readable local timestamp of a snapshot.
const LocalTimeLayout = "2006-01-02 15:04:05"

// Fetcher retrieves one product from the feed.
type Fetcher interface {
	Fetch(ctx context.Context, itemID string) (*source.Product, error)
}

// Reconciler commits one item's observation.
type Reconciler interface {
	ReconcileItem(ctx context.Context, itemID string, obs snapshot.ItemObservation) (*snapshot.BatchResult, error)
}

// ActivityLogger records per-item outcomes.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.Entry) error
}

// Config lists what to poll.
type Config struct {
	Items    []string
	Location *time.Location
}

// ItemOutcome is the result of polling one item.
type ItemOutcome struct {
	ItemID string                `json:"prod_id"`
	Result *snapshot.BatchResult `json:"result,omitempty"`
	Err    error                 `json:"-"`
	Kind   FailureKind           `json:"failure,omitempty"`
}

// CycleReport summarizes one pass over all items.
type CycleReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Items      []ItemOutcome `json:"items"`
	Appended   int           `json:"appended"`
	Amended    int           `json:"amended"`
	Degraded   int           `json:"degraded"`
	Failed     int           `json:"failed"`
}

// Driver runs polling cycles. Items are processed one after another.
type Driver struct {
	cfg        Config
	fetcher    Fetcher
	extractor  *extract.Extractor
	reconciler Reconciler
	activity   ActivityLogger
	logger     *slog.Logger
	now        func() time.Time
}

// NewDriver creates a new cycle driver. activityLog may be nil.
func NewDriver(cfg Config, fetcher Fetcher, extractor *extract.Extractor, reconciler Reconciler, activityLog ActivityLogger, logger *slog.Logger) *Driver {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if extractor == nil {
		extractor = extract.New(extract.DefaultStripChars)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{
		cfg:        cfg,
		fetcher:    fetcher,
		extractor:  extractor,
		reconciler: reconciler,
		activity:   activityLog,
		logger:     logger,
		now:        time.Now,
	}
}

// RunOnce polls every configured item once. A cancelled ctx does not
// interrupt the pass; cancellation is observed between cycles by Run.
func (d *Driver) RunOnce(ctx context.Context) CycleReport {
	ctx = context.WithoutCancel(ctx)

	report := CycleReport{StartedAt: d.now()}
	for _, itemID := range d.cfg.Items {
		outcome := d.pollItem(ctx, itemID)
		if outcome.Err != nil {
			report.Failed++
			d.logger.Error("item failed", "prod_id", itemID, "kind", outcome.Kind, "error", outcome.Err)
		} else {
			report.Appended += outcome.Result.Appended
			report.Amended += outcome.Result.Amended
			report.Degraded += outcome.Result.Degraded
		}
		d.recordActivity(ctx, outcome)
		report.Items = append(report.Items, outcome)
	}
	report.FinishedAt = d.now()

	d.logger.Info("cycle complete",
		"items", len(d.cfg.Items),
		"failed", report.Failed,
		"appended", report.Appended,
		"amended", report.Amended,
		"degraded", report.Degraded,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report
}

// Run repeats RunOnce with a fixed sleep between cycles until ctx is done.
func (d *Driver) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	d.logger.Info("poller started", "items", len(d.cfg.Items), "interval", interval)
	for {
		if ctx.Err() != nil {
			d.logger.Info("poller stopped")
			return nil
		}

		d.RunOnce(ctx)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info("poller stopped")
			return nil
		case <-timer.C:
		}
	}
}

func (d *Driver) pollItem(ctx context.Context, itemID string) (outcome ItemOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = ItemOutcome{ItemID: itemID, Err: fmt.Errorf("panic: %v", r), Kind: FailureUnknown}
		}
	}()

	product, err := d.fetcher.Fetch(ctx, itemID)
	if err != nil {
		return ItemOutcome{ItemID: itemID, Err: err, Kind: classify(err)}
	}

	skus := make([]extract.SKU, 0, len(product.SKUs))
	for _, sku := range product.SKUs {
		skus = append(skus, extract.SKU{Label: sku.Name, Stocks: sku.Stocks})
	}

	obs := snapshot.ItemObservation{
		Observation: snapshot.Observation{
			Time:       d.now().In(d.cfg.Location).Format(LocalTimeLayout),
			MonthSales: product.MonthSales,
			SoldNum:    product.SoldNum,
		},
		Stocks: d.extractor.Aggregate(skus),
	}

	result, err := d.reconciler.ReconcileItem(ctx, itemID, obs)
	if err != nil {
		return ItemOutcome{ItemID: itemID, Err: err, Kind: classify(err)}
	}
	return ItemOutcome{ItemID: itemID, Result: result}
}

func (d *Driver) recordActivity(ctx context.Context, outcome ItemOutcome) {
	if d.activity == nil {
		return
	}

	entry := &activity.Entry{ItemID: outcome.ItemID, CreatedAt: d.now()}
	if outcome.Err != nil {
		entry.ActivityType = activity.TypeItemFailed
		entry.Summary = outcome.Err.Error()
		entry.Details = mustJSON(map[string]any{"kind": outcome.Kind})
	} else {
		entry.ActivityType = activity.TypeItemCommitted
		entry.Summary = fmt.Sprintf("%d appended, %d amended", outcome.Result.Appended, outcome.Result.Amended)
		members := make([]string, 0, len(outcome.Result.Actions))
		for _, action := range outcome.Result.Actions {
			members = append(members, action.Snapshot.Member)
		}
		entry.Details = mustJSON(map[string]any{
			"appended": outcome.Result.Appended,
			"amended":  outcome.Result.Amended,
			"degraded": outcome.Result.Degraded,
			"members":  members,
		})
	}

	if err := d.activity.LogActivity(ctx, entry); err != nil {
		d.logger.Warn("failed to record activity", "prod_id", outcome.ItemID, "error", err)
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
