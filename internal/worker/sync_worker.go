package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ricavi/internal/amqp"
	"ricavi/internal/core"
	"ricavi/internal/export"
	"ricavi/internal/services"
	"ricavi/internal/store"
)

// MonthSource loads a month together with its summary.
type MonthSource interface {
	Month(ctx context.Context, p core.Period) (services.MonthView, error)
}

// MonthWriter receives the rendered grid of a month.
type MonthWriter interface {
	WriteMonth(ctx context.Context, p core.Period, values [][]any) error
}

// SyncWorker mirrors updated months into an external spreadsheet.
type SyncWorker struct {
	months MonthSource
	sheets MonthWriter
	lister store.PeriodLister

	// handled holds the newest message timestamp mirrored per month. Both
	// sides of the comparison come from the publisher's clock.
	mu      sync.Mutex
	handled map[core.Period]time.Time
}

// NewSyncWorker creates a worker. lister may be nil, in which case the
// startup sync is skipped.
func NewSyncWorker(months MonthSource, sheets MonthWriter, lister store.PeriodLister) *SyncWorker {
	return &SyncWorker{
		months: months,
		sheets: sheets,
		lister: lister,
		handled: make(map[core.Period]time.Time),
	}
}

// HandleMonthUpdated processes a single month update message from AMQP.
// Messages older than the newest message already mirrored for the same
// month are acknowledged without work.
func (w *SyncWorker) HandleMonthUpdated(ctx context.Context, msg *amqp.MonthUpdatedMessage) error {
	p := msg.Period()
	slog.InfoContext(ctx, "Processing month update",
		"period", p.Key(),
		"timestamp", msg.Timestamp)

	if w.isStale(p, msg.Timestamp) {
		slog.InfoContext(ctx, "Skipping stale month update", "period", p.Key())
		return nil
	}

	if err := w.syncMonth(ctx, p); err != nil {
		return fmt.Errorf("sync month %s: %w", p, err)
	}
	w.markHandled(p, msg.Timestamp)
	return nil
}

// StartupSync mirrors every stored month once. It recovers from updates
// missed while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	if w.lister == nil {
		return nil
	}
	periods, err := w.lister.Periods(ctx)
	if err != nil {
		return fmt.Errorf("list periods for startup sync: %w", err)
	}
	if len(periods) == 0 {
		slog.InfoContext(ctx, "No stored months found on startup")
		return nil
	}

	successCount := 0
	errorCount := 0
	for _, p := range periods {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.syncMonth(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to sync month during startup",
				"period", p.Key(), "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(periods),
		"synced", successCount,
		"errors", errorCount)
	return nil
}

func (w *SyncWorker) syncMonth(ctx context.Context, p core.Period) error {
	started := time.Now()
	view, err := w.months.Month(ctx, p)
	if err != nil {
		return fmt.Errorf("load month: %w", err)
	}
	if err := w.sheets.WriteMonth(ctx, p, export.Values(view.Summary, view.Raw)); err != nil {
		return fmt.Errorf("write to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully synced month",
		"period", p.Key(),
		"monthly_total", view.Summary.MonthlyTotal,
		"overnights", view.Summary.TotalOvernightStays,
		"duration_ms", time.Since(started).Milliseconds())
	return nil
}

func (w *SyncWorker) isStale(p core.Period, ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.handled[p]
	return ok && ts.Before(last)
}

func (w *SyncWorker) markHandled(p core.Period, ts time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ts.After(w.handled[p]) {
		w.handled[p] = ts
	}
}
