package store

import (
	"context"

	"ricavi/internal/core"
)

// Ports for persistence adapters.
type (
	// RawStore keeps the raw revenue cells, one bucket per period.
	RawStore interface {
		// Load returns the raw cells of a period. An unknown period is empty.
		Load(ctx context.Context, p core.Period) (core.RawMonth, error)
		// Save replaces the raw cells of a period verbatim.
		Save(ctx context.Context, p core.Period, raw core.RawMonth) error
	}

	// PeriodLister lists the periods that hold data, oldest first.
	PeriodLister interface {
		Periods(ctx context.Context) ([]core.Period, error)
	}
)
