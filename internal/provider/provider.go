// Package provider defines the upstream data interfaces the engine consumes
// and their implementations.
package provider

import (
	"context"
	"fmt"

	"BoardPulse/internal/model"
)

// ProviderError wraps an upstream fetch failure. It is fatal for the run:
// no report is produced for that date.
type ProviderError struct {
	Source string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MarketSnapshotProvider supplies one day's full-market snapshot and the
// trailing per-symbol history behind the windowed metrics.
type MarketSnapshotProvider interface {
	// FetchDailySnapshot returns every instrument's end-of-day record for
	// the date, including the index pseudo-symbol.
	FetchDailySnapshot(ctx context.Context, date string) ([]model.InstrumentSnapshot, error)
	// FetchHistory returns up to lookbackDays records ending at asOf,
	// ascending by date. Fewer entries than asked for is not an error.
	FetchHistory(ctx context.Context, symbol, asOf string, lookbackDays int) ([]model.InstrumentSnapshot, error)
	Name() string
}

// SectorMembershipProvider maps sector codes to member symbols for a date.
type SectorMembershipProvider interface {
	SymbolsForSector(ctx context.Context, date string) (map[string][]string, error)
}
