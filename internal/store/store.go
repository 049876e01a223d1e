// Package store persists daily reports and per-date streak state.
package store

import (
	"fmt"

	"BoardPulse/internal/model"
	"BoardPulse/internal/streak"
)

// DuplicateReportError reports an attempt to write a second report for a
// date. Reports are immutable: the write fails, nothing is overwritten.
type DuplicateReportError struct {
	Date string
}

func (e *DuplicateReportError) Error() string {
	return fmt.Sprintf("report for %s already exists", e.Date)
}

// ReportStore is the persistence boundary for reports and streak state.
type ReportStore interface {
	AppendReport(date string, report *model.DailyReport) error
	LoadReport(date string) (*model.DailyReport, error)
	RecentDates(n int) ([]string, error)
	SaveStreakState(date string, state streak.State) error
	LoadStreakState(date string) (streak.State, error)
	Close() error
}

// NoopStore discards everything. Used when no database is configured; it
// cannot detect duplicate dates, so the conflict check is lost with it.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) AppendReport(string, *model.DailyReport) error { return nil }
func (n *NoopStore) LoadReport(string) (*model.DailyReport, error) { return nil, nil }
func (n *NoopStore) RecentDates(int) ([]string, error)             { return nil, nil }
func (n *NoopStore) SaveStreakState(string, streak.State) error    { return nil }
func (n *NoopStore) LoadStreakState(string) (streak.State, error)  { return nil, nil }
func (n *NoopStore) Close() error                                  { return nil }
