// Package scheduler runs the post-market pipeline on a cron schedule and
// wires fetch, compute, persist, and notify together.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"BoardPulse/internal/engine"
	"BoardPulse/internal/model"
	"BoardPulse/internal/notifier"
	"BoardPulse/internal/provider"
	"BoardPulse/internal/sector"
	"BoardPulse/internal/snapshot"
	"BoardPulse/internal/store"
	"BoardPulse/internal/streak"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron task and the daily pipeline.
type Scheduler struct {
	Cron     *cron.Cron
	Market   provider.MarketSnapshotProvider
	Sectors  provider.SectorMembershipProvider
	Engine   *engine.Engine
	Store    store.ReportStore
	Notifier notifier.Notifier
	Lookback int
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, market provider.MarketSnapshotProvider, sectors provider.SectorMembershipProvider,
	eng *engine.Engine, st store.ReportStore, n notifier.Notifier, lookback int) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Market:   market,
		Sectors:  sectors,
		Engine:   eng,
		Store:    st,
		Notifier: n,
		Lookback: lookback,
		Ctx:      ctx,
	}
}

// RegisterDaily registers the post-market task.
func (s *Scheduler) RegisterDaily(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) dailyTask() {
	date := time.Now().Format(model.DateFormat)
	if _, err := s.RunDaily(date); err != nil {
		log.Printf("[ERROR] daily review %s: %v", date, err)
	}
}

// RunDaily executes the whole pipeline for one trading date: fetch the
// day's snapshot and trailing history, compute the report, persist report
// and streak state, and deliver the rendered review. A non-trading date
// surfaces as an empty snapshot error.
func (s *Scheduler) RunDaily(date string) (*model.DailyReport, error) {
	log.Printf("[INFO] running daily review for %s", date)

	day, err := s.Market.FetchDailySnapshot(s.Ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	log.Printf("[INFO] fetched %d instruments from %s", len(day), s.Market.Name())

	histories := make(map[string][]model.InstrumentSnapshot, len(day))
	for _, snap := range day {
		h, err := s.Market.FetchHistory(s.Ctx, snap.Symbol, date, s.Lookback)
		if err != nil {
			// One symbol's history failing degrades that symbol, not the run.
			log.Printf("[WARN] history %s: %v", snap.Symbol, err)
			continue
		}
		histories[snap.Symbol] = h
	}

	st, err := snapshot.Build(date, day, histories)
	if err != nil {
		return nil, fmt.Errorf("build snapshot store: %w", err)
	}

	var prevStreaks streak.State
	if prevDate, ok := st.PrevDate(1); ok {
		prevStreaks, err = s.Store.LoadStreakState(prevDate)
		if err != nil {
			log.Printf("[WARN] load streak state %s: %v", prevDate, err)
		}
	}

	var membership sector.Membership
	if s.Sectors != nil {
		membership, err = s.Sectors.SymbolsForSector(s.Ctx, date)
		if err != nil {
			log.Printf("[WARN] sector membership: %v", err)
		}
	}

	report, streaks := s.Engine.Run(st, prevStreaks, membership)

	if err := s.Store.SaveStreakState(date, streaks); err != nil {
		log.Printf("[ERROR] save streak state: %v", err)
	}
	if err := s.Store.AppendReport(date, report); err != nil {
		return report, fmt.Errorf("append report: %w", err)
	}
	log.Printf("[INFO] report %s stored: %d limit-ups, %d notes", date, report.LimitUpCount, len(report.Notes))

	if s.Notifier != nil {
		if err := s.Notifier.Send(notifier.FormatDailyReport(report)); err != nil {
			log.Printf("[ERROR] deliver report: %v", err)
		}
	}
	return report, nil
}
