package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"BoardPulse/internal/config"
	"BoardPulse/internal/engine"
	"BoardPulse/internal/model"
	"BoardPulse/internal/notifier"
	"BoardPulse/internal/provider"
	"BoardPulse/internal/scheduler"
	"BoardPulse/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		dateFlag    = flag.String("date", "", "run the review once for this date (YYYYMMDD) and exit")
		historyFlag = flag.Int("history", 0, "print the N most recent stored reports and exit")
	)
	flag.Parse()

	log.Println("[INFO] BoardPulse starting...")
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init market data provider
	var (
		market  provider.MarketSnapshotProvider
		sectors provider.SectorMembershipProvider
	)
	if cfg.DataSource.Source == "mock" {
		m := &provider.MockProvider{}
		market, sectors = m, m
	} else {
		em := provider.NewEastMoneyProvider(cfg.Proxy)
		market, sectors = em, em
	}
	log.Printf("[INFO] data source: %s", market.Name())

	// Init report store
	var rs store.ReportStore
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			rs = store.NewNoopStore()
		} else {
			rs = ss
			defer ss.Close()
		}
	} else {
		rs = store.NewNoopStore()
	}

	if *historyFlag > 0 {
		printHistory(rs, *historyFlag)
		return
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(engine.Params{
		Windows:        cfg.Engine.Windows,
		TopN:           cfg.Engine.TopN,
		StreakMin:      cfg.Engine.StreakMin,
		TopSectors:     cfg.Engine.TopSectors,
		TopGainSectors: cfg.Engine.TopGainSectors,
		Rank60:         cfg.Engine.Rank60,
		Decline3dPct:   cfg.Engine.Decline3dPct,
		VolumeAvgDays:  cfg.Engine.VolumeAvgDays,
	})
	sched := scheduler.NewScheduler(ctx, market, sectors, eng, rs,
		notifier.NewConsoleNotifier(), cfg.DataSource.LookbackDays)

	// One-shot mode
	if *dateFlag != "" {
		if _, err := time.Parse(model.DateFormat, *dateFlag); err != nil {
			log.Fatalf("[FATAL] bad -date %q: want YYYYMMDD", *dateFlag)
		}
		if _, err := sched.RunDaily(*dateFlag); err != nil {
			log.Fatalf("[FATAL] review %s: %v", *dateFlag, err)
		}
		return
	}

	if err := sched.RegisterDaily(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		date := time.Now().Format(model.DateFormat)
		log.Println("[INFO] RUN_ON_START enabled, executing review now")
		go func() {
			if _, err := sched.RunDaily(date); err != nil {
				log.Printf("[ERROR] review %s: %v", date, err)
			}
		}()
	}

	log.Println("[INFO] BoardPulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] BoardPulse stopped")
}

func printHistory(rs store.ReportStore, n int) {
	dates, err := rs.RecentDates(n)
	if err != nil {
		log.Fatalf("[FATAL] recent dates: %v", err)
	}
	if len(dates) == 0 {
		log.Println("[INFO] no stored reports")
		return
	}
	out := notifier.NewConsoleNotifier()
	for _, d := range dates {
		report, err := rs.LoadReport(d)
		if err != nil {
			log.Printf("[ERROR] load report %s: %v", d, err)
			continue
		}
		if report == nil {
			continue
		}
		_ = out.Send(notifier.FormatDailyReport(report))
	}
}
