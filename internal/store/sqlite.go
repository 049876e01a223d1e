package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"BoardPulse/internal/model"
	"BoardPulse/internal/streak"
)

// SQLiteStore persists reports and streak state to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so ad-hoc readers don't block the nightly write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_reports (
			date               TEXT PRIMARY KEY,
			created_at         INTEGER NOT NULL,
			total_turnover     REAL,
			volume_ratio       REAL,
			index_change_pct   REAL,
			limit_up_count     INTEGER,
			limit_down_count   INTEGER,
			money_effect_pct   REAL,
			explosion_rate     REAL,
			decline3d_over20   INTEGER,
			rank60_decline_pct REAL,
			payload            TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS streak_state (
			date   TEXT NOT NULL,
			symbol TEXT NOT NULL,
			days   INTEGER NOT NULL,
			PRIMARY KEY (date, symbol)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_streak_date ON streak_state(date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// AppendReport writes one report. Writing a date that already exists fails
// with DuplicateReportError; the stored report is never touched.
func (s *SQLiteStore) AppendReport(date string, report *model.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM daily_reports WHERE date = ?`, date).Scan(&exists)
	if err == nil {
		return &DuplicateReportError{Date: date}
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check existing report: %w", err)
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var rank60 sql.NullFloat64
	if report.Rank60DeclinePct != nil {
		rank60 = sql.NullFloat64{Float64: *report.Rank60DeclinePct, Valid: true}
	}

	_, err = s.db.Exec(`INSERT INTO daily_reports
		(date, created_at, total_turnover, volume_ratio, index_change_pct,
		 limit_up_count, limit_down_count, money_effect_pct, explosion_rate,
		 decline3d_over20, rank60_decline_pct, payload)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		date, time.Now().Unix(), report.TotalTurnover, report.VolumeRatio,
		report.IndexChangePct, report.LimitUpCount, report.LimitDownCount,
		report.MoneyEffectPct, report.ExplosionRate, report.Decline3dOver20,
		rank60, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// LoadReport reads one report back, or (nil, nil) if the date has none.
func (s *SQLiteStore) LoadReport(date string) (*model.DailyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM daily_reports WHERE date = ?`, date).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	var report model.DailyReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", date, err)
	}
	return &report, nil
}

// RecentDates returns the newest n report dates, descending.
func (s *SQLiteStore) RecentDates(n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT date FROM daily_reports ORDER BY date DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("recent dates: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveStreakState stores the streak counts valid for a date. Re-saving a
// date replaces it: streak state is derived, unlike reports.
func (s *SQLiteStore) SaveStreakState(date string, state streak.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM streak_state WHERE date = ?`, date); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear streak state: %w", err)
	}
	for symbol, days := range state {
		if days <= 0 {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO streak_state (date, symbol, days) VALUES (?,?,?)`,
			date, symbol, days); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert streak %s: %w", symbol, err)
		}
	}
	return tx.Commit()
}

// LoadStreakState reads the streak counts for a date; nil if none stored.
func (s *SQLiteStore) LoadStreakState(date string) (streak.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT symbol, days FROM streak_state WHERE date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("load streak state: %w", err)
	}
	defer rows.Close()

	var state streak.State
	for rows.Next() {
		var symbol string
		var days int
		if err := rows.Scan(&symbol, &days); err != nil {
			return nil, err
		}
		if state == nil {
			state = streak.State{}
		}
		state[symbol] = days
	}
	return state, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
