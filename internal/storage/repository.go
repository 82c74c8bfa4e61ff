// Package storage persists the rewards ledger in SQLite. The engine calls
// LoadState once at startup and SaveState after every successful mutation;
// each save replaces the full state inside one transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"premi/internal/core"
	"premi/internal/engine"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadState reads the full ledger state. found is false for a fresh
// database that has never been saved to.
func (r *SQLiteRepository) LoadState(ctx context.Context) (engine.State, bool, error) {
	var state engine.State

	var nextReset string
	err := r.db.QueryRowContext(ctx,
		`SELECT balance, free_spins_remaining, next_reset_at FROM ledger WHERE id = 1`,
	).Scan(&state.Balance, &state.Allowance.FreeSpinsRemaining, &nextReset)
	if err == sql.ErrNoRows {
		return engine.State{}, false, nil
	}
	if err != nil {
		return engine.State{}, false, fmt.Errorf("load ledger: %w", err)
	}
	if state.Allowance.NextResetAt, err = parseTime(nextReset); err != nil {
		return engine.State{}, false, fmt.Errorf("load ledger: %w", err)
	}

	if state.Goals, err = r.loadGoals(ctx); err != nil {
		return engine.State{}, false, err
	}
	if state.Stock, err = r.loadStock(ctx); err != nil {
		return engine.State{}, false, err
	}
	if state.Redemptions, err = r.loadRedemptions(ctx); err != nil {
		return engine.State{}, false, err
	}
	if state.Spins, err = r.loadSpins(ctx); err != nil {
		return engine.State{}, false, err
	}
	return state, true, nil
}

// SaveState replaces the persisted state atomically.
func (r *SQLiteRepository) SaveState(ctx context.Context, state engine.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger (id, balance, free_spins_remaining, next_reset_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   balance = excluded.balance,
		   free_spins_remaining = excluded.free_spins_remaining,
		   next_reset_at = excluded.next_reset_at`,
		state.Balance, state.Allowance.FreeSpinsRemaining, formatTime(state.Allowance.NextResetAt))
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM goals`); err != nil {
		return fmt.Errorf("clear goals: %w", err)
	}
	for i, g := range state.Goals {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO goals (id, position, title, target_cents, current_cents, deadline, priority, points_reward, state, created_at, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID.String(), i, g.Title, g.Target.Cents, g.Current.Cents,
			formatTime(g.Deadline), string(g.Priority), g.PointsReward,
			string(g.State), formatTime(g.CreatedAt), formatTime(g.CompletedAt))
		if err != nil {
			return fmt.Errorf("save goal %s: %w", g.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock`); err != nil {
		return fmt.Errorf("clear stock: %w", err)
	}
	for itemID, remaining := range state.Stock {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stock (item_id, remaining) VALUES (?, ?)`, itemID, remaining); err != nil {
			return fmt.Errorf("save stock %s: %w", itemID, err)
		}
	}

	// The logs are append-only; INSERT OR IGNORE keeps existing rows
	// untouched and adds only the new tail.
	for _, rec := range state.Redemptions {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO redemptions (id, item_id, price_paid, redeemed_at) VALUES (?, ?, ?, ?)`,
			rec.ID.String(), rec.ItemID, rec.PricePaid, formatTime(rec.At))
		if err != nil {
			return fmt.Errorf("save redemption %s: %w", rec.ID, err)
		}
	}
	for _, rec := range state.Spins {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO spins (id, prize_id, category, free_spin, spun_at) VALUES (?, ?, ?, ?, ?)`,
			rec.ID.String(), rec.PrizeID, string(rec.Category), boolToInt(rec.FreeSpin), formatTime(rec.At))
		if err != nil {
			return fmt.Errorf("save spin %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, target_cents, current_cents, deadline, priority, points_reward, state, created_at, completed_at
		 FROM goals ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		var g core.Goal
		var id, deadline, priority, state, createdAt, completedAt string
		if err := rows.Scan(&id, &g.Title, &g.Target.Cents, &g.Current.Cents,
			&deadline, &priority, &g.PointsReward, &state, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse goal id %q: %w", id, err)
		}
		g.Priority = core.GoalPriority(priority)
		g.State = core.GoalState(state)
		if g.Deadline, err = parseTime(deadline); err != nil {
			return nil, fmt.Errorf("goal %s deadline: %w", id, err)
		}
		if g.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("goal %s created_at: %w", id, err)
		}
		if g.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, fmt.Errorf("goal %s completed_at: %w", id, err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) loadStock(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id, remaining FROM stock`)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}
	defer rows.Close()

	stock := make(map[string]int)
	for rows.Next() {
		var itemID string
		var remaining int
		if err := rows.Scan(&itemID, &remaining); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stock[itemID] = remaining
	}
	return stock, rows.Err()
}

func (r *SQLiteRepository) loadRedemptions(ctx context.Context) ([]core.RedemptionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_id, price_paid, redeemed_at FROM redemptions ORDER BY redeemed_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load redemptions: %w", err)
	}
	defer rows.Close()

	var recs []core.RedemptionRecord
	for rows.Next() {
		var rec core.RedemptionRecord
		var id, at string
		if err := rows.Scan(&id, &rec.ItemID, &rec.PricePaid, &at); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse redemption id %q: %w", id, err)
		}
		if rec.At, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("redemption %s time: %w", id, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *SQLiteRepository) loadSpins(ctx context.Context) ([]core.SpinRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, prize_id, category, free_spin, spun_at FROM spins ORDER BY spun_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load spins: %w", err)
	}
	defer rows.Close()

	var recs []core.SpinRecord
	for rows.Next() {
		var rec core.SpinRecord
		var id, category, at string
		var free int
		if err := rows.Scan(&id, &rec.PrizeID, &category, &free, &at); err != nil {
			return nil, fmt.Errorf("scan spin: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse spin id %q: %w", id, err)
		}
		rec.Category = core.PrizeCategory(category)
		rec.FreeSpin = free != 0
		if rec.At, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("spin %s time: %w", id, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Zero times are stored as empty strings so a never-set timestamp
// round-trips as zero.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
