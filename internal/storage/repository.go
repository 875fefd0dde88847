package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ricavi/internal/core"
	"ricavi/internal/store"

	_ "modernc.org/sqlite"
)

var (
	_ store.RawStore     = (*SQLiteRepository)(nil)
	_ store.PeriodLister = (*SQLiteRepository)(nil)
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
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

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

// Ping checks the database connection, used by the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Load implements store.RawStore
func (r *SQLiteRepository) Load(ctx context.Context, p core.Period) (core.RawMonth, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT day, room, raw FROM revenue_cells WHERE year = ? AND month = ? ORDER BY day, room`,
		p.Year, int(p.Month))
	if err != nil {
		return nil, fmt.Errorf("query month %s: %w", p, err)
	}
	defer rows.Close()

	m := core.RawMonth{}
	for rows.Next() {
		var (
			day       int
			room, raw string
		)
		if err := rows.Scan(&day, &room, &raw); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		m.Set(day, room, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cells: %w", err)
	}
	return m, nil
}

// Save implements store.RawStore. The month is replaced in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, p core.Period, raw core.RawMonth) error {
	if err := p.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM revenue_cells WHERE year = ? AND month = ?`, p.Year, int(p.Month)); err != nil {
		return fmt.Errorf("clear month %s: %w", p, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO revenue_cells (year, month, day, room, raw, updated_at) VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for day, rooms := range raw {
		if !p.ValidDay(day) {
			slog.WarnContext(ctx, "Skipping cell outside month", "period", p.Key(), "day", day)
			continue
		}
		for room, text := range rooms {
			if strings.TrimSpace(text) == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, p.Year, int(p.Month), day, room, text); err != nil {
				return fmt.Errorf("insert cell %s/%d/%q: %w", p, day, room, err)
			}
			stored++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit month %s: %w", p, err)
	}

	slog.DebugContext(ctx, "Month saved to SQLite", "period", p.Key(), "cells", stored)
	return nil
}

// Periods implements store.PeriodLister
func (r *SQLiteRepository) Periods(ctx context.Context) ([]core.Period, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT year, month FROM revenue_cells ORDER BY year, month`)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var out []core.Period
	for rows.Next() {
		var y, m int
		if err := rows.Scan(&y, &m); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		out = append(out, core.NewPeriod(y, m))
	}
	return out, rows.Err()
}
