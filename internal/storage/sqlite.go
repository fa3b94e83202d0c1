package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"usos_monitor/internal/model"
	"usos_monitor/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadSnapshot returns the persisted snapshot for a category, or an empty
// snapshot when the category has never been persisted.
func (s *SQLite) LoadSnapshot(ctx context.Context, categoryCode string) (model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, registration_name, free_spots, total_spots, raw_description, time_slots, unverified
		 FROM snapshot_groups WHERE category_code = ? ORDER BY group_id`, categoryCode,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := model.Snapshot{}
	for rows.Next() {
		var g model.CourseGroup
		var slotsJSON string
		var unverified int
		if err := rows.Scan(&g.GroupID, &g.RegistrationName, &g.FreeSpots, &g.TotalSpots,
			&g.RawDescription, &slotsJSON, &unverified); err != nil {
			return nil, fmt.Errorf("scan snapshot group: %w", err)
		}
		if err := json.Unmarshal([]byte(slotsJSON), &g.Slots); err != nil {
			return nil, fmt.Errorf("decode time slots for %s: %w", g.GroupID, err)
		}
		g.Unverified = unverified == 1
		snap[g.GroupID] = g
	}
	return snap, rows.Err()
}

// SaveSnapshot replaces the category's snapshot in a single transaction.
func (s *SQLite) SaveSnapshot(ctx context.Context, categoryCode string, snap model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshot_groups WHERE category_code = ?`, categoryCode); err != nil {
		return fmt.Errorf("delete old snapshot: %w", err)
	}

	now := time.Now().UTC().Format(timeLayout)
	for _, g := range snap {
		slotsJSON, err := json.Marshal(g.Slots)
		if err != nil {
			return fmt.Errorf("encode time slots for %s: %w", g.GroupID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_groups
			 (category_code, group_id, registration_name, free_spots, total_spots, raw_description, time_slots, unverified, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			categoryCode, g.GroupID, g.RegistrationName, g.FreeSpots, g.TotalSpots,
			g.RawDescription, string(slotsJSON), boolToInt(g.Unverified), now,
		); err != nil {
			return fmt.Errorf("insert snapshot group %s: %w", g.GroupID, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
