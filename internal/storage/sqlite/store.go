// Package sqlite keeps the session blob and season log in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lutefd/meetup-engine/internal/domain/stats"
	"github.com/lutefd/meetup-engine/internal/session"
	"github.com/lutefd/meetup-engine/internal/storage"
)

const slot = "current"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS session_state (
		slot TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS session_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		player TEXT NOT NULL,
		points REAL NOT NULL,
		goals REAL
	);`,
	`CREATE INDEX IF NOT EXISTS session_records_date_idx ON session_records (date);`,
}

type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path and ensures the tables
// exist. ":memory:" works for throwaway stores.
func NewStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (session.State, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM session_state WHERE slot = ?`, slot).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.State{}, storage.ErrNotFound
		}
		return session.State{}, err
	}
	var st session.State
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		return session.State{}, fmt.Errorf("decode session state: %w", err)
	}
	return st, nil
}

func (s *Store) Save(ctx context.Context, st session.State) error {
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_state (slot, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, slot, string(body), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) AppendRecords(ctx context.Context, rows []stats.Record) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_records (date, player, points, goals)
			VALUES (?,?,?,?)
		`, row.Date, row.Player, row.Points, row.Goals); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListRecords(ctx context.Context) ([]stats.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, player, points, goals
		FROM session_records
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]stats.Record, 0)
	for rows.Next() {
		var (
			v     stats.Record
			goals sql.NullFloat64
		)
		if err := rows.Scan(&v.Date, &v.Player, &v.Points, &goals); err != nil {
			return nil, err
		}
		if goals.Valid {
			v.Goals = stats.Goals(goals.Float64)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) DeleteDate(ctx context.Context, date string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_records WHERE date = ?`, date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
