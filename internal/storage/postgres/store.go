package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lutefd/meetup-engine/internal/domain/stats"
	"github.com/lutefd/meetup-engine/internal/session"
	"github.com/lutefd/meetup-engine/internal/storage"
)

// DefaultSlot is the session_state row used when none is configured.
const DefaultSlot = "current"

type Store struct {
	pool *pgxpool.Pool
	slot string
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, slot: DefaultSlot}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Load(ctx context.Context) (session.State, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM session_state WHERE slot = $1`, s.slot).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.State{}, storage.ErrNotFound
		}
		return session.State{}, err
	}
	var st session.State
	if err := json.Unmarshal(body, &st); err != nil {
		return session.State{}, fmt.Errorf("decode session state: %w", err)
	}
	return st, nil
}

func (s *Store) Save(ctx context.Context, st session.State) error {
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO session_state (slot, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`, s.slot, body)
	return err
}

func (s *Store) AppendRecords(ctx context.Context, rows []stats.Record) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, row := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO session_records (date, player, points, goals)
			VALUES ($1,$2,$3,$4)
		`, row.Date, row.Player, row.Points, row.Goals); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListRecords returns the season log in insertion order.
func (s *Store) ListRecords(ctx context.Context) ([]stats.Record, error) {
	rows, err := s.pool.Query(ctx, `
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
		var v stats.Record
		if err := rows.Scan(&v.Date, &v.Player, &v.Points, &v.Goals); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteDate drops every record logged under date and reports how many went.
func (s *Store) DeleteDate(ctx context.Context, date string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM session_records WHERE date = $1`, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
