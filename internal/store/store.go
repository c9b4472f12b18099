package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// Store is the Postgres-backed settlement journal.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// Bootstrap creates the journal table. Idempotent; runs at startup.
func (s *Store) Bootstrap(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS settlements (
			id         TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			party      TEXT NOT NULL,
			stake      BIGINT NOT NULL,
			payout     BIGINT NOT NULL,
			status     TEXT NOT NULL,
			debit_ref  TEXT NOT NULL DEFAULT '',
			credit_ref TEXT NOT NULL DEFAULT '',
			note       TEXT NOT NULL DEFAULT '',
			reconciled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("bootstrap settlements: %w", err)
	}
	_, err = s.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS settlements_status_idx
		ON settlements (status, reconciled)
	`)
	return err
}

func (s *Store) Append(ctx context.Context, rec Settlement) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO settlements (id, request_id, party, stake, payout, status, debit_ref, credit_ref, note, reconciled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, rec.RequestID, rec.Party, rec.Stake, rec.Payout, rec.Status,
		rec.DebitRef, rec.CreditRef, rec.Note, rec.Reconciled, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append settlement: %w", err)
	}
	return nil
}

// List returns journal rows, newest first. status filters when
// non-empty; unreconciledOnly narrows to rows awaiting an operator.
func (s *Store) List(ctx context.Context, status string, unreconciledOnly bool, limit, offset int) ([]Settlement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, request_id, party, stake, payout, status, debit_ref, credit_ref, note, reconciled, created_at
		FROM settlements
		WHERE ($1 = '' OR status = $1)
		  AND (NOT $2 OR NOT reconciled)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, status, unreconciledOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	out := make([]Settlement, 0, limit)
	for rows.Next() {
		var rec Settlement
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Party, &rec.Stake, &rec.Payout,
			&rec.Status, &rec.DebitRef, &rec.CreditRef, &rec.Note, &rec.Reconciled, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*Settlement, error) {
	var rec Settlement
	err := s.Pool.QueryRow(ctx, `
		SELECT id, request_id, party, stake, payout, status, debit_ref, credit_ref, note, reconciled, created_at
		FROM settlements
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.RequestID, &rec.Party, &rec.Stake, &rec.Payout,
		&rec.Status, &rec.DebitRef, &rec.CreditRef, &rec.Note, &rec.Reconciled, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settlement: %w", err)
	}
	return &rec, nil
}

func (s *Store) MarkReconciled(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE settlements SET reconciled = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark reconciled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
