package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Ashmit111/secure-scan/internal/domain"
	"github.com/Ashmit111/secure-scan/internal/store"
)

var _ store.StatusStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Init creates the schema if it is missing. Safe to call on every start.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS websites (
    url           TEXT PRIMARY KEY,
    owner_contact TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'UP',
    response_time TEXT NOT NULL DEFAULT 'N/A',
    last_checked  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS website_logs (
    id               BIGSERIAL PRIMARY KEY,
    url              TEXT NOT NULL REFERENCES websites(url),
    ts               TIMESTAMPTZ NOT NULL,
    status           TEXT NOT NULL,
    response_time_ms BIGINT NOT NULL,
    reached          BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS website_logs_url_ts ON website_logs (url, ts DESC);`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	s.log.Info("postgres_schema_ready")
	return nil
}

func (s *Store) Get(ctx context.Context, url string) (*domain.Website, error) {
	w := &domain.Website{}
	err := s.pool.QueryRow(ctx,
		`SELECT url, owner_contact, status, response_time, last_checked
		   FROM websites WHERE url = $1`, url,
	).Scan(&w.URL, &w.OwnerContact, &w.Status, &w.ResponseTime, &w.LastChecked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get website: %w", err)
	}
	return w, nil
}

// Upsert runs in one transaction so the field update and the log append are
// atomic; the row lock taken by the UPDATE serializes concurrent cycles for
// the same URL.
func (s *Store) Upsert(ctx context.Context, url, ownerContact string, status domain.Status, responseTime string, entry domain.LogEntry) (*domain.Website, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	w := &domain.Website{}
	err = tx.QueryRow(ctx,
		`INSERT INTO websites (url, owner_contact, status, response_time, last_checked)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (url) DO UPDATE
		    SET status        = EXCLUDED.status,
		        response_time = EXCLUDED.response_time,
		        last_checked  = now(),
		        owner_contact = CASE WHEN EXCLUDED.owner_contact <> ''
		                             THEN EXCLUDED.owner_contact
		                             ELSE websites.owner_contact END
		 RETURNING url, owner_contact, status, response_time, last_checked`,
		url, ownerContact, string(status), responseTime,
	).Scan(&w.URL, &w.OwnerContact, &w.Status, &w.ResponseTime, &w.LastChecked)
	if err != nil {
		return nil, fmt.Errorf("upsert website: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO website_logs (url, ts, status, response_time_ms, reached)
		 VALUES ($1, $2, $3, $4, $5)`,
		url, entry.Timestamp, string(entry.Status), entry.ResponseTime.Milliseconds(), entry.Reached,
	)
	if err != nil {
		return nil, fmt.Errorf("append log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return w, nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Website, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT url, owner_contact, status, response_time, last_checked
		   FROM websites
		  ORDER BY last_checked DESC, url`)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	defer rows.Close()

	var out []*domain.Website
	for rows.Next() {
		w := &domain.Website{}
		if err := rows.Scan(&w.URL, &w.OwnerContact, &w.Status, &w.ResponseTime, &w.LastChecked); err != nil {
			return nil, fmt.Errorf("scan website: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) History(ctx context.Context, url string, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	if _, err := s.Get(ctx, url); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT ts, status, response_time_ms, reached
		   FROM website_logs
		  WHERE url = $1
		  ORDER BY ts DESC, id DESC
		  LIMIT $2`, url, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var newestFirst []domain.LogEntry
	for rows.Next() {
		var (
			e  domain.LogEntry
			ms int64
		)
		if err := rows.Scan(&e.Timestamp, &e.Status, &ms, &e.Reached); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		e.ResponseTime = time.Duration(ms) * time.Millisecond
		newestFirst = append(newestFirst, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// callers expect oldest-first
	out := make([]domain.LogEntry, len(newestFirst))
	for i, e := range newestFirst {
		out[len(out)-1-i] = e
	}
	return out, nil
}
