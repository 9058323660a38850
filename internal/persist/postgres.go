package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres with the pool settings the service uses
// everywhere.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Postgres stores each document as a jsonb row in a single table keyed by
// document name.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, db *sql.DB) (*Postgres, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			name       text PRIMARY KEY,
			body       jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) load(ctx context.Context, name string, out any) error {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = $1`, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (p *Postgres) save(ctx context.Context, name string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		name, raw)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (p *Postgres) LoadMediaMap(ctx context.Context) (MediaMap, error) {
	m := MediaMap{}
	err := p.load(ctx, docMediaMap, &m)
	return m, err
}

func (p *Postgres) SaveMediaMap(ctx context.Context, m MediaMap) error {
	return p.save(ctx, docMediaMap, m)
}

func (p *Postgres) LoadGroupIndex(ctx context.Context) (GroupIndex, error) {
	idx := GroupIndex{}
	err := p.load(ctx, docGroupIndex, &idx)
	return idx, err
}

func (p *Postgres) SaveGroupIndex(ctx context.Context, idx GroupIndex) error {
	return p.save(ctx, docGroupIndex, idx)
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
