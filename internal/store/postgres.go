package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"prospect-engine/internal/domain"
)

type PG struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*PG, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if cfg.MaxConns > 4 {
		cfg.MaxConns = 4
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PG{pool: pool}, nil
}

func (p *PG) Close() error {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *PG) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS company (
  id TEXT PRIMARY KEY,
  domain VARCHAR(255) NOT NULL,
  company_name VARCHAR(255) NOT NULL
);
CREATE TABLE IF NOT EXISTS person (
  id TEXT PRIMARY KEY,
  first_name VARCHAR(255) NOT NULL,
  last_name VARCHAR(255) NOT NULL,
  linkedin_id VARCHAR(255),
  linkedin_url VARCHAR(255),
  personal_email VARCHAR(255),
  location VARCHAR(255),
  country VARCHAR(255),
  company_id TEXT NOT NULL REFERENCES company(id),
  professional_email VARCHAR(255),
  mobile_phone VARCHAR(20),
  title VARCHAR(255) NOT NULL,
  seniority VARCHAR(255),
  department VARCHAR(255),
  quality VARCHAR(50),
  email_verified BOOLEAN,
  email_verified_status VARCHAR(50)
);
CREATE INDEX IF NOT EXISTS idx_company_domain ON company(domain);
CREATE INDEX IF NOT EXISTS idx_person_company_id ON person(company_id);
`)
	return err
}

// SaveResults copies companies then persons inside one transaction. Any
// failure rolls both back.
func (p *PG) SaveResults(ctx context.Context, results domain.CollectedResults) (Saved, error) {
	companies, persons := bulkRows(results)
	if len(companies) == 0 && len(persons) == 0 {
		return Saved{}, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Saved{}, &PersistError{Stage: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	nc, err := tx.CopyFrom(ctx, pgx.Identifier{"company"}, companyColumns, pgx.CopyFromRows(companies))
	if err != nil {
		return Saved{}, &PersistError{Stage: "company", Err: err}
	}
	np, err := tx.CopyFrom(ctx, pgx.Identifier{"person"}, personColumns, pgx.CopyFromRows(persons))
	if err != nil {
		return Saved{}, &PersistError{Stage: "person", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return Saved{}, &PersistError{Stage: "commit", Err: err}
	}
	return Saved{Companies: int(nc), Persons: int(np)}, nil
}
