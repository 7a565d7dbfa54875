package store

import (
	"context"
	"fmt"
)

const schemaVersion = 1

func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS company (
  id TEXT PRIMARY KEY,
  domain TEXT NOT NULL,
  company_name TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS person (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  linkedin_id TEXT,
  linkedin_url TEXT,
  personal_email TEXT,
  location TEXT,
  country TEXT,
  company_id TEXT NOT NULL REFERENCES company(id),
  professional_email TEXT,
  mobile_phone TEXT,
  title TEXT NOT NULL,
  seniority TEXT,
  department TEXT,
  quality TEXT,
  email_verified INTEGER,
  email_verified_status TEXT
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_company_domain
ON company(domain);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_person_company_id
ON person(company_id);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

// Counts returns how many company and person rows are stored.
func (d *DB) Counts(ctx context.Context) (companies, persons int, err error) {
	if err = d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM company;`).Scan(&companies); err != nil {
		return 0, 0, err
	}
	if err = d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM person;`).Scan(&persons); err != nil {
		return 0, 0, err
	}
	return companies, persons, nil
}
