package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"prospect-engine/internal/domain"
)

// SQLite has a per-statement bound-parameter limit; stay well below it.
const sqliteMaxVars = 30000

type DB struct {
	Pool *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.PingContext(pctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{Pool: pool}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

func (d *DB) SaveResults(ctx context.Context, results domain.CollectedResults) (Saved, error) {
	companies, persons := bulkRows(results)
	if len(companies) == 0 && len(persons) == 0 {
		return Saved{}, nil
	}

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return Saved{}, &PersistError{Stage: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := bulkInsert(ctx, tx, "company", companyColumns, companies); err != nil {
		return Saved{}, &PersistError{Stage: "company", Err: err}
	}
	if err := bulkInsert(ctx, tx, "person", personColumns, persons); err != nil {
		return Saved{}, &PersistError{Stage: "person", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return Saved{}, &PersistError{Stage: "commit", Err: err}
	}
	return Saved{Companies: len(companies), Persons: len(persons)}, nil
}

func bulkInsert(ctx context.Context, tx *sql.Tx, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	per := sqliteMaxVars / len(cols)
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"

	for start := 0; start < len(rows); start += per {
		end := start + per
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		var sb strings.Builder
		fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))
		args := make([]any, 0, len(chunk)*len(cols))
		for i, r := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholder)
			args = append(args, r...)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return err
		}
	}
	return nil
}
