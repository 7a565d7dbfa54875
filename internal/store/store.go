package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prospect-engine/internal/domain"
)

var ErrPersist = errors.New("store: persist failed")

// PersistError reports the stage of SaveResults that failed. The transaction
// has already been rolled back when it is returned.
type PersistError struct {
	Stage string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Stage, e.Err)
}

func (e *PersistError) Unwrap() []error { return []error{ErrPersist, e.Err} }

type Saved struct {
	Companies int
	Persons   int
}

// Store persists collected prospect results. SaveResults writes every company
// and every person of one run in a single transaction.
type Store interface {
	Migrate(ctx context.Context) error
	SaveResults(ctx context.Context, results domain.CollectedResults) (Saved, error)
	Close() error
}

type backend int

const (
	backendSQLite backend = iota + 1
	backendPostgres
)

// Open picks the backend from the DSN. Postgres accepts postgres:// and
// postgresql:// URLs (a "+driver" suffix such as postgresql+psycopg2 is
// dropped) and libpq keyword strings. SQLite needs a sqlite: or file: prefix
// or a path ending in .db, .sqlite, .sqlite3 or .db3. Anything else is an
// error.
func Open(ctx context.Context, dsn string) (Store, error) {
	b, target, err := resolveDSN(dsn)
	if err != nil {
		return nil, err
	}
	if b == backendPostgres {
		pg, err := OpenPostgres(ctx, target)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	db, err := OpenSQLite(ctx, target)
	if err != nil {
		return nil, err
	}
	return db, nil
}

var sqliteExts = []string{".db", ".sqlite", ".sqlite3", ".db3"}

func resolveDSN(dsn string) (backend, string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return 0, "", errors.New("store: empty DATABASE_URL")
	}
	lower := strings.ToLower(dsn)

	for _, p := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(lower, p) {
			path := dsn[len(p):]
			if path == "" {
				return 0, "", fmt.Errorf("store: %q has no database path", dsn)
			}
			return backendSQLite, path, nil
		}
	}

	if scheme, rest, ok := strings.Cut(dsn, "://"); ok {
		base, _, _ := strings.Cut(strings.ToLower(scheme), "+")
		if base == "postgres" || base == "postgresql" {
			return backendPostgres, base + "://" + rest, nil
		}
		return 0, "", fmt.Errorf("store: unsupported database scheme %q (want postgres://, postgresql://, sqlite: or file:)", scheme)
	}

	if isKeywordDSN(dsn) {
		return backendPostgres, dsn, nil
	}

	for _, ext := range sqliteExts {
		if strings.HasSuffix(lower, ext) {
			return backendSQLite, dsn, nil
		}
	}
	return 0, "", fmt.Errorf("store: cannot tell which database %q is; use a postgres:// URL, key=value settings, or a sqlite: path", dsn)
}

// isKeywordDSN reports whether dsn looks like "host=... dbname=...".
func isKeywordDSN(dsn string) bool {
	fields := strings.Fields(dsn)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		k, _, ok := strings.Cut(f, "=")
		if !ok || k == "" || strings.ContainsAny(k, `/\.`) {
			return false
		}
	}
	return true
}
