package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"prospect-engine/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "prospect.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSaveResultsInsertsCompaniesAndFlattenedPersons(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	verified := false

	results := domain.CollectedResults{
		{
			Company: domain.Company{ID: "c1", Domain: "a.com", Name: "A"},
			Persons: []domain.Person{
				{ID: "p1", FirstName: "Ann", LastName: "One", Title: "CEO", EmailVerified: &verified},
				{FirstName: "Ben", LastName: "Two", Title: "CTO", ProfessionalEmail: "ben@a.com"},
			},
		},
		{
			Company: domain.Company{ID: "c2", Domain: "b.com", Name: "B"},
			Persons: []domain.Person{{ID: "p3", FirstName: "Cy", LastName: "Three", Title: "VP"}},
		},
	}

	saved, err := db.SaveResults(ctx, results)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Companies != 2 || saved.Persons != 3 {
		t.Fatalf("unexpected saved counts %+v", saved)
	}
	companies, persons, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if companies != 2 || persons != 3 {
		t.Fatalf("stored %d companies / %d persons", companies, persons)
	}

	var companyID, id string
	if err := db.Pool.QueryRowContext(ctx, `SELECT id, company_id FROM person WHERE first_name = 'Ben';`).Scan(&id, &companyID); err != nil {
		t.Fatalf("query ben: %v", err)
	}
	if companyID != "c1" || len(id) != 36 {
		t.Fatalf("expected generated uuid and employer link, got id=%q company_id=%q", id, companyID)
	}

	var ev sql.NullBool
	if err := db.Pool.QueryRowContext(ctx, `SELECT email_verified FROM person WHERE id = 'p3';`).Scan(&ev); err != nil {
		t.Fatalf("query p3: %v", err)
	}
	if ev.Valid {
		t.Fatalf("expected NULL email_verified for p3")
	}
	if err := db.Pool.QueryRowContext(ctx, `SELECT email_verified FROM person WHERE id = 'p1';`).Scan(&ev); err != nil {
		t.Fatalf("query p1: %v", err)
	}
	if !ev.Valid || ev.Bool {
		t.Fatalf("expected stored false for p1, got %+v", ev)
	}
}

func TestPersonInsertFailureRollsBackCompanies(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	results := domain.CollectedResults{{
		Company: domain.Company{ID: "c1", Domain: "a.com", Name: "A"},
		Persons: []domain.Person{
			{ID: "dup", FirstName: "Ann", LastName: "One", Title: "CEO"},
			{ID: "dup", FirstName: "Ann", LastName: "Again", Title: "CEO"},
		},
	}}

	_, err := db.SaveResults(ctx, results)
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	var pe *PersistError
	if !errors.As(err, &pe) || pe.Stage != "person" {
		t.Fatalf("expected person stage failure, got %#v", err)
	}

	companies, persons, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if companies != 0 || persons != 0 {
		t.Fatalf("expected full rollback, found %d companies / %d persons", companies, persons)
	}
}

func TestUnknownEmployerViolatesForeignKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	results := domain.CollectedResults{{
		Company: domain.Company{ID: "c1", Domain: "a.com", Name: "A"},
		Persons: []domain.Person{{FirstName: "Ann", LastName: "One", Title: "CEO", CompanyID: "missing"}},
	}}
	if _, err := db.SaveResults(ctx, results); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if companies, _, _ := db.Counts(ctx); companies != 0 {
		t.Fatalf("expected rollback of company rows, found %d", companies)
	}
}

func TestSaveResultsEmptyIsNoop(t *testing.T) {
	db := openTestDB(t)
	saved, err := db.SaveResults(context.Background(), nil)
	if err != nil || saved != (Saved{}) {
		t.Fatalf("expected no-op, got %+v %v", saved, err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var v int
	if err := db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil || v != schemaVersion {
		t.Fatalf("user_version = %d (%v), want %d", v, err, schemaVersion)
	}
	var cols int
	if err := db.Pool.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('person')`).Scan(&cols); err != nil {
		t.Fatal(err)
	}
	if cols != len(personColumns) {
		t.Fatalf("person has %d columns, want %d", cols, len(personColumns))
	}
}

func TestOpenPicksSQLiteForPaths(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	if _, ok := st.(*DB); !ok {
		t.Fatalf("expected *DB, got %T", st)
	}
}

func TestOpenErrorReturnsNilStore(t *testing.T) {
	ctx := context.Background()
	for _, dsn := range []string{"  ", "mysql://u@h/db", "prospect"} {
		st, err := Open(ctx, dsn)
		if err == nil {
			t.Fatalf("Open(%q): expected error", dsn)
		}
		if st != nil {
			t.Fatalf("Open(%q): expected a nil Store, got %#v", dsn, st)
		}
	}
}

func TestResolveDSN(t *testing.T) {
	cases := []struct {
		dsn     string
		backend backend
		target  string
	}{
		{"postgres://u:p@localhost:5432/db", backendPostgres, "postgres://u:p@localhost:5432/db"},
		{"postgresql://u:p@localhost/db?sslmode=disable", backendPostgres, "postgresql://u:p@localhost/db?sslmode=disable"},
		{"postgresql+psycopg2://u:p@localhost:5432/db", backendPostgres, "postgresql://u:p@localhost:5432/db"},
		{"POSTGRES+asyncpg://u@h/db", backendPostgres, "postgres://u@h/db"},
		{"host=localhost user=u dbname=db", backendPostgres, "host=localhost user=u dbname=db"},
		{"sqlite:///tmp/p.db", backendSQLite, "/tmp/p.db"},
		{"sqlite:p.db", backendSQLite, "p.db"},
		{"file:data/p.sqlite", backendSQLite, "data/p.sqlite"},
		{"data/prospect.db", backendSQLite, "data/prospect.db"},
		{"/var/lib/prospect.sqlite3", backendSQLite, "/var/lib/prospect.sqlite3"},
	}
	for _, c := range cases {
		b, target, err := resolveDSN(c.dsn)
		if err != nil {
			t.Errorf("resolveDSN(%q): %v", c.dsn, err)
			continue
		}
		if b != c.backend || target != c.target {
			t.Errorf("resolveDSN(%q) = %v %q, want %v %q", c.dsn, b, target, c.backend, c.target)
		}
	}
}

func TestResolveDSNRejectsUnknown(t *testing.T) {
	for _, dsn := range []string{"", "mysql://u@h/db", "prospect", "sqlite:", "C:\\data\\prospect"} {
		if _, _, err := resolveDSN(dsn); err == nil {
			t.Errorf("resolveDSN(%q): expected error", dsn)
		}
	}
}

func TestBulkRowsDedupesCompanies(t *testing.T) {
	results := domain.CollectedResults{
		{Company: domain.Company{ID: "c1", Domain: "a.com", Name: "A"}},
		{Company: domain.Company{ID: "c1", Domain: "a.com", Name: "A"}},
	}
	companies, persons := bulkRows(results)
	if len(companies) != 1 || len(persons) != 0 {
		t.Fatalf("unexpected rows %v %v", companies, persons)
	}
}
