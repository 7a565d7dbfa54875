package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"prospect-engine/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	keyring.MockInit()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), ".env")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigInitWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prospect.yml")
	out, err := execute(t, "config", "init", path)
	if err != nil || !strings.Contains(out, "wrote") {
		t.Fatalf("first init: %q %v", out, err)
	}
	out, err = execute(t, "config", "init", path)
	if err != nil || !strings.Contains(out, "already exists") {
		t.Fatalf("second init: %q %v", out, err)
	}
}

func TestMigrateCreatesTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prospect.db")
	t.Setenv("DATABASE_URL", "sqlite://"+dbPath)
	t.Chdir(t.TempDir())

	if _, err := execute(t, "migrate", "--log-level", "error"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := store.OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, _, err := db.Counts(context.Background()); err != nil {
		t.Fatalf("tables missing: %v", err)
	}
}

func TestMigrateWithoutDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PROSPECT_DATABASE_URL", "")
	t.Chdir(t.TempDir())
	if _, err := execute(t, "migrate"); err == nil {
		t.Fatal("expected error without a database url")
	}
}

func TestRunRequiresTwoArgs(t *testing.T) {
	if _, err := execute(t, "run", "only-one.csv"); err == nil {
		t.Fatal("expected args error")
	}
}

func TestRunFailsValidationWithoutAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("PROSPECT_API_KEY", "")
	t.Chdir(t.TempDir())
	if err := os.WriteFile("in.csv", []byte("domain\nacme.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "run", "in.csv", "cto", "--no-db")
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key validation error, got %v", err)
	}
}

func TestKeySetAndDelete(t *testing.T) {
	keyring.MockInit()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("from-stdin\n"))
	cmd.SetArgs([]string{"key", "set"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("key set: %v", err)
	}
	if got, err := keyring.Get("prospect-engine", "api-key"); err != nil || got != "from-stdin" {
		t.Fatalf("stored key = %q %v", got, err)
	}

	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"key", "delete"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("key delete: %v", err)
	}
}
