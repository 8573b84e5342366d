package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestValidateFillsDriverDefaults(t *testing.T) {
	pg := Config{Driver: DriverPostgres, Host: "db", Name: "habits"}
	if err := pg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if pg.Port != "5432" || pg.SSLMode != "disable" || pg.MaxConnections != 5 {
		t.Fatalf("unexpected defaults: %+v", pg)
	}
	if got := pg.target(); got != "db:5432/habits" {
		t.Fatalf("target = %q", got)
	}

	lite := Config{Driver: DriverSQLite, MaxConnections: 8}
	if err := lite.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if lite.Path == "" || lite.MaxConnections != 1 {
		t.Fatalf("unexpected defaults: %+v", lite)
	}

	if err := (&Config{Driver: DriverPostgres}).Validate(); err == nil {
		t.Fatal("postgres without host must fail")
	}
	if err := (&Config{Driver: "mysql"}).Validate(); err == nil {
		t.Fatal("unknown driver must fail")
	}
}

func TestSQLiteMigrationsCreateDocuments(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "data", "bot.db")}
	db, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(ctx, db, DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Second run is a no-op.
	if err := RunMigrations(ctx, db, DriverSQLite); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		"ledger.json", "{}"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM documents`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows = %d", n)
	}
}

func TestUpFilesListsEmbeddedMigrations(t *testing.T) {
	files := upFiles()
	if len(files) != 1 || files[0] != "0001_documents.up.sql" {
		t.Fatalf("files = %v", files)
	}
}
