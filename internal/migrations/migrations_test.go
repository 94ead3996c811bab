package migrations

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func TestLoadMigrationsSortsAndPairsUpDown(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000002_two.up.sql":   {Data: []byte("SELECT 2;")},
		"sql/000002_two.down.sql": {Data: []byte("SELECT -2;")},
		"sql/000001_one.up.sql":   {Data: []byte("SELECT 1;")},
		"sql/000001_one.down.sql": {Data: []byte("SELECT -1;")},
	}

	items, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d", len(items))
	}
	if items[0].Version != 1 || items[1].Version != 2 {
		t.Fatalf("unexpected migration order: %+v", items)
	}
}

func TestLoadMigrationsErrorsWhenDownMissing(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000001_one.up.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := loadMigrations(fsys)
	if err == nil {
		t.Fatal("expected error for missing down migration")
	}
	if !strings.Contains(err.Error(), "missing down SQL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrationsRejectsUnrecognizedNames(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/notes.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := loadMigrations(fsys); err == nil {
		t.Fatal("expected error for unrecognized migration file name")
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	// The in-memory database disappears with its connection.
	db.SetMaxOpenConns(1)
	return db
}

func TestUpCreatesOfficeSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	applied, err := NewRunner().Up(ctx, db, 0)
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d", applied)
	}

	for _, table := range []string{"employees", "customers", "products", "orders", "order_items"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing after migration: %v", table, err)
		}
	}
}

func TestUpIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := NewRunner().Up(ctx, db, 0); err != nil {
		t.Fatalf("first Up() error = %v", err)
	}
	applied, err := NewRunner().Up(ctx, db, 0)
	if err != nil {
		t.Fatalf("second Up() error = %v", err)
	}
	if applied != 0 {
		t.Fatalf("second run applied = %d", applied)
	}
}

func TestDownRollsBackOfficeSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runner := NewRunner()

	if _, err := runner.Up(ctx, db, 0); err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	rolled, err := runner.Down(ctx, db, 0)
	if err != nil {
		t.Fatalf("Down() error = %v", err)
	}
	if rolled != 1 {
		t.Fatalf("rolled = %d", rolled)
	}

	var count int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = 'employees'`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("inspect sqlite_master: %v", err)
	}
	if count != 0 {
		t.Fatal("employees table still present after rollback")
	}
}
