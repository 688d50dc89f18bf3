package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migration validation failed: %v", err)
	}
}

func TestInitSchemaCoversAllTables(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("migrations", "20260301000001_init_schema.sql"))
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	sql := string(b)

	for _, table := range []string{
		"accounts",
		"plans",
		"subscriptions",
		"members",
		"member_payments",
		"attendance_records",
	} {
		if !strings.Contains(sql, "CREATE TABLE "+table) {
			t.Fatalf("init migration missing table %q", table)
		}
		if !strings.Contains(sql, "DROP TABLE IF EXISTS "+table) {
			t.Fatalf("init migration missing rollback for %q", table)
		}
	}

	if !strings.Contains(sql, "UNIQUE (account_id, member_code)") {
		t.Fatal("member codes must be unique per account")
	}
	if !strings.Contains(sql, "UNIQUE (member_id, date)") {
		t.Fatal("attendance must be unique per member per day")
	}
}

func TestSeedPlansIsIdempotent(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("migrations", "20260301000002_seed_default_plans.sql"))
	if err != nil {
		t.Fatalf("read seed migration: %v", err)
	}
	if !strings.Contains(string(b), "ON CONFLICT (name) DO NOTHING") {
		t.Fatal("seed migration must tolerate reruns")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Member Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_member_notes.sql") {
		t.Fatalf("unexpected sanitized filename %q", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration failed validation: %v", err)
	}
}
