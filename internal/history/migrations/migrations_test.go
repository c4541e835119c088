package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"batches", "operations", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("First Up() failed: %v", err)
	}
	if err := Up(db); err != nil {
		t.Errorf("Second Up() failed: %v (should be idempotent)", err)
	}

	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after double migration returned error: %v", err)
	}
}

func TestCheckStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckStatus(db)
	if err == nil {
		t.Error("CheckStatus() expected error for fresh database, got nil")
	}

	if err.Error() != "history database has no schema version (needs migration)" {
		t.Errorf("CheckStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after migration returned error: %v", err)
	}
}

func TestSchema_OperationsCascadeOnBatchDelete(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	res, err := db.Exec("INSERT INTO batches (id, created_at, status) VALUES ('batch-1', datetime('now'), 'committed')")
	if err != nil {
		t.Fatalf("Failed to insert batch: %v", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read batch seq: %v", err)
	}
	if _, err := db.Exec(
		"INSERT INTO operations (batch_seq, position, source_path, destination_path) VALUES (?, 0, '/a', '/b')",
		seq); err != nil {
		t.Fatalf("Failed to insert operation: %v", err)
	}

	if _, err := db.Exec("DELETE FROM batches WHERE seq = ?", seq); err != nil {
		t.Fatalf("Failed to delete batch: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM operations WHERE batch_seq = ?", seq).Scan(&count); err != nil {
		t.Fatalf("Failed to count operations: %v", err)
	}
	if count != 0 {
		t.Errorf("Operations remaining after batch delete = %d, want 0", count)
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
