package history_test

import (
	"path/filepath"
	"testing"
	"time"

	"nameforge/internal/core"
	"nameforge/internal/history"
)

func testBatch(id string, ops ...core.BatchOperation) *core.RenameBatch {
	return &core.RenameBatch{
		ID:         id,
		CreatedAt:  time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		Status:     core.BatchCommitted,
		Operations: ops,
	}
}

func op(src, dest string) core.BatchOperation {
	return core.BatchOperation{SourcePath: src, DestinationPath: dest}
}

func TestSQLiteStore_Record(t *testing.T) {
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	batch := testBatch("batch-a", op("/d/a.txt", "/d/alpha.txt"), op("/d/b.txt", "/d/bravo.txt"))
	if err := store.Record(batch); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if batch.Seq == 0 {
		t.Error("Record() did not assign a seq")
	}

	got, err := store.MostRecentUndoable()
	if err != nil {
		t.Fatalf("MostRecentUndoable() error = %v", err)
	}
	if got == nil {
		t.Fatal("MostRecentUndoable() = nil, want the recorded batch")
	}
	if got.ID != "batch-a" {
		t.Errorf("ID = %q, want batch-a", got.ID)
	}
	if len(got.Operations) != 2 {
		t.Fatalf("len(Operations) = %d, want 2", len(got.Operations))
	}
	// Operations come back in execution order.
	if got.Operations[0].SourcePath != "/d/a.txt" || got.Operations[1].SourcePath != "/d/b.txt" {
		t.Errorf("operations out of order: %+v", got.Operations)
	}
}

func TestSQLiteStore_MostRecentUndoable(t *testing.T) {
	t.Run("empty log returns nil", func(t *testing.T) {
		store, err := history.Open(":memory:")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer store.Close()

		got, err := store.MostRecentUndoable()
		if err != nil {
			t.Fatalf("MostRecentUndoable() error = %v", err)
		}
		if got != nil {
			t.Errorf("MostRecentUndoable() = %+v, want nil", got)
		}
	})

	t.Run("skips undone batches", func(t *testing.T) {
		store, err := history.Open(":memory:")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer store.Close()

		if err := store.Record(testBatch("older", op("/d/a.txt", "/d/alpha.txt"))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if err := store.Record(testBatch("newer", op("/d/b.txt", "/d/bravo.txt"))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if err := store.MarkUndone("newer", time.Now()); err != nil {
			t.Fatalf("MarkUndone() error = %v", err)
		}

		got, err := store.MostRecentUndoable()
		if err != nil {
			t.Fatalf("MostRecentUndoable() error = %v", err)
		}
		if got == nil || got.ID != "older" {
			t.Errorf("MostRecentUndoable() = %+v, want the older batch", got)
		}
	})
}

func TestSQLiteStore_MarkUndone(t *testing.T) {
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if err := store.MarkUndone("missing", time.Now()); err == nil {
		t.Error("MarkUndone() on unknown batch should fail")
	}

	if err := store.Record(testBatch("batch-a", op("/d/a.txt", "/d/alpha.txt"))); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.MarkUndone("batch-a", time.Now()); err != nil {
		t.Fatalf("MarkUndone() error = %v", err)
	}

	batches, err := store.ListBatches(10)
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if batches[0].Status != core.BatchUndone {
		t.Errorf("Status = %q, want undone", batches[0].Status)
	}
}

func TestSQLiteStore_ListBatches(t *testing.T) {
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	for _, id := range []string{"first", "second", "third"} {
		if err := store.Record(testBatch(id, op("/d/"+id, "/d/"+id+".new"))); err != nil {
			t.Fatalf("Record(%s) error = %v", id, err)
		}
	}

	batches, err := store.ListBatches(2)
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("len = %d, want 2", len(batches))
	}
	if batches[0].ID != "third" || batches[1].ID != "second" {
		t.Errorf("order = [%s, %s], want newest first", batches[0].ID, batches[1].ID)
	}
	if len(batches[0].Operations) != 1 {
		t.Errorf("operations not loaded: %+v", batches[0])
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		if err := store.Record(testBatch(id, op("/d/"+id, "/d/"+id+".new"))); err != nil {
			t.Fatalf("Record(%s) error = %v", id, err)
		}
	}

	if err := store.Prune(2); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	batches, err := store.ListBatches(10)
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("len after prune = %d, want 2", len(batches))
	}
	if batches[0].ID != "e" || batches[1].ID != "d" {
		t.Errorf("kept [%s, %s], want the newest two", batches[0].ID, batches[1].ID)
	}

	// Prune with keep <= 0 is a no-op.
	if err := store.Prune(0); err != nil {
		t.Fatalf("Prune(0) error = %v", err)
	}
	batches, _ = store.ListBatches(10)
	if len(batches) != 2 {
		t.Errorf("Prune(0) deleted batches, len = %d", len(batches))
	}
}

func TestSQLiteStore_MaxSeq(t *testing.T) {
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	seq, err := store.MaxSeq()
	if err != nil {
		t.Fatalf("MaxSeq() error = %v", err)
	}
	if seq != 0 {
		t.Errorf("MaxSeq() on empty log = %d, want 0", seq)
	}

	if err := store.Record(testBatch("a", op("/d/a", "/d/a.new"))); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Record(testBatch("b", op("/d/b", "/d/b.new"))); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	seq, err = store.MaxSeq()
	if err != nil {
		t.Fatalf("MaxSeq() error = %v", err)
	}
	if seq != 2 {
		t.Errorf("MaxSeq() = %d, want 2", seq)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Record(testBatch("persisted", op("/d/a.txt", "/d/alpha.txt"))); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.MostRecentUndoable()
	if err != nil {
		t.Fatalf("MostRecentUndoable() error = %v", err)
	}
	if got == nil || got.ID != "persisted" {
		t.Errorf("after reopen got %+v, want the persisted batch", got)
	}
}

func TestSQLiteStore_BackupTo(t *testing.T) {
	dir := t.TempDir()

	store, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if err := store.Record(testBatch("snap", op("/d/a.txt", "/d/alpha.txt"))); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	snapPath := filepath.Join(dir, "snapshot.db")
	if err := store.BackupTo(snapPath); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	snap, err := history.Open(snapPath)
	if err != nil {
		t.Fatalf("opening snapshot error = %v", err)
	}
	defer snap.Close()

	got, err := snap.MostRecentUndoable()
	if err != nil {
		t.Fatalf("MostRecentUndoable() on snapshot error = %v", err)
	}
	if got == nil || got.ID != "snap" {
		t.Errorf("snapshot batch = %+v, want the recorded one", got)
	}
}
