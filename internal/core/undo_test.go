package core_test

import (
	"context"
	"errors"
	"testing"

	"nameforge/internal/caser"
	"nameforge/internal/core"
	"nameforge/internal/testutil"
)

func TestService_Undo(t *testing.T) {
	newSvc := func(t *testing.T, fsmgr *testutil.MockFilesystemManager) (*core.Service, core.HistoryStore) {
		t.Helper()
		history := testutil.NewTestHistoryStore(t)
		svc := core.NewService(history, fsmgr, testutil.NewStubSuggester(), core.NopTagger{},
			core.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator(),
			core.Options{CaseStyle: caser.Kebab, PreserveExtension: true})
		return svc, history
	}

	t.Run("returns ErrNoUndoableBatch on empty history", func(t *testing.T) {
		svc, _ := newSvc(t, testutil.NewMockFilesystemManager())

		_, err := svc.Undo()
		if !errors.Is(err, core.ErrNoUndoableBatch) {
			t.Fatalf("Undo() error = %v, want ErrNoUndoableBatch", err)
		}
	})

	t.Run("restores a committed batch", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/photos/IMG_1001.jpg")
		fsmgr.AddFile("/photos/IMG_1002.jpg")

		svc, _ := newSvc(t, fsmgr)

		_, err := svc.Commit(context.Background(), []core.SuggestionResult{
			approved("/photos/IMG_1001.jpg", "sunset.jpg"),
			approved("/photos/IMG_1002.jpg", "harbor.jpg"),
		}, false)
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		outcome, err := svc.Undo()
		if err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
		if outcome.Restored != 2 {
			t.Errorf("Restored = %d, want 2", outcome.Restored)
		}

		got := fsmgr.Paths()
		want := []string{"/photos/IMG_1001.jpg", "/photos/IMG_1002.jpg"}
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("paths after undo = %v, want %v", got, want)
		}
	})

	t.Run("undone batch is not undoable again", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/docs/a.txt")

		svc, _ := newSvc(t, fsmgr)

		if _, err := svc.Commit(context.Background(), []core.SuggestionResult{
			approved("/docs/a.txt", "alpha.txt"),
		}, false); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if _, err := svc.Undo(); err != nil {
			t.Fatalf("first Undo() error = %v", err)
		}

		_, err := svc.Undo()
		if !errors.Is(err, core.ErrNoUndoableBatch) {
			t.Fatalf("second Undo() error = %v, want ErrNoUndoableBatch", err)
		}
	})

	t.Run("reverses in reverse execution order", func(t *testing.T) {
		// op1 renames x -> y, op2 renames z -> x. Undoing in forward order
		// would hit a conflict at x; reverse order restores cleanly.
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/d/x.txt")
		fsmgr.AddFile("/d/z.txt")

		svc, _ := newSvc(t, fsmgr)

		if _, err := svc.Commit(context.Background(), []core.SuggestionResult{
			approved("/d/x.txt", "y.txt"),
			approved("/d/z.txt", "x.txt"),
		}, false); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		outcome, err := svc.Undo()
		if err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
		if len(outcome.Errors) != 0 {
			t.Fatalf("Errors = %v, want none", outcome.Errors)
		}

		got := fsmgr.Paths()
		want := []string{"/d/x.txt", "/d/z.txt"}
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("paths after undo = %v, want %v", got, want)
		}
	})

	t.Run("already reversed operation is a no-op", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/d/a.txt")
		fsmgr.AddFile("/d/b.txt")

		svc, _ := newSvc(t, fsmgr)

		if _, err := svc.Commit(context.Background(), []core.SuggestionResult{
			approved("/d/a.txt", "alpha.txt"),
			approved("/d/b.txt", "bravo.txt"),
		}, false); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		// Someone moved alpha.txt back by hand.
		if err := fsmgr.Rename("/d/alpha.txt", "/d/a.txt"); err != nil {
			t.Fatalf("manual rename error = %v", err)
		}

		outcome, err := svc.Undo()
		if err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
		if len(outcome.Errors) != 0 {
			t.Fatalf("Errors = %v, want none", outcome.Errors)
		}
		// bravo.txt actually moved, alpha.txt counted as already reversed.
		if outcome.Restored != 2 {
			t.Errorf("Restored = %d, want 2", outcome.Restored)
		}
	})

	t.Run("occupied original location is a per-operation conflict", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/d/a.txt")
		fsmgr.AddFile("/d/b.txt")

		svc, history := newSvc(t, fsmgr)

		if _, err := svc.Commit(context.Background(), []core.SuggestionResult{
			approved("/d/a.txt", "alpha.txt"),
			approved("/d/b.txt", "bravo.txt"),
		}, false); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		// A new file took a.txt's old spot.
		fsmgr.AddFile("/d/a.txt")

		outcome, err := svc.Undo()
		if err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
		if outcome.Restored != 1 {
			t.Errorf("Restored = %d, want 1", outcome.Restored)
		}
		if len(outcome.Errors) != 1 {
			t.Fatalf("len(Errors) = %d, want 1", len(outcome.Errors))
		}

		// The batch stays undoable for a retry.
		batch, err := history.MostRecentUndoable()
		if err != nil {
			t.Fatalf("MostRecentUndoable() error = %v", err)
		}
		if batch == nil {
			t.Fatal("partially undone batch should remain undoable")
		}

		// Clear the conflict and retry: the already-reversed operation
		// no-ops, the blocked one completes.
		fsmgr.RemoveFile("/d/a.txt")
		retry, err := svc.Undo()
		if err != nil {
			t.Fatalf("retry Undo() error = %v", err)
		}
		if len(retry.Errors) != 0 {
			t.Fatalf("retry Errors = %v, want none", retry.Errors)
		}
	})
}
