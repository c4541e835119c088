package testutil

import (
	"testing"

	"nameforge/internal/core"
	"nameforge/internal/history"
)

// NewTestHistoryStore creates an in-memory SQLite history store with the
// schema applied. The store is closed when the test completes.
func NewTestHistoryStore(t *testing.T) core.HistoryStore {
	t.Helper()

	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open history store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
