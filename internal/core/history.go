package core

import "time"

// HistoryStore is the append-only log of committed batches. A record, once
// acknowledged, must survive process restart. The engine only appends;
// the store owns batch records exclusively.
type HistoryStore interface {
	// Record appends a finalized batch and assigns its Seq.
	Record(batch *RenameBatch) error

	// MostRecentUndoable returns the newest batch whose status is not
	// undone, or nil if none exists.
	MostRecentUndoable() (*RenameBatch, error)

	// MarkUndone transitions a batch's status to undone.
	MarkUndone(batchID string, at time.Time) error

	// ListBatches returns the most recent batches, newest first.
	ListBatches(limit int) ([]*RenameBatch, error)

	// Prune removes all but the newest keep batches.
	Prune(keep int) error

	// MaxSeq returns the highest assigned batch sequence, 0 if empty.
	MaxSeq() (int64, error)

	// Close releases the underlying storage.
	Close() error
}
