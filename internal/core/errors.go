package core

import (
	"errors"
	"fmt"
)

// ErrNoUndoableBatch is returned by Undo when no committed batch remains
// eligible for undo.
var ErrNoUndoableBatch = errors.New("no undoable batch")

// CancelledReason marks results for tasks that were never dispatched
// because cancellation was signaled first.
const CancelledReason = "cancelled before dispatch"

// RenameConflictError reports a destination that was occupied at execution
// time. Per-operation, non-fatal.
type RenameConflictError struct {
	Path string
}

func (e *RenameConflictError) Error() string {
	return fmt.Sprintf("destination already exists: %s", e.Path)
}

// SourceVanishedError reports a source file that disappeared between
// suggestion and commit (or between commit and undo). Per-operation,
// non-fatal.
type SourceVanishedError struct {
	Path string
}

func (e *SourceVanishedError) Error() string {
	return fmt.Sprintf("source file no longer exists: %s", e.Path)
}

// OperationFailure is one collected per-operation error, returned as data
// rather than raised.
type OperationFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}
