package core

import "time"

// ResultStatus is the terminal state of one processed task.
type ResultStatus string

const (
	StatusApproved ResultStatus = "approved"
	StatusRejected ResultStatus = "rejected"
	StatusFailed   ResultStatus = "failed"
)

// FileTask is one input file queued for suggestion generation.
// Index is the position in the original submission order and drives
// output ordering and progress reporting.
type FileTask struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
}

// SuggestionResult is the outcome of processing one FileTask. Exactly one
// result is produced per submitted task, in submission order.
type SuggestionResult struct {
	Index         int          `json:"index"`
	OriginalPath  string       `json:"original_path"`
	OriginalName  string       `json:"original_name"`
	SuggestedName string       `json:"suggested_name"`
	FinalName     string       `json:"final_name"`
	Status        ResultStatus `json:"status"`
	Confidence    float64      `json:"confidence,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	ApplyTags     bool         `json:"apply_tags"`
	Reasoning     string       `json:"reasoning,omitempty"`
	ErrorMessage  string       `json:"error_message,omitempty"`
}

// RenameOperation is one concrete filesystem rename derived from an
// approved result at commit time.
type RenameOperation struct {
	SourcePath      string   `json:"source_path"`
	DestinationPath string   `json:"destination_path"`
	TagsToApply     []string `json:"tags_to_apply,omitempty"`
}

// BatchStatus is the lifecycle state of a committed batch.
type BatchStatus string

const (
	BatchCommitted          BatchStatus = "committed"
	BatchPartiallyCommitted BatchStatus = "partially_committed"
	BatchUndone             BatchStatus = "undone"
)

// BatchOperation is one committed (source, destination) pair, recorded in
// the order it was actually executed.
type BatchOperation struct {
	SourcePath      string `json:"source"`
	DestinationPath string `json:"destination"`
}

// RenameBatch is the unit of undo: the operations committed together.
// Seq is assigned by the history store and orders batches; ID is the
// caller-visible identifier. A batch is immutable once finalized except
// for the status transition to undone.
type RenameBatch struct {
	ID         string           `json:"batch_id"`
	Seq        int64            `json:"-"`
	CreatedAt  time.Time        `json:"timestamp"`
	Status     BatchStatus      `json:"status"`
	Operations []BatchOperation `json:"operations"`
}
