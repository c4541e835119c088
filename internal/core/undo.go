package core

import (
	"fmt"
)

// UndoOutcome reports the result of reversing a batch.
type UndoOutcome struct {
	BatchID  string             `json:"batch_id"`
	Restored int                `json:"restored_count"`
	Errors   []OperationFailure `json:"errors"`
}

// Undo reverses the most recent non-undone batch. Operations are reversed
// in reverse execution order (last-renamed-first), because later renames in
// the original batch may have depended on earlier ones vacating a name.
// Each reversal is attempted independently; failures are collected and do
// not block the rest. The batch transitions to undone only if every
// operation reversed successfully, so a retry remains safe: re-attempting
// an already-reversed operation is a no-op.
func (s *Service) Undo() (*UndoOutcome, error) {
	batch, err := s.history.MostRecentUndoable()
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if batch == nil {
		return nil, ErrNoUndoableBatch
	}

	outcome := &UndoOutcome{BatchID: batch.ID, Errors: []OperationFailure{}}

	for i := len(batch.Operations) - 1; i >= 0; i-- {
		op := batch.Operations[i]
		if err := s.reverseOne(op); err != nil {
			outcome.Errors = append(outcome.Errors, OperationFailure{Path: op.DestinationPath, Reason: err.Error()})
			continue
		}
		outcome.Restored++
	}

	if len(outcome.Errors) == 0 {
		if err := s.history.MarkUndone(batch.ID, s.clock.Now()); err != nil {
			return outcome, fmt.Errorf("marking batch undone: %w", err)
		}
		s.logger.Info("batch undone", "batch", batch.ID, "restored", outcome.Restored)
	} else {
		s.logger.Warn("batch partially undone", "batch", batch.ID, "restored", outcome.Restored, "errors", len(outcome.Errors))
	}
	return outcome, nil
}

// reverseOne swaps one operation's source and destination. If the renamed
// file is gone but a file sits at the original location again, the
// operation counts as already reversed.
func (s *Service) reverseOne(op BatchOperation) error {
	renamedExists, err := s.fsmgr.Exists(op.DestinationPath)
	if err != nil {
		return fmt.Errorf("checking renamed file: %w", err)
	}
	if !renamedExists {
		originalExists, err := s.fsmgr.Exists(op.SourcePath)
		if err != nil {
			return fmt.Errorf("checking original location: %w", err)
		}
		if originalExists {
			return nil // already reversed
		}
		return &SourceVanishedError{Path: op.DestinationPath}
	}

	originalOccupied, err := s.fsmgr.Exists(op.SourcePath)
	if err != nil {
		return fmt.Errorf("checking original location: %w", err)
	}
	if originalOccupied {
		return &RenameConflictError{Path: op.SourcePath}
	}

	if err := s.fsmgr.Rename(op.DestinationPath, op.SourcePath); err != nil {
		return fmt.Errorf("restoring: %w", err)
	}
	return nil
}
