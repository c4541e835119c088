package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"nameforge/internal/sanitize"
)

// CommitOutcome reports what a commit attempt did. Partial failure is a
// normal, reportable outcome: failures are returned as data, never raised.
type CommitOutcome struct {
	BatchID    string             `json:"batch_id,omitempty"`
	DryRun     bool               `json:"dry_run"`
	Applied    int                `json:"applied_count"`
	Failed     []OperationFailure `json:"failed"`
	Operations []RenameOperation  `json:"operations"`
	Status     BatchStatus        `json:"status,omitempty"`
}

// Commit applies the approved subset of results as a recorded batch.
// Operations execute strictly in input order; this method is intentionally
// single-threaded so the collision state needs no locking. With dryRun the
// identical naming logic runs but nothing is mutated and no history record
// is written.
func (s *Service) Commit(ctx context.Context, results []SuggestionResult, dryRun bool) (*CommitOutcome, error) {
	ops, err := s.planOperations(results)
	if err != nil {
		return nil, err
	}

	outcome := &CommitOutcome{DryRun: dryRun, Operations: ops, Failed: []OperationFailure{}}
	if dryRun {
		return outcome, nil
	}

	var committed []BatchOperation
	for _, op := range ops {
		if err := s.executeOne(ctx, op); err != nil {
			s.logger.Warn("rename failed", "source", op.SourcePath, "error", err)
			outcome.Failed = append(outcome.Failed, OperationFailure{Path: op.SourcePath, Reason: err.Error()})
			continue
		}
		outcome.Applied++
		committed = append(committed, BatchOperation{
			SourcePath:      op.SourcePath,
			DestinationPath: op.DestinationPath,
		})
	}

	if len(committed) == 0 {
		return outcome, nil
	}

	status := BatchCommitted
	if len(outcome.Failed) > 0 {
		status = BatchPartiallyCommitted
	}
	batch := &RenameBatch{
		ID:         s.idgen.New(),
		CreatedAt:  s.clock.Now(),
		Status:     status,
		Operations: committed,
	}
	if err := s.history.Record(batch); err != nil {
		// The renames already applied are the side effect of record; they
		// are not rolled back. Undo-ability for this batch is lost.
		outcome.Status = status
		return outcome, fmt.Errorf("recording batch: %w", err)
	}
	outcome.BatchID = batch.ID
	outcome.Status = status

	if s.opts.HistoryKeep > 0 {
		if err := s.history.Prune(s.opts.HistoryKeep); err != nil {
			s.logger.Warn("history prune failed", "error", err)
		}
	}

	s.logger.Info("batch committed", "batch", batch.ID, "applied", outcome.Applied, "failed", len(outcome.Failed))
	return outcome, nil
}

// planOperations filters to approved results and derives de-duplicated
// rename operations. The collision set for each directory is seeded with
// the names currently on disk plus every destination already assigned in
// this batch, so two results that sanitize to the same name cannot both
// claim it.
func (s *Service) planOperations(results []SuggestionResult) ([]RenameOperation, error) {
	existingByDir := make(map[string]map[string]struct{})
	var ops []RenameOperation

	for _, r := range results {
		if r.Status != StatusApproved {
			continue
		}
		dir := filepath.Dir(r.OriginalPath)

		existing, ok := existingByDir[dir]
		if !ok {
			names, err := s.fsmgr.ListDirectoryNames(dir)
			if err != nil {
				return nil, fmt.Errorf("listing directory %s: %w", dir, err)
			}
			existing = make(map[string]struct{}, len(names))
			for _, n := range names {
				existing[strings.ToLower(n)] = struct{}{}
			}
			existingByDir[dir] = existing
		}

		raw := r.FinalName
		if raw == "" {
			raw = r.SuggestedName
		}

		// The file's own current name is not a collision: renaming it
		// vacates that name.
		delete(existing, strings.ToLower(r.OriginalName))

		seed := make([]string, 0, len(existing))
		for n := range existing {
			seed = append(seed, n)
		}
		ext := filepath.Ext(r.OriginalName)
		final := sanitize.Name(raw, ext, s.opts.PreserveExtension, seed)

		dest := filepath.Join(dir, final)
		if dest == r.OriginalPath {
			// Nothing to do; skip rather than record a no-op rename.
			continue
		}

		existing[strings.ToLower(final)] = struct{}{}

		var tags []string
		if r.ApplyTags {
			tags = r.Tags
		}
		ops = append(ops, RenameOperation{
			SourcePath:      r.OriginalPath,
			DestinationPath: dest,
			TagsToApply:     tags,
		})
	}
	return ops, nil
}

// executeOne performs a single rename with best-effort TOCTOU checks and
// post-rename tag application. Tag failures never roll back the rename:
// the rename is the operation of record for undo purposes.
func (s *Service) executeOne(ctx context.Context, op RenameOperation) error {
	srcExists, err := s.fsmgr.Exists(op.SourcePath)
	if err != nil {
		return fmt.Errorf("checking source: %w", err)
	}
	if !srcExists {
		return &SourceVanishedError{Path: op.SourcePath}
	}

	destExists, err := s.fsmgr.Exists(op.DestinationPath)
	if err != nil {
		return fmt.Errorf("checking destination: %w", err)
	}
	if destExists {
		return &RenameConflictError{Path: op.DestinationPath}
	}

	if err := s.fsmgr.Rename(op.SourcePath, op.DestinationPath); err != nil {
		return fmt.Errorf("renaming: %w", err)
	}

	if len(op.TagsToApply) > 0 {
		if err := s.tagger.ApplyTags(ctx, op.DestinationPath, op.TagsToApply, s.opts.TagMode); err != nil {
			s.logger.Warn("tag application failed", "file", op.DestinationPath, "error", err)
		}
	}
	return nil
}
