package core

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"nameforge/internal/caser"
	"nameforge/internal/sanitize"
)

// Progress is one advisory pipeline update, emitted after each task
// completes. Delivery is best-effort; a lost update never affects
// correctness.
type Progress struct {
	Completed   int
	Total       int
	CurrentFile string
}

// ProgressFunc receives progress updates. It may be called from multiple
// goroutines but never concurrently for the same completion count.
type ProgressFunc func(Progress)

// Process runs the suggestion pipeline over tasks with at most concurrency
// in-flight requests. The returned slice always has one result per task,
// in submission order, regardless of completion order. Cancellation is
// cooperative: it is checked before each dispatch, already-dispatched
// requests run to completion, and tasks never started come back failed
// with a cancellation reason.
func (s *Service) Process(ctx context.Context, tasks []FileTask, concurrency int, onProgress ProgressFunc) []SuggestionResult {
	if concurrency < 1 {
		concurrency = 1
	}

	total := len(tasks)
	results := make([]SuggestionResult, total)

	// Each slot is written exactly once, by the worker that owns the task's
	// index. The completion counter is the only other shared state.
	var completed atomic.Int64

	taskCh := make(chan FileTask)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				res := s.processOne(ctx, task)
				results[task.Index] = res
				n := int(completed.Add(1))
				if onProgress != nil {
					onProgress(Progress{Completed: n, Total: total, CurrentFile: filepath.Base(task.Path)})
				}
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		select {
		case taskCh <- task:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(taskCh)
	wg.Wait()

	// Tasks that were never handed to a worker get a terminal cancellation
	// result, preserving the one-result-per-task invariant.
	for _, task := range tasks[dispatched:] {
		results[task.Index] = SuggestionResult{
			Index:        task.Index,
			OriginalPath: task.Path,
			OriginalName: filepath.Base(task.Path),
			Status:       StatusFailed,
			ErrorMessage: CancelledReason,
		}
	}

	s.logger.Info("pipeline finished", "total", total, "dispatched", dispatched)
	return results
}

// Tasks builds an ordered task list from raw paths, assigning indices in
// submission order.
func Tasks(paths []string) []FileTask {
	tasks := make([]FileTask, len(paths))
	for i, p := range paths {
		tasks[i] = FileTask{Path: p, Index: i}
	}
	return tasks
}

// processOne handles a single task: assemble context, call the provider,
// shape the result. Any failure is converted into a failed result and
// never aborts sibling tasks.
func (s *Service) processOne(ctx context.Context, task FileTask) SuggestionResult {
	name := filepath.Base(task.Path)
	res := SuggestionResult{
		Index:        task.Index,
		OriginalPath: task.Path,
		OriginalName: name,
	}

	sctx, err := s.buildContext(task.Path)
	if err != nil {
		res.Status = StatusFailed
		res.ErrorMessage = err.Error()
		return res
	}

	suggestion, err := s.suggester.Suggest(ctx, task.Path, sctx)
	if err != nil {
		s.logger.Warn("suggestion failed", "file", name, "error", err)
		res.Status = StatusFailed
		res.SuggestedName = name
		res.ErrorMessage = err.Error()
		return res
	}

	res.SuggestedName = suggestion.Name
	res.Confidence = suggestion.Confidence
	res.Reasoning = suggestion.Reasoning
	res.Tags = limitTags(suggestion.Tags, s.opts.TagCount)
	res.ApplyTags = s.opts.ApplyTags && len(res.Tags) > 0

	res.FinalName = s.shapeName(suggestion.Name, sctx)
	res.Status = StatusApproved
	return res
}

// shapeName applies the case transform, optional date prefix, and
// sanitization to a raw suggested name. Collision seeding happens at
// commit time, not here.
func (s *Service) shapeName(raw string, sctx SuggestionContext) string {
	shaped := caser.Apply(raw, s.opts.CaseStyle)
	if s.opts.IncludeDatePrefix && !sctx.ModifiedAt.IsZero() {
		shaped = sctx.ModifiedAt.Format(s.opts.DateFormat) + "_" + shaped
	}
	return sanitize.Name(shaped, sctx.Extension, s.opts.PreserveExtension, nil)
}

// buildContext assembles the naming context for one file: neighbor names,
// the parent folder chain, and basic metadata. The file must still exist.
func (s *Service) buildContext(path string) (SuggestionContext, error) {
	name := filepath.Base(path)
	sctx := SuggestionContext{
		CurrentName: name,
		Extension:   filepath.Ext(name),
		TagCount:    s.opts.TagCount,
	}

	info, err := s.fsmgr.Stat(path)
	if err != nil {
		return sctx, &SourceVanishedError{Path: path}
	}
	sctx.ModifiedAt = info.ModTime()

	dir := filepath.Dir(path)
	sctx.ParentFolder = filepath.Base(dir)
	sctx.FolderChain = folderChain(dir, s.opts.FolderDepth)

	if s.opts.NeighborCount > 0 {
		names, err := s.fsmgr.ListDirectoryNames(dir)
		if err == nil {
			sctx.Neighbors = pickNeighbors(names, name, s.opts.NeighborCount)
		}
	}
	return sctx, nil
}

// folderChain renders up to depth parent folder names, outermost first,
// e.g. "projects / 2024 / photos".
func folderChain(dir string, depth int) string {
	if depth <= 0 {
		return ""
	}
	var parts []string
	cur := dir
	for i := 0; i < depth; i++ {
		base := filepath.Base(cur)
		if base == "/" || base == "." || base == "" {
			break
		}
		parts = append(parts, base)
		cur = filepath.Dir(cur)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " / ")
}

// pickNeighbors returns up to max sibling names, excluding the file itself
// and dotfiles, sorted for deterministic prompts.
func pickNeighbors(names []string, self string, max int) []string {
	var out []string
	for _, n := range names {
		if n == self || strings.HasPrefix(n, ".") {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func limitTags(tags []string, max int) []string {
	if max <= 0 {
		return nil
	}
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || len(t) > 50 {
			continue
		}
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}
