package core

import (
	"nameforge/internal/caser"
)

// Options are the per-service naming knobs, resolved from configuration
// by the caller.
type Options struct {
	CaseStyle         caser.Style
	PreserveExtension bool
	IncludeDatePrefix bool
	DateFormat        string // Go reference layout, e.g. "2006-01-02"
	TagCount          int    // max tags kept per result; 0 disables tags
	ApplyTags         bool
	TagMode           TagMode
	NeighborCount     int // neighbor filenames included in context
	FolderDepth       int // parent folders included in context
	HistoryKeep       int // batches retained after pruning; 0 keeps all
}

// Service coordinates the suggestion pipeline, the rename transaction
// engine, and undo across the injected collaborators.
type Service struct {
	history   HistoryStore
	fsmgr     FilesystemManager
	suggester Suggester
	tagger    Tagger
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	opts      Options
}

// NewService creates a Service with the provided dependencies.
func NewService(history HistoryStore, fsmgr FilesystemManager, suggester Suggester, tagger Tagger, logger Logger, clock Clock, idgen IDGenerator, opts Options) *Service {
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02"
	}
	if !caser.Valid(opts.CaseStyle) {
		opts.CaseStyle = caser.Kebab
	}
	return &Service{
		history:   history,
		fsmgr:     fsmgr,
		suggester: suggester,
		tagger:    tagger,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		opts:      opts,
	}
}

// History returns the most recent batches, newest first.
func (s *Service) History(limit int) ([]*RenameBatch, error) {
	return s.history.ListBatches(limit)
}
