package core

import (
	"context"
	"time"
)

// SuggestionContext carries the naming context assembled for one file.
// Fields are passed through to the provider opaquely; the pipeline only
// assembles them.
type SuggestionContext struct {
	CurrentName  string
	Extension    string
	ParentFolder string
	FolderChain  string
	Neighbors    []string
	ModifiedAt   time.Time
	TagCount     int
}

// Suggestion is a provider's proposed name for one file.
type Suggestion struct {
	Name       string
	Confidence float64
	Tags       []string
	Reasoning  string
}

// Suggester is the external naming capability. Implementations are thin
// network clients; errors and timeouts are per-call and never fatal to
// sibling tasks.
type Suggester interface {
	Suggest(ctx context.Context, filePath string, sctx SuggestionContext) (*Suggestion, error)
}
