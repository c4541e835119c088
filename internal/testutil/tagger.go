package testutil

import (
	"context"
	"sync"

	"nameforge/internal/core"
)

// TagCall records one ApplyTags invocation.
type TagCall struct {
	Path string
	Tags []string
	Mode core.TagMode
}

// RecordingTagger records tag applications. Safe for concurrent use.
type RecordingTagger struct {
	mu    sync.Mutex
	calls []TagCall

	// Err, when set, is returned from every ApplyTags call.
	Err error
}

var _ core.Tagger = (*RecordingTagger)(nil)

func NewRecordingTagger() *RecordingTagger {
	return &RecordingTagger{}
}

func (t *RecordingTagger) ApplyTags(_ context.Context, path string, tags []string, mode core.TagMode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	t.calls = append(t.calls, TagCall{Path: path, Tags: append([]string{}, tags...), Mode: mode})
	return nil
}

// Calls returns the recorded tag applications in call order.
func (t *RecordingTagger) Calls() []TagCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TagCall{}, t.calls...)
}
