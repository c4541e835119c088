package core

import "context"

// TagMode controls how tags are applied to a file.
type TagMode string

const (
	TagModeAppend  TagMode = "append"
	TagModeReplace TagMode = "replace"
)

// Tagger applies labels to files post-rename. Failures are reported but
// never roll back the rename the tags were meant for.
type Tagger interface {
	ApplyTags(ctx context.Context, path string, tags []string, mode TagMode) error
}

// NopTagger discards all tag applications. Used when no tagging backend is
// available and in tests.
type NopTagger struct{}

func (NopTagger) ApplyTags(context.Context, string, []string, TagMode) error { return nil }
