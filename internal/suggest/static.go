package suggest

import (
	"context"
	"path/filepath"
	"strings"

	"nameforge/internal/caser"
	"nameforge/internal/core"
)

// StaticSuggester derives a suggestion from the existing filename alone:
// separators normalized, no network calls. It is the offline fallback and
// the provider used in tests.
type StaticSuggester struct{}

var _ core.Suggester = (*StaticSuggester)(nil)

func NewStaticSuggester() *StaticSuggester { return &StaticSuggester{} }

// Suggest cleans the current stem into space-separated words. Confidence
// is fixed and low; this provider has no insight into content.
func (s *StaticSuggester) Suggest(_ context.Context, filePath string, sctx core.SuggestionContext) (*core.Suggestion, error) {
	name := sctx.CurrentName
	if name == "" {
		name = filepath.Base(filePath)
	}
	stem := strings.TrimSuffix(name, sctx.Extension)

	words := caser.Split(stem)
	if len(words) == 0 {
		words = []string{"unnamed"}
	}
	return &core.Suggestion{
		Name:       caser.Transform(words, caser.None),
		Confidence: 0.3,
		Reasoning:  "derived from existing filename",
	}, nil
}
