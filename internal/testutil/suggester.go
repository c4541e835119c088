package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"nameforge/internal/core"
)

// StubSuggester returns canned suggestions keyed by file path. Paths
// without a canned entry get a suggestion derived from the filename.
// Safe for concurrent use.
type StubSuggester struct {
	mu          sync.Mutex
	suggestions map[string]core.Suggestion
	errs        map[string]error
	calls       []string

	// OnSuggest, when set, runs at the start of every Suggest call.
	// Useful for coordinating cancellation tests.
	OnSuggest func(path string)
}

var _ core.Suggester = (*StubSuggester)(nil)

// NewStubSuggester creates an empty StubSuggester.
func NewStubSuggester() *StubSuggester {
	return &StubSuggester{
		suggestions: make(map[string]core.Suggestion),
		errs:        make(map[string]error),
	}
}

// SetSuggestion cans a suggestion for the given path.
func (s *StubSuggester) SetSuggestion(path string, sug core.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[path] = sug
}

// SetError makes Suggest fail for the given path.
func (s *StubSuggester) SetError(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[path] = err
}

// Calls returns the paths Suggest has been called with, in call order.
func (s *StubSuggester) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.calls...)
}

func (s *StubSuggester) Suggest(ctx context.Context, filePath string, _ core.SuggestionContext) (*core.Suggestion, error) {
	if s.OnSuggest != nil {
		s.OnSuggest(filePath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, filePath)

	if err, ok := s.errs[filePath]; ok {
		return nil, err
	}
	if sug, ok := s.suggestions[filePath]; ok {
		return &sug, nil
	}

	base := filepath.Base(filePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return &core.Suggestion{
		Name:       fmt.Sprintf("suggested %s", stem),
		Confidence: 0.9,
		Reasoning:  "stubbed",
	}, nil
}
