// Package suggest holds the naming-suggestion providers: thin clients over
// HTTP inference endpoints, plus an offline fallback.
package suggest

import (
	"fmt"
	"strings"

	"nameforge/internal/core"
)

const systemPrompt = `You are a file naming assistant. Given a file and its
surrounding context, propose a short, descriptive filename stem (no
extension, no path). Respond with a single JSON object:
{"suggested_name": "...", "reasoning": "...", "confidence": 0.0-1.0, "tags": ["..."]}`

// buildPrompt renders the user prompt for one file from the assembled
// naming context. Context fields the pipeline did not populate are simply
// omitted.
func buildPrompt(sctx core.SuggestionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current filename: %s\n", sctx.CurrentName)
	if sctx.ParentFolder != "" {
		fmt.Fprintf(&b, "Parent folder: %s\n", sctx.ParentFolder)
	}
	if sctx.FolderChain != "" {
		fmt.Fprintf(&b, "Folder path: %s\n", sctx.FolderChain)
	}
	if len(sctx.Neighbors) > 0 {
		fmt.Fprintf(&b, "Neighboring files: %s\n", strings.Join(sctx.Neighbors, ", "))
	}
	if !sctx.ModifiedAt.IsZero() {
		fmt.Fprintf(&b, "Last modified: %s\n", sctx.ModifiedAt.Format("2006-01-02"))
	}
	if sctx.TagCount > 0 {
		fmt.Fprintf(&b, "Also propose up to %d short tags describing the file.\n", sctx.TagCount)
	}
	b.WriteString("Propose a better filename stem.")
	return b.String()
}

// suggestionPayload is the JSON object every provider is asked to return.
type suggestionPayload struct {
	SuggestedName string   `json:"suggested_name"`
	Reasoning     string   `json:"reasoning"`
	Confidence    float64  `json:"confidence"`
	Tags          []string `json:"tags"`
}

func (p suggestionPayload) toSuggestion() (*core.Suggestion, error) {
	name := strings.TrimSpace(strings.Trim(p.SuggestedName, "`\"'"))
	if name == "" {
		return nil, fmt.Errorf("provider returned an empty suggested_name")
	}
	return &core.Suggestion{
		Name:       name,
		Confidence: p.Confidence,
		Tags:       p.Tags,
		Reasoning:  p.Reasoning,
	}, nil
}
