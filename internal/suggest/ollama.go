package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nameforge/internal/core"
)

// OllamaSuggester calls a local Ollama server's generate endpoint.
type OllamaSuggester struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ core.Suggester = (*OllamaSuggester)(nil)

// NewOllamaSuggester creates a suggester against the given Ollama base URL
// (default http://localhost:11434) and model name.
func NewOllamaSuggester(baseURL, model string, timeout time.Duration) *OllamaSuggester {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaSuggester{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (s *OllamaSuggester) Suggest(ctx context.Context, _ string, sctx core.SuggestionContext) (*core.Suggestion, error) {
	reqBody, err := json.Marshal(ollamaRequest{
		Model:  s.model,
		System: systemPrompt,
		Prompt: buildPrompt(sctx),
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var or ollamaResponse
	if err := json.Unmarshal(body, &or); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if or.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", or.Error)
	}

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(or.Response), &payload); err != nil {
		return nil, fmt.Errorf("decoding suggestion: %w", err)
	}
	return payload.toSuggestion()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
