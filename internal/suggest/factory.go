package suggest

import (
	"fmt"
	"time"

	"nameforge/internal/config"
	"nameforge/internal/core"
)

// NewSuggesterFromConfig creates a Suggester based on the provider config
// type.
func NewSuggesterFromConfig(cfg config.ProviderConfig) (core.Suggester, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	switch cfg.Type {
	case "static", "":
		return NewStaticSuggester(), nil
	case "ollama":
		if cfg.Model == "" {
			return nil, fmt.Errorf("model required for ollama provider")
		}
		return NewOllamaSuggester(cfg.BaseURL, cfg.Model, timeout), nil
	case "openai", "lmstudio":
		if cfg.Model == "" {
			return nil, fmt.Errorf("model required for %s provider", cfg.Type)
		}
		return NewOpenAISuggester(cfg.BaseURL, cfg.APIKey, cfg.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
