package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/nightfall/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:  modelConfig.Provider,
		Model:     modelConfig.Model,
		APIKey:    modelConfig.APIKey,
		BaseURL:   modelConfig.BaseURL,
		Timeout:   modelConfig.Timeout,
		MaxTokens: modelConfig.MaxTokens,
	}
}
