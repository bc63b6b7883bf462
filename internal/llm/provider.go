package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Embellish rewrites a flavor line in a character's voice
	Embellish(ctx context.Context, req EmbellishRequest) (*EmbellishResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// EmbellishRequest contains one line to rewrite
type EmbellishRequest struct {
	// Speaker is the character's display name
	Speaker string

	// Line is the rendered template text
	Line string

	// Names are the only player names the rewrite may mention
	Names []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// EmbellishResponse contains the rewritten line
type EmbellishResponse struct {
	Line       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI-compatible endpoints
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 120,
	}
}

// BuildPrompt constructs the default rewrite prompt. The rewrite must keep
// the meaning and must not turn the line into a role announcement.
func BuildPrompt(req EmbellishRequest) string {
	names := "(none)"
	if len(req.Names) > 0 {
		names = strings.Join(req.Names, ", ")
	}
	return fmt.Sprintf(`Rewrite one line of dialogue spoken by %s at a village meeting in a werewolf party game.

RULES:
1. Keep the meaning exactly. Do not add accusations, alibis or information.
2. Never state or hint at the speaker's own role.
3. Only these names may appear: %s
4. One or two sentences, no quotation marks.

Line: %s`, req.Speaker, names, req.Line)
}
