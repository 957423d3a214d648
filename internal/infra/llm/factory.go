package llm

import (
	"context"
	"fmt"

	"github.com/repoguard/api/internal/config"
)

// NewProvider builds the process-wide analysis provider from configuration.
// Called once at startup; the returned Provider is shared across sessions.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case config.LLMProviderBedrock, "":
		return NewBedrockProvider(ctx, BedrockConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Model:           cfg.Model,
			Timeout:         cfg.Timeout,
		})

	case config.LLMProviderClaude:
		return NewClaudeProvider(ClaudeConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})

	default:
		return nil, fmt.Errorf("%w: unknown provider: %s", ErrInvalidProvider, cfg.Provider)
	}
}
