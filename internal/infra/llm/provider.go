// Package llm provides abstractions for the external code-analysis
// capability (Large Language Model providers).
package llm

import (
	"context"
	"fmt"
)

// Provider is the interface for LLM providers. Implementations are
// process-wide, read-only after construction, and safe for use across
// concurrent scan sessions.
type Provider interface {
	// Complete sends a prompt and returns the completion.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name for logging.
	Name() string

	// Model returns the model being used.
	Model() string

	// Validate checks if the configuration is valid.
	Validate() error
}

// CompletionRequest represents a request to the LLM.
type CompletionRequest struct {
	// UserPrompt is the full analysis prompt.
	UserPrompt string

	// MaxTokens is the maximum tokens in the response.
	MaxTokens int
}

// CompletionResponse represents a response from the LLM.
type CompletionResponse struct {
	// Content is the generated text.
	Content string

	// Model is the actual model used (may differ from requested).
	Model string

	// StopReason is provider-specific stop information.
	StopReason string
}

// Errors
var (
	ErrProviderNotConfigured = fmt.Errorf("llm provider not configured")
	ErrInvalidProvider       = fmt.Errorf("invalid llm provider")
	ErrInvalidResponse       = fmt.Errorf("invalid llm response")
)
