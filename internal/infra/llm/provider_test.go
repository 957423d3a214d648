package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoguard/api/internal/config"
)

// =============================================================================
// Bedrock Provider Tests
// =============================================================================

type fakeInvoker struct {
	gotInput *bedrockruntime.InvokeModelInput
	response anthropicResponse
	err      error
}

func (f *fakeInvoker) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.gotInput = params
	if f.err != nil {
		return nil, f.err
	}
	body, err := json.Marshal(f.response)
	if err != nil {
		return nil, err
	}
	return &bedrockruntime.InvokeModelOutput{Body: body}, nil
}

func TestNewBedrockProviderRequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  BedrockConfig
	}{
		{name: "missing region", cfg: BedrockConfig{AccessKeyID: "k", SecretAccessKey: "s"}},
		{name: "missing access key", cfg: BedrockConfig{Region: "us-east-1", SecretAccessKey: "s"}},
		{name: "missing secret", cfg: BedrockConfig{Region: "us-east-1", AccessKeyID: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBedrockProvider(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrProviderNotConfigured)
		})
	}
}

func TestNewBedrockProviderDefaults(t *testing.T) {
	p, err := NewBedrockProvider(context.Background(), BedrockConfig{
		Region:          "us-east-1",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "bedrock", p.Name())
	assert.Equal(t, defaultBedrockModel, p.Model())
	assert.NoError(t, p.Validate())
}

func TestBedrockComplete(t *testing.T) {
	fake := &fakeInvoker{
		response: anthropicResponse{
			Type:       "message",
			Role:       "assistant",
			Model:      defaultBedrockModel,
			StopReason: "end_turn",
			Content: []anthropicContent{
				{Type: "text", Text: "No vulnerabilities found in this file."},
			},
		},
	}
	p := &BedrockProvider{client: fake, model: defaultBedrockModel}

	resp, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "analyze this"})
	require.NoError(t, err)
	assert.Equal(t, "No vulnerabilities found in this file.", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)

	// The request body carries the Bedrock anthropic envelope.
	var body anthropicRequest
	require.NoError(t, json.Unmarshal(fake.gotInput.Body, &body))
	assert.Equal(t, anthropicVersion, body.AnthropicVersion)
	assert.Equal(t, defaultMaxTokens, body.MaxTokens)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
	require.Len(t, body.Messages[0].Content, 1)
	assert.Equal(t, "analyze this", body.Messages[0].Content[0].Text)
	assert.Equal(t, defaultBedrockModel, *fake.gotInput.ModelId)
}

func TestBedrockCompleteInvocationError(t *testing.T) {
	p := &BedrockProvider{
		client: &fakeInvoker{err: fmt.Errorf("throttled")},
		model:  defaultBedrockModel,
	}

	_, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bedrock invocation failed")
}

func TestBedrockCompleteJoinsTextBlocks(t *testing.T) {
	p := &BedrockProvider{
		client: &fakeInvoker{
			response: anthropicResponse{
				Content: []anthropicContent{
					{Type: "text", Text: "part one. "},
					{Type: "tool_use", Text: "ignored"},
					{Type: "text", Text: "part two."},
				},
			},
		},
		model: defaultBedrockModel,
	}

	resp, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "part one. part two.", resp.Content)
}

// =============================================================================
// Claude Provider Tests
// =============================================================================

func TestNewClaudeProvider(t *testing.T) {
	_, err := NewClaudeProvider(ClaudeConfig{})
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	p, err := NewClaudeProvider(ClaudeConfig{APIKey: "sk-ant-test"})
	require.NoError(t, err)
	assert.Equal(t, "claude", p.Name())
	assert.Equal(t, defaultClaudeModel, p.Model())
}

func TestClaudeComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, claudeAPIVersion, r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultMaxTokens, req.MaxTokens)

		_ = json.NewEncoder(w).Encode(claudeResponse{
			Model:      req.Model,
			StopReason: "end_turn",
			Content: []anthropicContent{
				{Type: "text", Text: "1. SQL injection, line 3, High"},
			},
		})
	}))
	defer server.Close()

	p, err := NewClaudeProvider(ClaudeConfig{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "analyze"})
	require.NoError(t, err)
	assert.Equal(t, "1. SQL injection, line 3, High", resp.Content)
}

func TestClaudeCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad prompt"}}`))
	}))
	defer server.Close()

	p, err := NewClaudeProvider(ClaudeConfig{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), CompletionRequest{UserPrompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
	assert.Contains(t, err.Error(), "bad prompt")
}

// =============================================================================
// Factory Tests
// =============================================================================

func TestNewProviderSelection(t *testing.T) {
	bedrock, err := NewProvider(context.Background(), config.LLMConfig{
		Provider:           config.LLMProviderBedrock,
		AWSRegion:          "us-east-1",
		AWSAccessKeyID:     "k",
		AWSSecretAccessKey: "s",
	})
	require.NoError(t, err)
	assert.Equal(t, "bedrock", bedrock.Name())

	claude, err := NewProvider(context.Background(), config.LLMConfig{
		Provider:        config.LLMProviderClaude,
		AnthropicAPIKey: "sk-ant-test",
	})
	require.NoError(t, err)
	assert.Equal(t, "claude", claude.Name())

	_, err = NewProvider(context.Background(), config.LLMConfig{Provider: "nope"})
	assert.ErrorIs(t, err, ErrInvalidProvider)
}
