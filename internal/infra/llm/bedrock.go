package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	defaultBedrockModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	anthropicVersion    = "bedrock-2023-05-31"
	defaultMaxTokens    = 4096
)

// modelInvoker is the slice of the Bedrock runtime client this provider
// uses. Narrowing it keeps the provider testable without AWS.
type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockProvider invokes Anthropic models through AWS Bedrock.
type BedrockProvider struct {
	client modelInvoker
	model  string
}

// BedrockConfig holds configuration for the Bedrock provider.
type BedrockConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Model           string
	Timeout         time.Duration
}

// NewBedrockProvider creates a Bedrock-backed provider with static
// credentials. Missing credentials are a construction-time error so the
// process fails at startup, not mid-scan.
func NewBedrockProvider(ctx context.Context, cfg BedrockConfig) (*BedrockProvider, error) {
	if cfg.Region == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("%w: AWS region and credentials are required", ErrProviderNotConfigured)
	}

	model := cfg.Model
	if model == "" {
		model = defaultBedrockModel
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var optFns []func(*bedrockruntime.Options)
	if cfg.Timeout > 0 {
		optFns = append(optFns, func(o *bedrockruntime.Options) {
			o.HTTPClient = awshttp.NewBuildableClient().WithTimeout(cfg.Timeout)
		})
	}

	return &BedrockProvider{
		client: bedrockruntime.NewFromConfig(awsCfg, optFns...),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *BedrockProvider) Name() string {
	return "bedrock"
}

// Model returns the model being used.
func (p *BedrockProvider) Model() string {
	return p.model
}

// Validate checks if the configuration is valid.
func (p *BedrockProvider) Validate() error {
	if p.client == nil {
		return fmt.Errorf("%w: bedrock client not initialized", ErrProviderNotConfigured)
	}
	return nil
}

// Complete sends a prompt through Bedrock's InvokeModel and returns the
// completion. Calls are synchronous and never retried; the caller owns
// failure handling per file.
func (p *BedrockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body := anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicContent{
					{Type: "text", Text: req.UserPrompt},
				},
			},
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        jsonBody,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invocation failed: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var contentBuilder strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			contentBuilder.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:    contentBuilder.String(),
		Model:      resp.Model,
		StopReason: resp.StopReason,
	}, nil
}

// Anthropic-on-Bedrock request/response structures.

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
}
