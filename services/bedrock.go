package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"stockscope/observability"
)

// BedrockService handles communication with AWS Bedrock for Claude
// models, used to turn an assembled research bundle into a narrative
// summary.
type BedrockService struct {
	client    bedrockInvoker
	model     string
	maxTokens int
}

// bedrockInvoker abstracts the Bedrock runtime client for testing.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// claudeRequest is the request format for Claude models via Bedrock.
type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response format from Claude models.
type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

const anthropicVersion = "bedrock-2023-05-31"

// NewBedrockService creates a new BedrockService instance.
func NewBedrockService(ctx context.Context, region, modelID string, maxTokens int) (*BedrockService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, WrapError(ErrConfiguration, "unable to load AWS SDK config", err)
	}

	return &BedrockService{
		client:    bedrockruntime.NewFromConfig(cfg),
		model:     modelID,
		maxTokens: maxTokens,
	}, nil
}

// InvokeWithPrompt sends a prompt to Claude through the bedrock circuit
// breaker and returns the response text.
func (s *BedrockService) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("bedrock", "invoke")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("bedrock", "invoke")

	request := claudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        s.maxTokens,
		System:           systemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: userPrompt},
		},
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	text, err := WithCircuitBreaker(ctx, BreakerBedrock, func() (string, error) {
		return s.invoke(ctx, reqBody)
	})
	if err != nil {
		metrics.RecordExternalAPIError("bedrock", "invoke", string(CodeOf(err)))
		return "", EnsureCode(err, ErrAPI, "bedrock invocation failed")
	}
	return text, nil
}

func (s *BedrockService) invoke(ctx context.Context, reqBody []byte) (string, error) {
	start := time.Now()
	output, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.model),
		Body:        reqBody,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke model: %w", err)
	}

	var response claudeResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", WrapError(ErrDataFormat, "failed to unmarshal bedrock response", err)
	}

	if len(response.Content) == 0 {
		return "", NewError(ErrDataFormat, "empty response from model")
	}

	observability.Debug("bedrock invocation complete",
		"model", s.model,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"duration", time.Since(start))

	return response.Content[0].Text, nil
}
