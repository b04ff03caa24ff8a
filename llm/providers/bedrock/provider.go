//go:build bedrock

// Package bedrock implements an optional AWS Bedrock LLM provider, kept
// behind the "bedrock" build tag since it pulls in the full AWS SDK. It is
// never part of the "auto" provider precedence chain (that path only
// auto-selects among claude/openai/gemini/local/mock), and llm.NewProvider
// does not select it by name either: judge.llm_provider: bedrock is reset
// to mock by Config.Normalize. A binary built with -tags bedrock builds it
// directly with New and hands it to llm.NewClient.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/driveguide/enrichpipe/llm"
)

type anthropicInvokeBody struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type invokeResult struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Provider calls a Bedrock-hosted Anthropic model via InvokeModel.
type Provider struct {
	client  *bedrockruntime.Client
	modelID string
}

// New loads AWS config from the standard credential chain (env vars,
// shared config, IAM role) via the real aws-sdk-go-v2 config loader.
func New(ctx context.Context, region, modelID string) (*Provider, error) {
	if modelID == "" {
		modelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: loading aws config: %w", err)
	}
	return &Provider{client: bedrockruntime.NewFromConfig(cfg), modelID: modelID}, nil
}

func (p *Provider) Name() string { return "bedrock" }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, llm.Usage, error) {
	body, err := json.Marshal(anthropicInvokeBody{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        1024,
		Messages:         []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", llm.Usage{}, err
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", llm.Usage{}, fmt.Errorf("bedrock: invoke model: %w", err)
	}

	var result invokeResult
	if err := json.Unmarshal(out.Body, &result); err != nil {
		return "", llm.Usage{}, err
	}
	if len(result.Content) == 0 {
		return "", llm.Usage{}, fmt.Errorf("bedrock: empty content in response")
	}

	text := ""
	for _, item := range result.Content {
		text += item.Text
	}
	return text, llm.Usage{PromptTokens: result.Usage.InputTokens, CompletionTokens: result.Usage.OutputTokens}, nil
}
