// Package mock implements the always-available fallback LLM provider: a
// deterministic, zero-dependency responder used whenever no real
// provider's credentials are configured, so the pipeline never blocks on
// missing secrets.
package mock

import (
	"context"
	"fmt"

	"github.com/driveguide/enrichpipe/llm"
)

// Provider returns a canned, prompt-length-proportional response with no
// network call and no credentials required.
type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, llm.Usage, error) {
	text := fmt.Sprintf("mock response for prompt of %d characters", len(prompt))
	usage := llm.Usage{PromptTokens: len(prompt) / 4, CompletionTokens: len(text) / 4}
	return text, usage, nil
}
