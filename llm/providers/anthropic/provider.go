// Package anthropic implements the Claude LLM provider: a single
// non-streaming call per query, no span instrumentation, no model-alias
// resolution, since this pipeline's LLM usage is one query/response per
// step rather than a chat session.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/driveguide/enrichpipe/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1/messages"
	apiVersion     = "2023-06-01"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type response struct {
	Content []contentItem `json:"content"`
	Usage   usage         `json:"usage"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Provider calls the Anthropic Messages API.
type Provider struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	HTTP      *http.Client
}

func New(apiKey, model string, httpClient *http.Client) *Provider {
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Provider{APIKey: apiKey, Model: model, BaseURL: defaultBaseURL, MaxTokens: 1024, HTTP: httpClient}
}

func (p *Provider) Name() string { return "claude" }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, llm.Usage, error) {
	body, err := json.Marshal(request{
		Model:     p.Model,
		Messages:  []message{{Role: "user", Content: prompt}},
		MaxTokens: p.MaxTokens,
	})
	if err != nil {
		return "", llm.Usage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", llm.Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return "", llm.Usage{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.Usage{}, err
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return "", llm.Usage{}, err
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", llm.Usage{}, fmt.Errorf("claude: %s", out.Error.Message)
		}
		return "", llm.Usage{}, fmt.Errorf("claude: unexpected status %d", resp.StatusCode)
	}
	if len(out.Content) == 0 {
		return "", llm.Usage{}, fmt.Errorf("claude: empty content in response")
	}

	text := ""
	for _, item := range out.Content {
		if item.Type == "text" {
			text += item.Text
		}
	}
	return text, llm.Usage{PromptTokens: out.Usage.InputTokens, CompletionTokens: out.Usage.OutputTokens}, nil
}
